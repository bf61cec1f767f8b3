package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"trading-journal/internal/auth"
	"trading-journal/internal/database"
	"trading-journal/internal/journal"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var templateFuncs = template.FuncMap{
	"money":   formatMoney,
	"percent": func(v float64) string { return fmt.Sprintf("%.1f%%", v) },
	"ratio":   func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"fixed":   func(d decimal.Decimal, places int32) string { return d.StringFixed(places) },
	"width":   func(fraction float64) string { return fmt.Sprintf("%.1f%%", fraction*100) },
}

// formatMoney renders d as dollars with thousands separators, e.g. -$1,234.50.
func formatMoney(d decimal.Decimal) string {
	d = d.Round(2)
	s := d.Abs().StringFixed(2)
	whole, frac := s[:len(s)-3], s[len(s)-3:]

	var b strings.Builder
	if d.IsNegative() {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	b.WriteString(frac)
	return b.String()
}

type errorPage struct {
	User    string
	Title   string
	Message string
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, data interface{}) {
	var buf bytes.Buffer
	if err := s.pages[page].Execute(&buf, data); err != nil {
		s.log.Error("Failed to render page",
			zap.String("page", page),
			zap.String("request_id", requestIDFrom(r.Context())),
			zap.Error(err),
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, title, message string) {
	s.render(w, r, status, "error", errorPage{
		User:    auth.FromContext(r.Context()).User,
		Title:   title,
		Message: message,
	})
}

// storeUnavailable reports whether err comes from, or coincides with, an unreachable store.
func (s *Server) storeUnavailable(ctx context.Context, err error) bool {
	var connErr *database.ConnectionError
	if errors.As(err, &connErr) {
		return true
	}
	return s.health(ctx) != nil
}

// fail renders the page matching err. Validation errors re-render the
// dashboard with the submitted form and its messages.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, form *formState) {
	var verr *journal.ValidationError
	switch {
	case errors.As(err, &verr) && form != nil:
		form.Errors = verr.Fields
		s.renderDashboard(w, r, http.StatusBadRequest, form)
	case errors.Is(err, journal.ErrAccountNotFound):
		s.renderError(w, r, http.StatusNotFound, "Account not found", "That account does not exist or belongs to another user.")
	case s.storeUnavailable(r.Context(), err):
		s.log.Error("Store unavailable", zap.String("request_id", requestIDFrom(r.Context())), zap.Error(err))
		s.renderError(w, r, http.StatusServiceUnavailable, "Database unavailable",
			"The journal database cannot be reached. Check the connection settings and reload.")
	default:
		s.log.Error("Request failed", zap.String("request_id", requestIDFrom(r.Context())), zap.Error(err))
		s.renderError(w, r, http.StatusInternalServerError, "Something went wrong", "The request could not be completed.")
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) failJSON(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, journal.ErrAccountNotFound):
		writeJSONError(w, http.StatusNotFound, err.Error())
	case s.storeUnavailable(r.Context(), err):
		s.log.Error("Store unavailable", zap.String("request_id", requestIDFrom(r.Context())), zap.Error(err))
		writeJSONError(w, http.StatusServiceUnavailable, "database unavailable")
	default:
		s.log.Error("Request failed", zap.String("request_id", requestIDFrom(r.Context())), zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "internal server error")
	}
}
