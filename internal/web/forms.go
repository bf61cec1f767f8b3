package web

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"trading-journal/internal/auth"
	"trading-journal/internal/config"
	"trading-journal/internal/journal"
	"trading-journal/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

type formOptions struct {
	Symbols      []string
	Setups       []string
	Sessions     []string
	Trends       []string
	Directions   []models.Direction
	AccountTypes []models.AccountType
}

func newFormOptions(cfg config.Journal) formOptions {
	return formOptions{
		Symbols:      cfg.Symbols,
		Setups:       cfg.Setups,
		Sessions:     models.Sessions,
		Trends:       models.Trends,
		Directions:   models.Directions,
		AccountTypes: models.AccountTypes,
	}
}

// formState is a submitted form kept for re-rendering after a rejection.
type formState struct {
	Name   string
	Values url.Values
	Errors map[string]string
}

func (f *formState) Is(name string) bool { return f != nil && f.Name == name }

func (f *formState) Value(key string) string {
	if f == nil {
		return ""
	}
	return f.Values.Get(key)
}

func (f *formState) Error(key string) string {
	if f == nil {
		return ""
	}
	return f.Errors[key]
}

// fieldParser converts raw form values, collecting a message per bad field.
type fieldParser struct {
	values url.Values
	errors map[string]string
}

func newFieldParser(values url.Values) *fieldParser {
	return &fieldParser{values: values, errors: map[string]string{}}
}

func (p *fieldParser) text(key string) string {
	return strings.TrimSpace(p.values.Get(key))
}

func (p *fieldParser) decimal(key string) decimal.Decimal {
	raw := p.text(key)
	if raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
	if err != nil {
		p.errors[key] = "must be a number"
		return decimal.Zero
	}
	return d
}

func (p *fieldParser) date(key string) time.Time {
	raw := p.text(key)
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		p.errors[key] = "must be a date like 2024-03-04"
		return time.Time{}
	}
	return t
}

func (p *fieldParser) id(key string) uint {
	raw := p.text(key)
	if raw == "" {
		return 0
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		p.errors[key] = "is not a valid account"
		return 0
	}
	return uint(id)
}

// check merges conversion errors into validation errors, keeping the conversion message.
func (p *fieldParser) check(validate func() error) error {
	err := validate()
	if len(p.errors) == 0 {
		return err
	}
	fields := map[string]string{}
	if verr, ok := err.(*journal.ValidationError); ok {
		for k, v := range verr.Fields {
			fields[k] = v
		}
	}
	for k, v := range p.errors {
		fields[k] = v
	}
	return &journal.ValidationError{Fields: fields}
}

func (s *Server) redirectWithNotice(w http.ResponseWriter, r *http.Request, view, notice string) {
	http.Redirect(w, r, dashboardURL(view, "", defaultSort, true, notice), http.StatusSeeOther)
}

func (s *Server) handleAddTrade(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Malformed form", err.Error())
		return
	}
	form := &formState{Name: "trade", Values: r.PostForm}
	p := newFieldParser(r.PostForm)

	cmd := journal.AddTradeCommand{
		Owner:         auth.FromContext(r.Context()).User,
		AccountID:     p.id("account_id"),
		Symbol:        p.text("symbol"),
		Direction:     models.Direction(p.text("direction")),
		EntryDate:     p.date("entry_date"),
		Quantity:      p.decimal("quantity"),
		PnL:           p.decimal("pnl"),
		Session:       p.text("session"),
		RulesFollowed: p.text("rules_followed"),
		Trend:         p.text("trend"),
		Setup:         p.text("setup"),
		ProperSL:      p.text("proper_sl"),
		IsEventDay:    p.text("is_event_day"),
		Notes:         p.text("notes"),
	}
	if err := p.check(cmd.Validate); err != nil {
		s.fail(w, r, err, form)
		return
	}

	if _, err := s.store.AddTrade(r.Context(), cmd); err != nil {
		s.fail(w, r, err, form)
		return
	}
	s.redirectWithNotice(w, r, r.PostFormValue("view"), "trade-logged")
}

func (s *Server) handleAddAccount(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Malformed form", err.Error())
		return
	}
	form := &formState{Name: "account", Values: r.PostForm}
	p := newFieldParser(r.PostForm)

	cmd := journal.AddAccountCommand{
		Owner:          auth.FromContext(r.Context()).User,
		Name:           p.text("name"),
		Type:           models.AccountType(p.text("account_type")),
		InitialBalance: p.decimal("initial_balance"),
		TargetPayout:   p.decimal("target_payout"),
		MaxDrawdown:    p.decimal("max_drawdown_limit"),
	}
	if err := p.check(cmd.Validate); err != nil {
		s.fail(w, r, err, form)
		return
	}

	if _, err := s.store.AddAccount(r.Context(), cmd); err != nil {
		s.fail(w, r, err, form)
		return
	}
	s.redirectWithNotice(w, r, r.PostFormValue("view"), "account-added")
}

// handleDeleteAccount deletes the owner's account with the submitted name.
// With duplicate names the oldest account goes first.
func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Malformed form", err.Error())
		return
	}
	user := auth.FromContext(r.Context()).User
	name := strings.TrimSpace(r.PostFormValue("name"))

	accounts, err := s.store.ListAccounts(r.Context(), user)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	var target *models.Account
	for i := range accounts {
		if accounts[i].Name == name {
			target = &accounts[i]
			break
		}
	}
	if target == nil {
		s.fail(w, r, journal.ErrAccountNotFound, nil)
		return
	}

	if err := s.store.DeleteAccount(r.Context(), journal.DeleteAccountCommand{Owner: user, AccountID: target.ID}); err != nil {
		s.fail(w, r, err, nil)
		return
	}
	s.log.Info("Account deleted from dashboard", zap.String("user", user), zap.String("account", name))

	view := r.PostFormValue("view")
	if view == strconv.FormatUint(uint64(target.ID), 10) {
		view = viewAll
	}
	s.redirectWithNotice(w, r, view, "account-deleted")
}
