package web

import (
	"errors"
	"net"
	"net/http"

	"trading-journal/internal/auth"

	"go.uber.org/zap"
)

type loginPage struct {
	User     string
	Username string
	Error    string
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if auth.FromContext(r.Context()).Authenticated {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.render(w, r, http.StatusOK, "login", loginPage{})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow(clientIP(r)) {
		s.log.Warn("Login rate limited", zap.String("client", clientIP(r)))
		s.render(w, r, http.StatusTooManyRequests, "login", loginPage{Error: "Too many login attempts. Wait a moment and try again."})
		return
	}
	if err := r.ParseForm(); err != nil {
		s.render(w, r, http.StatusBadRequest, "login", loginPage{Error: "Malformed login form."})
		return
	}

	username := r.PostFormValue("username")
	user, err := s.users.Authenticate(username, r.PostFormValue("password"))
	if errors.Is(err, auth.ErrInvalidCredentials) {
		s.log.Info("Login rejected", zap.String("username", username))
		s.render(w, r, http.StatusUnauthorized, "login", loginPage{Username: username, Error: "Invalid username or password."})
		return
	}
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}

	if err := s.codec.SetCookie(w, user); err != nil {
		s.fail(w, r, err, nil)
		return
	}
	s.log.Info("User logged in", zap.String("user", user))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess := auth.FromContext(r.Context()); sess.Authenticated {
		s.log.Info("User logged out", zap.String("user", sess.User))
	}
	s.codec.ClearCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.health(r.Context()); err != nil {
		s.log.Warn("Health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
