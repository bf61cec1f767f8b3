package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"trading-journal/internal/auth"
	"trading-journal/internal/config"
	"trading-journal/internal/journal"
	"trading-journal/internal/models"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

// Store is the part of the journal repository the web layer needs.
type Store interface {
	AddAccount(ctx context.Context, cmd journal.AddAccountCommand) (*models.Account, error)
	ListAccounts(ctx context.Context, owner string) ([]models.Account, error)
	DeleteAccount(ctx context.Context, cmd journal.DeleteAccountCommand) error
	AddTrade(ctx context.Context, cmd journal.AddTradeCommand) (*models.Trade, error)
	ListTrades(ctx context.Context, owner string, view journal.View) ([]models.Trade, error)
}

// Deps holds everything the server is built from.
type Deps struct {
	Store   Store
	Health  func(ctx context.Context) error
	Codec   *auth.SessionCodec
	Users   *auth.Allowlist
	Limiter *auth.LoginLimiter
	Journal config.Journal
	Logger  *zap.Logger
}

// Server serves the journal dashboard.
type Server struct {
	store   Store
	health  func(ctx context.Context) error
	codec   *auth.SessionCodec
	users   *auth.Allowlist
	limiter *auth.LoginLimiter
	options formOptions
	log     *zap.Logger
	pages   map[string]*template.Template
}

// NewServer parses the page templates and wires the handlers.
func NewServer(d Deps) (*Server, error) {
	if d.Store == nil || d.Codec == nil || d.Users == nil {
		return nil, errors.New("web: store, session codec and allowlist are required")
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Limiter == nil {
		d.Limiter = auth.NewLoginLimiter(0, 0)
	}
	if d.Health == nil {
		d.Health = func(context.Context) error { return nil }
	}

	pages, err := parsePages()
	if err != nil {
		return nil, err
	}

	return &Server{
		store:   d.Store,
		health:  d.Health,
		codec:   d.Codec,
		users:   d.Users,
		limiter: d.Limiter,
		options: newFormOptions(d.Journal),
		log:     d.Logger.Named("web"),
		pages:   pages,
	}, nil
}

func parsePages() (map[string]*template.Template, error) {
	pages := map[string]*template.Template{}
	for _, name := range []string{"login", "dashboard", "error"} {
		t, err := template.New("layout.html").Funcs(templateFuncs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}

// Handler returns the routed handler with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(requestID, s.loadSession, s.accessLog, s.recoverer)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/login", s.handleLoginPage).Methods(http.MethodGet)
	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)

	app := r.NewRoute().Subrouter()
	app.Use(requireSession)
	app.HandleFunc("/", s.handleDashboard).Methods(http.MethodGet)
	app.HandleFunc("/trades", s.handleAddTrade).Methods(http.MethodPost)
	app.HandleFunc("/accounts", s.handleAddAccount).Methods(http.MethodPost)
	app.HandleFunc("/accounts/delete", s.handleDeleteAccount).Methods(http.MethodPost)
	app.HandleFunc("/api/dashboard", s.handleDashboardAPI).Methods(http.MethodGet)

	return r
}
