package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"trading-journal/internal/auth"
	"trading-journal/internal/config"
	"trading-journal/internal/database"
	"trading-journal/internal/journal"
	"trading-journal/internal/trace"
	"trading-journal/internal/web"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the journal web dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func runServe(ctx context.Context, opts *rootOptions) error {
	cfg, log, err := opts.bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()
	log.Info("Configuration loaded", zap.String("dir", opts.configDir))

	shutdownTracing, err := trace.Init(cfg.Tracing, os.Stdout)
	if err != nil {
		log.Error("Failed to initialize tracing", zap.Error(err))
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn("Failed to flush traces", zap.Error(err))
		}
	}()

	db, err := database.NewDatabase(&cfg.Database, log)
	if err != nil {
		log.Error("Failed to connect to database", zap.Error(err))
		return err
	}
	defer closeDatabase(db, log)

	if err := database.Migrate(db, log); err != nil {
		log.Error("Migration failed", zap.Error(err))
		return err
	}
	log.Info("Database connection successful and schema migrated.")

	srv, err := newHTTPServer(cfg, db, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting web server", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("Web server failed", zap.Error(err))
		}
		return err
	case <-ctx.Done():
	}

	log.Info("Shutdown signal received, gracefully shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return err
	}
	log.Info("Server stopped")
	return nil
}

// newHTTPServer wires the repository, auth gate and dashboard onto db.
func newHTTPServer(cfg config.Config, db *gorm.DB, log *zap.Logger) (*http.Server, error) {
	secret := cfg.Auth.SessionSecret
	if secret == "" {
		generated, err := randomSecret()
		if err != nil {
			return nil, err
		}
		secret = generated
		log.Warn("auth.session_secret is not set; sessions will not survive a restart")
	}
	codec, err := auth.NewSessionCodec(secret, cfg.Auth.SessionTTL, cfg.Auth.CookieName, cfg.Auth.SecureCookie)
	if err != nil {
		return nil, err
	}

	users := auth.NewAllowlist(cfg.Auth.Users)
	if users.Len() == 0 {
		log.Warn("auth.users is empty; nobody can log in")
	}

	app, err := web.NewServer(web.Deps{
		Store:   journal.NewRepository(db, log),
		Health:  func(ctx context.Context) error { return database.Ping(ctx, db) },
		Codec:   codec,
		Users:   users,
		Limiter: auth.NewLoginLimiter(cfg.Auth.LoginRateLimit, cfg.Auth.LoginBurst),
		Journal: cfg.Journal,
		Logger:  log,
	})
	if err != nil {
		return nil, err
	}

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      app.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, nil
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("could not generate session secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn("Failed to close database", zap.Error(err))
	}
}
