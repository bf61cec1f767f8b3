package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"trading-journal/internal/config"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ConnectionError reports that the store could not be reached.
// It is fatal at start-up and surfaced as a blocking message during a request.
type ConnectionError struct {
	Driver string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("database connection error (%s): %v", e.Driver, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// sqliteParams make concurrent writers wait for the file lock instead of failing with
// "database is locked". An explicit value in the configured DSN wins.
var sqliteParams = []struct{ key, value string }{
	{"_busy_timeout", "5000"},
	{"_txlock", "immediate"},
}

func sqliteDSN(dsn string) string {
	for _, p := range sqliteParams {
		if strings.Contains(dsn, p.key+"=") {
			continue
		}
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + p.key + "=" + p.value
	}
	return dsn
}

// NewDatabase opens the configured store, applies pool limits and checks it answers.
func NewDatabase(cfg *config.Database, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "", "sqlite":
		dialector = sqlite.Open(sqliteDSN(cfg.DSN))
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := Open(dialector, log)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, &ConnectionError{Driver: dialector.Name(), Err: err}
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	return db, nil
}

// Open connects through an already built dialector. gorm pings the pool on open.
func Open(dialector gorm.Dialector, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		log.Error("Failed to connect to database", zap.String("driver", dialector.Name()), zap.Error(err))
		return nil, &ConnectionError{Driver: dialector.Name(), Err: err}
	}
	log.Info("Database connection established", zap.String("driver", dialector.Name()))
	return db, nil
}

// Ping checks that the store is still reachable.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return &ConnectionError{Driver: db.Dialector.Name(), Err: err}
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return &ConnectionError{Driver: db.Dialector.Name(), Err: err}
	}
	return nil
}
