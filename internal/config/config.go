package config

import (
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const redacted = "<redacted>"

// Config holds all configuration for the application.
type Config struct {
	Server   Server   `mapstructure:"server" yaml:"server"`
	Database Database `mapstructure:"database" yaml:"database"`
	Logger   Logger   `mapstructure:"logger" yaml:"logger"`
	Auth     Auth     `mapstructure:"auth" yaml:"auth"`
	Tracing  Tracing  `mapstructure:"tracing" yaml:"tracing"`
	Journal  Journal  `mapstructure:"journal" yaml:"journal"`
}

// Server holds the configuration for the web server.
type Server struct {
	Port            int           `mapstructure:"port" yaml:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// Database holds the configuration for the database.
type Database struct {
	Driver          string        `mapstructure:"driver" yaml:"driver"` // "sqlite" or "postgres"
	DSN             string        `mapstructure:"dsn" yaml:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" yaml:"conn_max_lifetime"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Auth holds the static credential allowlist and session settings.
// Passwords may be plain text or bcrypt hashes.
type Auth struct {
	Users          map[string]string `mapstructure:"users" yaml:"users"`
	SessionSecret  string            `mapstructure:"session_secret" yaml:"session_secret"`
	SessionTTL     time.Duration     `mapstructure:"session_ttl" yaml:"session_ttl"`
	CookieName     string            `mapstructure:"cookie_name" yaml:"cookie_name"`
	SecureCookie   bool              `mapstructure:"secure_cookie" yaml:"secure_cookie"`
	LoginRateLimit float64           `mapstructure:"login_rate_limit" yaml:"login_rate_limit"` // attempts per second per client
	LoginBurst     int               `mapstructure:"login_burst" yaml:"login_burst"`
}

// Tracing toggles the OpenTelemetry stdout exporter.
type Tracing struct {
	Enabled     bool   `mapstructure:"enabled" yaml:"enabled"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
}

// Journal holds the selectable values of the extensible trade fields.
type Journal struct {
	Symbols []string `mapstructure:"symbols" yaml:"symbols"`
	Setups  []string `mapstructure:"setups" yaml:"setups"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "journal.db")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Hour)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")

	v.SetDefault("auth.session_secret", "")
	v.SetDefault("auth.session_ttl", 12*time.Hour)
	v.SetDefault("auth.cookie_name", "journal_session")
	v.SetDefault("auth.login_rate_limit", 0.2) // one attempt every 5s after the burst
	v.SetDefault("auth.login_burst", 5)
	v.SetDefault("auth.secure_cookie", false)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "trading-journal")

	v.SetDefault("journal.symbols", []string{"XAUUSD", "USDJPY", "EURUSD", "GBPUSD", "Other"})
	v.SetDefault("journal.setups", []string{
		"BO strat (BR)",
		"BO strat (Retest)",
		"PA strat",
		"CSO strat",
		"No Setup / Impulse",
	})
}

// LoadConfig reads configuration from file or environment variables.
// A missing config file is not an error; defaults and the environment apply.
func LoadConfig(path string) (config Config, err error) {
	// .env is optional
	_ = godotenv.Load(filepath.Join(path, ".env"))

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return
		}
		err = nil
	}

	err = v.Unmarshal(&config)
	return
}

// Redacted returns a copy safe to print: passwords and the session secret are masked.
func (c Config) Redacted() Config {
	out := c
	if c.Auth.SessionSecret != "" {
		out.Auth.SessionSecret = redacted
	}
	out.Auth.Users = make(map[string]string, len(c.Auth.Users))
	for user := range c.Auth.Users {
		out.Auth.Users[user] = redacted
	}
	return out
}

// Template returns a copy with no credentials, suitable as a starting config file.
func (c Config) Template() Config {
	out := c
	out.Auth.Users = map[string]string{}
	out.Auth.SessionSecret = ""
	return out
}

// Marshal renders c in the config.yml format LoadConfig reads.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
