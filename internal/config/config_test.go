package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "journal.db", cfg.Database.DSN)
	assert.Equal(t, 12*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, "journal_session", cfg.Auth.CookieName)
	assert.Equal(t, []string{"XAUUSD", "USDJPY", "EURUSD", "GBPUSD", "Other"}, cfg.Journal.Symbols)
	assert.Len(t, cfg.Journal.Setups, 5)
	assert.False(t, cfg.Tracing.Enabled)
}

func TestLoadConfig_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	content := `
server:
  port: 9090
database:
  driver: postgres
  dsn: postgres://journal@localhost/journal
logger:
  level: debug
  format: json
auth:
  session_secret: s3cret
  users:
    trader: hunter2
journal:
  symbols: [NAS100, US30]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(content), 0o644))
	t.Setenv("SERVER_PORT", "7070")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.Equal(t, "s3cret", cfg.Auth.SessionSecret)
	assert.Equal(t, map[string]string{"trader": "hunter2"}, cfg.Auth.Users)
	assert.Equal(t, []string{"NAS100", "US30"}, cfg.Journal.Symbols)
}

func TestLoadConfig_EnvWithoutFile(t *testing.T) {
	t.Setenv("AUTH_SESSION_SECRET", "env-session-secret-0123456789")
	t.Setenv("AUTH_SECURE_COOKIE", "true")
	t.Setenv("TRACING_ENABLED", "true")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "env-session-secret-0123456789", cfg.Auth.SessionSecret)
	assert.True(t, cfg.Auth.SecureCookie)
	assert.True(t, cfg.Tracing.Enabled)
}

func TestLoadConfig_DotEnvWithoutFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("AUTH_SESSION_SECRET=dotenv-session-secret-0123\n"), 0o600))
	// godotenv sets the variable for the whole process; restore it afterwards.
	t.Setenv("AUTH_SESSION_SECRET", "")
	require.NoError(t, os.Unsetenv("AUTH_SESSION_SECRET"))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "dotenv-session-secret-0123", cfg.Auth.SessionSecret)
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte("server: [port"), 0o644))

	_, err := LoadConfig(dir)
	assert.Error(t, err)
}

func TestConfig_Template(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	cfg.Auth.SessionSecret = "super-secret-value"
	cfg.Auth.Users = map[string]string{"alice": "wonderland"}

	tmpl := cfg.Template()

	assert.Empty(t, tmpl.Auth.Users)
	assert.NotNil(t, tmpl.Auth.Users)
	assert.Empty(t, tmpl.Auth.SessionSecret)
	assert.Equal(t, cfg.Server, tmpl.Server)
	assert.Equal(t, "wonderland", cfg.Auth.Users["alice"], "receiver is untouched")
}

func TestConfig_RedactedMarshalRoundTrip(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	cfg.Auth.SessionSecret = "super-secret-value"
	cfg.Auth.Users = map[string]string{"alice": "wonderland"}

	out, err := cfg.Redacted().Marshal()
	require.NoError(t, err)
	text := string(out)
	assert.NotContains(t, text, "super-secret-value")
	assert.NotContains(t, text, "wonderland")
	assert.Contains(t, text, "read_timeout: 15s")
	assert.Equal(t, "wonderland", cfg.Auth.Users["alice"], "receiver is untouched")

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), out, 0o600))
	reloaded, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, cfg.Server, reloaded.Server)
	assert.Equal(t, cfg.Journal, reloaded.Journal)
	assert.Equal(t, redacted, reloaded.Auth.Users["alice"])
}
