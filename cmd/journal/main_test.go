package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"trading-journal/internal/auth"
	"trading-journal/internal/config"
	"trading-journal/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, dsn string) string {
	t.Helper()
	dir := t.TempDir()
	content := "database:\n  driver: sqlite\n  dsn: " + dsn + "\nlogger:\n  level: error\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(content), 0o600))
	return dir
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "journal version dev\n", out)
}

func TestHashPasswordCmd(t *testing.T) {
	testCases := []struct {
		name  string
		stdin string
		args  []string
	}{
		{name: "Argument", args: []string{"hash-password", "s3cret"}},
		{name: "Stdin", stdin: "s3cret\n", args: []string{"hash-password"}},
		{name: "Stdin without newline", stdin: "s3cret", args: []string{"hash-password"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := execute(t, tc.stdin, tc.args...)
			require.NoError(t, err)

			hash := strings.TrimSpace(out)
			assert.True(t, strings.HasPrefix(hash, "$2"))
			user, err := auth.NewAllowlist(map[string]string{"alice": hash}).Authenticate("alice", "s3cret")
			require.NoError(t, err)
			assert.Equal(t, "alice", user)
		})
	}

	_, err := execute(t, "", "hash-password")
	assert.Error(t, err)
}

func TestMigrateCmd(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "journal.db")
	dir := writeConfig(t, dsn)

	_, err := execute(t, "", "migrate", "--config", dir)
	require.NoError(t, err)

	db, err := database.NewDatabase(&config.Database{Driver: "sqlite", DSN: dsn}, zap.NewNop())
	require.NoError(t, err)
	defer closeDatabase(db, zap.NewNop())
	assert.True(t, db.Migrator().HasTable("accounts"))
	assert.True(t, db.Migrator().HasColumn("trades", "quantity"))
}

func TestMigrateCmd_BadConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte("database: [unterminated"), 0o600))

	_, err := execute(t, "", "migrate", "--config", dir)
	assert.Error(t, err)
}

func TestNewHTTPServer(t *testing.T) {
	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)
	cfg.Database.DSN = filepath.Join(t.TempDir(), "journal.db")
	cfg.Server.Port = 9090

	db, err := database.NewDatabase(&cfg.Database, zap.NewNop())
	require.NoError(t, err)
	defer closeDatabase(db, zap.NewNop())
	require.NoError(t, database.Migrate(db, zap.NewNop()))

	srv, err := newHTTPServer(cfg, db, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, ":9090", srv.Addr)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestNewHTTPServer_ShortSecret(t *testing.T) {
	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)
	cfg.Auth.SessionSecret = "short"

	_, err = newHTTPServer(cfg, nil, zap.NewNop())
	assert.Error(t, err)
}

func TestConfigCmd(t *testing.T) {
	dir := t.TempDir()
	content := "auth:\n  session_secret: do-not-print-me\n  users:\n    alice: wonderland\nlogger:\n  level: error\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(content), 0o600))

	out, err := execute(t, "", "config", "show", "--config", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "alice: <redacted>")
	assert.NotContains(t, out, "do-not-print-me")
	assert.NotContains(t, out, "wonderland")

	target := filepath.Join(t.TempDir(), "config.yml")
	out, err = execute(t, "", "config", "init", "--config", t.TempDir(), "-o", target)
	require.NoError(t, err)
	assert.Contains(t, out, "Created")

	cfg, err := config.LoadConfig(filepath.Dir(target))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)

	_, err = execute(t, "", "config", "init", "--config", t.TempDir(), "-o", target)
	assert.Error(t, err, "existing files are not overwritten")
}

func TestConfigInit_WritesNoCredentials(t *testing.T) {
	dir := t.TempDir()
	content := "auth:\n  session_secret: do-not-print-me\n  users:\n    alice: wonderland\nserver:\n  port: 9090\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(content), 0o600))

	target := filepath.Join(t.TempDir(), "config.yml")
	_, err := execute(t, "", "config", "init", "--config", dir, "-o", target)
	require.NoError(t, err)

	raw, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "<redacted>")
	assert.NotContains(t, string(raw), "alice")
	assert.NotContains(t, string(raw), "wonderland")
	assert.NotContains(t, string(raw), "do-not-print-me")

	cfg, err := config.LoadConfig(filepath.Dir(target))
	require.NoError(t, err)
	assert.Empty(t, cfg.Auth.Users)
	assert.Empty(t, cfg.Auth.SessionSecret)
	assert.Equal(t, 9090, cfg.Server.Port, "non-secret settings carry over")
}
