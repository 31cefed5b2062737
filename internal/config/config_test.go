package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CHAMA_CONFIG", "")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "0 1 * * *", cfg.SweepSchedule)
	assert.Equal(t, 30, cfg.LoanTermDays)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.False(t, cfg.SMTP.Enabled())
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "chama.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 9090
db_path: /var/lib/chama/chama.db
jwt_secret: from-file
token_ttl: 2h
log_format: json
smtp:
  host: smtp.example.com
  from: chama@example.com
`), 0o600))

	t.Setenv("CHAMA_CONFIG", path)
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("LOAN_TERM_DAYS", "45")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "/var/lib/chama/chama.db", cfg.DBPath)
	assert.Equal(t, "from-env", cfg.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 45, cfg.LoanTermDays)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.True(t, cfg.SMTP.Enabled())
	assert.Equal(t, "smtp.example.com:587", cfg.SMTP.Addr())
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("JWT_SECRET=dotenv-secret\nPORT=7070\n"), 0o600))
	t.Setenv("CHAMA_CONFIG", "")
	// godotenv never overrides variables already set.
	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("JWT_SECRET")
	t.Setenv("PORT", "")
	os.Unsetenv("PORT")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "dotenv-secret", cfg.JWTSecret)
	assert.Equal(t, 7070, cfg.Port)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CHAMA_CONFIG", "")

	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		_, err := Load()
		assert.ErrorContains(t, err, "JWT_SECRET is required")
	})

	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("TOKEN_TTL", "forever")
		_, err := Load()
		assert.ErrorContains(t, err, "invalid TOKEN_TTL")
	})

	t.Run("bad int", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("PORT", "eighty")
		_, err := Load()
		assert.ErrorContains(t, err, "invalid PORT")
	})

	t.Run("unreadable file", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("CHAMA_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
		_, err := Load()
		assert.ErrorContains(t, err, "failed to read config file")
	})
}
