package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/geocoder89/coursehub/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("APP_ENV", "")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, config.EnvProduction, cfg.Env)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, 2160*time.Hour, cfg.JWTExpiresIn)
	assert.Equal(t, 90, cfg.JWTCookieExpiresIn)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.False(t, cfg.IsDevelopment())
	assert.False(t, cfg.TransactionsRequireAuth)
}

func TestLoad_ReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.env")

	content := "JWT_SECRET=from-file\nAPP_ENV=development\nJWT_EXPIRES_IN=7d\nSTORE=memory\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	// godotenv never overrides existing vars, so make sure these are unset
	for _, k := range []string{"JWT_SECRET", "APP_ENV", "JWT_EXPIRES_IN", "STORE"} {
		old, had := os.LookupEnv(k)
		require.NoError(t, os.Unsetenv(k))
		t.Cleanup(func() {
			if had {
				_ = os.Setenv(k, old)
			} else {
				_ = os.Unsetenv(k)
			}
		})
	}

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 7*24*time.Hour, cfg.JWTExpiresIn)
	assert.Equal(t, config.StoreMemory, cfg.Store)
}

func TestLoad_BadExpiresInFails(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("JWT_EXPIRES_IN", "ninety days")

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorContains(t, err, "JWT_EXPIRES_IN")
}

func TestParseDuration(t *testing.T) {
	tests := map[string]time.Duration{
		"90d":   90 * 24 * time.Hour,
		" 1d ":  24 * time.Hour,
		"2160h": 2160 * time.Hour,
		"15m":   15 * time.Minute,
	}
	for in, want := range tests {
		got, err := config.ParseDuration(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"d", "1.5d", "soon"} {
		_, err := config.ParseDuration(in)
		assert.Error(t, err, in)
	}
}

func TestLoad_MissingSecretFails(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := config.Config{
		JWTSecret:          "s",
		JWTExpiresIn:       time.Hour,
		JWTCookieExpiresIn: 1,
		Store:              config.StoreMemory,
	}
	assert.NoError(t, base.Validate())

	noTTL := base
	noTTL.JWTExpiresIn = 0
	assert.Error(t, noTTL.Validate())

	badStore := base
	badStore.Store = "mongo"
	assert.Error(t, badStore.Validate())
}

func TestDatabaseURL(t *testing.T) {
	cfg := config.Config{
		DBUser:     "u",
		DBPassword: "p",
		DBHost:     "db",
		DBPort:     "5432",
		DBName:     "n",
		DBSSLMode:  "disable",
	}
	assert.Equal(t, "postgres://u:p@db:5432/n?sslmode=disable", cfg.DatabaseURL())

	cfg.DBURL = "postgres://override"
	assert.Equal(t, "postgres://override", cfg.DatabaseURL())
}

func TestCookieTTL(t *testing.T) {
	cfg := config.Config{JWTCookieExpiresIn: 2}
	assert.Equal(t, 48*time.Hour, cfg.CookieTTL())
}
