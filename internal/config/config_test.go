package config

import (
	"context"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "auto", cfg.Database.Driver)
	assert.Equal(t, "memory", cfg.Realtime.Mode)
	assert.Equal(t, "USD", cfg.Pricing.Currency)
	assert.Equal(t, 35.0, cfg.Pricing.Markups["agent"])
	assert.Equal(t, 50.0, cfg.Pricing.Markups["sales"])
	assert.Equal(t, 12*time.Hour, cfg.Auth.TokenTTLDuration())
	assert.Equal(t, time.Hour, cfg.Auth.PasswordResetTTLDuration())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, "redis:6379", cfg.Realtime.RedisAddr)
}

func TestDatabaseConfig_ResolvedDriver(t *testing.T) {
	tests := []struct {
		name     string
		cfg      DatabaseConfig
		expected string
	}{
		{"explicit postgres", DatabaseConfig{Driver: "postgres"}, "postgres"},
		{"explicit sqlite ignores host", DatabaseConfig{Driver: "sqlite", Host: "db"}, "sqlite"},
		{"auto without host falls back locally", DatabaseConfig{Driver: "auto"}, "sqlite"},
		{"auto with host is remote", DatabaseConfig{Driver: "auto", Host: "db.internal"}, "postgres"},
		{"empty driver behaves like auto", DatabaseConfig{Host: "db"}, "postgres"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.cfg.ResolvedDriver())
		})
	}
}

func TestValidate(t *testing.T) {
	t.Run("development gets a fallback secret", func(t *testing.T) {
		cfg := &Config{App: AppConfig{Environment: "development"}}
		require.NoError(t, cfg.validate())
		assert.NotEmpty(t, cfg.Auth.JWTSecret)
	})

	t.Run("production requires a secret", func(t *testing.T) {
		cfg := &Config{App: AppConfig{Environment: "production"}}
		assert.Error(t, cfg.validate())
	})

	t.Run("redis mode requires an address", func(t *testing.T) {
		cfg := &Config{Auth: AuthConfig{JWTSecret: "x"}, Realtime: RealtimeConfig{Mode: "redis"}}
		assert.Error(t, cfg.validate())
	})
}

type fakeSecrets map[string]string

func (f fakeSecrets) GetSecretOrEnv(_ context.Context, secretName, _ string) (string, error) {
	if v, ok := f[secretName]; ok {
		return v, nil
	}
	return "", errors.New("not found")
}

func TestApplySecrets(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{Host: "localhost", User: "keep"}}
	src := fakeSecrets{
		"POSTGRES-MAIN-HOST": "pg.example.net",
		"jwt-signing-secret": "vault-secret",
		"redis-password":     "redis-pass",
	}

	applySecrets(context.Background(), cfg, src, zap.NewNop())

	assert.Equal(t, "pg.example.net", cfg.Database.Host)
	assert.Equal(t, "keep", cfg.Database.User, "unresolved secrets keep the configured value")
	assert.Equal(t, "vault-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, "redis-pass", cfg.Realtime.RedisPassword)
}

func TestJobsConfig_Location(t *testing.T) {
	assert.Equal(t, time.UTC, (&JobsConfig{}).Location())
	assert.Equal(t, time.UTC, (&JobsConfig{Timezone: "Not/AZone"}).Location())
	assert.Equal(t, "Asia/Makassar", (&JobsConfig{Timezone: "Asia/Makassar"}).Location().String())
}
