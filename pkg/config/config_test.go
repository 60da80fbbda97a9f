package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// baseEnv sets the smallest environment Load accepts.
func baseEnv(t *testing.T) {
	t.Helper()
	for key, value := range map[string]string{
		EnvAppEnv:                 AppEnvProd,
		EnvPort:                   "8081",
		EnvDBDSN:                  "postgres://cafe:pw@localhost:5432/randomcafe?sslmode=disable",
		EnvRedisURL:               "redis://localhost:6379/0",
		EnvJWTSecret:              "secret",
		EnvJWTIssuer:              "randomcafe",
		EnvJWTExpMins:             "30",
		EnvRefreshTokenTTLMinutes: "43200",
	} {
		t.Setenv(key, value)
	}
}

func TestLoadDefaults(t *testing.T) {
	baseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.True(t, cfg.App.IsProd())
	require.False(t, cfg.App.IsDev())
	require.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	require.Equal(t, 2*time.Hour, cfg.Session.IdleTimeout)
	require.Equal(t, 5*time.Minute, cfg.Content.CacheTTL)
	require.Equal(t, 30*24*time.Hour, cfg.JWT.RefreshTokenTTL())
	require.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.CORS.AllowedOrigins)
	require.Equal(t, "json", cfg.App.LogFormat)
}

func TestLoadOverrides(t *testing.T) {
	baseEnv(t)
	t.Setenv(EnvCORSAllowedOrigins, "https://randomcafe.example")
	t.Setenv(EnvSessionIdleTimeout, "45m")
	t.Setenv(EnvBootstrapAdminEmail, "owner@randomcafe.example")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, []string{"https://randomcafe.example"}, cfg.CORS.AllowedOrigins)
	require.Equal(t, 45*time.Minute, cfg.Session.IdleTimeout)
	require.Equal(t, "owner@randomcafe.example", cfg.Bootstrap.AdminEmail)
}

func TestLoadRejects(t *testing.T) {
	cases := map[string]func(t *testing.T){
		"missing app env":          func(t *testing.T) { require.NoError(t, os.Unsetenv(EnvAppEnv)) },
		"no dsn and no host parts": func(t *testing.T) { t.Setenv(EnvDBDSN, "") },
		"malformed duration":       func(t *testing.T) { t.Setenv(EnvSessionIdleTimeout, "soon") },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			baseEnv(t)
			mutate(t)
			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestLoadDSN(t *testing.T) {
	t.Run("built from parts", func(t *testing.T) {
		baseEnv(t)
		t.Setenv(EnvDBDSN, "")
		t.Setenv(EnvDBHost, "db.internal")
		t.Setenv(EnvDBUser, "cafe")
		t.Setenv(EnvDBName, "cafe")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, "postgres://cafe@db.internal:5432/cafe?sslmode=disable", cfg.DB.DSN)
	})
	t.Run("sqlite falls back to a local file", func(t *testing.T) {
		baseEnv(t)
		t.Setenv(EnvDBDSN, "")
		t.Setenv(EnvDBDriver, "sqlite")

		cfg, err := Load()
		require.NoError(t, err)
		require.True(t, cfg.DB.IsSQLite())
		require.Equal(t, defaultSQLiteDSN, cfg.DB.DSN)
	})
}
