package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadProductionDoesNotFallBackToDevSecret(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "")

	cfg := Load()
	require.Empty(t, cfg.JWTSecret, "production must never inherit the dev placeholder secret")
}

func TestLoadDevSecretFallback(t *testing.T) {
	t.Setenv("ENV", "dev")
	t.Setenv("JWT_SECRET", "")

	cfg := Load()
	require.Equal(t, "dev-secret", cfg.JWTSecret)
}

func TestLoadKeepsConfiguredSecret(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "super-secret")

	cfg := Load()
	require.Equal(t, "super-secret", cfg.JWTSecret)
}

func TestNormalizeEnv(t *testing.T) {
	cases := map[string]string{
		"production":  "production",
		"Prod":        "production",
		"staging":     "staging",
		"local":       "local",
		"development": "dev",
		"":            "dev",
		"weird":       "dev",
	}
	for raw, want := range cases {
		require.Equal(t, want, normalizeEnv(raw), "normalizeEnv(%q)", raw)
	}
}
