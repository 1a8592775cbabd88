package config_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-oauth-simulator/internal/config"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	c := config.New()
	require.Equal(t, 60*time.Second, c.GetAuthCodeTimeout())
	require.Equal(t, 15*time.Second, c.GetDefaultAccessTokenExpiry())
	require.Equal(t, "profile:read", c.GetRequiredScope())
	require.Equal(t, "https://auth.example", c.GetIssuer())
}

func TestTickInterval(t *testing.T) {
	t.Setenv("TICK_INTERVAL", "2s")
	require.Equal(t, 2*time.Second, config.New().GetTickInterval())

	t.Setenv("TICK_INTERVAL", "nonsense")
	require.Equal(t, 500*time.Millisecond, config.New().GetTickInterval())
}

func TestGetEnv(t *testing.T) {
	t.Setenv("FIXTURES_FILE", "")
	require.Equal(t, "fallback", config.GetEnv("FIXTURES_FILE", "fallback"))

	t.Setenv("FIXTURES_FILE", "creds.yaml")
	require.Equal(t, "creds.yaml", config.New().GetFixturesFile())
}
