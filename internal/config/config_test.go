package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"BOUNDED_CONTEXT_HOST", "BOUNDED_CONTEXT_PORT", "BOUNDED_CONTEXT_TIMEOUT",
		"USE_WU_PALMER", "LISTEN_ADDR", "PORT", "METRICS_PROMETHEUS", "LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "http://127.0.0.1:8080/", cfg.BoundedContextURL())
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOUNDED_CONTEXT_HOST", "bc.internal")
	t.Setenv("BOUNDED_CONTEXT_PORT", "9000")
	t.Setenv("BOUNDED_CONTEXT_TIMEOUT", "45")
	t.Setenv("USE_WU_PALMER", "true")
	t.Setenv("PORT", "9090")
	t.Setenv("METRICS_PROMETHEUS", "1")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "http://bc.internal:9000/", cfg.BoundedContextURL())
	assert.Equal(t, 45*time.Second, cfg.BoundedContextTimeout)
	assert.True(t, cfg.UseWuPalmer)
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.True(t, cfg.MetricsEnabled)
	assert.Equal(t, "debug", cfg.LogLevel)

	bc := cfg.BoundedContext()
	assert.Equal(t, "bc.internal", bc.Host)
	assert.Equal(t, 9000, bc.Port)
}

func TestFromEnvListenAddrWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("LISTEN_ADDR", "0.0.0.0:7000")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:7000", cfg.ListenAddr)
}

func TestFromEnvInvalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"BOUNDED_CONTEXT_PORT", "http"},
		{"BOUNDED_CONTEXT_PORT", "70000"},
		{"BOUNDED_CONTEXT_TIMEOUT", "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestParseTimeout(t *testing.T) {
	d, err := ParseTimeout("1m30s")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d)

	d, err = ParseTimeout("5")
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, d)

	_, err = ParseTimeout("")
	assert.Error(t, err)
}
