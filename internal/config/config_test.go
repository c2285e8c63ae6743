package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.RunAddr)
	assert.Equal(t, "user-data", cfg.DataDir)
	assert.Equal(t, ".", cfg.ContentDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "", cfg.DatabaseDSN)
	assert.Equal(t, 10*time.Second, cfg.DBConnectionTimeout)
}

func TestEnvOverridesDefaults(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", ":7000")
	t.Setenv("DATA_DIR", "records")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATABASE_DSN", "host=localhost dbname=coursetrack")

	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.RunAddr)
	assert.Equal(t, "records", cfg.DataDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "host=localhost dbname=coursetrack", cfg.DatabaseDSN)
}

// A bare PORT (the way hosting platforms hand over the listen port)
// beats both the default and SERVER_ADDRESS.
func TestPortEnvBuildsRunAddr(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", ":7000")
	t.Setenv("PORT", "8123")

	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, ":8123", cfg.RunAddr)
}

func TestInvalidLogLevelIsRejected(t *testing.T) {
	t.Setenv("LOG_LEVEL", "verbose")

	_, err := New(WithDisableFlagsParsing(true))
	assert.Error(t, err)
}

func TestInvalidRunAddrIsRejected(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", "not an address")

	_, err := New(WithDisableFlagsParsing(true))
	assert.Error(t, err)
}
