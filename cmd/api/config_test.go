package main

import (
	"flag"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseTestConfig(args ...string) (serverConfig, error) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return parseConfig(fs, args)
}

func Test_ParseConfig_Defaults(t *testing.T) {
	// act
	cfg, err := parseTestConfig()

	// assert
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.port)
	assert.Equal(t, "development", cfg.environment)
	assert.Equal(t, driverPQ, cfg.db.driver)
	assert.Equal(t, 25, cfg.db.maxOpenConns)
	assert.Equal(t, 15*time.Minute, cfg.db.maxIdleTime)
	assert.False(t, cfg.db.migrate)
	assert.True(t, cfg.limiter.enabled)
	assert.Equal(t, "X-Forwarded-User", cfg.auth.header)
	assert.Equal(t, "/", cfg.auth.logoutURL)
}

func Test_ParseConfig_EnvironmentThenFlags(t *testing.T) {
	// arrange
	t.Setenv("CATALOG_PORT", "8080")
	t.Setenv("CATALOG_DB_DRIVER", driverPGX)
	t.Setenv("CATALOG_AUTH_HEADER", "X-Remote-User")
	t.Setenv("CATALOG_LOG_LEVEL", "debug")

	// act
	cfg, err := parseTestConfig("-port", "9090", "-db-migrate")

	// assert
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.port)
	assert.Equal(t, driverPGX, cfg.db.driver)
	assert.Equal(t, "X-Remote-User", cfg.auth.header)
	assert.True(t, cfg.db.migrate)

	level, err := cfg.slogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func Test_ParseConfig_MalformedPortEnvFallsBack(t *testing.T) {
	t.Setenv("CATALOG_PORT", "eighty")

	cfg, err := parseTestConfig()

	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.port)
}

func Test_ParseConfig_RejectsInvalidValues(t *testing.T) {
	testCases := [][]string{
		{"-db-driver", "mysql"},
		{"-log-level", "chatty"},
		{"-auth-header", ""},
		{"-port", "not-a-number"},
	}

	for _, args := range testCases {
		_, err := parseTestConfig(args...)
		assert.Error(t, err, "%v", args)
	}
}
