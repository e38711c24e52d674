package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv(t *testing.T) {
	t.Setenv(EnvAddr, "127.0.0.1:4000")
	t.Setenv(EnvClientDB, "/tmp/clients")
	t.Setenv(EnvLogFile, "/tmp/vcalc.log")
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvHandshakeTimeout, "3")
	t.Setenv(EnvVectorTimeout, "1m")
	t.Setenv(EnvShutdownTimeout, "500ms")
	t.Setenv(EnvMaxLoginLength, "16")
	t.Setenv(EnvMaxSessions, " 50 ")
	t.Setenv(EnvMaxSessionsPerIP, "4")
	t.Setenv(EnvSeed, "admin:pw")

	c := defaults()
	require.NoError(t, parseEnv(&c, ""))

	assert.Equal(t, Config{
		EndpointAddr:     "127.0.0.1:4000",
		ClientDBPath:     "/tmp/clients",
		LogFile:          "/tmp/vcalc.log",
		LogLevel:         "warn",
		HandshakeTimeout: 3 * time.Second,
		VectorTimeout:    time.Minute,
		ShutdownTimeout:  500 * time.Millisecond,
		MaxLoginLength:   16,
		MaxSessions:      50,
		MaxSessionsPerIP: 4,
		Seed:             "admin:pw",
	}, c)
}

func TestParseEnv_Unset(t *testing.T) {
	c := defaults()
	require.NoError(t, parseEnv(&c, filepath.Join(t.TempDir(), "missing.env")))
	assert.Equal(t, defaults(), c)
}

func TestParseEnv_Errors(t *testing.T) {
	t.Setenv(EnvMaxSessions, "lots")
	t.Setenv(EnvVectorTimeout, "forever")

	c := defaults()
	err := parseEnv(&c, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvMaxSessions)
	assert.Contains(t, err.Error(), EnvVectorTimeout)
}

func TestParseEnv_ExistingVariableWinsOverDotEnv(t *testing.T) {
	t.Setenv(EnvLogLevel, "error")

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(EnvLogLevel+"=debug\n"), 0o600))

	c := defaults()
	require.NoError(t, parseEnv(&c, envFile))
	assert.Equal(t, "error", c.LogLevel)
}
