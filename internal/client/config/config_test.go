package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "127.0.0.1:33333", c.ServerEndpointAddr)
	assert.Empty(t, c.Login)
	assert.Equal(t, 30*time.Second, c.Timeout)
}

func TestLoad_UsesDefaultsWithoutArgs(t *testing.T) {
	cfg, err := load(nil)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:33333", cfg.ServerEndpointAddr)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}

func TestLoad_StopsAtOperands(t *testing.T) {
	cfg, err := load([]string{"-u", "alice", "--", "-t", "1,2"})
	require.NoError(t, err)

	assert.Equal(t, "alice", cfg.Login)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}
