package config

import (
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/dmitrijs2005/vcalc/internal/common"
)

// Config holds runtime settings for the vcalc client.
//
// Fields:
//   - ServerEndpointAddr: host:port of the server.
//   - Login: login sent in the handshake.
//   - Timeout: bound on each network operation.
type Config struct {
	ServerEndpointAddr string
	Login              string
	Timeout            time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = fmt.Sprintf("127.0.0.1:%d", common.DefaultPort)
	c.Login = ""
	c.Timeout = 30 * time.Second
}

// LoadConfig constructs a Config from os.Args: defaults, then JSON (if
// present), then command-line flags. Later sources take precedence.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:])
}

// load ignores everything after "--", which holds the vector operands.
func load(args []string) (*Config, error) {
	if i := slices.Index(args, "--"); i >= 0 {
		args = args[:i]
	}
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
