// Package config handles configuration for the server component,
// including defaults, environment and .env overlay, JSON overlay, and
// command-line flags.
//
// Sources are applied in this order, later ones winning:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. VCALC_* environment variables, with a .env file in the working
//     directory loaded first when present.
//  3. Optional JSON file selected with -c or -config.
//  4. Command-line flags.
//
// Supported flags
//
//	-a string   address and port to listen on (":33333")
//	-d string   client database file
//	-l string   log file, appended to in addition to stderr
//	-v string   log level: debug, info, warn, error
//	-ht int     handshake read timeout (seconds)
//	-vt int     vector read timeout (seconds)
//	-st int     shutdown wait for running sessions (seconds)
//	-m int      longest accepted login
//	-n int      concurrent session limit, 0 for unlimited
//	-i int      concurrent sessions per client IP, 0 for unlimited
//	-seed string  login:secret used when the client database cannot be loaded
//
// # JSON schema
//
// Durations use timex.Duration, so values can be strings like "5s" or
// integer nanoseconds:
//
//	{
//	  "endpoint_addr": ":33333",
//	  "client_db_path": "/etc/vcalc.conf",
//	  "handshake_timeout": "5s",
//	  "max_sessions": 100
//	}
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/vcalc/internal/common"
	"github.com/dmitrijs2005/vcalc/internal/logging"
	"github.com/dmitrijs2005/vcalc/internal/server/credentials"
)

// Config holds runtime settings for the vcalc server.
//
// Fields:
//   - EndpointAddr: TCP bind address.
//   - ClientDBPath: login:secret file read at startup.
//   - LogFile / LogLevel: optional log file and minimum level.
//   - HandshakeTimeout / VectorTimeout: per-read bounds for each phase.
//   - ShutdownTimeout: how long stop waits for sessions before abandoning them.
//   - MaxLoginLength: longer logins are rejected.
//   - MaxSessions / MaxSessionsPerIP: concurrency limits, 0 for unlimited.
//   - Seed: login:secret installed when the client database fails to load.
type Config struct {
	EndpointAddr     string
	ClientDBPath     string
	LogFile          string
	LogLevel         string
	HandshakeTimeout time.Duration
	VectorTimeout    time.Duration
	ShutdownTimeout  time.Duration
	MaxLoginLength   int
	MaxSessions      int
	MaxSessionsPerIP int
	Seed             string
}

// LoadDefaults populates Config with the stock service settings.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = fmt.Sprintf(":%d", common.DefaultPort)
	c.ClientDBPath = "/etc/vcalc.conf"
	c.LogFile = ""
	c.LogLevel = "info"
	c.HandshakeTimeout = 5 * time.Second
	c.VectorTimeout = 30 * time.Second
	c.ShutdownTimeout = 10 * time.Second
	c.MaxLoginLength = 32
	c.MaxSessions = 0
	c.MaxSessionsPerIP = 0
	c.Seed = ""
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	var errs []error
	if c.EndpointAddr == "" {
		errs = append(errs, errors.New("endpoint address is empty"))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.HandshakeTimeout <= 0 {
		errs = append(errs, fmt.Errorf("handshake timeout must be positive, got %s", c.HandshakeTimeout))
	}
	if c.VectorTimeout <= 0 {
		errs = append(errs, fmt.Errorf("vector timeout must be positive, got %s", c.VectorTimeout))
	}
	if c.ShutdownTimeout < 0 {
		errs = append(errs, fmt.Errorf("shutdown timeout must not be negative, got %s", c.ShutdownTimeout))
	}
	if c.MaxLoginLength <= 0 {
		errs = append(errs, fmt.Errorf("max login length must be positive, got %d", c.MaxLoginLength))
	}
	if c.MaxSessions < 0 || c.MaxSessionsPerIP < 0 {
		errs = append(errs, errors.New("session limits must not be negative"))
	}
	if c.Seed != "" {
		if _, err := credentials.ParseCredential(c.Seed); err != nil {
			errs = append(errs, fmt.Errorf("seed: %w", err))
		}
	}
	return errors.Join(errs...)
}

// LoadConfig builds a Config by applying defaults, then overlaying the
// environment, an optional JSON file and finally command-line flags from
// os.Args.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:], dotEnvFile)
}

// ClientDBPath resolves the client database path through the same default,
// .env, environment and JSON file layers as LoadConfig. configPath may be
// empty.
func ClientDBPath(configPath string) (string, error) {
	return clientDBPath(configPath, dotEnvFile)
}

func clientDBPath(configPath, envFile string) (string, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseEnv(cfg, envFile); err != nil {
		return "", err
	}
	if configPath != "" {
		if err := parseJson(cfg, []string{"-c", configPath}); err != nil {
			return "", err
		}
	}
	return cfg.ClientDBPath, nil
}

func load(args []string, envFile string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseEnv(cfg, envFile); err != nil {
		return nil, err
	}
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
