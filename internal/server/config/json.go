package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/vcalc/internal/flagx"
	"github.com/dmitrijs2005/vcalc/internal/timex"
)

// JsonConfig mirrors Config for JSON files. Pointer fields tell an absent
// key from a zero value, so a file only overrides what it names.
type JsonConfig struct {
	EndpointAddr     *string         `json:"endpoint_addr"`
	ClientDBPath     *string         `json:"client_db_path"`
	LogFile          *string         `json:"log_file"`
	LogLevel         *string         `json:"log_level"`
	HandshakeTimeout *timex.Duration `json:"handshake_timeout"`
	VectorTimeout    *timex.Duration `json:"vector_timeout"`
	ShutdownTimeout  *timex.Duration `json:"shutdown_timeout"`
	MaxLoginLength   *int            `json:"max_login_length"`
	MaxSessions      *int            `json:"max_sessions"`
	MaxSessionsPerIP *int            `json:"max_sessions_per_ip"`
	Seed             *string         `json:"seed"`
}

// parseJson loads the file named by -c or -config in args, if any, and
// copies the keys it contains into config.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setIf(&config.EndpointAddr, c.EndpointAddr)
	setIf(&config.ClientDBPath, c.ClientDBPath)
	setIf(&config.LogFile, c.LogFile)
	setIf(&config.LogLevel, c.LogLevel)
	setIf(&config.MaxLoginLength, c.MaxLoginLength)
	setIf(&config.MaxSessions, c.MaxSessions)
	setIf(&config.MaxSessionsPerIP, c.MaxSessionsPerIP)
	setIf(&config.Seed, c.Seed)
	if c.HandshakeTimeout != nil {
		config.HandshakeTimeout = c.HandshakeTimeout.Duration
	}
	if c.VectorTimeout != nil {
		config.VectorTimeout = c.VectorTimeout.Duration
	}
	if c.ShutdownTimeout != nil {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	return nil
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
