package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const dotEnvFile = ".env"

// Environment variable names.
const (
	EnvAddr             = "VCALC_ADDR"
	EnvClientDB         = "VCALC_CLIENT_DB"
	EnvLogFile          = "VCALC_LOG_FILE"
	EnvLogLevel         = "VCALC_LOG_LEVEL"
	EnvHandshakeTimeout = "VCALC_HANDSHAKE_TIMEOUT"
	EnvVectorTimeout    = "VCALC_VECTOR_TIMEOUT"
	EnvShutdownTimeout  = "VCALC_SHUTDOWN_TIMEOUT"
	EnvMaxLoginLength   = "VCALC_MAX_LOGIN_LENGTH"
	EnvMaxSessions      = "VCALC_MAX_SESSIONS"
	EnvMaxSessionsPerIP = "VCALC_MAX_SESSIONS_PER_IP"
	EnvSeed             = "VCALC_SEED"
)

// parseEnv loads envFile into the process environment, without replacing
// variables that are already set, and then copies every VCALC_* variable
// that is present into config. A missing envFile is not an error.
func parseEnv(config *Config, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	lookupString(EnvAddr, &config.EndpointAddr)
	lookupString(EnvClientDB, &config.ClientDBPath)
	lookupString(EnvLogFile, &config.LogFile)
	lookupString(EnvLogLevel, &config.LogLevel)
	lookupString(EnvSeed, &config.Seed)

	var errs []error
	errs = append(errs,
		lookupDuration(EnvHandshakeTimeout, &config.HandshakeTimeout),
		lookupDuration(EnvVectorTimeout, &config.VectorTimeout),
		lookupDuration(EnvShutdownTimeout, &config.ShutdownTimeout),
		lookupInt(EnvMaxLoginLength, &config.MaxLoginLength),
		lookupInt(EnvMaxSessions, &config.MaxSessions),
		lookupInt(EnvMaxSessionsPerIP, &config.MaxSessionsPerIP),
	)
	return errors.Join(errs...)
}

func lookupString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func lookupInt(key string, dst *int) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

// lookupDuration accepts time.ParseDuration syntax or a bare number of
// seconds, matching the command-line flags.
func lookupDuration(key string, dst *time.Duration) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	v = strings.TrimSpace(v)
	if n, err := strconv.Atoi(v); err == nil {
		*dst = time.Duration(n) * time.Second
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}
