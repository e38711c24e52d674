package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/vcalc/internal/flagx"
)

// parseFlags overrides config with the server flags found in args. Other
// arguments, such as -c, are filtered out first with flagx.FilterArgs.
// Timeout flags are whole seconds.
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.ClientDBPath, "d", config.ClientDBPath, "client database file")
	fs.StringVar(&config.LogFile, "l", config.LogFile, "log file")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level (debug, info, warn, error)")

	handshakeTimeout := fs.Int("ht", int(config.HandshakeTimeout.Seconds()), "handshake timeout (in seconds)")
	vectorTimeout := fs.Int("vt", int(config.VectorTimeout.Seconds()), "vector timeout (in seconds)")
	shutdownTimeout := fs.Int("st", int(config.ShutdownTimeout.Seconds()), "shutdown timeout (in seconds)")

	fs.IntVar(&config.MaxLoginLength, "m", config.MaxLoginLength, "max login length")
	fs.IntVar(&config.MaxSessions, "n", config.MaxSessions, "max concurrent sessions, 0 for unlimited")
	fs.IntVar(&config.MaxSessionsPerIP, "i", config.MaxSessionsPerIP, "max concurrent sessions per IP, 0 for unlimited")
	fs.StringVar(&config.Seed, "seed", config.Seed, "login:secret used when the client database cannot be loaded")

	if err := fs.Parse(flagx.FilterArgs(args, flagx.Names(fs))); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	// only touch durations that were given, so sub-second values from
	// earlier sources survive
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "ht":
			config.HandshakeTimeout = time.Duration(*handshakeTimeout) * time.Second
		case "vt":
			config.VectorTimeout = time.Duration(*vectorTimeout) * time.Second
		case "st":
			config.ShutdownTimeout = time.Duration(*shutdownTimeout) * time.Second
		}
	})
	return nil
}
