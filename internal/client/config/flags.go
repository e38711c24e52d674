package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/vcalc/internal/flagx"
)

// parseFlags populates cfg from the client flags in args. Everything else
// in args, including the vector operands, is left for the caller.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.Login, "u", cfg.Login, "login")
	timeout := fs.Int("t", int(cfg.Timeout.Seconds()), "timeout (in seconds)")

	if err := fs.Parse(flagx.FilterArgs(args, flagx.Names(fs))); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			cfg.Timeout = time.Duration(*timeout) * time.Second
		}
	})
	return nil
}
