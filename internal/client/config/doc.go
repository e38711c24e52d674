// Package config loads runtime configuration for the vcalc client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   address:port of the vcalc server
//	-u string   login
//	-t int      per-operation timeout (seconds), 0 for none
//
// # JSON schema
//
// The JSON loader uses timex.Duration for the timeout, so it can be either
// a string like "30s" or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:33333",
//	  "login": "alice",
//	  "timeout": "30s"
//	}
//
// The secret is never read from configuration; the client prompts for it.
package config
