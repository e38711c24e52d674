// Package common contains protocol constants and sentinel errors shared by
// the vcalc server, client and admin tool.
package common

// Handshake markers. Neither is newline terminated.
const (
	MarkerError = "ERR"
	MarkerOK    = "OK"
)

// DefaultPort is the TCP port the server listens on unless configured.
const DefaultPort = 33333
