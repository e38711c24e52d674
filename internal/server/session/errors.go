package session

import "errors"

// ErrRejected is returned by Run when the handshake fails. The client has
// been sent "ERR".
var ErrRejected = errors.New("handshake rejected")

// errEmptyToken is returned when a handshake read yields only blanks.
var errEmptyToken = errors.New("empty message")
