package client

import "errors"

var (
	ErrUnavailable      = errors.New("server unavailable")
	ErrRejected         = errors.New("rejected by server")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrProtocol         = errors.New("unexpected server reply")
)
