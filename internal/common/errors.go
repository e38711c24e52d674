package common

import "errors"

// Credential store errors.
var (
	ErrorNotFound      = errors.New("not found")
	ErrorInvalidLogin  = errors.New("invalid login")
	ErrorInvalidSecret = errors.New("invalid secret")
)
