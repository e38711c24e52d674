// Package credentials implements the credential store: login to secret pairs
// loaded from a flat text file and shared read-only by all sessions.
//
// The file holds one "login:secret" pair per line. Blank lines and lines
// starting with '#' are ignored, as are lines with no ':' or with an empty
// login or secret after trimming. Add and Remove rewrite the whole file.
package credentials

import "context"

// Repository is the set of operations the server and the admin tool use.
type Repository interface {
	Load(ctx context.Context) error
	Exists(ctx context.Context, login string) bool
	Lookup(ctx context.Context, login string) (string, error)
	Add(ctx context.Context, login, secret string) error
	Remove(ctx context.Context, login string) error
	List(ctx context.Context) []string
}
