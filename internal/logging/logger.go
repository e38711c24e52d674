// Package logging defines the structured-logging interface used across vcalc.
// The production implementation wraps log/slog.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are key–value pairs, e.g.:
//
//	log.Info(ctx, "session closed", "login", login, "vectors", n)
type Logger interface {
	// Debug logs per-frame detail.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs lifecycle events.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs unusual but expected conditions such as rejected handshakes.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}

// Nop discards everything.
type Nop struct{}

func (Nop) Debug(context.Context, string, ...any) {}
func (Nop) Info(context.Context, string, ...any)  {}
func (Nop) Warn(context.Context, string, ...any)  {}
func (Nop) Error(context.Context, string, ...any) {}
func (n Nop) With(...any) Logger                  { return n }
