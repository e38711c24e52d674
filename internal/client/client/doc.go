// Package client is the client side of the vcalc protocol.
//
// # Overview
//
// A Client owns one TCP connection. Authenticate sends the login, answers
// the server's challenge with SHA-1(challenge ‖ secret) and waits for "OK".
// Process then streams batches of vectors: the vector count first, then
// each vector in turn, reading its sum before the next one is sent. Several
// batches may share a connection. Finish sends a zero count, which ends the
// session on the server.
//
// # Error Handling
//
// Conditions callers act on are sentinel errors matched with errors.Is:
// ErrUnavailable (dial failed), ErrRejected (the server answered "ERR"),
// ErrNotAuthenticated and ErrProtocol.
//
// Concurrency & Contexts
//
// A Client is not safe for concurrent use. Every operation takes a context;
// its deadline bounds the I/O and cancelling it interrupts a blocked read or
// write, after which the connection is unusable.
package client
