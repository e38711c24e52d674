package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/dmitrijs2005/vcalc/internal/auth"
	"github.com/dmitrijs2005/vcalc/internal/common"
	"github.com/dmitrijs2005/vcalc/internal/logging"
	"github.com/dmitrijs2005/vcalc/internal/vector"
	"github.com/google/uuid"
)

// Credentials resolves a login to its secret. Implementations must be safe
// for concurrent use and return common.ErrorNotFound for unknown logins.
type Credentials interface {
	Lookup(ctx context.Context, login string) (string, error)
}

// Challenger issues handshake challenges.
type Challenger interface {
	Challenge() string
}

// Defaults applied by New to zero Options fields.
const (
	DefaultHandshakeTimeout = 5 * time.Second
	DefaultVectorTimeout    = 30 * time.Second
	DefaultMaxLoginLength   = 32
)

// Options tunes a Session.
type Options struct {
	HandshakeTimeout time.Duration
	VectorTimeout    time.Duration
	MaxLoginLength   int
}

func (o Options) withDefaults() Options {
	if o.HandshakeTimeout == 0 {
		o.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if o.VectorTimeout == 0 {
		o.VectorTimeout = DefaultVectorTimeout
	}
	if o.MaxLoginLength == 0 {
		o.MaxLoginLength = DefaultMaxLoginLength
	}
	return o
}

// Stats summarises the vector phase of a session.
type Stats struct {
	Vectors  uint64
	Elements uint64
}

// Session is the server side of one connection. It is owned by the goroutine
// that calls Run.
type Session struct {
	id     uuid.UUID
	conn   net.Conn
	br     *bufio.Reader
	creds  Credentials
	issuer Challenger
	logger logging.Logger
	opts   Options

	state     State
	login     string
	challenge string
	stats     Stats
}

// New returns a Session for conn in StateAwaitLogin.
func New(conn net.Conn, creds Credentials, issuer Challenger, logger logging.Logger, opts Options) *Session {
	id := uuid.New()
	return &Session{
		id:     id,
		conn:   conn,
		br:     bufio.NewReaderSize(conn, readBufferSize),
		creds:  creds,
		issuer: issuer,
		logger: logger.With("session_id", id.String(), "remote", conn.RemoteAddr().String()),
		opts:   opts.withDefaults(),
		state:  StateAwaitLogin,
	}
}

func (s *Session) ID() uuid.UUID     { return s.id }
func (s *Session) State() State      { return s.state }
func (s *Session) Login() string     { return s.login }
func (s *Session) Challenge() string { return s.challenge }
func (s *Session) Stats() Stats      { return s.stats }

// Run performs the handshake and the vector loop, then closes the
// connection. It returns nil when the client ends the session with a zero
// vector count or, after a completed batch, by closing the connection;
// an error wrapping ErrRejected on a failed handshake; and any other error
// when the vector stream is cut short.
func (s *Session) Run(ctx context.Context) error {
	defer s.close()

	if err := s.authenticate(ctx); err != nil {
		return err
	}
	return s.receiveVectors(ctx)
}

func (s *Session) close() {
	if s.state != StateRejected {
		s.state = StateClosed
	}
	if err := s.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		s.logger.Debug(context.Background(), "close connection failed", "error", err)
	}
}

func (s *Session) send(timeout time.Duration, msg string) error {
	_, err := deadlineWriter{conn: s.conn, timeout: timeout}.Write([]byte(msg))
	return err
}

// reject answers ERR, moves to StateRejected and returns the Run error.
func (s *Session) reject(ctx context.Context, reason string, cause error) error {
	s.state = StateRejected
	if err := s.send(s.opts.HandshakeTimeout, common.MarkerError); err != nil {
		s.logger.Debug(ctx, "send ERR failed", "error", err)
	}
	args := []any{"reason", reason}
	if cause != nil {
		args = append(args, "error", cause)
	}
	s.logger.Warn(ctx, "handshake rejected", args...)
	if cause != nil {
		return fmt.Errorf("%w: %s: %w", ErrRejected, reason, cause)
	}
	return fmt.Errorf("%w: %s", ErrRejected, reason)
}

func (s *Session) authenticate(ctx context.Context) error {
	login, err := readToken(s.conn, s.br, s.opts.HandshakeTimeout)
	if err != nil {
		return s.reject(ctx, "receive login failed", err)
	}
	if len(login) > s.opts.MaxLoginLength {
		return s.reject(ctx, "login too long", nil)
	}

	secret, err := s.creds.Lookup(ctx, login)
	if err != nil {
		s.logger = s.logger.With("login", login)
		if errors.Is(err, common.ErrorNotFound) {
			return s.reject(ctx, "unknown login", nil)
		}
		return s.reject(ctx, "credential lookup failed", err)
	}
	s.login = login
	s.logger = s.logger.With("login", login)

	s.challenge = s.issuer.Challenge()
	if err := s.send(s.opts.HandshakeTimeout, s.challenge); err != nil {
		s.state = StateRejected
		s.logger.Warn(ctx, "send challenge failed", "error", err)
		return fmt.Errorf("%w: send challenge: %w", ErrRejected, err)
	}
	s.state = StateAwaitDigest
	s.logger.Debug(ctx, "challenge sent", "challenge", s.challenge)

	digest, err := readToken(s.conn, s.br, s.opts.HandshakeTimeout)
	if err != nil {
		return s.reject(ctx, "receive digest failed", err)
	}
	if !auth.VerifyDigest(s.challenge, secret, digest) {
		return s.reject(ctx, "digest mismatch", nil)
	}

	if err := s.send(s.opts.HandshakeTimeout, common.MarkerOK); err != nil {
		s.state = StateRejected
		s.logger.Warn(ctx, "send OK failed", "error", err)
		return fmt.Errorf("%w: send OK: %w", ErrRejected, err)
	}
	s.state = StateAuthenticated
	s.logger.Info(ctx, "client authenticated")
	return nil
}

func (s *Session) receiveVectors(ctx context.Context) error {
	s.state = StateReceivingVectors

	r := vector.NewReader(s.br)
	r.BeforeRead = func() error {
		return setReadDeadline(s.conn, s.opts.VectorTimeout)
	}
	w := vector.NewWriter(deadlineWriter{conn: s.conn, timeout: s.opts.VectorTimeout})

	for batch := 0; ; batch++ {
		count, err := r.ReadCount()
		if err != nil {
			if batch > 0 && cleanEOF(err) {
				break
			}
			s.logger.Error(ctx, "vector stream aborted", "error", err)
			return err
		}
		if count == 0 {
			break
		}
		s.logger.Debug(ctx, "vector batch started", "batch", batch, "count", count)

		for i := uint32(0); i < count; i++ {
			n, err := r.ReadLength()
			if err != nil {
				return s.abort(ctx, i, err)
			}
			sum, err := r.ReadPayloadSum(n)
			if err != nil {
				return s.abort(ctx, i, err)
			}
			if err := w.WriteSum(sum); err != nil {
				return s.abort(ctx, i, err)
			}
			s.stats.Vectors++
			s.stats.Elements += uint64(n)
			s.logger.Debug(ctx, "vector processed", "index", i, "length", n, "sum", sum)
		}
	}

	s.logger.Info(ctx, "vector stream completed", "vectors", s.stats.Vectors, "elements", s.stats.Elements)
	return nil
}

// cleanEOF reports whether the peer closed exactly on a frame boundary.
func cleanEOF(err error) bool {
	return errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF)
}

func (s *Session) abort(ctx context.Context, index uint32, err error) error {
	err = fmt.Errorf("vector %d: %w", index, err)
	if errors.Is(err, io.ErrClosedPipe) || errors.Is(err, net.ErrClosed) {
		s.logger.Warn(ctx, "vector stream aborted", "error", err)
	} else {
		s.logger.Error(ctx, "vector stream aborted", "error", err)
	}
	return err
}
