package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/dmitrijs2005/vcalc/internal/auth"
	"github.com/dmitrijs2005/vcalc/internal/common"
	"github.com/dmitrijs2005/vcalc/internal/vector"
)

// Options tunes a Client.
type Options struct {
	// Timeout bounds each operation when ctx carries no earlier deadline.
	// Zero means no bound beyond ctx.
	Timeout time.Duration
}

// Client talks to one vcalc server over one connection.
type Client struct {
	conn    net.Conn
	opts    Options
	r       *vector.Reader
	w       *vector.Writer
	authed  bool
	done    bool
	scratch []byte
}

// Dial connects to addr.
func Dial(ctx context.Context, addr string, opts Options) (*Client, error) {
	var d net.Dialer
	if opts.Timeout > 0 {
		d.Timeout = opts.Timeout
	}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return New(conn, opts), nil
}

// New wraps an established connection.
func New(conn net.Conn, opts Options) *Client {
	return &Client{
		conn:    conn,
		opts:    opts,
		r:       vector.NewReader(conn),
		w:       vector.NewWriter(conn),
		scratch: make([]byte, auth.ChallengeLength),
	}
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Authenticate performs the login handshake. It returns an error wrapping
// ErrRejected when the server refuses the login or the digest.
func (c *Client) Authenticate(ctx context.Context, login, secret string) (err error) {
	stop := c.bind(ctx)
	defer func() { err = stop(err) }()

	if err := c.writeString(login + "\n"); err != nil {
		return fmt.Errorf("send login: %w", err)
	}

	// "ERR" cannot open a hex challenge, so three bytes tell the replies apart
	head := c.scratch[:len(common.MarkerError)]
	if err := c.readFull(head); err != nil {
		return fmt.Errorf("read challenge: %w", err)
	}
	if string(head) == common.MarkerError {
		return fmt.Errorf("%w: login %q", ErrRejected, login)
	}
	if err := c.readFull(c.scratch[len(head):auth.ChallengeLength]); err != nil {
		return fmt.Errorf("read challenge: %w", err)
	}
	challenge := string(c.scratch[:auth.ChallengeLength])

	if err := c.writeString(auth.ComputeDigest(challenge, secret) + "\n"); err != nil {
		return fmt.Errorf("send digest: %w", err)
	}

	reply := c.scratch[:len(common.MarkerOK)]
	if err := c.readFull(reply); err != nil {
		return fmt.Errorf("read verdict: %w", err)
	}
	switch string(reply) {
	case common.MarkerOK:
		c.authed = true
		return nil
	case common.MarkerError[:len(common.MarkerOK)]:
		_ = c.readFull(c.scratch[:1])
		return fmt.Errorf("%w: digest", ErrRejected)
	default:
		return fmt.Errorf("%w: %q", ErrProtocol, reply)
	}
}

// Process sends vectors as one batch and returns their sums in order. The
// sums received before a failure are returned with the error. An empty
// batch sends a zero count, which ends the session like Finish.
func (c *Client) Process(ctx context.Context, vectors [][]float64) (sums []float64, err error) {
	if !c.authed {
		return nil, ErrNotAuthenticated
	}
	if c.done {
		return nil, fmt.Errorf("%w: session finished", ErrNotAuthenticated)
	}
	if len(vectors) == 0 {
		return nil, c.Finish(ctx)
	}

	stop := c.bind(ctx)
	defer func() { err = stop(err) }()

	if err := c.w.WriteCount(uint32(len(vectors))); err != nil {
		return nil, err
	}
	sums = make([]float64, 0, len(vectors))
	for i, v := range vectors {
		if err := c.w.WriteVector(v); err != nil {
			return sums, fmt.Errorf("vector %d: %w", i, err)
		}
		sum, err := c.r.ReadSum()
		if err != nil {
			return sums, fmt.Errorf("vector %d: %w", i, err)
		}
		sums = append(sums, sum)
	}
	return sums, nil
}

// Finish sends a zero vector count, ending the session.
func (c *Client) Finish(ctx context.Context) (err error) {
	if !c.authed {
		return ErrNotAuthenticated
	}
	if c.done {
		return nil
	}
	stop := c.bind(ctx)
	defer func() { err = stop(err) }()

	if err := c.w.WriteCount(0); err != nil {
		return err
	}
	c.done = true
	return nil
}

// bind applies ctx to the connection for one operation. The returned
// function detaches ctx and, if ctx ended the operation, reports ctx's error.
func (c *Client) bind(ctx context.Context) func(error) error {
	deadline, ok := ctx.Deadline()
	if c.opts.Timeout > 0 {
		if d := time.Now().Add(c.opts.Timeout); !ok || d.Before(deadline) {
			deadline, ok = d, true
		}
	}
	if !ok {
		deadline = time.Time{}
	}
	_ = c.conn.SetDeadline(deadline)

	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetDeadline(time.Unix(1, 0))
	})
	return func(err error) error {
		stop()
		if err != nil && ctx.Err() != nil {
			return errors.Join(ctx.Err(), err)
		}
		return err
	}
}

func (c *Client) writeString(s string) error {
	_, err := io.WriteString(c.conn, s)
	return err
}

func (c *Client) readFull(p []byte) error {
	_, err := io.ReadFull(c.conn, p)
	return err
}
