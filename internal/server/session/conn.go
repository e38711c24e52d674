package session

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"
)

const (
	// readBufferSize is the per-connection receive buffer.
	readBufferSize = 4096
	// tokenBufferSize bounds a single handshake receive.
	tokenBufferSize = 256
)

func deadline(d time.Duration) time.Time {
	if d <= 0 {
		return time.Time{}
	}
	return time.Now().Add(d)
}

// setReadDeadline pushes the read deadline forward. In-memory pipes refuse a
// deadline once the peer has hung up; the error is dropped so the next read
// reports the EOF instead.
func setReadDeadline(conn net.Conn, timeout time.Duration) error {
	err := conn.SetReadDeadline(deadline(timeout))
	if err != nil && !errors.Is(err, io.ErrClosedPipe) {
		return fmt.Errorf("set read deadline: %w", err)
	}
	return nil
}

// deadlineWriter pushes the write deadline forward before every Write.
type deadlineWriter struct {
	conn    net.Conn
	timeout time.Duration
}

func (w deadlineWriter) Write(p []byte) (int, error) {
	if err := w.conn.SetWriteDeadline(deadline(w.timeout)); err != nil {
		return 0, fmt.Errorf("set write deadline: %w", err)
	}
	return w.conn.Write(p)
}

// readToken performs one receive and returns the text up to the first CR or
// LF, trimmed of blanks. Bytes after the newline stay buffered for the next
// read, so a client that pipelines is not corrupted.
func readToken(conn net.Conn, br *bufio.Reader, timeout time.Duration) (string, error) {
	if err := setReadDeadline(conn, timeout); err != nil {
		return "", err
	}
	if _, err := br.Peek(1); err != nil {
		return "", err
	}
	chunk, _ := br.Peek(min(br.Buffered(), tokenBufferSize-1))
	n := len(chunk)
	if i := bytes.IndexByte(chunk, '\n'); i >= 0 {
		n = i + 1
	}
	line := string(chunk[:n])
	if _, err := br.Discard(n); err != nil {
		return "", err
	}

	if i := strings.IndexAny(line, "\r\n"); i >= 0 {
		line = line[:i]
	}
	line = strings.Trim(line, " \t")
	if line == "" {
		return "", errEmptyToken
	}
	return line, nil
}
