package tcp

import (
	"net"
	"sync"
)

// ConnectionLimiter counts open connections per remote IP.
type ConnectionLimiter struct {
	mu          sync.Mutex
	connections map[string]int
	maxConn     int
}

// NewConnectionLimiter returns a limiter admitting at most maxConn
// connections per IP. A maxConn of zero or less admits everything.
func NewConnectionLimiter(maxConn int) *ConnectionLimiter {
	return &ConnectionLimiter{
		connections: make(map[string]int),
		maxConn:     maxConn,
	}
}

// TryConnect registers a connection from ip and reports whether it is
// within the limit. A refused connection is not registered.
func (cl *ConnectionLimiter) TryConnect(ip string) bool {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if cl.maxConn > 0 && cl.connections[ip] >= cl.maxConn {
		return false
	}
	cl.connections[ip]++
	return true
}

// Disconnect releases a connection registered by TryConnect.
func (cl *ConnectionLimiter) Disconnect(ip string) {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if cl.connections[ip] > 0 {
		cl.connections[ip]--
		if cl.connections[ip] == 0 {
			delete(cl.connections, ip)
		}
	}
}

// Count returns the number of open connections from ip.
func (cl *ConnectionLimiter) Count(ip string) int {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return cl.connections[ip]
}

func remoteIP(addr net.Addr) string {
	if addr == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}
