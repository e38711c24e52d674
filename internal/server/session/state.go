package session

// State is a session's position in the protocol.
type State int

const (
	StateAwaitLogin State = iota
	StateAwaitDigest
	StateAuthenticated
	StateReceivingVectors
	StateClosed
	StateRejected
)

var stateNames = [...]string{
	StateAwaitLogin:       "await_login",
	StateAwaitDigest:      "await_digest",
	StateAuthenticated:    "authenticated",
	StateReceivingVectors: "receiving_vectors",
	StateClosed:           "closed",
	StateRejected:         "rejected",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further I/O happens in s.
func (s State) Terminal() bool {
	return s == StateClosed || s == StateRejected
}
