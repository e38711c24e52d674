// Package auth implements the salted challenge-response primitives shared by
// the server and the client: challenge generation, digest computation and
// digest comparison.
package auth

import (
	"crypto/sha1" //nolint:gosec // SHA-1 is fixed by the wire protocol
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/rand/v2"
	"strings"
)

const (
	// ChallengeLength is the length of a challenge on the wire.
	ChallengeLength = 16
	// DigestLength is the length of a hex digest on the wire.
	DigestLength = sha1.Size * 2
)

// Source produces the 64-bit values challenges are made from.
type Source func() uint64

// Generator issues challenges.
type Generator struct {
	src Source
}

// NewGenerator returns a Generator drawing from src. A nil src uses the
// runtime's uniformly distributed generator; challenges are nonces, not keys.
func NewGenerator(src Source) *Generator {
	if src == nil {
		src = rand.Uint64
	}
	return &Generator{src: src}
}

// Challenge returns a fresh challenge as 16 uppercase hex characters.
func (g *Generator) Challenge() string {
	return FormatChallenge(g.src())
}

// FormatChallenge renders v as a zero-padded 16-character uppercase hex string.
func FormatChallenge(v uint64) string {
	return fmt.Sprintf("%016X", v)
}

// ComputeDigest returns the uppercase hex SHA-1 of challenge followed by secret.
func ComputeDigest(challenge, secret string) string {
	h := sha1.New() //nolint:gosec // see import
	h.Write([]byte(challenge))
	h.Write([]byte(secret))
	return strings.ToUpper(hex.EncodeToString(h.Sum(nil)))
}

// Normalize upper-cases a digest received from a peer.
func Normalize(digest string) string {
	return strings.ToUpper(digest)
}

// VerifyDigest reports whether candidate matches the digest of challenge and
// secret, ignoring hex case. The comparison runs in constant time.
func VerifyDigest(challenge, secret, candidate string) bool {
	expected := ComputeDigest(challenge, secret)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(Normalize(candidate))) == 1
}
