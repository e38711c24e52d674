package auth

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var upperHex = regexp.MustCompile(`^[0-9A-F]+$`)

func TestComputeDigest_KnownValues(t *testing.T) {
	tests := []struct {
		challenge string
		secret    string
		want      string
	}{
		{"0123456789ABCDEF", "P@ssW0rd", "FE78BDB4183B677A55E711B17E9CB6CCC2AE7315"},
		{"0123456789ABCDEF", "secret", "F2AA1769273DD8DB5005A318FC4D879ADD315EA4"},
	}
	for _, tt := range tests {
		t.Run(tt.secret, func(t *testing.T) {
			got := ComputeDigest(tt.challenge, tt.secret)
			assert.Equal(t, tt.want, got)
			assert.Len(t, got, DigestLength)
		})
	}
}

func TestComputeDigest_DeterministicAndNormalized(t *testing.T) {
	d1 := ComputeDigest("00000000DEADBEEF", "pw")
	d2 := ComputeDigest("00000000DEADBEEF", "pw")
	assert.Equal(t, d1, d2)
	assert.Equal(t, d1, Normalize(d1))
	assert.Regexp(t, upperHex, d1)

	assert.NotEqual(t, d1, ComputeDigest("00000000DEADBEEE", "pw"))
}

func TestVerifyDigest(t *testing.T) {
	const challenge = "0123456789ABCDEF"
	digest := ComputeDigest(challenge, "P@ssW0rd")

	assert.True(t, VerifyDigest(challenge, "P@ssW0rd", digest))
	assert.True(t, VerifyDigest(challenge, "P@ssW0rd", strings.ToLower(digest)))
	assert.False(t, VerifyDigest(challenge, "wrong", digest))
	assert.False(t, VerifyDigest("FEDCBA9876543210", "P@ssW0rd", digest))
	assert.False(t, VerifyDigest(challenge, "P@ssW0rd", digest[:10]))
	assert.False(t, VerifyDigest(challenge, "P@ssW0rd", ""))
}

func TestGenerator_Format(t *testing.T) {
	values := []uint64{0, 1, 0x0123456789ABCDEF, ^uint64(0)}
	i := 0
	g := NewGenerator(func() uint64 { v := values[i]; i++; return v })

	assert.Equal(t, "0000000000000000", g.Challenge())
	assert.Equal(t, "0000000000000001", g.Challenge())
	assert.Equal(t, "0123456789ABCDEF", g.Challenge())
	assert.Equal(t, "FFFFFFFFFFFFFFFF", g.Challenge())
}

func TestGenerator_DefaultSource(t *testing.T) {
	g := NewGenerator(nil)
	c := g.Challenge()
	require.Len(t, c, ChallengeLength)
	assert.Regexp(t, upperHex, c)

	seen := map[string]struct{}{}
	for range 64 {
		seen[g.Challenge()] = struct{}{}
	}
	if len(seen) < 60 {
		t.Logf("warning: only %d distinct challenges out of 64", len(seen))
	}
}
