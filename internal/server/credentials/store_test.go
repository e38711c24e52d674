package credentials

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/vcalc/internal/common"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDB(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vcalc.conf")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParse(t *testing.T) {
	in := strings.Join([]string{
		"# comment",
		"",
		"user:P@ssW0rd",
		"  alice : s3cret \t",
		"bob:first",
		"nodelimiter",
		":nologin",
		"nosecret:",
		"   ",
		"bob:second",
		"carol:a:b",
		"dave:crlf\r",
	}, "\n")

	got, skipped, err := Parse(strings.NewReader(in))
	require.NoError(t, err)

	want := map[string]string{
		"user":  "P@ssW0rd",
		"alice": "s3cret",
		"bob":   "second",
		"carol": "a:b",
		"dave":  "crlf",
	}
	assert.Empty(t, cmp.Diff(want, got))
	assert.Equal(t, 3, skipped)
}

func TestParse_OverLongLineSkipped(t *testing.T) {
	in := "user:P@ssW0rd\n" + "huge:" + strings.Repeat("x", 3*maxLineLength) + "\nalice:s3cret\n"

	got, skipped, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"user": "P@ssW0rd", "alice": "s3cret"}, got)
	assert.Equal(t, 1, skipped)
}

func TestFormat_HeaderAndOrder(t *testing.T) {
	out := string(Format(map[string]string{"zed": "1", "amy": "2"}))
	assert.Equal(t, "# vcalc client database\n# format: login:secret\n\namy:2\nzed:1\n", out)

	back, skipped, err := Parse(strings.NewReader(out))
	require.NoError(t, err)
	assert.Zero(t, skipped)
	assert.Equal(t, map[string]string{"zed": "1", "amy": "2"}, back)
}

func TestStore_LoadAndLookup(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(writeDB(t, "user:P@ssW0rd\nbroken\n"))
	require.NoError(t, s.Load(ctx))

	assert.True(t, s.Exists(ctx, "user"))
	assert.False(t, s.Exists(ctx, "ghost"))
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 1, s.Skipped())

	secret, err := s.Lookup(ctx, "user")
	require.NoError(t, err)
	assert.Equal(t, "P@ssW0rd", secret)

	_, err = s.Lookup(ctx, "ghost")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestStore_LoadMissingFile(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "absent.conf"))
	err := s.Load(context.Background())
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.Zero(t, s.Len())
}

func TestStore_AddRemovePersist(t *testing.T) {
	ctx := context.Background()
	path := writeDB(t, "user:P@ssW0rd\n")
	s := NewFileStore(path)
	require.NoError(t, s.Load(ctx))

	require.NoError(t, s.Add(ctx, "alice", "pw1"))
	require.NoError(t, s.Add(ctx, "user", "changed"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, header+"alice:pw1\nuser:changed\n", string(data))

	reloaded := NewFileStore(path)
	require.NoError(t, reloaded.Load(ctx))
	assert.Equal(t, []string{"alice", "user"}, reloaded.List(ctx))

	require.NoError(t, s.Remove(ctx, "alice"))
	require.ErrorIs(t, s.Remove(ctx, "alice"), common.ErrorNotFound)

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, header+"user:changed\n", string(data))
}

func TestStore_AddValidation(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	tests := []struct {
		name   string
		login  string
		secret string
		want   error
	}{
		{"empty login", "", "pw", common.ErrorInvalidLogin},
		{"login with colon", "a:b", "pw", common.ErrorInvalidLogin},
		{"login with spaces", " a ", "pw", common.ErrorInvalidLogin},
		{"comment login", "#a", "pw", common.ErrorInvalidLogin},
		{"empty secret", "a", "", common.ErrorInvalidSecret},
		{"secret with newline", "a", "p\nw", common.ErrorInvalidSecret},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, s.Add(ctx, tt.login, tt.secret), tt.want)
		})
	}
	assert.Zero(t, s.Len())
}

func TestStore_AddRollsBackOnWriteFailure(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(filepath.Join(t.TempDir(), "missing-dir", "vcalc.conf"))

	require.Error(t, s.Add(ctx, "alice", "pw"))
	assert.False(t, s.Exists(ctx, "alice"))
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(Credential{Login: "user", Secret: "a"}, Credential{Login: "user", Secret: "b"})
	assert.Empty(t, s.Path())
	require.NoError(t, s.Load(ctx))

	secret, err := s.Lookup(ctx, "user")
	require.NoError(t, err)
	assert.Equal(t, "b", secret)

	require.NoError(t, s.Add(ctx, "alice", "pw"))
	require.NoError(t, s.Remove(ctx, "user"))
	assert.Equal(t, []string{"alice"}, s.List(ctx))
}

func TestStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(writeDB(t, "user:pw\n"))
	require.NoError(t, s.Load(ctx))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, _ = s.Lookup(ctx, "user")
				_ = s.Exists(ctx, "alice")
			}
		}()
		go func() {
			defer wg.Done()
			_ = s.Add(ctx, "alice", "pw")
		}()
	}
	wg.Wait()

	assert.True(t, s.Exists(ctx, "alice"))
}

func TestParseCredential(t *testing.T) {
	c, err := ParseCredential("user:P@ss:W0rd")
	require.NoError(t, err)
	assert.Equal(t, Credential{Login: "user", Secret: "P@ss:W0rd"}, c)

	_, err = ParseCredential("nocolon")
	assert.ErrorIs(t, err, common.ErrorInvalidLogin)

	_, err = ParseCredential(":secret")
	assert.ErrorIs(t, err, common.ErrorInvalidLogin)

	_, err = ParseCredential("user:")
	assert.ErrorIs(t, err, common.ErrorInvalidSecret)
}
