package credentials

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/dmitrijs2005/vcalc/internal/common"
	"github.com/dmitrijs2005/vcalc/internal/filex"
)

// Store is a Repository kept in memory and, when a path is set, persisted to
// a text file. One mutex covers both the map and the file.
type Store struct {
	mu      sync.Mutex
	path    string
	clients map[string]string
	skipped int
}

// NewFileStore returns an empty Store backed by the file at path.
// Call Load to read the file.
func NewFileStore(path string) *Store {
	return &Store{path: path, clients: make(map[string]string)}
}

// NewMemoryStore returns a Store holding creds that never touches disk.
func NewMemoryStore(creds ...Credential) *Store {
	s := &Store{clients: make(map[string]string, len(creds))}
	for _, c := range creds {
		s.clients[c.Login] = c.Secret
	}
	return s
}

// Path returns the backing file, or "" for a memory store.
func (s *Store) Path() string {
	return s.path
}

// Load replaces the in-memory entries with the contents of the backing file.
// A missing file is reported with an error wrapping os.ErrNotExist and leaves
// the store unchanged.
func (s *Store) Load(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read client database: %w", err)
	}
	entries, skipped, err := Parse(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("parse client database %s: %w", s.path, err)
	}
	s.clients = entries
	s.skipped = skipped
	return nil
}

// Skipped returns the number of malformed lines ignored by the last Load.
func (s *Store) Skipped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.skipped
}

// Len returns the number of credentials.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Exists reports whether login is known.
func (s *Store) Exists(_ context.Context, login string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.clients[login]
	return ok
}

// Lookup returns the secret for login, or common.ErrorNotFound.
func (s *Store) Lookup(_ context.Context, login string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	secret, ok := s.clients[login]
	if !ok {
		return "", common.ErrorNotFound
	}
	return secret, nil
}

// List returns all logins in lexical order.
func (s *Store) List(_ context.Context) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	logins := make([]string, 0, len(s.clients))
	for login := range s.clients {
		logins = append(logins, login)
	}
	sort.Strings(logins)
	return logins
}

// Add inserts or replaces the secret for login and rewrites the backing
// file. If the file cannot be written the in-memory change is undone.
func (s *Store) Add(_ context.Context, login, secret string) error {
	if !validLogin(login) {
		return fmt.Errorf("%w: %q", common.ErrorInvalidLogin, login)
	}
	if !validSecret(secret) {
		return common.ErrorInvalidSecret
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.clients[login]
	s.clients[login] = secret
	if err := s.persist(); err != nil {
		if existed {
			s.clients[login] = prev
		} else {
			delete(s.clients, login)
		}
		return err
	}
	return nil
}

// Remove deletes login and rewrites the backing file.
func (s *Store) Remove(_ context.Context, login string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.clients[login]
	if !ok {
		return common.ErrorNotFound
	}
	delete(s.clients, login)
	if err := s.persist(); err != nil {
		s.clients[login] = prev
		return err
	}
	return nil
}

// persist writes every entry to the backing file. Callers hold s.mu.
func (s *Store) persist() error {
	if s.path == "" {
		return nil
	}
	if err := filex.WriteFileAtomic(s.path, Format(s.clients), 0o600); err != nil {
		return fmt.Errorf("save client database: %w", err)
	}
	return nil
}

var _ Repository = (*Store)(nil)
