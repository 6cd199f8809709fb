package sessionmock

import (
	"context"
	"maps"
	"sync"

	"github.com/workzen/hrms-client/pkg/session"
)

type StoreOption func(*Store)

// Store is an in-memory session.Store with injectable failures.
type Store struct {
	mu     sync.Mutex
	values map[string]string
	clears int

	getErr, setErr, deleteErr, clearErr error
}

func WithValue(key, value string) StoreOption {
	return func(s *Store) { s.values[key] = value }
}
func WithSession(sess session.Session) StoreOption {
	return func(s *Store) {
		s.values[session.KeyAccessToken] = sess.AccessToken
		if sess.RefreshToken != "" {
			s.values[session.KeyRefreshToken] = sess.RefreshToken
		}
	}
}
func WithGetError(err error) StoreOption {
	return func(s *Store) { s.getErr = err }
}
func WithSetError(err error) StoreOption {
	return func(s *Store) { s.setErr = err }
}
func WithDeleteError(err error) StoreOption {
	return func(s *Store) { s.deleteErr = err }
}
func WithClearError(err error) StoreOption {
	return func(s *Store) { s.clearErr = err }
}

var _ = session.Store(&Store{})

func NewInMemStore(opts ...StoreOption) *Store {
	s := &Store{
		values: make(map[string]string),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Store) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.getErr != nil {
		return "", s.getErr
	}
	if v, ok := s.values[key]; ok {
		return v, nil
	}
	return "", session.ErrNotFound
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.setErr != nil {
		return s.setErr
	}
	s.values[key] = value
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.values, key)
	return nil
}

func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.clearErr != nil {
		return s.clearErr
	}
	s.clears++
	clear(s.values)
	return nil
}

// TValues returns a copy of the stored values.
func (s *Store) TValues() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return maps.Clone(s.values)
}

// TClears returns how many times Clear succeeded.
func (s *Store) TClears() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.clears
}
