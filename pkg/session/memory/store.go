// Package sessionmemory keeps the session in process memory. Values are lost
// when the process exits.
package sessionmemory

import (
	"context"

	"github.com/patrickmn/go-cache"

	"github.com/workzen/hrms-client/pkg/session"
)

type Store struct {
	cache *cache.Cache
}

var _ = session.Store(&Store{})

func NewStore() *Store {
	return &Store{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func (s *Store) Get(_ context.Context, key string) (string, error) {
	v, ok := s.cache.Get(key)
	if !ok {
		return "", session.ErrNotFound
	}

	//nolint:forcetypeassert
	return v.(string), nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.cache.Set(key, value, cache.NoExpiration)
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.cache.Delete(key)
	return nil
}

func (s *Store) Clear(_ context.Context) error {
	s.cache.Flush()
	return nil
}
