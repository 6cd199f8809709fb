package session

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by a Store when a key holds no value.
	ErrNotFound = errors.New("not found")
	// ErrNoSession is returned when no access token is held.
	ErrNoSession = errors.New("no session")
)

// Store is a persisted key-value storage shared by the whole process.
type Store interface {
	// Get returns the value for key or an error matching ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	// Clear removes every key owned by the store, not only the session keys.
	Clear(ctx context.Context) error
}
