package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	slogctx "github.com/veqryn/slog-context"
)

// Manager reads and writes the session kept in a Store. It is safe for
// concurrent use; every write goes through a single mutex so a refresh
// cannot interleave with a logout.
type Manager struct {
	store Store
	mu    sync.RWMutex
}

func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// Load returns the current session. It fails with ErrNoSession when no
// access token is held. A missing refresh token is not an error.
func (m *Manager) Load(ctx context.Context) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	access, err := m.get(ctx, KeyAccessToken)
	if err != nil {
		return Session{}, err
	}
	if access == "" {
		return Session{}, ErrNoSession
	}

	refresh, err := m.get(ctx, KeyRefreshToken)
	if err != nil {
		return Session{}, err
	}

	return Session{AccessToken: access, RefreshToken: refresh}, nil
}

// AccessToken returns the stored access token or an empty string.
func (m *Manager) AccessToken(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.get(ctx, KeyAccessToken)
}

// RefreshToken returns the stored refresh token or an empty string.
func (m *Manager) RefreshToken(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.get(ctx, KeyRefreshToken)
}

func (m *Manager) IsAuthenticated(ctx context.Context) bool {
	token, err := m.AccessToken(ctx)
	return err == nil && token != ""
}

// Save persists a freshly issued session. An empty refresh token removes any
// previously stored one.
func (m *Manager) Save(ctx context.Context, s Session) error {
	if s.AccessToken == "" {
		return errors.New("saving session: empty access token")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Set(ctx, KeyAccessToken, s.AccessToken); err != nil {
		return fmt.Errorf("storing access token: %w", err)
	}

	if s.RefreshToken == "" {
		if err := m.store.Delete(ctx, KeyRefreshToken); err != nil {
			return fmt.Errorf("deleting refresh token: %w", err)
		}
		return nil
	}

	if err := m.store.Set(ctx, KeyRefreshToken, s.RefreshToken); err != nil {
		return fmt.Errorf("storing refresh token: %w", err)
	}

	return nil
}

// SetAccessToken replaces the access token after a successful refresh.
func (m *Manager) SetAccessToken(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Set(ctx, KeyAccessToken, token); err != nil {
		return fmt.Errorf("storing access token: %w", err)
	}

	return nil
}

// SetRefreshToken replaces the refresh token when the backend rotates it.
func (m *Manager) SetRefreshToken(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Set(ctx, KeyRefreshToken, token); err != nil {
		return fmt.Errorf("storing refresh token: %w", err)
	}

	return nil
}

// SaveUser stores the profile of the logged-in user as JSON.
func (m *Manager) SaveUser(ctx context.Context, user any) error {
	b, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshaling user: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Set(ctx, KeyUser, string(b)); err != nil {
		return fmt.Errorf("storing user: %w", err)
	}

	return nil
}

// User decodes the stored user profile into v. It returns ErrNotFound when
// no profile is stored.
func (m *Manager) User(ctx context.Context, v any) error {
	m.mu.RLock()
	raw, err := m.get(ctx, KeyUser)
	m.mu.RUnlock()
	if err != nil {
		return err
	}
	if raw == "" {
		return ErrNotFound
	}

	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("unmarshaling user: %w", err)
	}

	return nil
}

// Clear wipes the whole store. It is used on logout and when the session
// can no longer be refreshed.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Clear(ctx); err != nil {
		return fmt.Errorf("clearing session store: %w", err)
	}

	slogctx.Debug(ctx, "Cleared session store")

	return nil
}

// get returns the value of key, mapping a missing key to an empty string.
func (m *Manager) get(ctx context.Context, key string) (string, error) {
	v, err := m.store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("loading %s: %w", key, err)
	}

	return v, nil
}
