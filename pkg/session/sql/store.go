package sessionsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/workzen/hrms-client/pkg/session"
)

// Store keeps session values in the session_values table. Rows are scoped by
// namespace so several clients can share one database.
type Store struct {
	db        *pgxpool.Pool
	namespace string
}

var _ = session.Store(&Store{})

func NewStore(db *pgxpool.Pool, namespace string) *Store {
	return &Store{
		db:        db,
		namespace: namespace,
	}
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var value string
	if err := s.db.QueryRow(ctx, `SELECT value
FROM session_values
WHERE namespace = $1
	AND key = $2;`,
		s.namespace, key,
	).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", session.ErrNotFound
		}

		return "", fmt.Errorf("selecting from session_values: %w", err)
	}

	return value, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if _, err := s.db.Exec(ctx, `INSERT INTO session_values (namespace, key, value, updated_at)
	VALUES ($1, $2, $3, now())
	ON CONFLICT (namespace, key)
	DO UPDATE SET (value, updated_at) = (EXCLUDED.value, EXCLUDED.updated_at);`,
		s.namespace, key, value,
	); err != nil {
		return fmt.Errorf("upserting into session_values: %w", err)
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM session_values WHERE namespace = $1 AND key = $2;`, s.namespace, key); err != nil {
		return fmt.Errorf("deleting from session_values: %w", err)
	}

	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM session_values WHERE namespace = $1;`, s.namespace); err != nil {
		return fmt.Errorf("deleting namespace from session_values: %w", err)
	}

	return nil
}
