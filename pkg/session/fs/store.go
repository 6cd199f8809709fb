// Package sessionfs persists the session as a single JSON document on disk so
// that it survives between invocations of the command line client.
package sessionfs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rogpeppe/go-internal/lockedfile"

	"github.com/workzen/hrms-client/pkg/session"
)

const (
	dirPerm  = 0o700
	filePerm = 0o600
)

// Store is a file backed session.Store. Every operation takes the file lock,
// so several processes may share the same file.
type Store struct {
	filename string
}

var _ = session.Store(&Store{})

// NewStore creates the parent directory of filename if needed.
func NewStore(filename string) (*Store, error) {
	return newStore(filename, os.MkdirAll)
}

type osMkdirAll func(path string, perm fs.FileMode) error

func newStore(filename string, mkdir osMkdirAll) (*Store, error) {
	if err := mkdir(filepath.Dir(filename), dirPerm); err != nil {
		return nil, fmt.Errorf("creating session directory: %w", err)
	}

	return &Store{filename: filename}, nil
}

func (s *Store) Get(_ context.Context, key string) (string, error) {
	data, err := lockedfile.Read(s.filename)
	if errors.Is(err, fs.ErrNotExist) {
		return "", session.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading session file: %w", err)
	}

	values, err := decode(data)
	if err != nil {
		return "", err
	}

	v, ok := values[key]
	if !ok {
		return "", session.ErrNotFound
	}

	return v, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	return s.transform(func(values map[string]string) {
		values[key] = value
	})
}

func (s *Store) Delete(_ context.Context, key string) error {
	return s.transform(func(values map[string]string) {
		delete(values, key)
	})
}

func (s *Store) Clear(_ context.Context) error {
	if err := lockedfile.Write(s.filename, bytes.NewReader([]byte("{}")), filePerm); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}

	return nil
}

// transform applies fn to the stored values while holding the file lock.
func (s *Store) transform(fn func(map[string]string)) error {
	err := lockedfile.Transform(s.filename, func(old []byte) ([]byte, error) {
		values, err := decode(old)
		if err != nil {
			return nil, err
		}

		fn(values)

		return json.Marshal(values)
	})
	if err != nil {
		return fmt.Errorf("updating session file: %w", err)
	}

	// lockedfile creates the file with the process umask; sessions hold
	// credentials and must stay private.
	if err := os.Chmod(s.filename, filePerm); err != nil {
		return fmt.Errorf("restricting session file mode: %w", err)
	}

	return nil
}

func decode(data []byte) (map[string]string, error) {
	values := make(map[string]string)
	if len(bytes.TrimSpace(data)) == 0 {
		return values, nil
	}

	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("unmarshaling session file: %w", err)
	}

	return values, nil
}
