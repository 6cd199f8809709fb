package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
)

var (
	// ErrUnauthorized matches a 401 that the client did not recover from:
	// there was no refresh token, or the retried request failed again.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrAuthExpired means a refresh was attempted and failed. The session
	// store has been cleared and the user has to log in again.
	ErrAuthExpired = errors.New("authentication expired")
	// ErrNoRefreshToken is returned by Client.Refresh when no refresh token is held.
	ErrNoRefreshToken = errors.New("no refresh token")
	// ErrResponseTooLarge is returned instead of a truncated body.
	ErrResponseTooLarge = errors.New("response body too large")
)

const maxMessageLen = 256

// UpstreamError is a non-2xx backend response, passed through verbatim.
// A 401 UpstreamError also matches ErrUnauthorized.
type UpstreamError struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (e *UpstreamError) Error() string {
	if msg := e.Message(); msg != "" {
		return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, msg)
	}

	return fmt.Sprintf("upstream returned status %d", e.StatusCode)
}

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// Message extracts a human readable message from the body. It understands
// {"detail": "..."}, {"error": "..."}, {"error": {"field": [...]}},
// {"message": "..."} and plain field error maps such as
// {"email": ["This field is required."]}. Other bodies are returned as
// trimmed text.
func (e *UpstreamError) Message() string {
	var body map[string]json.RawMessage
	if err := json.Unmarshal(e.Body, &body); err != nil {
		return truncate(strings.TrimSpace(string(e.Body)))
	}

	for _, key := range []string{"detail", "error", "message"} {
		raw, ok := body[key]
		if !ok {
			continue
		}

		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}

		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err == nil {
			return fieldMessages(fields)
		}
	}

	return fieldMessages(body)
}

// fieldMessages renders "field: msg1, msg2" lines sorted by field name.
func fieldMessages(fields map[string]json.RawMessage) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		var msgs []string
		if err := json.Unmarshal(fields[k], &msgs); err != nil {
			var msg string
			if err := json.Unmarshal(fields[k], &msg); err != nil {
				continue
			}
			msgs = []string{msg}
		}
		lines = append(lines, k+": "+strings.Join(msgs, ", "))
	}

	return strings.Join(lines, "\n")
}

func truncate(s string) string {
	if len(s) <= maxMessageLen {
		return s
	}

	return s[:maxMessageLen] + "..."
}

// RefreshError is the failure of the refresh call that ended the session.
// It matches ErrAuthExpired and unwraps to the refresh failure, which may be
// an *UpstreamError. Check ErrAuthExpired before ErrUnauthorized: a refresh
// endpoint answering 401 matches both.
type RefreshError struct {
	Err error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("%s: %s", ErrAuthExpired, e.Err)
}

func (e *RefreshError) Unwrap() error {
	return e.Err
}

func (e *RefreshError) Is(target error) bool {
	return target == ErrAuthExpired
}
