package business

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/workzen/hrms-client/internal/config"
)

// backend fakes the HRMS API under /api. It issues a1/r1 at login and a2
// on refresh.
type backend struct {
	mu             sync.Mutex
	valid          map[string]bool
	rejectRefresh  bool
	refreshes      int
	lastAuthHeader string
}

func newBackend() *backend {
	return &backend{valid: map[string]bool{}}
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	switch r.URL.Path {
	case "/api/users/login/":
		var creds struct{ Email, Password string }
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Password != "s3cret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error": "Invalid credentials"}`))
			return
		}
		b.valid["a1"] = true
		_, _ = w.Write([]byte(`{"access": "a1", "refresh": "r1", "user": {"id": 7, "email": "jane@workzen.io", "first_name": "Jane", "last_name": "Doe"}}`))
	case "/api/token/refresh/":
		b.refreshes++
		var body struct{ Refresh string }
		_ = json.NewDecoder(r.Body).Decode(&body)
		if b.rejectRefresh || body.Refresh != "r1" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail": "Token is invalid or expired"}`))
			return
		}
		b.valid["a2"] = true
		_, _ = w.Write([]byte(`{"access": "a2"}`))
	default:
		b.lastAuthHeader = r.Header.Get("Authorization")
		if !b.valid[strings.TrimPrefix(b.lastAuthHeader, "Bearer ")] {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail": "Given token not valid for any token type"}`))
			return
		}
		b.resource(w, r)
	}
}

func (b *backend) resource(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/users/me/":
		_, _ = w.Write([]byte(`{"id": 7, "email": "jane@workzen.io", "first_name": "Jane", "last_name": "Doe", "role": "employee"}`))
	case "/api/echo/":
		_ = json.NewEncoder(w).Encode(map[string]any{
			"method": r.Method,
			"query":  r.URL.RawQuery,
			"header": r.Header.Get("X-Tenant"),
		})
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail": "Not found."}`))
	}
}

// TRevoke invalidates an access token.
func (b *backend) TRevoke(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.valid, token)
}

func (b *backend) TRejectRefresh() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rejectRefresh = true
}

func (b *backend) TRefreshes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.refreshes
}

// testConfig points the client at server and keeps the session in a
// temporary file, so that it survives between command mains.
func testConfig(t *testing.T, server *httptest.Server) *config.Config {
	t.Helper()

	return &config.Config{
		API: config.API{BaseURL: server.URL + "/api"},
		SessionStore: config.SessionStore{
			Type: config.SessionStoreFS,
			Path: filepath.Join(t.TempDir(), "session.json"),
		},
	}
}

func startBackend(t *testing.T) (*backend, *httptest.Server) {
	t.Helper()

	b := newBackend()
	server := httptest.NewServer(b)
	t.Cleanup(server.Close)

	return b, server
}

func (b *backend) TLastAuthorization() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastAuthHeader
}
