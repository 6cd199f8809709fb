package apiclient_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/workzen/hrms-client/pkg/apiclient"
	"github.com/workzen/hrms-client/pkg/session"
	sessionmock "github.com/workzen/hrms-client/pkg/session/mock"
)

const refreshPath = "/api/token/refresh/"

type recordedRequest struct {
	Method        string
	Path          string
	Authorization string
	ContentType   string
	RequestID     string
	Query         url.Values
	Header        http.Header
	Body          string
}

// fakeBackend accepts a single valid access token and issues a new one on
// every successful refresh.
type fakeBackend struct {
	mu sync.Mutex

	validToken   string
	refreshToken string
	rotate       bool

	refreshStatus      int
	alwaysUnauthorized bool

	refreshes int
	requests  []recordedRequest
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	if r.URL.Path == refreshPath {
		b.serveRefresh(w, r)
		return
	}

	body, _ := io.ReadAll(r.Body)
	b.requests = append(b.requests, recordedRequest{
		Method:        r.Method,
		Path:          r.URL.Path,
		Authorization: r.Header.Get("Authorization"),
		ContentType:   r.Header.Get("Content-Type"),
		RequestID:     r.Header.Get("X-Request-ID"),
		Query:         r.URL.Query(),
		Header:        r.Header.Clone(),
		Body:          string(body),
	})

	if b.alwaysUnauthorized || r.Header.Get("Authorization") != "Bearer "+b.validToken {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail": "Given token not valid for any token type", "code": "token_not_valid"}`))
		return
	}

	switch r.URL.Path {
	case "/api/users/me/":
		_, _ = w.Write([]byte(`{"id": 7, "email": "jane@workzen.io", "role": "employee"}`))
	case "/api/fail/":
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	case "/api/missing/":
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail": "Not found."}`))
	default:
		_, _ = w.Write([]byte(`{"ok": true}`))
	}
}

func (b *fakeBackend) serveRefresh(w http.ResponseWriter, r *http.Request) {
	b.refreshes++

	if r.Method != http.MethodPost || r.Header.Get("Authorization") != "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var req struct {
		Refresh string `json:"refresh"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if b.refreshStatus != 0 {
		w.WriteHeader(b.refreshStatus)
		_, _ = w.Write([]byte(`{"detail": "Token is invalid or expired", "code": "token_not_valid"}`))
		return
	}
	if req.Refresh != b.refreshToken {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail": "Token is blacklisted"}`))
		return
	}

	b.validToken = fmt.Sprintf("access-%d", b.refreshes)
	resp := map[string]string{"access": b.validToken}
	if b.rotate {
		b.refreshToken = fmt.Sprintf("refresh-%d", b.refreshes)
		resp["refresh"] = b.refreshToken
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func (b *fakeBackend) TRefreshes() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.refreshes
}

func (b *fakeBackend) TRequests() []recordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]recordedRequest(nil), b.requests...)
}

func startBackend(t *testing.T, h http.Handler) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(h)
	t.Cleanup(server.Close)

	return server
}

func newClient(t *testing.T, server *httptest.Server, store session.Store, opts ...apiclient.Option) *apiclient.Client {
	t.Helper()

	client, err := apiclient.NewClient(server.URL+"/api", session.NewManager(store), opts...)
	require.NoError(t, err)

	return client
}

func staleSession() sessionmock.StoreOption {
	return sessionmock.WithSession(session.Session{AccessToken: "stale", RefreshToken: "refresh-0"})
}
