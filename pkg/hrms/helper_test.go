package hrms_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/workzen/hrms-client/pkg/apiclient"
	"github.com/workzen/hrms-client/pkg/hrms"
	"github.com/workzen/hrms-client/pkg/session"
	sessionmock "github.com/workzen/hrms-client/pkg/session/mock"
)

type call struct {
	Method        string
	Path          string
	Query         string
	Body          string
	Authorization string
}

// backend answers every request with status and body and records it.
type backend struct {
	mu     sync.Mutex
	status int
	body   string
	calls  []call
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	body, _ := io.ReadAll(r.Body)
	b.calls = append(b.calls, call{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Body:   string(body),

		Authorization: r.Header.Get("Authorization"),
	})

	status := b.status
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(b.body))
}

func (b *backend) TCalls() []call {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]call(nil), b.calls...)
}

func newHRMS(t *testing.T, b *backend, opts ...sessionmock.StoreOption) (*hrms.Client, *sessionmock.Store) {
	t.Helper()

	server := httptest.NewServer(b)
	t.Cleanup(server.Close)

	store := sessionmock.NewInMemStore(opts...)
	api, err := apiclient.NewClient(server.URL+"/api", session.NewManager(store))
	require.NoError(t, err)

	return hrms.New(api), store
}
