package business

import (
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workzen/hrms-client/internal/config"
	"github.com/workzen/hrms-client/pkg/session"
	sessionfs "github.com/workzen/hrms-client/pkg/session/fs"
	sessionmemory "github.com/workzen/hrms-client/pkg/session/memory"
)

func TestLoadHTTPClient(t *testing.T) {
	tests := []struct {
		name        string
		clientAuth  config.ClientAuth
		wantErr     string
		wantTimeout time.Duration
	}{
		{
			name:        "Insecure",
			clientAuth:  config.ClientAuth{Type: config.ClientAuthInsecure},
			wantTimeout: 5 * time.Second,
		},
		{
			name:        "Defaults to insecure",
			clientAuth:  config.ClientAuth{},
			wantTimeout: 5 * time.Second,
		},
		{
			name:       "MTLS without section",
			clientAuth: config.ClientAuth{Type: config.ClientAuthMTLS},
			wantErr:    "mtls client auth requires an mtls section",
		},
		{
			name: "MTLS with missing files",
			clientAuth: config.ClientAuth{
				Type: config.ClientAuthMTLS,
				MTLS: &commoncfg.MTLS{
					Cert:    commoncfg.SourceRef{Source: "file", File: commoncfg.CredentialFile{Path: "/nonexistent/cert.pem"}},
					CertKey: commoncfg.SourceRef{Source: "file", File: commoncfg.CredentialFile{Path: "/nonexistent/key.pem"}},
				},
			},
			wantErr: "loading mTLS config",
		},
		{
			name:       "Unknown type",
			clientAuth: config.ClientAuth{Type: "client_secret"},
			wantErr:    "unknown Client Auth type",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{API: config.API{Timeout: 5 * time.Second, ClientAuth: tt.clientAuth}}

			client, err := loadHTTPClient(cfg)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantTimeout, client.Timeout)
			assert.NotSame(t, http.DefaultClient, client)
		})
	}
}

func TestInitSessionStore(t *testing.T) {
	missingFile := commoncfg.SourceRef{Source: "file", File: commoncfg.CredentialFile{Path: "/nonexistent/file"}}

	tests := []struct {
		name      string
		cfg       *config.Config
		wantStore session.Store
		wantErr   string
	}{
		{
			name:      "Memory",
			cfg:       &config.Config{SessionStore: config.SessionStore{Type: config.SessionStoreMemory}},
			wantStore: &sessionmemory.Store{},
		},
		{
			name: "FS",
			cfg: &config.Config{SessionStore: config.SessionStore{
				Type: config.SessionStoreFS,
				Path: filepath.Join(t.TempDir(), "session.json"),
			}},
			wantStore: &sessionfs.Store{},
		},
		{
			name: "Defaults to FS",
			cfg: &config.Config{SessionStore: config.SessionStore{
				Path: filepath.Join(t.TempDir(), "session.json"),
			}},
			wantStore: &sessionfs.Store{},
		},
		{
			name: "ValKey with unreadable host",
			cfg: &config.Config{
				SessionStore: config.SessionStore{Type: config.SessionStoreValKey},
				ValKey:       config.ValKey{Host: missingFile},
			},
			wantErr: "making valkey options from config",
		},
		{
			name: "Postgres with unreadable host",
			cfg: &config.Config{
				SessionStore: config.SessionStore{Type: config.SessionStorePostgres},
				Database:     config.Database{Host: missingFile},
			},
			wantErr: "making dsn from config",
		},
		{
			name:    "Unknown type",
			cfg:     &config.Config{SessionStore: config.SessionStore{Type: "sqlite"}},
			wantErr: "unknown session store type",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, closeFn, err := initSessionStore(t.Context(), tt.cfg)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, closeFn)
				return
			}
			require.NoError(t, err)
			defer closeFn()
			assert.IsType(t, tt.wantStore, store)
		})
	}
}

func TestInitClient_InvalidBaseURL(t *testing.T) {
	cfg := &config.Config{
		API:          config.API{BaseURL: "localhost:8000/api"},
		SessionStore: config.SessionStore{Type: config.SessionStoreMemory},
	}

	_, closeFn, err := initClient(t.Context(), cfg)

	require.Error(t, err)
	assert.Nil(t, closeFn)
	assert.Contains(t, err.Error(), "creating api client")
}
