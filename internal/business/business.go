package business

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/valkey-io/valkey-go"

	"github.com/workzen/hrms-client/internal/config"
	"github.com/workzen/hrms-client/pkg/apiclient"
	"github.com/workzen/hrms-client/pkg/hrms"
	"github.com/workzen/hrms-client/pkg/session"
	sessionfs "github.com/workzen/hrms-client/pkg/session/fs"
	sessionmemory "github.com/workzen/hrms-client/pkg/session/memory"
	sessionsql "github.com/workzen/hrms-client/pkg/session/sql"
	sessionvalkey "github.com/workzen/hrms-client/pkg/session/valkey"
)

var ErrUnknownSessionStore = errors.New("unknown session store type")

const defaultNamespace = "default"

func noop() {}

// initClient builds the HRMS client on top of the configured session store.
// closeFn releases the store and must be called once the client is no
// longer used.
func initClient(ctx context.Context, cfg *config.Config) (_ *hrms.Client, closeFn func(), _ error) {
	sessions, closeFn, err := initSessionManager(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("initialising the session manager: %w", err)
	}

	api, err := newAPIClient(cfg, sessions)
	if err != nil {
		closeFn()
		return nil, nil, err
	}

	return hrms.New(api), closeFn, nil
}

func newAPIClient(cfg *config.Config, sessions *session.Manager) (*apiclient.Client, error) {
	httpClient, err := loadHTTPClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("loading http client: %w", err)
	}

	api, err := apiclient.NewClient(
		cfg.API.BaseURL,
		sessions,
		apiclient.WithHTTPClient(httpClient),
		apiclient.WithRefreshPath(cfg.API.RefreshPath),
		apiclient.WithUserAgent(cfg.API.UserAgent),
		apiclient.WithRefreshLeeway(cfg.API.RefreshLeeway),
	)
	if err != nil {
		return nil, fmt.Errorf("creating api client: %w", err)
	}

	return api, nil
}

func initSessionManager(ctx context.Context, cfg *config.Config) (_ *session.Manager, closeFn func(), _ error) {
	store, closeFn, err := initSessionStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	return session.NewManager(store), closeFn, nil
}

func initSessionStore(ctx context.Context, cfg *config.Config) (_ session.Store, closeFn func(), _ error) {
	namespace := cfg.SessionStore.Namespace
	if namespace == "" {
		namespace = defaultNamespace
	}

	switch cfg.SessionStore.Type {
	case config.SessionStoreMemory:
		return sessionmemory.NewStore(), noop, nil
	case config.SessionStoreFS, "":
		path, err := config.SessionFilePath(cfg.SessionStore)
		if err != nil {
			return nil, nil, fmt.Errorf("resolving session file: %w", err)
		}

		store, err := sessionfs.NewStore(path)
		if err != nil {
			return nil, nil, fmt.Errorf("creating fs session store: %w", err)
		}

		return store, noop, nil
	case config.SessionStoreValKey:
		valkeyOpts, err := config.MakeValKeyOptions(cfg.ValKey)
		if err != nil {
			return nil, nil, fmt.Errorf("making valkey options from config: %w", err)
		}

		valkeyClient, err := valkey.NewClient(valkeyOpts)
		if err != nil {
			return nil, nil, fmt.Errorf("creating a new valkey client: %w", err)
		}

		prefix := namespace
		if cfg.ValKey.Prefix != "" {
			prefix = cfg.ValKey.Prefix + ":" + namespace
		}

		return sessionvalkey.NewStore(valkeyClient, prefix), valkeyClient.Close, nil
	case config.SessionStorePostgres:
		db, err := newPool(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}

		return sessionsql.NewStore(db, namespace), db.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownSessionStore, cfg.SessionStore.Type)
	}
}

func newPool(ctx context.Context, conf config.Database) (*pgxpool.Pool, error) {
	connStr, err := config.MakeConnStr(conf)
	if err != nil {
		return nil, fmt.Errorf("making dsn from config: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parsing pgxpool config: %w", err)
	}

	poolCfg.ConnConfig.Tracer = otelpgx.NewTracer()

	db, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("initialising pgxpool connection: %w", err)
	}

	return db, nil
}

func loadHTTPClient(cfg *config.Config) (*http.Client, error) {
	switch cfg.API.ClientAuth.Type {
	case config.ClientAuthMTLS:
		if cfg.API.ClientAuth.MTLS == nil {
			return nil, errors.New("mtls client auth requires an mtls section")
		}

		tlsConfig, err := commoncfg.LoadMTLSConfig(cfg.API.ClientAuth.MTLS)
		if err != nil {
			return nil, fmt.Errorf("loading mTLS config: %w", err)
		}

		return &http.Client{
			Timeout: cfg.API.Timeout,
			Transport: &http.Transport{
				Proxy:           http.ProxyFromEnvironment,
				TLSClientConfig: tlsConfig,
			},
		}, nil
	case config.ClientAuthInsecure, "":
		return &http.Client{Timeout: cfg.API.Timeout}, nil
	default:
		return nil, fmt.Errorf("unknown Client Auth type %q", cfg.API.ClientAuth.Type)
	}
}
