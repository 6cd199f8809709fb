package business

import (
	"context"
	"errors"
	"fmt"
	"time"

	slogctx "github.com/veqryn/slog-context"

	"github.com/workzen/hrms-client/internal/config"
	"github.com/workzen/hrms-client/pkg/apiclient"
)

const defaultKeepAliveInterval = 4 * time.Minute

// KeepAliveMain refreshes the access token on every interval until the
// context is done. It stops with an error once the session can no longer
// be refreshed.
func KeepAliveMain(ctx context.Context, cfg *config.Config) error {
	client, closeFn, err := initClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	slogctx.Info(ctx, "Starting session keep-alive")
	return keepAlive(ctx, client.API(), cfg.KeepAlive.Interval)
}

func keepAlive(ctx context.Context, api *apiclient.Client, interval time.Duration) error {
	if interval <= 0 {
		interval = defaultKeepAliveInterval
	}

	c := time.Tick(interval)
	for {
		slogctx.Debug(ctx, "Triggering session refresh")
		err := api.Refresh(ctx)
		switch {
		case errors.Is(err, apiclient.ErrAuthExpired), errors.Is(err, apiclient.ErrNoRefreshToken):
			return fmt.Errorf("keeping the session alive: %w", err)
		case err != nil:
			slogctx.Error(ctx, "Failed to refresh the session", "error", err)
		}

		select {
		case <-c:
			continue
		case <-ctx.Done():
			return nil
		}
	}
}
