package apiclient

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	slogctx "github.com/veqryn/slog-context"
)

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// refresh returns an access token that replaces stale. Callers refreshing
// the same stale token share one call; the shared call does not observe the
// cancellation of any single caller.
func (c *Client) refresh(ctx context.Context, stale string) (string, error) {
	ch := c.refreshGroup.DoChan(stale, func() (any, error) {
		return c.refreshSession(context.WithoutCancel(ctx), stale)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (c *Client) refreshSession(ctx context.Context, stale string) (string, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	current, err := c.sessions.AccessToken(ctx)
	if err != nil {
		return "", fmt.Errorf("loading access token: %w", err)
	}
	if current != "" && current != stale {
		slogctx.Debug(ctx, "Access token was already refreshed, reusing it")
		c.meters.recordRefresh(ctx, refreshResultReused)
		return current, nil
	}

	refreshToken, err := c.sessions.RefreshToken(ctx)
	if err != nil {
		return "", fmt.Errorf("loading refresh token: %w", err)
	}
	if refreshToken == "" {
		return "", ErrNoRefreshToken
	}

	tokens, err := c.exchange(ctx, refreshToken)
	if err != nil {
		return "", c.endSession(ctx, err)
	}

	if err := c.sessions.SetAccessToken(ctx, tokens.Access); err != nil {
		return "", err
	}
	if tokens.Refresh != "" && tokens.Refresh != refreshToken {
		if err := c.sessions.SetRefreshToken(ctx, tokens.Refresh); err != nil {
			return "", err
		}
	}

	c.meters.recordRefresh(ctx, refreshResultSuccess)
	slogctx.Info(ctx, "Refreshed access token")

	return tokens.Access, nil
}

// exchange posts the refresh token to the refresh endpoint. It never sends
// the Authorization header.
func (c *Client) exchange(ctx context.Context, refreshToken string) (refreshResponse, error) {
	resp, err := c.send(ctx, Post(c.refreshPath, refreshRequest{Refresh: refreshToken}), "", uuid.NewString())
	if err != nil {
		return refreshResponse{}, err
	}

	resp, err = resp.result()
	if err != nil {
		return refreshResponse{}, err
	}

	var tokens refreshResponse
	if err := resp.Decode(&tokens); err != nil {
		return refreshResponse{}, err
	}
	if tokens.Access == "" {
		return refreshResponse{}, errors.New("refresh response carries no access token")
	}

	return tokens, nil
}

// endSession clears the store after a failed refresh and returns the error
// reported to the caller.
func (c *Client) endSession(ctx context.Context, cause error) error {
	c.meters.recordRefresh(ctx, refreshResultFailure)
	slogctx.Warn(ctx, "Refreshing access token failed, clearing session", "error", cause)

	if err := c.sessions.Clear(ctx); err != nil {
		slogctx.Error(ctx, "Failed to clear session", "error", err)
		return &RefreshError{Err: errors.Join(cause, err)}
	}

	return &RefreshError{Err: cause}
}
