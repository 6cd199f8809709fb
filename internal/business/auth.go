package business

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	slogctx "github.com/veqryn/slog-context"

	"github.com/workzen/hrms-client/internal/config"
	"github.com/workzen/hrms-client/pkg/hrms"
	"github.com/workzen/hrms-client/pkg/session"
)

var ErrNotLoggedIn = errors.New("not logged in")

type LoginInput struct {
	Email    string
	Password string
}

type WhoAmIInput struct {
	// Remote asks the backend instead of reading the stored profile.
	Remote bool
}

// LoginMain logs in and stores the resulting session.
func LoginMain(ctx context.Context, cfg *config.Config, in LoginInput, out io.Writer) error {
	if in.Email == "" || in.Password == "" {
		return errors.New("email and password are required")
	}

	client, closeFn, err := initClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	resp, err := client.Auth.Login(ctx, in.Email, in.Password)
	if err != nil {
		return err
	}

	name := resp.User.DisplayName()
	if name == "" {
		name = in.Email
	}

	_, err = fmt.Fprintf(out, "Logged in as %s\n", name)
	return err
}

// LogoutMain forgets the stored session.
func LogoutMain(ctx context.Context, cfg *config.Config, out io.Writer) error {
	sessions, closeFn, err := initSessionManager(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialising the session manager: %w", err)
	}
	defer closeFn()

	err = sessions.Clear(ctx)
	if err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}

	slogctx.Debug(ctx, "Session cleared")

	_, err = fmt.Fprintln(out, "Logged out")
	return err
}

// WhoAmIMain prints the profile of the logged-in user as JSON.
func WhoAmIMain(ctx context.Context, cfg *config.Config, in WhoAmIInput, out io.Writer) error {
	client, closeFn, err := initClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	if !client.Auth.IsAuthenticated(ctx) {
		return ErrNotLoggedIn
	}

	var user hrms.User
	if in.Remote {
		user, err = client.Auth.Me(ctx)
	} else {
		user, err = client.Auth.CurrentUser(ctx)
		if errors.Is(err, session.ErrNotFound) {
			// Sessions created by a refresh-only flow carry no profile.
			user, err = client.Auth.Me(ctx)
		}
	}
	if err != nil {
		return fmt.Errorf("loading user: %w", err)
	}

	data, err := json.MarshalIndent(user, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding user: %w", err)
	}

	_, err = fmt.Fprintln(out, string(data))
	return err
}
