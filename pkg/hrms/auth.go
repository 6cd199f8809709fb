package hrms

import (
	"context"
	"encoding/json"
	"fmt"

	slogctx "github.com/veqryn/slog-context"

	"github.com/workzen/hrms-client/pkg/apiclient"
	"github.com/workzen/hrms-client/pkg/session"
)

const (
	loginPath    = "/users/login/"
	registerPath = "/users/register/"
	mePath       = "/users/me/"

	// Served by the accounts app mounted under /auth/.
	profilePath   = "/auth/profile/"
	dashboardPath = "/auth/dashboard/"
)

type AuthService struct {
	api      *apiclient.Client
	sessions *session.Manager
}

type loginCredentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// tokenGrant covers both the flat {access, refresh, user} body and the
// {user, tokens: {access, refresh}} variant.
type tokenGrant struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	Tokens  *struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	} `json:"tokens"`
	User User `json:"user"`
}

func (g tokenGrant) response() LoginResponse {
	resp := LoginResponse{Access: g.Access, Refresh: g.Refresh, User: g.User}
	if resp.Access == "" && g.Tokens != nil {
		resp.Access, resp.Refresh = g.Tokens.Access, g.Tokens.Refresh
	}
	return resp
}

// Login exchanges credentials for a token pair and persists it together with
// the user profile. The request carries no bearer token, so a stale session
// never triggers a refresh.
func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	grant, err := do[tokenGrant](ctx, s.api, apiclient.Post(loginPath, loginCredentials{Email: email, Password: password}).WithoutAuth())
	if err != nil {
		return LoginResponse{}, fmt.Errorf("logging in: %w", err)
	}

	resp := grant.response()
	if resp.Access == "" {
		return LoginResponse{}, fmt.Errorf("logging in: %w", ErrNoTokens)
	}

	if err := s.persist(ctx, resp); err != nil {
		return LoginResponse{}, err
	}

	slogctx.Info(ctx, "Logged in", "user", resp.User.DisplayName())

	return resp, nil
}

// Register creates an account. Some deployments answer with a token pair,
// which is persisted like a login; others only return the profile and the
// user has to log in afterwards.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (LoginResponse, error) {
	raw, err := do[json.RawMessage](ctx, s.api, apiclient.Post(registerPath, req).WithoutAuth())
	if err != nil {
		return LoginResponse{}, fmt.Errorf("registering: %w", err)
	}
	if len(raw) == 0 {
		return LoginResponse{}, nil
	}

	var grant tokenGrant
	if err := json.Unmarshal(raw, &grant); err != nil {
		return LoginResponse{}, fmt.Errorf("decoding registration: %w", err)
	}
	if grant.User.ID == "" {
		// The profile itself, without a "user" wrapper.
		_ = json.Unmarshal(raw, &grant.User)
	}

	resp := grant.response()
	if resp.Access == "" {
		return resp, nil
	}

	if err := s.persist(ctx, resp); err != nil {
		return LoginResponse{}, err
	}

	return resp, nil
}

func (s *AuthService) persist(ctx context.Context, resp LoginResponse) error {
	if err := s.sessions.Save(ctx, session.Session{AccessToken: resp.Access, RefreshToken: resp.Refresh}); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	if err := s.sessions.SaveUser(ctx, resp.User); err != nil {
		return fmt.Errorf("saving user: %w", err)
	}
	return nil
}

// Me fetches the profile of the logged-in user.
func (s *AuthService) Me(ctx context.Context) (User, error) {
	return do[User](ctx, s.api, apiclient.Get(mePath))
}

// Profile fetches the logged-in user from the accounts profile endpoint.
func (s *AuthService) Profile(ctx context.Context) (User, error) {
	return do[User](ctx, s.api, apiclient.Get(profilePath))
}

func (s *AuthService) Dashboard(ctx context.Context) (Dashboard, error) {
	return do[Dashboard](ctx, s.api, apiclient.Get(dashboardPath))
}

// Logout forgets the session. It does not call the backend.
func (s *AuthService) Logout(ctx context.Context) error {
	return s.sessions.Clear(ctx)
}

// CurrentUser returns the profile stored at login without a network call.
// It returns session.ErrNotFound when no profile is stored.
func (s *AuthService) CurrentUser(ctx context.Context) (User, error) {
	var u User
	if err := s.sessions.User(ctx, &u); err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *AuthService) IsAuthenticated(ctx context.Context) bool {
	return s.sessions.IsAuthenticated(ctx)
}
