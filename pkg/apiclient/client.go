// Package apiclient implements the authenticated HTTP client of the HRMS
// backend. It attaches the bearer token of the current session to every
// request and recovers from an expired access token by refreshing the session
// once and resending the request.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	slogctx "github.com/veqryn/slog-context"

	"github.com/workzen/hrms-client/pkg/session"
)

const (
	DefaultRefreshPath = "/token/refresh/"
	DefaultUserAgent   = "hrms-client"

	// MaxResponseSize bounds the response body the client reads.
	MaxResponseSize = 10 << 20

	headerRequestID = "X-Request-ID"
)

// Client sends requests to the HRMS backend on behalf of the session held by
// a session.Manager. It is safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	sessions   *session.Manager
	httpClient *http.Client
	meters     *meters
	tracer     trace.Tracer

	meterProvider metric.MeterProvider

	refreshPath   string
	userAgent     string
	refreshLeeway time.Duration

	// refreshGroup coalesces concurrent refreshes of the same stale token;
	// refreshMu serializes refreshes of different stale tokens.
	refreshGroup singleflight.Group
	refreshMu    sync.Mutex
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// WithRefreshPath overrides the refresh endpoint, relative to the base URL.
func WithRefreshPath(path string) Option {
	return func(cl *Client) {
		if path != "" {
			cl.refreshPath = path
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(cl *Client) {
		if ua != "" {
			cl.userAgent = ua
		}
	}
}

// WithRefreshLeeway makes the client refresh a JWT access token before
// sending when it expires within leeway. Zero disables the check.
func WithRefreshLeeway(leeway time.Duration) Option {
	return func(cl *Client) {
		cl.refreshLeeway = leeway
	}
}

// WithMeterProvider records the client metrics with provider instead of the
// global one.
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(cl *Client) {
		cl.meterProvider = provider
	}
}

// NewClient returns a client for the API rooted at baseURL, e.g.
// "http://localhost:8000/api".
func NewClient(baseURL string, sessions *session.Manager, opts ...Option) (*Client, error) {
	if sessions == nil {
		return nil, errors.New("session manager is required")
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", baseURL)
	}

	c := &Client{
		baseURL:     u,
		sessions:    sessions,
		httpClient:  http.DefaultClient,
		tracer:      otel.Tracer(instrumentationName),
		refreshPath: DefaultRefreshPath,
		userAgent:   DefaultUserAgent,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	c.meters, err = newMeters(c.meterProvider)
	if err != nil {
		return nil, err
	}

	return c, nil
}

// Sessions returns the session manager the client reads its tokens from.
func (c *Client) Sessions() *session.Manager {
	return c.sessions
}

// Do sends req with the current access token. A 2xx response is returned
// unchanged and every other status becomes an *UpstreamError. On a 401 the
// session is refreshed at most once and req is resent with the new token;
// the outcome of that retry is returned as is. When the refresh fails the
// session store is cleared and the error matches ErrAuthExpired.
func (c *Client) Do(ctx context.Context, req Request) (Response, error) {
	requestID := uuid.NewString()
	ctx = slogctx.With(ctx, "request_id", requestID, "method", req.Method, "path", req.Path)

	ctx, span := c.tracer.Start(ctx, "hrms "+req.Method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.path", req.Path),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	start := time.Now()
	last, err := c.do(ctx, req, requestID)

	var resp Response
	if err == nil {
		resp, err = last.result()
	}

	statusCode := last.StatusCode
	c.meters.recordRequest(ctx, req.Method, statusCode, time.Since(start))

	span.SetAttributes(attribute.Int("http.response.status_code", statusCode))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	return resp, err
}

// do returns the last backend response it received, whatever its status.
// On a failed refresh that is the 401 which triggered it.
func (c *Client) do(ctx context.Context, req Request, requestID string) (Response, error) {
	if req.Anonymous {
		return c.send(ctx, req, "", requestID)
	}

	token, err := c.sessions.AccessToken(ctx)
	if err != nil {
		return Response{}, fmt.Errorf("loading access token: %w", err)
	}

	refreshed := false
	if c.expiresSoon(token) {
		slogctx.Debug(ctx, "Access token expires soon, refreshing before sending")

		fresh, err := c.refresh(ctx, token)
		switch {
		case err == nil:
			token, refreshed = fresh, true
		case !errors.Is(err, ErrNoRefreshToken):
			return Response{}, err
		}
	}

	resp, err := c.send(ctx, req, token, requestID)
	if err != nil {
		return Response{}, err
	}

	if resp.StatusCode != http.StatusUnauthorized || refreshed {
		return resp, nil
	}

	slogctx.Debug(ctx, "Request was rejected as unauthorized, refreshing the session")

	fresh, err := c.refresh(ctx, token)
	if errors.Is(err, ErrNoRefreshToken) {
		return resp, nil
	}
	if err != nil {
		return resp, err
	}

	return c.send(ctx, req, fresh, requestID)
}

// Refresh exchanges the stored refresh token for a new access token. It
// fails with ErrNoRefreshToken when none is held and with ErrAuthExpired
// when the backend rejects the refresh.
func (c *Client) Refresh(ctx context.Context) error {
	token, err := c.sessions.AccessToken(ctx)
	if err != nil {
		return fmt.Errorf("loading access token: %w", err)
	}

	_, err = c.refresh(ctx, token)
	return err
}

func (c *Client) expiresSoon(token string) bool {
	if c.refreshLeeway <= 0 {
		return false
	}

	exp, ok := session.Session{AccessToken: token}.AccessTokenExpiry()
	return ok && time.Until(exp) < c.refreshLeeway
}

func (c *Client) send(ctx context.Context, req Request, token, requestID string) (Response, error) {
	httpReq, err := c.newHTTPRequest(ctx, req, token, requestID)
	if err != nil {
		return Response{}, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return Response{}, fmt.Errorf("reading response body: %w", err)
	}
	if len(body) > MaxResponseSize {
		return Response{}, fmt.Errorf("%w: more than %d bytes", ErrResponseTooLarge, MaxResponseSize)
	}

	slogctx.Debug(ctx, "Received response", "status", resp.StatusCode)

	return Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

func (c *Client) newHTTPRequest(ctx context.Context, req Request, token, requestID string) (*http.Request, error) {
	u := c.baseURL.JoinPath(req.Path)
	if len(req.Query) > 0 {
		q := u.Query()
		for k, vs := range req.Query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set(headerRequestID, requestID)
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	return httpReq, nil
}
