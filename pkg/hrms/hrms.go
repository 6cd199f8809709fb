// Package hrms exposes the resources of the WorkZen HRMS backend on top of
// the authenticated apiclient.
package hrms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/workzen/hrms-client/pkg/apiclient"
)

var ErrNoTokens = errors.New("response carries no access token")

// Client groups the resource services. All of them share one apiclient and
// therefore one session.
type Client struct {
	Auth       *AuthService
	Users      *UsersService
	Attendance *AttendanceService
	Leaves     *LeavesService
	Payroll    *PayrollService
	Analytics  *AnalyticsService

	api *apiclient.Client
}

func New(api *apiclient.Client) *Client {
	return &Client{
		Auth:       &AuthService{api: api, sessions: api.Sessions()},
		Users:      &UsersService{api: api},
		Attendance: &AttendanceService{api: api},
		Leaves:     &LeavesService{api: api},
		Payroll:    &PayrollService{api: api},
		Analytics:  &AnalyticsService{api: api},
		api:        api,
	}
}

// API returns the underlying client for endpoints without a typed service.
func (c *Client) API() *apiclient.Client {
	return c.api
}

// envelope is the {"success": ..., "data": ...} wrapper some endpoints put
// around their payload.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
}

// page is a paginated list.
type page struct {
	Results json.RawMessage `json:"results"`
}

// payload strips the success envelope when there is one.
func payload(body []byte) []byte {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return body
	}
	if env.Success != nil && len(env.Data) > 0 {
		return env.Data
	}
	return body
}

// do sends req and decodes the payload into a T.
func do[T any](ctx context.Context, api *apiclient.Client, req apiclient.Request) (T, error) {
	var v T

	resp, err := api.Do(ctx, req)
	if err != nil {
		return v, err
	}

	body := payload(resp.Body)
	if len(body) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(body, &v); err != nil {
		return v, fmt.Errorf("decoding %s %s response: %w", req.Method, req.Path, err)
	}

	return v, nil
}

// list sends req and decodes a list payload, plain or paginated.
func list[T any](ctx context.Context, api *apiclient.Client, req apiclient.Request) ([]T, error) {
	raw, err := do[json.RawMessage](ctx, api, req)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var p page
	if err := json.Unmarshal(raw, &p); err == nil && len(p.Results) > 0 {
		raw = p.Results
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decoding %s %s list: %w", req.Method, req.Path, err)
	}

	return items, nil
}

// exec sends req and discards the payload.
func exec(ctx context.Context, api *apiclient.Client, req apiclient.Request) error {
	_, err := api.Do(ctx, req)
	return err
}

func resourcePath(prefix string, id ID, suffix ...string) string {
	p := prefix + url.PathEscape(id.String()) + "/"
	for _, s := range suffix {
		p += s + "/"
	}
	return p
}

func withQuery(req apiclient.Request, params url.Values) apiclient.Request {
	for k, vs := range params {
		for _, v := range vs {
			req = req.WithQuery(k, v)
		}
	}
	return req
}

// withInt adds key only for a positive value.
func withInt(req apiclient.Request, key string, v int) apiclient.Request {
	if v <= 0 {
		return req
	}
	return req.WithQuery(key, fmt.Sprint(v))
}
