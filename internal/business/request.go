package business

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/workzen/hrms-client/internal/config"
	"github.com/workzen/hrms-client/pkg/apiclient"
)

var ErrInvalidRequest = errors.New("invalid request")

// RequestInput is a raw call to the backend, relative to the API base URL.
type RequestInput struct {
	Method string
	Path   string
	Query  []string // key=value
	Header []string // key:value
	Body   string   // JSON
}

func (in RequestInput) build() (apiclient.Request, error) {
	method := strings.ToUpper(in.Method)
	if method == "" {
		method = http.MethodGet
	}

	if in.Path == "" {
		return apiclient.Request{}, fmt.Errorf("%w: path is required", ErrInvalidRequest)
	}

	path := in.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req := apiclient.Request{Method: method, Path: path}

	for _, kv := range in.Query {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return apiclient.Request{}, fmt.Errorf("%w: query %q is not key=value", ErrInvalidRequest, kv)
		}
		req = req.WithQuery(key, value)
	}

	for _, kv := range in.Header {
		key, value, ok := strings.Cut(kv, ":")
		if !ok || key == "" {
			return apiclient.Request{}, fmt.Errorf("%w: header %q is not key:value", ErrInvalidRequest, kv)
		}
		req = req.WithHeader(strings.TrimSpace(key), strings.TrimSpace(value))
	}

	if in.Body != "" {
		if !json.Valid([]byte(in.Body)) {
			return apiclient.Request{}, fmt.Errorf("%w: body is not valid JSON", ErrInvalidRequest)
		}
		req.Body = json.RawMessage(in.Body)
	}

	return req, nil
}

// RequestMain sends an authenticated request and writes the response body
// to out.
func RequestMain(ctx context.Context, cfg *config.Config, in RequestInput, out io.Writer) error {
	req, err := in.build()
	if err != nil {
		return err
	}

	client, closeFn, err := initClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	resp, err := client.API().Do(ctx, req)
	if err != nil {
		return err
	}

	_, err = out.Write(resp.Body)
	if err != nil {
		return fmt.Errorf("writing response: %w", err)
	}

	if len(resp.Body) > 0 && resp.Body[len(resp.Body)-1] != '\n' {
		_, err = fmt.Fprintln(out)
	}

	return err
}
