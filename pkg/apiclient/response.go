package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Response is a fully read backend response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON body into v. An empty body leaves v untouched.
func (r Response) Decode(v any) error {
	if len(r.Body) == 0 {
		return nil
	}

	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decoding response body: %w", err)
	}

	return nil
}

func (r Response) successful() bool {
	return r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

// result turns a non-2xx response into an *UpstreamError.
func (r Response) result() (Response, error) {
	if r.successful() {
		return r, nil
	}

	return Response{}, &UpstreamError{
		StatusCode: r.StatusCode,
		Header:     r.Header,
		Body:       r.Body,
	}
}
