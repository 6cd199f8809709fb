package apiclient

import (
	"maps"
	"net/http"
	"net/url"
)

// Request describes one logical call to the backend. It is a value: the
// With* helpers return modified copies and the client never mutates it, so
// the same Request can be sent again after a token refresh.
type Request struct {
	Method string
	Path   string // Relative to the client base URL, e.g. "/users/me/"
	Header http.Header
	Query  url.Values
	Body   any // JSON encoded when not nil

	// Anonymous requests carry no Authorization header and never trigger
	// a refresh, e.g. login and registration.
	Anonymous bool
}

func Get(path string) Request {
	return Request{Method: http.MethodGet, Path: path}
}

func Post(path string, body any) Request {
	return Request{Method: http.MethodPost, Path: path, Body: body}
}

func Put(path string, body any) Request {
	return Request{Method: http.MethodPut, Path: path, Body: body}
}

func Delete(path string) Request {
	return Request{Method: http.MethodDelete, Path: path}
}

// WithQuery returns a copy of r with the query parameter key set to value.
// Empty values are skipped.
func (r Request) WithQuery(key, value string) Request {
	if value == "" {
		return r
	}

	q := make(url.Values, len(r.Query)+1)
	maps.Copy(q, r.Query)
	q.Set(key, value)
	r.Query = q

	return r
}

// WithoutAuth returns a copy of r sent without the session's access token.
func (r Request) WithoutAuth() Request {
	r.Anonymous = true
	return r
}

// WithHeader returns a copy of r with the header key set to value.
func (r Request) WithHeader(key, value string) Request {
	h := r.Header.Clone()
	if h == nil {
		h = make(http.Header)
	}
	h.Set(key, value)
	r.Header = h

	return r
}
