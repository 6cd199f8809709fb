package apiclient_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/workzen/hrms-client/pkg/apiclient"
)

func TestUpstreamError_Message(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "Detail",
			body: `{"detail": "Authentication credentials were not provided."}`,
			want: "Authentication credentials were not provided.",
		},
		{
			name: "Error string",
			body: `{"success": false, "error": "Invalid credentials"}`,
			want: "Invalid credentials",
		},
		{
			name: "Error field map",
			body: `{"success": false, "error": {"password": ["Too short."], "email": ["Enter a valid email address."]}}`,
			want: "email: Enter a valid email address.\npassword: Too short.",
		},
		{
			name: "Message",
			body: `{"message": "Payrun already processed"}`,
			want: "Payrun already processed",
		},
		{
			name: "Field errors",
			body: `{"end_date": ["End date must be after start date.", "Required."], "non_field_errors": "Overlapping leave"}`,
			want: "end_date: End date must be after start date., Required.\nnon_field_errors: Overlapping leave",
		},
		{
			name: "Plain text",
			body: "  Bad Gateway\n",
			want: "Bad Gateway",
		},
		{
			name: "Empty body",
			body: "",
			want: "",
		},
		{
			name: "Long text is truncated",
			body: strings.Repeat("x", 300),
			want: strings.Repeat("x", 256) + "...",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &apiclient.UpstreamError{StatusCode: http.StatusBadRequest, Body: []byte(tt.body)}
			assert.Equal(t, tt.want, err.Message())
		})
	}
}

func TestUpstreamError_Error(t *testing.T) {
	err := &apiclient.UpstreamError{StatusCode: http.StatusForbidden, Body: []byte(`{"detail": "Not allowed"}`)}
	assert.Equal(t, "upstream returned status 403: Not allowed", err.Error())

	err = &apiclient.UpstreamError{StatusCode: http.StatusBadGateway}
	assert.Equal(t, "upstream returned status 502", err.Error())
}

func TestUpstreamError_Is(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   bool
	}{
		{name: "401 is unauthorized", status: http.StatusUnauthorized, want: true},
		{name: "403 is not unauthorized", status: http.StatusForbidden, want: false},
		{name: "500 is not unauthorized", status: http.StatusInternalServerError, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &apiclient.UpstreamError{StatusCode: tt.status}
			assert.Equal(t, tt.want, errors.Is(err, apiclient.ErrUnauthorized))
		})
	}
}

func TestRefreshError(t *testing.T) {
	cause := &apiclient.UpstreamError{StatusCode: http.StatusUnauthorized, Body: []byte(`{"detail": "Token is blacklisted"}`)}
	err := error(&apiclient.RefreshError{Err: cause})

	assert.ErrorIs(t, err, apiclient.ErrAuthExpired)
	assert.ErrorIs(t, err, apiclient.ErrUnauthorized)

	var upstreamErr *apiclient.UpstreamError
	assert.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, "authentication expired: upstream returned status 401: Token is blacklisted", err.Error())
}
