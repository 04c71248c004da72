package apperrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"validation", Required("sale_date"), "Please fill in sale date."},
		{"bad credentials", &AuthError{Kind: InvalidCredentials}, "Invalid email or password."},
		{"auth network", &AuthError{Kind: NetworkFailure, Err: errors.New("dial tcp")}, "Unable to reach the server. Check your connection and try again."},
		{"transport", &TransportError{Op: "list /sales", Err: context.DeadlineExceeded}, "Unable to reach the server. Check your connection and try again."},
		{"unauthorized", &HTTPError{Status: http.StatusUnauthorized}, "Your session has expired. Please log in again."},
		{"not found", &HTTPError{Status: http.StatusNotFound}, "The record no longer exists."},
		{"server", &HTTPError{Status: http.StatusBadGateway}, "The server failed to process the request."},
		{"unprocessable", &HTTPError{Status: http.StatusUnprocessableEntity}, "The request was rejected by the server."},
		{"no session", fmt.Errorf("load sales: %w", ErrNoSession), "Please log in to continue."},
		{"unknown", errors.New("boom"), "Something went wrong."},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Message(tc.err))
		})
	}
}

func TestWrappedErrorsRemainMatchable(t *testing.T) {
	base := &TransportError{Op: "delete /feeds/3", Err: context.Canceled}
	wrapped := fmt.Errorf("remove feed: %w", base)

	var transportErr *TransportError
	require.ErrorAs(t, wrapped, &transportErr)
	assert.ErrorIs(t, wrapped, context.Canceled)

	assert.True(t, IsStatus(fmt.Errorf("x: %w", &HTTPError{Status: 401}), http.StatusUnauthorized))
	assert.False(t, IsStatus(base, http.StatusUnauthorized))
}
