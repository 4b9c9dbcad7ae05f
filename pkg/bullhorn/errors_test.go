package bullhorn

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDial = errors.New("dial tcp: connection refused")

func TestAPIError_Error(t *testing.T) {
	err := &APIError{
		ErrorMessage:    "Bad 'BhRestToken' or timed-out.",
		ErrorMessageKey: "errors.authentication.invalidRestToken",
		ErrorCode:       401,
	}

	assert.Equal(t, "Bad 'BhRestToken' or timed-out. (key: errors.authentication.invalidRestToken, code: 401)", err.Error())

	err.ErrorMessageKey = ""
	assert.Equal(t, "Bad 'BhRestToken' or timed-out. (code: 401)", err.Error())
}

func TestParseResponseError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantAPI  bool
		expected string
	}{
		{
			name:     "bullhorn error document",
			status:   http.StatusBadRequest,
			body:     `{"errorMessage":"error persisting an entity of type: Candidate","errorCode":400,"errors":[{"propertyName":"lastName","severity":"ERROR","type":"MISSING_REQUIRED_PROPERTY"}]}`,
			wantAPI:  true,
			expected: "status 400: error persisting an entity of type: Candidate (code: 400)",
		},
		{
			name:     "oauth error body",
			status:   http.StatusBadRequest,
			body:     `{"error":"invalid_grant"}`,
			expected: "status 400: Bad Request",
		},
		{
			name:     "html body",
			status:   http.StatusBadGateway,
			body:     `<html>bad gateway</html>`,
			expected: "status 502: Bad Gateway",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			respErr := ParseResponseError(tt.status, []byte(tt.body))

			assert.Equal(t, tt.status, respErr.StatusCode)
			assert.Equal(t, []byte(tt.body), respErr.Body)
			assert.Equal(t, tt.wantAPI, respErr.API != nil)
			assert.Equal(t, tt.expected, respErr.Error())
		})
	}
}

func TestAuthError(t *testing.T) {
	transportErr := &TransportError{Method: "POST", URL: "https://auth.example.com/oauth/authorize", Err: errDial}
	err := &AuthError{Step: StepAuthorize, Err: transportErr}

	assert.Equal(t, "authentication failed at authorize: POST https://auth.example.com/oauth/authorize: dial tcp: connection refused", err.Error())
	assert.True(t, IsAuthError(err))
	assert.True(t, IsTransportError(err))
	require.ErrorIs(t, err, errDial)

	withStatus := &AuthError{Step: StepToken, StatusCode: 400, Message: "invalid_grant", Err: ErrEmptyAccessToken}
	assert.Equal(t, "authentication failed at token (status 400): invalid_grant: token response has no access token", withStatus.Error())
	assert.False(t, IsTransportError(withStatus))
}

func TestLoginError(t *testing.T) {
	err := &LoginError{StatusCode: 500, Message: "login rejected"}

	assert.Equal(t, "platform login failed (status 500): login rejected", err.Error())
	assert.True(t, IsLoginError(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, IsAuthError(err))

	incomplete := &LoginError{StatusCode: 200, Err: ErrIncompleteLogin}
	require.ErrorIs(t, incomplete, ErrIncompleteLogin)
}

func TestNewDomainError(t *testing.T) {
	respErr := ParseResponseError(http.StatusNotFound, []byte(`{"errorMessage":"Entity not found","errorCode":404}`))

	err := NewDomainError("create", "JobSubmission", respErr)
	assert.Equal(t, http.StatusNotFound, err.StatusCode)
	require.NotNil(t, err.API)
	assert.Equal(t, "Entity not found", err.API.ErrorMessage)
	assert.Equal(t, "create JobSubmission failed (status 404): status 404: Entity not found (code: 404)", err.Error())
	assert.True(t, IsNotFound(err))

	transport := NewDomainError("search", "Candidate", &TransportError{Method: "GET", URL: "u", Err: errDial})
	assert.Zero(t, transport.StatusCode)
	assert.Nil(t, transport.API)
	assert.True(t, IsTransportError(transport))
	assert.False(t, IsNotFound(transport))
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "response error not found", err: &ResponseError{StatusCode: http.StatusNotFound}, expected: true},
		{name: "response error other", err: &ResponseError{StatusCode: http.StatusBadRequest}, expected: false},
		{name: "domain error not found", err: &DomainError{StatusCode: http.StatusNotFound}, expected: true},
		{name: "plain error", err: errDial, expected: false},
		{name: "nil", err: nil, expected: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsNotFound(tt.err))
		})
	}
}

func TestCredentials_Complete(t *testing.T) {
	config := &Config{Username: "u", Password: "p", ClientID: "id", ClientSecret: "s"}
	assert.True(t, config.Credentials().Complete())

	config.ClientSecret = ""
	assert.False(t, config.Credentials().Complete())
}
