package bullhorn

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Auth steps reported by AuthError.
const (
	StepAuthorize = "authorize"
	StepToken     = "token"
)

// Common static errors that can be wrapped with context.
var (
	ErrConfigRequired      = errors.New("config is required")
	ErrMissingCredentials  = errors.New("username, password, client id and client secret are required")
	ErrNoRedirect          = errors.New("authorize request did not redirect")
	ErrNoAuthorizationCode = errors.New("redirect location has no code parameter")
	ErrEmptyAccessToken    = errors.New("token response has no access token")
	ErrIncompleteLogin     = errors.New("login response is missing restUrl or BhRestToken")
	ErrEmailRequired       = errors.New("candidate email is required")
	ErrCandidateRequired   = errors.New("candidate is required")
	ErrJobOrderRequired    = errors.New("job order is required")
	ErrEntityRequired      = errors.New("entity name is required")
	ErrInvalidEntityID     = errors.New("entity id must be positive")
	ErrFileContentRequired = errors.New("file content is required")
	ErrCacheMiss           = errors.New("key not found")
	ErrCacheEntryExpired   = errors.New("entry expired")
)

// FieldError describes a single validation failure reported by the API.
type FieldError struct {
	PropertyName string `json:"propertyName" yaml:"property_name"`
	Severity     string `json:"severity"     yaml:"severity"`
	Type         string `json:"type"         yaml:"type"`
}

// APIError represents an error body returned by the Bullhorn REST API.
type APIError struct {
	ErrorMessage    string       `json:"errorMessage"              yaml:"error_message"`
	ErrorMessageKey string       `json:"errorMessageKey,omitempty" yaml:"error_message_key,omitempty"`
	ErrorCode       int          `json:"errorCode"                 yaml:"error_code"`
	Errors          []FieldError `json:"errors,omitempty"          yaml:"errors,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.ErrorMessageKey != "" {
		return fmt.Sprintf("%s (key: %s, code: %d)", e.ErrorMessage, e.ErrorMessageKey, e.ErrorCode)
	}

	return fmt.Sprintf("%s (code: %d)", e.ErrorMessage, e.ErrorCode)
}

// ResponseError is returned by the HTTP layer for any status >= 400.
type ResponseError struct {
	StatusCode int
	Body       []byte
	API        *APIError
}

// Error implements the error interface for ResponseError.
func (e *ResponseError) Error() string {
	if e.API != nil && e.API.ErrorMessage != "" {
		return fmt.Sprintf("status %d: %s", e.StatusCode, e.API.Error())
	}

	return fmt.Sprintf("status %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// ParseResponseError builds a ResponseError from a failed response body.
// Bodies that are not Bullhorn error documents leave API nil.
func ParseResponseError(statusCode int, data []byte) *ResponseError {
	respErr := &ResponseError{StatusCode: statusCode, Body: data}

	var apiErr APIError

	err := json.Unmarshal(data, &apiErr)
	if err == nil && (apiErr.ErrorMessage != "" || apiErr.ErrorCode != 0) {
		respErr.API = &apiErr
	}

	return respErr
}

// TransportError is a network-level failure; no response was received.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// AuthError is a failure in the authorize or token hop.
type AuthError struct {
	Step       string
	StatusCode int
	Message    string
	Err        error
}

func (e *AuthError) Error() string {
	msg := "authentication failed at " + e.Step
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}

	if e.Message != "" {
		msg += ": " + e.Message
	}

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// LoginError is a platform login call that was answered with a failure.
type LoginError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *LoginError) Error() string {
	msg := "platform login failed"
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}

	if e.Message != "" {
		msg += ": " + e.Message
	}

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *LoginError) Unwrap() error {
	return e.Err
}

// DomainError is an entity call that failed after a valid session was obtained.
type DomainError struct {
	Operation  string
	Entity     string
	StatusCode int
	API        *APIError
	Err        error
}

func (e *DomainError) Error() string {
	msg := fmt.Sprintf("%s %s failed", e.Operation, e.Entity)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError classifies err from an entity call. A ResponseError
// contributes its status and API body.
func NewDomainError(operation, entity string, err error) *DomainError {
	domainErr := &DomainError{Operation: operation, Entity: entity, Err: err}

	respErr := &ResponseError{}
	if errors.As(err, &respErr) {
		domainErr.StatusCode = respErr.StatusCode
		domainErr.API = respErr.API
	}

	return domainErr
}

// IsAuthError checks if the error came from the authorize or token hop.
func IsAuthError(err error) bool {
	authErr := &AuthError{}

	return errors.As(err, &authErr)
}

// IsLoginError checks if the error came from the platform login call.
func IsLoginError(err error) bool {
	loginErr := &LoginError{}

	return errors.As(err, &loginErr)
}

// IsTransportError checks if the error is a network-level failure.
func IsTransportError(err error) bool {
	transportErr := &TransportError{}

	return errors.As(err, &transportErr)
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	respErr := &ResponseError{}
	if errors.As(err, &respErr) {
		return respErr.StatusCode == http.StatusNotFound
	}

	domainErr := &DomainError{}
	if errors.As(err, &domainErr) {
		return domainErr.StatusCode == http.StatusNotFound
	}

	return false
}
