package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"github.com/fivetwenty-io/bullhorn-client/internal/constants"
	"github.com/fivetwenty-io/bullhorn-client/internal/http"
	"github.com/fivetwenty-io/bullhorn-client/pkg/bullhorn"
)

// Token is the token endpoint response.
type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
}

// LoginResult is the platform login response plus the refresh token captured
// on the way. The refresh token is kept but never used to re-authenticate.
type LoginResult struct {
	RestURL      string `json:"restUrl"`
	BhRestToken  string `json:"BhRestToken"`
	RefreshToken string `json:"-"`
}

// AuthenticatorConfig configures an Authenticator.
type AuthenticatorConfig struct {
	AuthEndpoint string
	APIRoot      string
	Version      string
	Logger       bullhorn.Logger
	// HTTPOptions are applied to both the auth and the login clients.
	HTTPOptions []http.Option
}

// Authenticator turns credentials into a platform session through the
// authorize, token and login hops. Each hop consumes the previous one's
// output, so they always run in that order.
type Authenticator struct {
	authClient *http.Client
	apiClient  *http.Client
	version    string
	logger     bullhorn.Logger
}

// NewAuthenticator creates an Authenticator. The auth client never follows
// redirects so the authorize response's Location can be inspected.
func NewAuthenticator(config *AuthenticatorConfig) *Authenticator {
	version := config.Version
	if version == "" {
		version = bullhorn.DefaultVersion
	}

	authOpts := append([]http.Option{}, config.HTTPOptions...)
	authOpts = append(authOpts, http.WithoutRedirects())

	return &Authenticator{
		authClient: http.NewClient(config.AuthEndpoint, nil, authOpts...),
		apiClient:  http.NewClient(config.APIRoot, nil, config.HTTPOptions...),
		version:    version,
		logger:     config.Logger,
	}
}

// RequestAuthorizationCode posts the credentials to the authorize endpoint
// and returns the code carried by the first redirect's target URL.
func (a *Authenticator) RequestAuthorizationCode(ctx context.Context, credentials bullhorn.Credentials) (string, error) {
	resp, err := a.authClient.Do(ctx, &http.Request{
		Method: "POST",
		Path:   "authorize",
		Query: url.Values{
			"client_id":     {credentials.ClientID},
			"response_type": {constants.ResponseTypeCode},
			"action":        {constants.ActionLogin},
		},
		Form: url.Values{
			"username": {credentials.Username},
			"password": {credentials.Password},
		},
	})
	if err != nil {
		return "", authErrorFrom(bullhorn.StepAuthorize, resp, err)
	}

	if !resp.IsRedirect() {
		return "", &bullhorn.AuthError{Step: bullhorn.StepAuthorize, StatusCode: resp.StatusCode, Err: bullhorn.ErrNoRedirect}
	}

	location, err := resp.Location()
	if err != nil {
		return "", &bullhorn.AuthError{Step: bullhorn.StepAuthorize, StatusCode: resp.StatusCode, Err: err}
	}

	params := location.Query()

	code := params.Get("code")
	if code == "" {
		return "", &bullhorn.AuthError{
			Step:       bullhorn.StepAuthorize,
			StatusCode: resp.StatusCode,
			Message:    params.Get("error_description"),
			Err:        bullhorn.ErrNoAuthorizationCode,
		}
	}

	return code, nil
}

// ExchangeCodeForToken redeems an authorization code. An empty grantType
// means authorization_code.
func (a *Authenticator) ExchangeCodeForToken(ctx context.Context, code string, credentials bullhorn.Credentials, grantType string) (*Token, error) {
	if grantType == "" {
		grantType = constants.GrantTypeAuthorizationCode
	}

	resp, err := a.authClient.Do(ctx, &http.Request{
		Method: "POST",
		Path:   "token",
		Query: url.Values{
			"code":          {code},
			"client_id":     {credentials.ClientID},
			"client_secret": {credentials.ClientSecret},
			"grant_type":    {grantType},
		},
	})
	if err != nil {
		return nil, authErrorFrom(bullhorn.StepToken, resp, err)
	}

	var token Token

	err = json.Unmarshal(resp.Body, &token)
	if err != nil {
		return nil, &bullhorn.AuthError{Step: bullhorn.StepToken, StatusCode: resp.StatusCode, Err: fmt.Errorf("parsing token response: %w", err)}
	}

	if token.AccessToken == "" {
		return nil, &bullhorn.AuthError{Step: bullhorn.StepToken, StatusCode: resp.StatusCode, Err: bullhorn.ErrEmptyAccessToken}
	}

	return &token, nil
}

// Login runs authorize, token and login in sequence and returns the REST URL
// and session token. The first failing hop ends the attempt.
func (a *Authenticator) Login(ctx context.Context, credentials bullhorn.Credentials) (*LoginResult, error) {
	attempt := uuid.NewString()
	a.debug("requesting authorization code", attempt)

	code, err := a.RequestAuthorizationCode(ctx, credentials)
	if err != nil {
		return nil, err
	}

	a.debug("exchanging authorization code", attempt)

	token, err := a.ExchangeCodeForToken(ctx, code, credentials, constants.GrantTypeAuthorizationCode)
	if err != nil {
		return nil, err
	}

	a.debug("logging in to REST API", attempt)

	resp, err := a.apiClient.Get(ctx, constants.PathLogin, url.Values{
		"version":      {a.version},
		"access_token": {token.AccessToken},
	})
	if err != nil {
		return nil, loginErrorFrom(resp, err)
	}

	var result LoginResult

	err = json.Unmarshal(resp.Body, &result)
	if err != nil {
		return nil, &bullhorn.LoginError{StatusCode: resp.StatusCode, Err: fmt.Errorf("parsing login response: %w", err)}
	}

	if result.RestURL == "" || result.BhRestToken == "" {
		return nil, &bullhorn.LoginError{StatusCode: resp.StatusCode, Err: bullhorn.ErrIncompleteLogin}
	}

	result.RefreshToken = token.RefreshToken

	return &result, nil
}

func (a *Authenticator) debug(msg, attempt string) {
	if a.logger != nil {
		a.logger.Debug(msg, map[string]interface{}{"attempt": attempt})
	}
}

// authErrorFrom wraps a failed authorize or token call. Transport failures
// stay reachable through errors.As.
func authErrorFrom(step string, resp *http.Response, err error) error {
	authErr := &bullhorn.AuthError{Step: step, Err: err}

	if resp != nil {
		authErr.StatusCode = resp.StatusCode
	}

	respErr := &bullhorn.ResponseError{}
	if errors.As(err, &respErr) {
		authErr.Message = oauthErrorMessage(respErr)
	}

	return authErr
}

// oauthErrorMessage extracts a message from either a REST error document or
// an OAuth {"error", "error_description"} body.
func oauthErrorMessage(respErr *bullhorn.ResponseError) string {
	if respErr.API != nil {
		return respErr.API.ErrorMessage
	}

	var oauthErr struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}

	if json.Unmarshal(respErr.Body, &oauthErr) != nil {
		return ""
	}

	if oauthErr.ErrorDescription != "" {
		return oauthErr.ErrorDescription
	}

	return oauthErr.Error
}

// loginErrorFrom classifies a failed login call. Only answered calls are
// LoginErrors; transport failures propagate unchanged.
func loginErrorFrom(resp *http.Response, err error) error {
	if bullhorn.IsTransportError(err) {
		return err
	}

	loginErr := &bullhorn.LoginError{Err: err}

	if resp != nil {
		loginErr.StatusCode = resp.StatusCode
	}

	respErr := &bullhorn.ResponseError{}
	if errors.As(err, &respErr) && respErr.API != nil {
		loginErr.Message = respErr.API.ErrorMessage
	}

	return loginErr
}
