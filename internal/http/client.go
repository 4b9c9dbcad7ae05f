package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/fivetwenty-io/bullhorn-client/internal/constants"
	"github.com/fivetwenty-io/bullhorn-client/pkg/bullhorn"
)

// SessionProvider supplies the session used to address entity calls.
type SessionProvider interface {
	GetValidSession(ctx context.Context) (*bullhorn.Session, error)
}

// SessionError marks a failure to obtain a session; the request was never sent.
type SessionError struct {
	Err error
}

func (e *SessionError) Error() string {
	return "obtaining session: " + e.Err.Error()
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

// Client is an HTTP client for the Bullhorn auth and REST endpoints.
// Requests are attempted exactly once.
type Client struct {
	httpClient   *retryablehttp.Client
	baseURL      string
	sessions     SessionProvider
	logger       bullhorn.Logger
	debug        bool
	userAgent    string
	interceptors *bullhorn.InterceptorChain
}

// Request describes a single call. Path is resolved against the base URL,
// or against the session's REST URL when the client has a SessionProvider.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    interface{}
	Form    url.Values
	Headers map[string]string
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	// URL is the final request URL, used to resolve relative redirects.
	URL *url.URL
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger bullhorn.Logger) Option {
	return func(c *Client) {
		c.logger = logger
		if logger != nil {
			c.httpClient.Logger = &leveledLogger{logger: logger}
		}
	}
}

// WithDebug enables request/response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithTimeout bounds each request. Zero leaves requests unbounded.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.HTTPClient.Timeout = timeout
	}
}

// WithoutRedirects returns 3xx responses to the caller instead of following them.
func WithoutRedirects() Option {
	return func(c *Client) {
		c.httpClient.HTTPClient.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
}

// WithInterceptors runs chain around every request.
func WithInterceptors(chain *bullhorn.InterceptorChain) Option {
	return func(c *Client) {
		c.interceptors = chain
	}
}

// NewClient creates a client. sessions may be nil for calls that do not need
// a session (the auth hops themselves).
func NewClient(baseURL string, sessions SessionProvider, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 0
	retryClient.CheckRetry = noRetry
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = nil

	client := &Client{
		httpClient: retryClient,
		baseURL:    baseURL,
		sessions:   sessions,
		userAgent:  constants.DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

func noRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	return false, nil
}

// Do performs the request. Statuses >= 400 yield a *bullhorn.ResponseError
// together with the response; network failures yield a *bullhorn.TransportError.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	baseURL := c.baseURL
	query := cloneValues(req.Query)

	if c.sessions != nil {
		session, err := c.sessions.GetValidSession(ctx)
		if err != nil {
			return nil, &SessionError{Err: err}
		}

		baseURL = session.RestURL
		query.Set(constants.RestTokenParam, session.BhRestToken)
	}

	fullURL, err := resolveURL(baseURL, req.Path, query)
	if err != nil {
		return nil, err
	}

	body, contentType, err := encodeBody(req)
	if err != nil {
		return nil, err
	}

	intercepted := &bullhorn.Request{
		Method:  req.Method,
		Path:    req.Path,
		Headers: make(http.Header),
		Body:    body,
	}

	if c.interceptors != nil {
		err = c.interceptors.ExecuteRequestInterceptors(ctx, intercepted)
		if err != nil {
			return nil, err
		}
	}

	var rawBody interface{}
	if body != nil {
		rawBody = body
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, fullURL, rawBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	c.applyHeaders(httpReq, req, intercepted.Headers, contentType)

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": req.Method,
			"url":    redactURL(fullURL),
		})
	}

	resp, err := c.send(httpReq, req.Method, fullURL)
	c.runResponseInterceptors(ctx, intercepted, resp, err)

	return resp, err
}

func (c *Client) send(httpReq *retryablehttp.Request, method, fullURL string) (*Response, error) {
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &bullhorn.TransportError{Method: method, URL: redactURL(fullURL), Err: stripURL(err)}
	}

	defer func() {
		_ = httpResp.Body.Close()
	}()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &bullhorn.TransportError{Method: method, URL: redactURL(fullURL), Err: fmt.Errorf("reading response body: %w", err)}
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
		URL:        httpResp.Request.URL,
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"status": resp.StatusCode,
			"size":   len(respBody),
		})
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return resp, bullhorn.ParseResponseError(resp.StatusCode, respBody)
	}

	return resp, nil
}

func (c *Client) runResponseInterceptors(ctx context.Context, req *bullhorn.Request, resp *Response, err error) {
	if c.interceptors == nil {
		return
	}

	intercepted := &bullhorn.Response{Error: err}
	if resp != nil {
		intercepted.StatusCode = resp.StatusCode
		intercepted.Headers = resp.Headers
		intercepted.Body = resp.Body
	}

	interceptErr := c.interceptors.ExecuteResponseInterceptors(ctx, req, intercepted)
	if interceptErr != nil && c.logger != nil {
		c.logger.Warn("response interceptor failed", map[string]interface{}{"error": interceptErr.Error()})
	}
}

func (c *Client) applyHeaders(httpReq *retryablehttp.Request, req *Request, extra http.Header, contentType string) {
	httpReq.Header.Set("Accept", constants.ContentTypeJSON)
	httpReq.Header.Set("User-Agent", c.userAgent)

	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	for key, values := range extra {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

// Location resolves the response's Location header against the request URL.
func (r *Response) Location() (*url.URL, error) {
	location := r.Headers.Get("Location")
	if location == "" {
		return nil, http.ErrNoLocation
	}

	parsed, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("parsing location %q: %w", location, err)
	}

	if r.URL != nil {
		parsed = r.URL.ResolveReference(parsed)
	}

	return parsed, nil
}

// IsRedirect reports whether the response is a 3xx with a Location header.
func (r *Response) IsRedirect() bool {
	return r.StatusCode >= http.StatusMultipleChoices && r.StatusCode < http.StatusBadRequest && r.Headers.Get("Location") != ""
}

func encodeBody(req *Request) ([]byte, string, error) {
	if req.Form != nil {
		return []byte(req.Form.Encode()), constants.ContentTypeForm, nil
	}

	if req.Body == nil {
		return nil, "", nil
	}

	data, err := json.Marshal(req.Body)
	if err != nil {
		return nil, "", fmt.Errorf("encoding request body: %w", err)
	}

	return data, constants.ContentTypeJSON, nil
}

func resolveURL(baseURL, path string, query url.Values) (string, error) {
	target := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		target = strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(path, "/")
	}

	parsed, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("parsing request URL: %w", err)
	}

	if len(query) > 0 {
		existing := parsed.Query()
		for key, values := range query {
			for _, value := range values {
				existing.Add(key, value)
			}
		}

		parsed.RawQuery = existing.Encode()
	}

	return parsed.String(), nil
}

func cloneValues(values url.Values) url.Values {
	cloned := make(url.Values, len(values))
	for key, vals := range values {
		cloned[key] = append([]string(nil), vals...)
	}

	return cloned
}

var redactedParams = []string{"password", "client_secret", "code", "access_token", constants.RestTokenParam}

// redactURL strips secrets from a URL before it is logged or put in an error.
func redactURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	query := parsed.Query()
	for _, param := range redactedParams {
		if query.Has(param) {
			query.Set(param, "REDACTED")
		}
	}

	parsed.RawQuery = query.Encode()

	return parsed.String()
}

// stripURL drops the *url.Error wrapper, whose message repeats the
// unredacted request URL.
func stripURL(err error) error {
	urlErr := &url.Error{}
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}

	return err
}

// leveledLogger bridges retryablehttp logging to bullhorn.Logger.
type leveledLogger struct {
	logger bullhorn.Logger
}

func (l *leveledLogger) fields(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key := fmt.Sprint(keysAndValues[i])
		value := keysAndValues[i+1]

		switch v := value.(type) {
		case *url.URL:
			value = redactURL(v.String())
		case string:
			// retryablehttp passes request URLs as strings
			if key == "url" || strings.Contains(v, "://") {
				value = redactURL(v)
			}
		case error:
			value = stripURL(v).Error()
		}

		fields[key] = value
	}

	return fields
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, l.fields(keysAndValues))
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, l.fields(keysAndValues))
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, l.fields(keysAndValues))
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, l.fields(keysAndValues))
}

// IsSessionError reports whether err occurred before the request was sent
// because no session could be obtained.
func IsSessionError(err error) bool {
	sessionErr := &SessionError{}

	return errors.As(err, &sessionErr)
}
