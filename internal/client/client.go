package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fivetwenty-io/bullhorn-client/internal/auth"
	"github.com/fivetwenty-io/bullhorn-client/internal/http"
	"github.com/fivetwenty-io/bullhorn-client/pkg/bullhorn"
)

// Client implements the bullhorn.Client interface.
type Client struct {
	httpClient *http.Client
	sessions   *auth.SessionManager
	cache      bullhorn.Cache
	cacheTTL   time.Duration
	logger     bullhorn.Logger

	// Resource clients
	jobOrders      *JobOrdersClient
	candidates     *CandidatesClient
	jobSubmissions *JobSubmissionsClient
	files          *FilesClient
	tearsheets     *TearsheetsClient
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *bullhorn.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	return httpOpts
}

// New creates a client that logs in with the three-hop flow on first use.
func New(config *bullhorn.Config) (*Client, error) {
	if config == nil {
		return nil, bullhorn.ErrConfigRequired
	}

	authenticator := auth.NewAuthenticator(&auth.AuthenticatorConfig{
		AuthEndpoint: config.AuthEndpoint,
		APIRoot:      config.APIRoot,
		Version:      config.Version,
		Logger:       config.Logger,
		HTTPOptions:  createHTTPClientOptions(config),
	})

	return NewWithLoginProvider(config, authenticator)
}

// NewWithLoginProvider creates a client whose sessions come from provider.
func NewWithLoginProvider(config *bullhorn.Config, provider auth.LoginProvider, opts ...auth.SessionOption) (*Client, error) {
	if config == nil {
		return nil, bullhorn.ErrConfigRequired
	}

	credentials := config.Credentials()
	if !credentials.Complete() {
		return nil, bullhorn.ErrMissingCredentials
	}

	sessionOpts := []auth.SessionOption{auth.WithSessionLogger(config.Logger)}

	if config.MetricsRegisterer != nil {
		metrics, err := auth.NewSessionMetrics(config.MetricsRegisterer)
		if err != nil {
			return nil, err
		}

		sessionOpts = append(sessionOpts, auth.WithMetrics(metrics))
	}

	sessions := auth.NewSessionManager(provider, credentials, append(sessionOpts, opts...)...)

	cacheConfig := config.CandidateCache
	if cacheConfig == nil {
		cacheConfig = bullhorn.DefaultCacheConfig()
	}

	cache, err := bullhorn.NewCacheFromConfig(cacheConfig)
	if err != nil {
		return nil, fmt.Errorf("creating candidate cache: %w", err)
	}

	cacheOptions := cacheConfig.Options
	if cacheOptions == nil {
		cacheOptions = bullhorn.DefaultCacheOptions()
	}

	httpOpts := createHTTPClientOptions(config)
	if config.Interceptors != nil {
		httpOpts = append(httpOpts, http.WithInterceptors(config.Interceptors))
	}

	client := &Client{
		httpClient: http.NewClient("", sessions, httpOpts...),
		sessions:   sessions,
		cache:      cache,
		cacheTTL:   cacheOptions.TTL,
		logger:     config.Logger,
	}

	client.initializeResourceClients()

	return client, nil
}

func (c *Client) initializeResourceClients() {
	c.jobOrders = NewJobOrdersClient(c.httpClient)
	c.candidates = NewCandidatesClient(c.httpClient, c.cache, c.cacheTTL, c.logger)
	c.jobSubmissions = NewJobSubmissionsClient(c.httpClient)
	c.files = NewFilesClient(c.httpClient)
	c.tearsheets = NewTearsheetsClient(c.httpClient)
}

// Session implements bullhorn.SessionClient.Session.
func (c *Client) Session(ctx context.Context) (*bullhorn.Session, error) {
	return c.sessions.GetValidSession(ctx)
}

// SessionManager returns the manager backing entity calls.
func (c *Client) SessionManager() *auth.SessionManager {
	return c.sessions
}

// JobOrders implements bullhorn.Client.JobOrders.
func (c *Client) JobOrders() bullhorn.JobOrdersClient {
	return c.jobOrders
}

// Candidates implements bullhorn.Client.Candidates.
func (c *Client) Candidates() bullhorn.CandidatesClient {
	return c.candidates
}

// JobSubmissions implements bullhorn.Client.JobSubmissions.
func (c *Client) JobSubmissions() bullhorn.JobSubmissionsClient {
	return c.jobSubmissions
}

// Files implements bullhorn.Client.Files.
func (c *Client) Files() bullhorn.FilesClient {
	return c.files
}

// Tearsheets implements bullhorn.Client.Tearsheets.
func (c *Client) Tearsheets() bullhorn.TearsheetsClient {
	return c.tearsheets
}

// Close implements bullhorn.Client.Close.
func (c *Client) Close() error {
	closer, ok := c.cache.(io.Closer)
	if !ok {
		return nil
	}

	return closer.Close()
}

// classify turns a failed entity call into the error returned to callers.
// Session failures are already Auth, Login or Transport errors and pass
// through unchanged; everything else becomes a DomainError.
func classify(operation, entity string, err error) error {
	sessionErr := &http.SessionError{}
	if errors.As(err, &sessionErr) {
		return sessionErr.Err
	}

	return bullhorn.NewDomainError(operation, entity, err)
}
