package bullhorn

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Default endpoints and API version.
const (
	DefaultAuthEndpoint = "https://auth.bullhornstaffing.com/oauth/"
	DefaultAPIRoot      = "https://rest.bullhornstaffing.com/rest-services/"
	DefaultVersion      = "2.0"
)

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Credentials are the long-lived secrets exchanged for a platform session.
type Credentials struct {
	Username     string
	Password     string
	ClientID     string
	ClientSecret string
}

// Complete reports whether every field is set.
func (c Credentials) Complete() bool {
	return c.Username != "" && c.Password != "" && c.ClientID != "" && c.ClientSecret != ""
}

// Config represents client configuration for building a bullhorn.Client.
//
// # Authentication
//
// All four credentials (Username, Password, ClientID, ClientSecret) are
// required. The client performs the authorization-code flow against
// AuthEndpoint, exchanges the code for an access token, and logs in to
// APIRoot to obtain the REST URL and BhRestToken used by every entity call.
// The resulting session is cached in memory and considered stale eight
// minutes after it was acquired.
//
// # Timeouts and retries
//
// No request is retried. HTTPTimeout is zero by default, meaning requests
// are bounded only by the context passed to client methods.
type Config struct {
	// AuthEndpoint: OAuth base URL. Must end with a slash; bhclient.New adds one.
	AuthEndpoint string
	// APIRoot: REST services root hosting the login endpoint.
	APIRoot string
	// Version: REST API version sent to the login endpoint.
	Version string

	Username     string
	Password     string
	ClientID     string
	ClientSecret string

	// Optional configurations
	// Logger: optional structured logging sink.
	Logger Logger
	// Debug: enables verbose HTTP request/response logging when a Logger is provided.
	Debug bool
	// UserAgent: overrides the default User-Agent header sent by the client.
	UserAgent string
	// HTTPTimeout: optional per-request timeout. Zero means no timeout.
	HTTPTimeout time.Duration
	// CandidateCache: backend remembering email to candidate id lookups.
	// If nil, DefaultCacheConfig() is used.
	CandidateCache *CacheConfig
	// Interceptors: optional hooks run around every entity request.
	Interceptors *InterceptorChain
	// MetricsRegisterer: when set, session metrics are registered with it.
	MetricsRegisterer prometheus.Registerer
}

// Credentials returns the credential set carried by the config.
func (c *Config) Credentials() Credentials {
	return Credentials{
		Username:     c.Username,
		Password:     c.Password,
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
	}
}
