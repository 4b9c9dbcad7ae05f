// Package bhclient provides the main entry point for creating Bullhorn REST API clients
package bhclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/bullhorn-client/internal/client"
	"github.com/fivetwenty-io/bullhorn-client/pkg/bullhorn"
)

// New creates a new Bullhorn client. No network call is made; the first
// entity call logs in.
func New(config *bullhorn.Config) (bullhorn.Client, error) {
	if config == nil {
		return nil, bullhorn.ErrConfigRequired
	}

	normalized := *config
	applyDefaults(&normalized)

	if !normalized.Credentials().Complete() {
		return nil, bullhorn.ErrMissingCredentials
	}

	c, err := client.New(&normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return c, nil
}

// Connect creates a client and establishes its first session, so bad
// credentials surface immediately.
func Connect(ctx context.Context, config *bullhorn.Config) (bullhorn.Client, error) {
	c, err := New(config)
	if err != nil {
		return nil, err
	}

	_, err = c.Session(ctx)
	if err != nil {
		_ = c.Close()

		return nil, err
	}

	return c, nil
}

// NewWithCredentials creates a client for the default Bullhorn endpoints.
func NewWithCredentials(username, password, clientID, clientSecret string) (bullhorn.Client, error) {
	return New(&bullhorn.Config{
		Username:     username,
		Password:     password,
		ClientID:     clientID,
		ClientSecret: clientSecret,
	})
}

func applyDefaults(config *bullhorn.Config) {
	if config.AuthEndpoint == "" {
		config.AuthEndpoint = bullhorn.DefaultAuthEndpoint
	}

	if config.APIRoot == "" {
		config.APIRoot = bullhorn.DefaultAPIRoot
	}

	if config.Version == "" {
		config.Version = bullhorn.DefaultVersion
	}

	config.AuthEndpoint = withTrailingSlash(config.AuthEndpoint)
	config.APIRoot = withTrailingSlash(config.APIRoot)
}

func withTrailingSlash(endpoint string) string {
	endpoint = strings.TrimSpace(endpoint)
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}

	if !strings.HasSuffix(endpoint, "/") {
		endpoint += "/"
	}

	return endpoint
}
