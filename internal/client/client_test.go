package client

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/bullhorn-client/internal/auth"
	"github.com/fivetwenty-io/bullhorn-client/internal/bullhorntest"
	"github.com/fivetwenty-io/bullhorn-client/pkg/bullhorn"
)

func newTestClient(t *testing.T, server *bullhorntest.Server) *Client {
	t.Helper()

	client, err := New(server.Config())
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = client.Close()
	})

	return client
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	_, err := New(nil)
	require.ErrorIs(t, err, bullhorn.ErrConfigRequired)

	_, err = New(&bullhorn.Config{Username: "u", Password: "p", ClientID: "id"})
	require.ErrorIs(t, err, bullhorn.ErrMissingCredentials)

	config := &bullhorn.Config{
		Username:       "u",
		Password:       "p",
		ClientID:       "id",
		ClientSecret:   "secret",
		CandidateCache: &bullhorn.CacheConfig{Type: "redis"},
	}

	_, err = New(config)
	require.ErrorIs(t, err, bullhorn.ErrUnsupportedCacheType)
}

func TestClient_SessionIsReusedAcrossCalls(t *testing.T) {
	t.Parallel()

	server := bullhorntest.NewServer()
	defer server.Close()

	server.AddJobOrder(bullhorn.JobOrder{ID: 1, Title: "Welder", IsOpen: true})

	client := newTestClient(t, server)
	ctx := context.Background()

	session, err := client.Session(ctx)
	require.NoError(t, err)
	assert.Equal(t, server.RestURL(), session.RestURL)
	assert.Equal(t, server.LastRestToken(), session.BhRestToken)

	for i := 0; i < 3; i++ {
		_, err = client.JobOrders().ListOpen(ctx, nil)
		require.NoError(t, err)
	}

	assert.EqualValues(t, 1, server.AuthorizeCalls.Load())
	assert.EqualValues(t, 1, server.TokenCalls.Load())
	assert.EqualValues(t, 1, server.LoginCalls.Load())
}

func TestClient_StaleSessionIsReplaced(t *testing.T) {
	t.Parallel()

	server := bullhorntest.NewServer()
	defer server.Close()

	var (
		mutex sync.Mutex
		now   = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	)

	clock := func() time.Time {
		mutex.Lock()
		defer mutex.Unlock()

		return now
	}

	authenticator := auth.NewAuthenticator(&auth.AuthenticatorConfig{
		AuthEndpoint: server.AuthEndpoint(),
		APIRoot:      server.APIRoot(),
	})

	client, err := NewWithLoginProvider(server.Config(), authenticator, auth.WithClock(clock))
	require.NoError(t, err)

	ctx := context.Background()

	first, err := client.Session(ctx)
	require.NoError(t, err)

	mutex.Lock()
	now = now.Add(7*time.Minute + 59*time.Second)
	mutex.Unlock()

	_, err = client.JobOrders().ListOpen(ctx, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, server.LoginCalls.Load())

	mutex.Lock()
	now = now.Add(time.Second)
	mutex.Unlock()

	_, err = client.JobOrders().ListOpen(ctx, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 2, server.LoginCalls.Load())

	second, err := client.Session(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first.BhRestToken, second.BhRestToken)
	assert.Len(t, server.UsedCodes(), 2)
	assert.NotEqual(t, server.UsedCodes()[0], server.UsedCodes()[1])
}

func TestClient_SessionFailurePassesThrough(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		behavior bullhorntest.Behavior
		check    func(t *testing.T, err error)
	}{
		{
			name:     "authorize without redirect",
			behavior: bullhorntest.Behavior{AuthorizeNoRedirect: true},
			check: func(t *testing.T, err error) {
				t.Helper()

				authErr := &bullhorn.AuthError{}
				require.ErrorAs(t, err, &authErr)
				assert.Equal(t, bullhorn.StepAuthorize, authErr.Step)
				assert.ErrorIs(t, err, bullhorn.ErrNoRedirect)
			},
		},
		{
			name:     "token endpoint failure",
			behavior: bullhorntest.Behavior{TokenStatus: http.StatusServiceUnavailable},
			check: func(t *testing.T, err error) {
				t.Helper()

				authErr := &bullhorn.AuthError{}
				require.ErrorAs(t, err, &authErr)
				assert.Equal(t, bullhorn.StepToken, authErr.Step)
				assert.Equal(t, http.StatusServiceUnavailable, authErr.StatusCode)
			},
		},
		{
			name:     "login rejected",
			behavior: bullhorntest.Behavior{LoginStatus: http.StatusForbidden},
			check: func(t *testing.T, err error) {
				t.Helper()

				loginErr := &bullhorn.LoginError{}
				require.ErrorAs(t, err, &loginErr)
				assert.Equal(t, http.StatusForbidden, loginErr.StatusCode)
				assert.Equal(t, "login rejected", loginErr.Message)
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := bullhorntest.NewServer()
			defer server.Close()

			server.SetBehavior(tt.behavior)

			client := newTestClient(t, server)

			_, err := client.JobOrders().ListOpen(context.Background(), nil)
			require.Error(t, err)

			domainErr := &bullhorn.DomainError{}
			assert.False(t, errors.As(err, &domainErr), "session failures must not be domain errors")

			tt.check(t, err)
			assert.Nil(t, client.SessionManager().Current())
		})
	}
}

func TestClient_DomainErrors(t *testing.T) {
	t.Parallel()

	server := bullhorntest.NewServer()
	defer server.Close()

	client := newTestClient(t, server)
	ctx := context.Background()

	_, err := client.Session(ctx)
	require.NoError(t, err)

	server.SetBehavior(bullhorntest.Behavior{EntityStatus: http.StatusInternalServerError})

	_, err = client.Tearsheets().AddCandidate(ctx, 7, 8)
	require.Error(t, err)

	domainErr := &bullhorn.DomainError{}
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, http.StatusInternalServerError, domainErr.StatusCode)
	assert.Equal(t, "Tearsheet", domainErr.Entity)
	require.NotNil(t, domainErr.API)
	assert.Equal(t, "entity call rejected", domainErr.API.ErrorMessage)
	assert.False(t, bullhorn.IsAuthError(err))
	assert.False(t, bullhorn.IsLoginError(err))
}

func TestClient_DomainTransportError(t *testing.T) {
	t.Parallel()

	server := bullhorntest.NewServer()

	client := newTestClient(t, server)
	ctx := context.Background()

	_, err := client.Session(ctx)
	require.NoError(t, err)

	server.Close()

	_, err = client.JobOrders().ListOpen(ctx, nil)
	require.Error(t, err)

	domainErr := &bullhorn.DomainError{}
	require.ErrorAs(t, err, &domainErr)
	assert.True(t, bullhorn.IsTransportError(err))
	assert.Zero(t, domainErr.StatusCode)
}

func TestClient_Interceptors(t *testing.T) {
	t.Parallel()

	server := bullhorntest.NewServer()
	defer server.Close()

	collector := bullhorn.NewMetricsCollector()
	chain := bullhorn.NewInterceptorChain()
	chain.AddRequestInterceptor(bullhorn.MetricsRequestInterceptor(collector))
	chain.AddResponseInterceptor(bullhorn.MetricsResponseInterceptor(collector))

	config := server.Config()
	config.Interceptors = chain

	client, err := New(config)
	require.NoError(t, err)

	_, err = client.JobOrders().ListOpen(context.Background(), nil)
	require.NoError(t, err)

	metrics := collector.GetMetrics("GET query/JobOrder")
	require.NotNil(t, metrics)
	assert.EqualValues(t, 1, metrics.TotalRequests)
	assert.Zero(t, metrics.TotalErrors)
}

func TestClient_Close(t *testing.T) {
	t.Parallel()

	server := bullhorntest.NewServer()
	defer server.Close()

	config := server.Config()
	config.CandidateCache = &bullhorn.CacheConfig{Type: bullhorn.CacheTypeNone}

	client, err := New(config)
	require.NoError(t, err)
	assert.NoError(t, client.Close())
}
