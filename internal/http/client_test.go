package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bhhttp "github.com/fivetwenty-io/bullhorn-client/internal/http"
	"github.com/fivetwenty-io/bullhorn-client/pkg/bullhorn"
)

var errNoSession = errors.New("no session")

// MockSessionProvider for testing.
type MockSessionProvider struct {
	session *bullhorn.Session
	err     error
}

func (m *MockSessionProvider) GetValidSession(ctx context.Context) (*bullhorn.Session, error) {
	return m.session, m.err
}

// MockLogger for testing.
type MockLogger struct {
	mutex sync.Mutex
	logs  []map[string]interface{}
}

func (l *MockLogger) record(level, msg string, fields map[string]interface{}) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.logs = append(l.logs, map[string]interface{}{"level": level, "msg": msg, "fields": fields})
}

func (l *MockLogger) Debug(msg string, fields map[string]interface{}) {
	l.record("debug", msg, fields)
}

func (l *MockLogger) Info(msg string, fields map[string]interface{}) {
	l.record("info", msg, fields)
}

func (l *MockLogger) Warn(msg string, fields map[string]interface{}) {
	l.record("warn", msg, fields)
}

func (l *MockLogger) Error(msg string, fields map[string]interface{}) {
	l.record("error", msg, fields)
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Do(t *testing.T) {
	t.Parallel()

	t.Run("session request", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/rest-services/corp/query/JobOrder", request.URL.Path)
			assert.Equal(t, "GET", request.Method)
			assert.Equal(t, "bh-token", request.URL.Query().Get("BhRestToken"))
			assert.Equal(t, "isOpen=true", request.URL.Query().Get("where"))
			assert.Equal(t, "application/json", request.Header.Get("Accept"))

			_ = json.NewEncoder(writer).Encode(map[string]interface{}{"data": []interface{}{}})
		}))
		defer server.Close()

		sessions := &MockSessionProvider{session: &bullhorn.Session{RestURL: server.URL + "/rest-services/corp/", BhRestToken: "bh-token"}}
		client := bhhttp.NewClient("", sessions)

		resp, err := client.Get(context.Background(), "query/JobOrder", map[string][]string{"where": {"isOpen=true"}})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"data":[]}`, string(resp.Body))
	})

	t.Run("session failure is not sent", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int64

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			calls.Add(1)
		}))
		defer server.Close()

		client := bhhttp.NewClient(server.URL, &MockSessionProvider{err: errNoSession})

		_, err := client.Get(context.Background(), "query/JobOrder", nil)
		require.Error(t, err)
		assert.True(t, bhhttp.IsSessionError(err))
		require.ErrorIs(t, err, errNoSession)
		assert.Zero(t, calls.Load())
	})

	t.Run("json body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "PUT", request.Method)
			assert.Equal(t, "application/json", request.Header.Get("Content-Type"))

			var body map[string]string
			require.NoError(t, json.NewDecoder(request.Body).Decode(&body))
			assert.Equal(t, "ada@example.com", body["email"])

			_ = json.NewEncoder(writer).Encode(map[string]int{"changedEntityId": 9})
		}))
		defer server.Close()

		client := bhhttp.NewClient(server.URL, nil)

		resp, err := client.Put(context.Background(), "entity/Candidate", map[string]string{"email": "ada@example.com"})
		require.NoError(t, err)
		assert.Contains(t, string(resp.Body), "changedEntityId")
	})

	t.Run("form body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "application/x-www-form-urlencoded", request.Header.Get("Content-Type"))
			require.NoError(t, request.ParseForm())
			assert.Equal(t, "api.user", request.PostForm.Get("username"))
			assert.Equal(t, "Login", request.URL.Query().Get("action"))
		}))
		defer server.Close()

		client := bhhttp.NewClient(server.URL+"/oauth/", nil)

		_, err := client.Do(context.Background(), &bhhttp.Request{
			Method: "POST",
			Path:   "authorize",
			Query:  map[string][]string{"action": {"Login"}},
			Form:   map[string][]string{"username": {"api.user"}},
		})
		require.NoError(t, err)
	})

	t.Run("error response", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(writer, `{"errorMessage":"error persisting an entity of type: Candidate","errorCode":400,"errors":[{"propertyName":"lastName","severity":"ERROR","type":"MISSING_REQUIRED_PROPERTY"}]}`)
		}))
		defer server.Close()

		client := bhhttp.NewClient(server.URL, nil)

		resp, err := client.Put(context.Background(), "entity/Candidate", map[string]string{})
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		respErr := &bullhorn.ResponseError{}
		require.ErrorAs(t, err, &respErr)
		require.NotNil(t, respErr.API)
		assert.Equal(t, "lastName", respErr.API.Errors[0].PropertyName)
	})

	t.Run("transport error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {}))
		serverURL := server.URL
		server.Close()

		client := bhhttp.NewClient(serverURL, nil)

		_, err := client.Get(context.Background(), "login", map[string][]string{"access_token": {"secret-token"}})
		require.Error(t, err)

		transportErr := &bullhorn.TransportError{}
		require.ErrorAs(t, err, &transportErr)
		assert.Equal(t, "GET", transportErr.Method)
		assert.NotContains(t, transportErr.URL, "secret-token")
		assert.NotContains(t, err.Error(), "secret-token")
	})
}

func TestClient_NoRetries(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		calls.Add(1)
		writer.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := bhhttp.NewClient(server.URL, nil)

	_, err := client.Get(context.Background(), "login", nil)
	require.Error(t, err)
	assert.EqualValues(t, 1, calls.Load())
}

func TestClient_WithoutRedirects(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		http.Redirect(writer, request, "/callback?code=abc", http.StatusFound)
	}))
	defer server.Close()

	client := bhhttp.NewClient(server.URL, nil, bhhttp.WithoutRedirects())

	resp, err := client.Post(context.Background(), "authorize", nil)
	require.NoError(t, err)
	assert.True(t, resp.IsRedirect())

	location, err := resp.Location()
	require.NoError(t, err)
	assert.Equal(t, "abc", location.Query().Get("code"))
	assert.Equal(t, server.URL+"/callback?code=abc", location.String())
}

func TestClient_Options(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "custom-agent/2.0", request.Header.Get("User-Agent"))
		assert.Equal(t, "trace-1", request.Header.Get("X-Trace"))
		time.Sleep(10 * time.Millisecond)
	}))
	defer server.Close()

	logger := &MockLogger{}
	chain := bullhorn.NewInterceptorChain()
	chain.AddRequestInterceptor(bullhorn.HeaderInterceptor(map[string]string{"X-Trace": "trace-1"}))

	var seenStatus int

	chain.AddResponseInterceptor(func(ctx context.Context, req *bullhorn.Request, resp *bullhorn.Response) error {
		seenStatus = resp.StatusCode

		return nil
	})

	client := bhhttp.NewClient(server.URL, nil,
		bhhttp.WithUserAgent("custom-agent/2.0"),
		bhhttp.WithLogger(logger),
		bhhttp.WithDebug(true),
		bhhttp.WithInterceptors(chain),
		bhhttp.WithTimeout(time.Second),
	)

	_, err := client.Get(context.Background(), "login", map[string][]string{"password": {"hunter2"}})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, seenStatus)

	logger.mutex.Lock()
	defer logger.mutex.Unlock()

	require.NotEmpty(t, logger.logs)

	for _, entry := range logger.logs {
		fields, _ := entry["fields"].(map[string]interface{})
		if rawURL, ok := fields["url"].(string); ok {
			assert.False(t, strings.Contains(rawURL, "hunter2"))
		}
	}
}

func TestClient_LoggerRedactsQuerySecrets(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	logger := &MockLogger{}
	client := bhhttp.NewClient(server.URL, nil, bhhttp.WithLogger(logger))

	_, err := client.Get(context.Background(), "token", map[string][]string{
		"client_secret": {"SECRET123"},
		"access_token":  {"AT456"},
		"code":          {"CODE789"},
		"BhRestToken":   {"BH000"},
		"client_id":     {"visible-id"},
	})
	require.NoError(t, err)

	logger.mutex.Lock()
	defer logger.mutex.Unlock()

	var urls []string

	for _, entry := range logger.logs {
		fields, _ := entry["fields"].(map[string]interface{})
		for _, value := range fields {
			text, ok := value.(string)
			if !ok {
				continue
			}

			for _, secret := range []string{"SECRET123", "AT456", "CODE789", "BH000"} {
				assert.NotContains(t, text, secret)
			}
		}

		if rawURL, ok := fields["url"].(string); ok {
			urls = append(urls, rawURL)
		}
	}

	require.NotEmpty(t, urls, "request URL should be logged")
	assert.Contains(t, urls[0], "client_id=visible-id")
	assert.Contains(t, urls[0], "client_secret=REDACTED")
}

func TestClient_Timeout(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := bhhttp.NewClient(server.URL, nil, bhhttp.WithTimeout(20*time.Millisecond))

	_, err := client.Get(context.Background(), "login", nil)
	require.Error(t, err)
	assert.True(t, bullhorn.IsTransportError(err))
}
