package bullhorn_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/bullhorn-client/pkg/bullhorn"
)

var errRejected = errors.New("rejected")

type recordingLogger struct {
	entries []string
}

func (l *recordingLogger) Debug(msg string, fields map[string]interface{}) {
	l.entries = append(l.entries, "debug:"+msg)
}

func (l *recordingLogger) Info(msg string, fields map[string]interface{}) {
	l.entries = append(l.entries, "info:"+msg)
}

func (l *recordingLogger) Warn(msg string, fields map[string]interface{}) {
	l.entries = append(l.entries, "warn:"+msg)
}

func (l *recordingLogger) Error(msg string, fields map[string]interface{}) {
	l.entries = append(l.entries, "error:"+msg)
}

func TestInterceptorChain_RequestInterceptors(t *testing.T) {
	chain := bullhorn.NewInterceptorChain()
	ctx := context.Background()

	var executionOrder []string

	chain.AddRequestInterceptor(func(ctx context.Context, req *bullhorn.Request) error {
		executionOrder = append(executionOrder, "first")

		return nil
	})

	chain.AddRequestInterceptor(func(ctx context.Context, req *bullhorn.Request) error {
		executionOrder = append(executionOrder, "second")

		return nil
	})

	err := chain.ExecuteRequestInterceptors(ctx, &bullhorn.Request{Method: "GET", Path: "query/JobOrder"})
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second"}, executionOrder)
}

func TestInterceptorChain_StopsOnError(t *testing.T) {
	chain := bullhorn.NewInterceptorChain()

	called := false

	chain.AddRequestInterceptor(func(ctx context.Context, req *bullhorn.Request) error {
		return errRejected
	})

	chain.AddRequestInterceptor(func(ctx context.Context, req *bullhorn.Request) error {
		called = true

		return nil
	})

	err := chain.ExecuteRequestInterceptors(context.Background(), &bullhorn.Request{})
	require.ErrorIs(t, err, errRejected)
	assert.False(t, called)
}

func TestInterceptorChain_ResponseInterceptors(t *testing.T) {
	chain := bullhorn.NewInterceptorChain()

	var executionOrder []string

	chain.AddResponseInterceptor(func(ctx context.Context, req *bullhorn.Request, resp *bullhorn.Response) error {
		executionOrder = append(executionOrder, "first")

		return nil
	})

	chain.AddResponseInterceptor(func(ctx context.Context, req *bullhorn.Request, resp *bullhorn.Response) error {
		executionOrder = append(executionOrder, "second")

		return nil
	})

	err := chain.ExecuteResponseInterceptors(context.Background(), &bullhorn.Request{Method: "PUT", Path: "entity/Candidate"}, &bullhorn.Response{StatusCode: 200})
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second"}, executionOrder)
}

func TestHeaderInterceptor(t *testing.T) {
	interceptor := bullhorn.HeaderInterceptor(map[string]string{
		"X-Custom-Header": "custom-value",
		"X-Request-ID":    "123456",
	})

	req := &bullhorn.Request{Method: "GET", Path: "search/Candidate"}

	err := interceptor(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "custom-value", req.Headers.Get("X-Custom-Header"))
	assert.Equal(t, "123456", req.Headers.Get("X-Request-ID"))
}

func TestLoggingInterceptors(t *testing.T) {
	logger := &recordingLogger{}
	ctx := context.Background()
	req := &bullhorn.Request{Method: "GET", Path: "query/JobOrder"}

	require.NoError(t, bullhorn.LoggingInterceptor(logger)(ctx, req))
	require.NoError(t, bullhorn.LoggingResponseInterceptor(logger)(ctx, req, &bullhorn.Response{StatusCode: 200}))
	require.NoError(t, bullhorn.LoggingResponseInterceptor(logger)(ctx, req, &bullhorn.Response{StatusCode: 500, Error: errRejected}))

	assert.Equal(t, []string{"debug:API Request", "debug:API Response", "error:API Response Error"}, logger.entries)
}

func TestMetricsCollector(t *testing.T) {
	collector := bullhorn.NewMetricsCollector()

	var (
		notifiedEndpoint string
		notifiedMetrics  bullhorn.Metrics
	)

	collector.SetOnChange(func(endpoint string, metrics bullhorn.Metrics) {
		notifiedEndpoint = endpoint
		notifiedMetrics = metrics
	})

	requestInterceptor := bullhorn.MetricsRequestInterceptor(collector)
	responseInterceptor := bullhorn.MetricsResponseInterceptor(collector)

	ctx := context.Background()
	req := &bullhorn.Request{Method: "GET", Path: "query/JobOrder"}

	require.NoError(t, requestInterceptor(ctx, req))
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, responseInterceptor(ctx, req, &bullhorn.Response{StatusCode: 200}))

	assert.Equal(t, "GET query/JobOrder", notifiedEndpoint)
	assert.Equal(t, int64(1), notifiedMetrics.TotalRequests)
	assert.Equal(t, int64(0), notifiedMetrics.TotalErrors)
	assert.Positive(t, notifiedMetrics.AverageLatency)

	req2 := &bullhorn.Request{Method: "GET", Path: "query/JobOrder"}
	require.NoError(t, responseInterceptor(ctx, req2, &bullhorn.Response{StatusCode: 500}))

	metrics := collector.GetMetrics("GET query/JobOrder")
	require.NotNil(t, metrics)
	assert.Equal(t, int64(2), metrics.TotalRequests)
	assert.Equal(t, int64(1), metrics.TotalErrors)
	assert.Nil(t, collector.GetMetrics("PUT entity/Candidate"))
}
