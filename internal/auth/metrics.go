package auth

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Login outcomes recorded in the result label.
const (
	LoginResultSuccess = "success"
	LoginResultFailure = "failure"
)

// SessionMetrics counts logins and cache hits. A nil *SessionMetrics records nothing.
type SessionMetrics struct {
	logins    *prometheus.CounterVec
	cacheHits prometheus.Counter
}

// NewSessionMetrics creates the collectors and registers them with reg.
// Collectors already registered by another client are reused.
func NewSessionMetrics(reg prometheus.Registerer) (*SessionMetrics, error) {
	logins := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bullhorn",
		Subsystem: "session",
		Name:      "logins_total",
		Help:      "Login attempts by result.",
	}, []string{"result"})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "bullhorn",
		Subsystem: "session",
		Name:      "cache_hits_total",
		Help:      "Session requests answered from the cached session.",
	})

	registeredLogins, err := register(reg, logins)
	if err != nil {
		return nil, err
	}

	registeredHits, err := register(reg, cacheHits)
	if err != nil {
		return nil, err
	}

	metrics := &SessionMetrics{}
	metrics.logins, _ = registeredLogins.(*prometheus.CounterVec)
	metrics.cacheHits, _ = registeredHits.(prometheus.Counter)

	return metrics, nil
}

func register(reg prometheus.Registerer, collector prometheus.Collector) (prometheus.Collector, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	alreadyRegistered := prometheus.AlreadyRegisteredError{}
	if errors.As(err, &alreadyRegistered) {
		return alreadyRegistered.ExistingCollector, nil
	}

	return nil, fmt.Errorf("registering session metrics: %w", err)
}

func (m *SessionMetrics) cacheHit() {
	if m == nil {
		return
	}

	m.cacheHits.Inc()
}

func (m *SessionMetrics) loginSucceeded() {
	if m == nil {
		return
	}

	m.logins.WithLabelValues(LoginResultSuccess).Inc()
}

func (m *SessionMetrics) loginFailed() {
	if m == nil {
		return
	}

	m.logins.WithLabelValues(LoginResultFailure).Inc()
}

// Logins returns the login counter vector.
func (m *SessionMetrics) Logins() *prometheus.CounterVec {
	return m.logins
}

// CacheHits returns the cache hit counter.
func (m *SessionMetrics) CacheHits() prometheus.Counter {
	return m.cacheHits
}
