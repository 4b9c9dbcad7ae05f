package auth

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/fivetwenty-io/bullhorn-client/internal/constants"
	"github.com/fivetwenty-io/bullhorn-client/pkg/bullhorn"
)

// LoginProvider performs a full login. *Authenticator implements it.
type LoginProvider interface {
	Login(ctx context.Context, credentials bullhorn.Credentials) (*LoginResult, error)
}

// State is the session lifecycle state.
type State int

const (
	// StateUnauthenticated means no session has been acquired.
	StateUnauthenticated State = iota
	// StateFresh means the cached session is younger than SessionStaleAfter.
	StateFresh
	// StateStale means the cached session must be replaced before use.
	StateStale
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateFresh:
		return "fresh"
	case StateStale:
		return "stale"
	default:
		return "unknown"
	}
}

const loginFlightKey = "login"

// SessionManager owns the cached session and hands out a valid one to every
// caller, logging in again when the cached one is missing or stale.
//
// At most one login runs at a time. Callers arriving while a login is in
// flight wait for it and receive its session or its error.
type SessionManager struct {
	provider    LoginProvider
	credentials bullhorn.Credentials
	logger      bullhorn.Logger
	metrics     *SessionMetrics
	now         func() time.Time

	mutex        sync.RWMutex
	session      *bullhorn.Session
	refreshToken string

	flights singleflight.Group
}

// SessionOption configures a SessionManager.
type SessionOption func(*SessionManager)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) SessionOption {
	return func(m *SessionManager) {
		m.now = now
	}
}

// WithSessionLogger sets the logger.
func WithSessionLogger(logger bullhorn.Logger) SessionOption {
	return func(m *SessionManager) {
		m.logger = logger
	}
}

// WithMetrics records logins and cache hits.
func WithMetrics(metrics *SessionMetrics) SessionOption {
	return func(m *SessionManager) {
		m.metrics = metrics
	}
}

// NewSessionManager creates a manager in the Unauthenticated state.
func NewSessionManager(provider LoginProvider, credentials bullhorn.Credentials, opts ...SessionOption) *SessionManager {
	manager := &SessionManager{
		provider:    provider,
		credentials: credentials,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(manager)
	}

	return manager
}

// GetValidSession returns the cached session if it is fresh, otherwise logs
// in. The shared login is detached from ctx cancellation so one caller giving
// up does not fail the others; a caller whose ctx ends stops waiting.
func (m *SessionManager) GetValidSession(ctx context.Context) (*bullhorn.Session, error) {
	if session, ok := m.freshSession(); ok {
		m.metrics.cacheHit()

		return session, nil
	}

	flight := m.flights.DoChan(loginFlightKey, func() (interface{}, error) {
		return m.login(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result := <-flight:
		if result.Err != nil {
			return nil, result.Err
		}

		session, _ := result.Val.(*bullhorn.Session)

		return session, nil
	}
}

// login runs inside the flight. The cached session is re-checked first
// because a flight that completed just before this one was started may
// already have stored a fresh session.
func (m *SessionManager) login(ctx context.Context) (*bullhorn.Session, error) {
	if session, ok := m.freshSession(); ok {
		return session, nil
	}

	previous := m.State()

	result, err := m.provider.Login(ctx, m.credentials)
	if err != nil {
		m.metrics.loginFailed()
		m.log("error", "login failed", map[string]interface{}{
			"previous_state": previous.String(),
			"error":          err.Error(),
		})

		return nil, err
	}

	session := &bullhorn.Session{
		RestURL:     result.RestURL,
		BhRestToken: result.BhRestToken,
		AcquiredAt:  m.now(),
	}

	m.mutex.Lock()
	m.session = session
	m.refreshToken = result.RefreshToken
	m.mutex.Unlock()

	m.metrics.loginSucceeded()
	m.log("info", "session acquired", map[string]interface{}{
		"previous_state": previous.String(),
		"rest_url":       session.RestURL,
	})

	return session, nil
}

func (m *SessionManager) freshSession() (*bullhorn.Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.session == nil || m.isStale(m.session) {
		return nil, false
	}

	return m.session, true
}

func (m *SessionManager) isStale(session *bullhorn.Session) bool {
	return session.Age(m.now()) >= constants.SessionStaleAfter
}

// State reports the current lifecycle state.
func (m *SessionManager) State() State {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	switch {
	case m.session == nil:
		return StateUnauthenticated
	case m.isStale(m.session):
		return StateStale
	default:
		return StateFresh
	}
}

// Current returns the cached session, stale or not, without logging in.
func (m *SessionManager) Current() *bullhorn.Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return m.session
}

// RefreshToken returns the refresh token captured by the last login.
func (m *SessionManager) RefreshToken() string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return m.refreshToken
}

// Invalidate drops the cached session; the next GetValidSession logs in.
func (m *SessionManager) Invalidate() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.session = nil
	m.refreshToken = ""
}

func (m *SessionManager) log(level, msg string, fields map[string]interface{}) {
	if m.logger == nil {
		return
	}

	switch level {
	case "error":
		m.logger.Error(msg, fields)
	default:
		m.logger.Info(msg, fields)
	}
}
