package session

import (
	"time"

	"github.com/kilnworks/brickline/internal/client/api"
)

// Defaults for the background schedule. All of them are parameters so
// tests can run the lifecycle in milliseconds.
const (
	DefaultRefreshInterval  = 6 * time.Hour
	DefaultVisibleThreshold = 1 * time.Hour
	DefaultWarnThreshold    = 5 * time.Minute
	DefaultWatchInterval    = 1 * time.Minute
)

// State is a point-in-time snapshot of the session. Authenticated holds
// iff both the user and the access token are present.
type State struct {
	User         *api.User
	AccessToken  string
	RefreshToken string
	RememberMe   bool
}

func (s State) Authenticated() bool {
	return s.User != nil && s.AccessToken != ""
}

// Warning is handed to the expiry callback while the access token is in
// its final minutes. Extend triggers a refresh, Logout ends the session.
type Warning struct {
	Remaining time.Duration
}

type Option func(*Manager)

// WithClock substitutes the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithSchedule overrides the background timing knobs.
func WithSchedule(refreshEvery, visibleThreshold, warnThreshold, watchEvery time.Duration) Option {
	return func(m *Manager) {
		m.refreshInterval = refreshEvery
		m.visibleThreshold = visibleThreshold
		m.warnThreshold = warnThreshold
		m.watchInterval = watchEvery
	}
}

// WithWarningFunc registers the pre-expiry warning hook.
func WithWarningFunc(fn func(Warning)) Option {
	return func(m *Manager) { m.onWarning = fn }
}

// WithLogoutFunc registers a hook that fires whenever the session ends
// for any reason other than an explicit Logout call.
func WithLogoutFunc(fn func(reason string)) Option {
	return func(m *Manager) { m.onLogout = fn }
}
