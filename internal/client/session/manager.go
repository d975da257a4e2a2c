package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kilnworks/brickline/internal/client/api"
	"github.com/kilnworks/brickline/internal/client/store"
)

var ErrNotAuthenticated = errors.New("session: not authenticated")

// Manager owns the client session: the current user, the token pair and
// the background schedule that keeps them fresh. All state changes go
// through the named transitions (Login, Register, Logout, Refresh,
// Restore); nothing else mutates the fields.
type Manager struct {
	api   *api.Client
	store store.Store
	log   *zap.Logger
	now   func() time.Time

	refreshInterval  time.Duration
	visibleThreshold time.Duration
	warnThreshold    time.Duration
	watchInterval    time.Duration

	onWarning func(Warning)
	onLogout  func(reason string)

	mu           sync.Mutex
	user         *api.User
	accessToken  string
	refreshToken string
	rememberMe   bool
	expiresAt    time.Time
	// generation increments on every transition that replaces or clears
	// the tokens. A refresh that started under an older generation must
	// not apply its result.
	generation uint64
	warnedAt   time.Time

	refreshGroup singleflight.Group

	visible chan struct{}
	done    chan struct{}
	started bool
}

func NewManager(client *api.Client, st store.Store, log *zap.Logger, opts ...Option) *Manager {
	m := &Manager{
		api:              client,
		store:            st,
		log:              log,
		now:              time.Now,
		refreshInterval:  DefaultRefreshInterval,
		visibleThreshold: DefaultVisibleThreshold,
		warnThreshold:    DefaultWarnThreshold,
		watchInterval:    DefaultWatchInterval,
		visible:          make(chan struct{}, 1),
		done:             make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	client.SetTokenSource(m)
	return m
}

// State returns a snapshot of the current session.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return State{
		User:         m.user,
		AccessToken:  m.accessToken,
		RefreshToken: m.refreshToken,
		RememberMe:   m.rememberMe,
	}
}

// AccessToken implements api.TokenSource.
func (m *Manager) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accessToken
}

// RefreshNow implements api.TokenSource: the transparent retry path
// after a 401.
func (m *Manager) RefreshNow(ctx context.Context) error {
	return m.Refresh(ctx)
}

func (m *Manager) Login(ctx context.Context, email, password string, rememberMe bool) (api.User, error) {
	resp, err := m.api.Login(ctx, api.LoginRequest{
		Email:      email,
		Password:   password,
		RememberMe: rememberMe,
	})
	if err != nil {
		return api.User{}, err
	}
	if err := m.apply(ctx, resp, rememberMe); err != nil {
		return api.User{}, err
	}
	return resp.User, nil
}

func (m *Manager) Register(ctx context.Context, req api.RegisterRequest, rememberMe bool) (api.User, error) {
	resp, err := m.api.Register(ctx, req)
	if err != nil {
		return api.User{}, err
	}
	if err := m.apply(ctx, resp, rememberMe); err != nil {
		return api.User{}, err
	}
	return resp.User, nil
}

// Logout ends the session. The server call is best effort: local state
// is cleared regardless of its outcome.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.api.Logout(ctx); err != nil {
		m.log.Debug("server logout failed", zap.Error(err))
	}
	return m.clear(ctx)
}

// Refresh exchanges the refresh token for a new pair. Concurrent callers
// share one network call; any failure ends the session.
func (m *Manager) Refresh(ctx context.Context) error {
	m.mu.Lock()
	token := m.refreshToken
	gen := m.generation
	m.mu.Unlock()

	if token == "" {
		return ErrNotAuthenticated
	}

	_, err, _ := m.refreshGroup.Do("refresh", func() (any, error) {
		resp, err := m.api.Refresh(ctx, token)
		if err != nil {
			return nil, err
		}
		return resp, m.applyIfCurrent(ctx, resp, gen)
	})
	if err != nil {
		if errors.Is(err, errStaleGeneration) {
			// logged out mid-flight, drop the result quietly
			return nil
		}
		m.log.Warn("refresh failed, ending session", zap.Error(err))
		m.forceLogout(ctx, "refresh failed")
		return err
	}
	return nil
}

// Restore loads a persisted session. The in-memory state is populated
// optimistically; validation against the server happens in the
// background and never blocks the caller.
func (m *Manager) Restore(ctx context.Context) (State, error) {
	token, err := m.store.Get(ctx, store.KeyAuthToken)
	if err != nil {
		return State{}, err
	}
	rawUser, err := m.store.Get(ctx, store.KeyAuthUser)
	if err != nil {
		return State{}, err
	}
	if len(token) == 0 || len(rawUser) == 0 {
		return State{}, nil
	}

	var user api.User
	if err := json.Unmarshal(rawUser, &user); err != nil {
		m.store.Clear(ctx)
		return State{}, nil
	}

	flag, _ := m.store.Get(ctx, store.KeyRememberMe)
	rememberMe := string(flag) == "true"
	refreshToken, _ := m.store.Get(ctx, store.KeyRefreshToken)

	m.mu.Lock()
	m.user = &user
	m.accessToken = string(token)
	m.refreshToken = string(refreshToken)
	m.rememberMe = rememberMe
	m.expiresAt, _ = tokenExpiry(string(token))
	m.generation++
	m.warnedAt = time.Time{}
	m.mu.Unlock()

	go m.reconcile(context.WithoutCancel(ctx))

	return m.State(), nil
}

// reconcile validates a restored session: confirm the token against the
// server, fall back to a single refresh when allowed, otherwise clear.
func (m *Manager) reconcile(ctx context.Context) {
	fresh, err := m.api.Me(ctx)
	if err == nil {
		m.mu.Lock()
		if m.user != nil {
			m.user = &fresh
		}
		m.mu.Unlock()
		return
	}
	if !api.IsUnauthorized(err) {
		// network trouble is not proof the session is dead
		m.log.Debug("session validation inconclusive", zap.Error(err))
		return
	}

	m.mu.Lock()
	canRefresh := m.rememberMe && m.refreshToken != ""
	m.mu.Unlock()

	if canRefresh {
		if err := m.Refresh(ctx); err == nil {
			return
		}
		// Refresh already cleared the session on failure.
		return
	}
	m.forceLogout(ctx, "restored session invalid")
}

// CurrentUser fetches the profile behind the access token and keeps the
// in-memory user in sync with it.
func (m *Manager) CurrentUser(ctx context.Context) (api.User, error) {
	m.mu.Lock()
	authed := m.user != nil && m.accessToken != ""
	m.mu.Unlock()
	if !authed {
		return api.User{}, ErrNotAuthenticated
	}

	user, err := m.api.Me(ctx)
	if err != nil {
		return api.User{}, err
	}

	m.mu.Lock()
	if m.user != nil {
		m.user = &user
	}
	m.mu.Unlock()
	return user, nil
}

// NotifyVisible signals that the application returned to the
// foreground. The scheduler decides whether that warrants a refresh.
func (m *Manager) NotifyVisible() {
	select {
	case m.visible <- struct{}{}:
	default:
	}
}

func (m *Manager) apply(ctx context.Context, resp api.AuthResponse, rememberMe bool) error {
	expiresAt, err := tokenExpiry(resp.Token)
	if err != nil {
		return err
	}

	m.mu.Lock()
	user := resp.User
	m.user = &user
	m.accessToken = resp.Token
	m.refreshToken = resp.RefreshToken
	m.rememberMe = rememberMe
	m.expiresAt = expiresAt
	m.generation++
	m.warnedAt = time.Time{}
	m.mu.Unlock()

	return m.persist(ctx, resp, rememberMe)
}

var errStaleGeneration = errors.New("session: state changed during refresh")

// applyIfCurrent installs a refreshed pair only when no transition ran
// since the refresh started.
func (m *Manager) applyIfCurrent(ctx context.Context, resp api.AuthResponse, gen uint64) error {
	expiresAt, err := tokenExpiry(resp.Token)
	if err != nil {
		return err
	}

	m.mu.Lock()
	if m.generation != gen {
		m.mu.Unlock()
		return errStaleGeneration
	}
	user := resp.User
	m.user = &user
	m.accessToken = resp.Token
	m.refreshToken = resp.RefreshToken
	m.expiresAt = expiresAt
	m.generation++
	m.warnedAt = time.Time{}
	rememberMe := m.rememberMe
	m.mu.Unlock()

	return m.persist(ctx, resp, rememberMe)
}

// persist writes the session to the store, but only under rememberMe:
// without it nothing survives a restart.
func (m *Manager) persist(ctx context.Context, resp api.AuthResponse, rememberMe bool) error {
	if !rememberMe {
		return m.store.Clear(ctx)
	}

	rawUser, err := json.Marshal(resp.User)
	if err != nil {
		return err
	}
	if err := m.store.Set(ctx, store.KeyAuthToken, []byte(resp.Token)); err != nil {
		return err
	}
	if err := m.store.Set(ctx, store.KeyAuthUser, rawUser); err != nil {
		return err
	}
	if err := m.store.Set(ctx, store.KeyRefreshToken, []byte(resp.RefreshToken)); err != nil {
		return err
	}
	return m.store.Set(ctx, store.KeyRememberMe, []byte("true"))
}

func (m *Manager) clear(ctx context.Context) error {
	m.mu.Lock()
	m.user = nil
	m.accessToken = ""
	m.refreshToken = ""
	m.rememberMe = false
	m.expiresAt = time.Time{}
	m.generation++
	m.warnedAt = time.Time{}
	m.mu.Unlock()

	return m.store.Clear(ctx)
}

func (m *Manager) forceLogout(ctx context.Context, reason string) {
	if err := m.clear(ctx); err != nil {
		m.log.Warn("failed to clear session state", zap.Error(err))
	}
	if m.onLogout != nil {
		m.onLogout(reason)
	}
}

// tokenExpiry reads exp from the token without verifying the signature.
// The client has no key material; the server remains the authority.
func tokenExpiry(token string) (time.Time, error) {
	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, errors.New("session: token has no expiry")
	}
	return claims.ExpiresAt.Time, nil
}
