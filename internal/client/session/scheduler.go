package session

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Start launches the background schedule: the refresh loop and the
// expiry watcher. Safe to call once; Stop ends both goroutines.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.mu.Unlock()

	go m.runScheduler(ctx)
	go m.runWatcher(ctx)
}

func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		return
	}
	m.started = false
	close(m.done)
	m.done = make(chan struct{})
}

// runScheduler is the single owner of the proactive refresh decision.
// The periodic timer and the visibility signal both funnel into
// maybeRefresh, so concurrent triggers cannot race each other into
// duplicate requests.
func (m *Manager) runScheduler(ctx context.Context) {
	m.mu.Lock()
	done := m.done
	m.mu.Unlock()

	ticker := time.NewTicker(m.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.maybeRefresh(ctx, false)
		case <-m.visible:
			m.maybeRefresh(ctx, true)
		case <-done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// maybeRefresh decides whether a proactive refresh is due. The periodic
// tick always refreshes; the visibility signal only when the token is
// inside the near-expiry window.
func (m *Manager) maybeRefresh(ctx context.Context, visibility bool) {
	m.mu.Lock()
	authed := m.user != nil && m.accessToken != ""
	remember := m.rememberMe
	remaining := m.expiresAt.Sub(m.now())
	m.mu.Unlock()

	if !authed || !remember {
		return
	}
	if visibility && remaining >= m.visibleThreshold {
		return
	}

	if err := m.Refresh(ctx); err != nil {
		m.log.Debug("scheduled refresh failed", zap.Error(err))
	}
}

// runWatcher polls the remaining access-token lifetime: inside the
// warning window it surfaces the countdown hook, at zero it forces a
// logout.
func (m *Manager) runWatcher(ctx context.Context) {
	m.mu.Lock()
	done := m.done
	m.mu.Unlock()

	ticker := time.NewTicker(m.watchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.checkExpiry(ctx)
		case <-done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (m *Manager) checkExpiry(ctx context.Context) {
	m.mu.Lock()
	authed := m.user != nil && m.accessToken != ""
	expiresAt := m.expiresAt
	warned := !m.warnedAt.IsZero()
	now := m.now()
	m.mu.Unlock()

	if !authed || expiresAt.IsZero() {
		return
	}

	remaining := expiresAt.Sub(now)
	switch {
	case remaining <= 0:
		m.forceLogout(ctx, "access token expired")
	case remaining < m.warnThreshold && !warned:
		m.mu.Lock()
		m.warnedAt = now
		m.mu.Unlock()
		if m.onWarning != nil {
			m.onWarning(Warning{Remaining: remaining})
		}
	}
}
