package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kilnworks/brickline/internal/client/api"
	"github.com/kilnworks/brickline/internal/client/store"
)

func mintToken(t *testing.T, ttl time.Duration) string {
	t.Helper()
	claims := gojwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: gojwt.NewNumericDate(time.Now().Add(ttl)),
	}
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte("test"))
	require.NoError(t, err)
	return token
}

// fakeAPI is a scripted server covering the auth endpoints the manager
// talks to.
type fakeAPI struct {
	t *testing.T

	logins     atomic.Int32
	refreshes  atomic.Int32
	meCalls    atomic.Int32
	refreshTTL time.Duration

	// when set, each refresh waits here before answering
	refreshGate chan struct{}
	failRefresh atomic.Bool
	failMe      atomic.Bool
}

func newFakeAPI(t *testing.T) *fakeAPI {
	return &fakeAPI{t: t, refreshTTL: time.Hour}
}

func (f *fakeAPI) authBody(w http.ResponseWriter) {
	json.NewEncoder(w).Encode(map[string]any{
		"success":      true,
		"token":        mintToken(f.t, f.refreshTTL),
		"refreshToken": "refresh-" + time.Now().Format("150405.000000000"),
		"user":         api.User{ID: 1, Username: "mason", Email: "mason@example.com"},
	})
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/v1/auth/login":
		f.logins.Add(1)
		f.authBody(w)
	case "/api/v1/auth/refresh":
		f.refreshes.Add(1)
		if f.refreshGate != nil {
			<-f.refreshGate
		}
		if f.failRefresh.Load() {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "Invalid token"})
			return
		}
		f.authBody(w)
	case "/api/v1/auth/logout":
		json.NewEncoder(w).Encode(map[string]any{"success": true, "message": "Logout successful"})
	case "/api/v1/auth/me":
		f.meCalls.Add(1)
		if f.failMe.Load() {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "Invalid token"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    api.User{ID: 1, Username: "mason", Email: "mason@example.com"},
		})
	default:
		f.t.Fatalf("unexpected path %s", r.URL.Path)
	}
}

func newTestManager(t *testing.T, fake *fakeAPI, opts ...Option) (*Manager, *store.MemoryStore) {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	st := store.NewMemoryStore()
	m := NewManager(api.New(srv.URL), st, zap.NewNop(), opts...)
	return m, st
}

func TestLogin_RememberMePersists(t *testing.T) {
	m, st := newTestManager(t, newFakeAPI(t))

	user, err := m.Login(context.Background(), "mason@example.com", "pw", true)
	require.NoError(t, err)
	require.Equal(t, "mason", user.Username)

	state := m.State()
	require.True(t, state.Authenticated())
	require.True(t, state.RememberMe)

	token, err := st.Get(context.Background(), store.KeyAuthToken)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	flag, err := st.Get(context.Background(), store.KeyRememberMe)
	require.NoError(t, err)
	require.Equal(t, "true", string(flag))
}

func TestLogin_WithoutRememberMeNothingPersists(t *testing.T) {
	m, st := newTestManager(t, newFakeAPI(t))

	_, err := m.Login(context.Background(), "mason@example.com", "pw", false)
	require.NoError(t, err)
	require.True(t, m.State().Authenticated())

	for _, key := range []string{store.KeyAuthToken, store.KeyAuthUser, store.KeyRefreshToken, store.KeyRememberMe} {
		v, err := st.Get(context.Background(), key)
		require.NoError(t, err)
		require.Empty(t, v, "key %s must not persist", key)
	}
}

func TestRefresh_ReplacesPair(t *testing.T) {
	fake := newFakeAPI(t)
	m, _ := newTestManager(t, fake)

	_, err := m.Login(context.Background(), "mason@example.com", "pw", true)
	require.NoError(t, err)
	before := m.State()

	require.NoError(t, m.Refresh(context.Background()))
	after := m.State()
	require.NotEqual(t, before.RefreshToken, after.RefreshToken)
	require.True(t, after.Authenticated())
}

func TestRefresh_ConcurrentTriggersDeduplicate(t *testing.T) {
	fake := newFakeAPI(t)
	fake.refreshGate = make(chan struct{})
	m, _ := newTestManager(t, fake)

	_, err := m.Login(context.Background(), "mason@example.com", "pw", true)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, m.Refresh(context.Background()))
		}()
	}

	// let the goroutines pile up against the in-flight request
	time.Sleep(50 * time.Millisecond)
	close(fake.refreshGate)
	wg.Wait()

	require.Equal(t, int32(1), fake.refreshes.Load())
}

func TestRefresh_FailureEndsSession(t *testing.T) {
	fake := newFakeAPI(t)
	var loggedOut atomic.Bool
	m, st := newTestManager(t, fake, WithLogoutFunc(func(string) { loggedOut.Store(true) }))

	_, err := m.Login(context.Background(), "mason@example.com", "pw", true)
	require.NoError(t, err)

	fake.failRefresh.Store(true)
	require.Error(t, m.Refresh(context.Background()))

	require.False(t, m.State().Authenticated())
	require.True(t, loggedOut.Load())
	token, err := st.Get(context.Background(), store.KeyAuthToken)
	require.NoError(t, err)
	require.Empty(t, token)
}

func TestLogout_DiscardsInFlightRefresh(t *testing.T) {
	fake := newFakeAPI(t)
	fake.refreshGate = make(chan struct{})
	m, _ := newTestManager(t, fake)

	_, err := m.Login(context.Background(), "mason@example.com", "pw", true)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- m.Refresh(context.Background()) }()
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, m.Logout(context.Background()))
	close(fake.refreshGate)

	// the late refresh result is dropped, not installed
	require.NoError(t, <-done)
	require.False(t, m.State().Authenticated())
}

func TestRestore_EmptyStore(t *testing.T) {
	m, _ := newTestManager(t, newFakeAPI(t))

	state, err := m.Restore(context.Background())
	require.NoError(t, err)
	require.False(t, state.Authenticated())
}

func TestRestore_OptimisticThenValidated(t *testing.T) {
	fake := newFakeAPI(t)
	m, st := newTestManager(t, fake)

	rawUser, _ := json.Marshal(api.User{ID: 1, Username: "mason"})
	require.NoError(t, st.Set(context.Background(), store.KeyAuthToken, []byte(mintToken(t, time.Hour))))
	require.NoError(t, st.Set(context.Background(), store.KeyAuthUser, rawUser))
	require.NoError(t, st.Set(context.Background(), store.KeyRefreshToken, []byte("refresh")))
	require.NoError(t, st.Set(context.Background(), store.KeyRememberMe, []byte("true")))

	state, err := m.Restore(context.Background())
	require.NoError(t, err)
	require.True(t, state.Authenticated())
	require.True(t, state.RememberMe)

	require.Eventually(t, func() bool { return fake.meCalls.Load() > 0 },
		time.Second, 10*time.Millisecond)
}

func TestRestore_InvalidTokenFallsBackToRefresh(t *testing.T) {
	fake := newFakeAPI(t)
	m, _ := newTestManager(t, fake)

	rawUser, _ := json.Marshal(api.User{ID: 1, Username: "mason"})
	st := m.store
	require.NoError(t, st.Set(context.Background(), store.KeyAuthToken, []byte(mintToken(t, time.Hour))))
	require.NoError(t, st.Set(context.Background(), store.KeyAuthUser, rawUser))
	require.NoError(t, st.Set(context.Background(), store.KeyRefreshToken, []byte("refresh")))
	require.NoError(t, st.Set(context.Background(), store.KeyRememberMe, []byte("true")))

	fake.failMe.Store(true)
	_, err := m.Restore(context.Background())
	require.NoError(t, err)

	require.Eventually(t, func() bool { return fake.refreshes.Load() > 0 },
		time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return m.State().Authenticated() },
		time.Second, 10*time.Millisecond)
}

func TestRestore_WithoutRememberMeClearsOnInvalid(t *testing.T) {
	fake := newFakeAPI(t)
	var loggedOut atomic.Bool
	m, st := newTestManager(t, fake, WithLogoutFunc(func(string) { loggedOut.Store(true) }))

	rawUser, _ := json.Marshal(api.User{ID: 1, Username: "mason"})
	require.NoError(t, st.Set(context.Background(), store.KeyAuthToken, []byte(mintToken(t, time.Hour))))
	require.NoError(t, st.Set(context.Background(), store.KeyAuthUser, rawUser))

	fake.failMe.Store(true)
	_, err := m.Restore(context.Background())
	require.NoError(t, err)

	require.Eventually(t, func() bool { return loggedOut.Load() }, time.Second, 10*time.Millisecond)
	require.False(t, m.State().Authenticated())
	require.Equal(t, int32(0), fake.refreshes.Load())
}

func TestVisibility_RefreshOnlyNearExpiry(t *testing.T) {
	fake := newFakeAPI(t)
	fake.refreshTTL = 2 * time.Hour
	m, _ := newTestManager(t, fake)

	_, err := m.Login(context.Background(), "mason@example.com", "pw", true)
	require.NoError(t, err)

	// plenty of lifetime left: the visibility signal is a no-op
	m.maybeRefresh(context.Background(), true)
	require.Equal(t, int32(0), fake.refreshes.Load())

	// inside the threshold it refreshes
	fake.refreshTTL = 30 * time.Minute
	require.NoError(t, m.Refresh(context.Background()))
	fake.refreshes.Store(0)
	m.maybeRefresh(context.Background(), true)
	require.Equal(t, int32(1), fake.refreshes.Load())
}

func TestVisibility_NoRefreshWithoutRememberMe(t *testing.T) {
	fake := newFakeAPI(t)
	fake.refreshTTL = time.Minute
	m, _ := newTestManager(t, fake)

	_, err := m.Login(context.Background(), "mason@example.com", "pw", false)
	require.NoError(t, err)

	m.maybeRefresh(context.Background(), true)
	m.maybeRefresh(context.Background(), false)
	require.Equal(t, int32(0), fake.refreshes.Load())
}

func TestExpiryWatcher_WarnsThenForcesLogout(t *testing.T) {
	fake := newFakeAPI(t)
	fake.refreshTTL = 3 * time.Minute

	var warnings atomic.Int32
	var loggedOut atomic.Bool
	m, _ := newTestManager(t, fake,
		WithWarningFunc(func(w Warning) {
			warnings.Add(1)
			require.Positive(t, w.Remaining)
		}),
		WithLogoutFunc(func(string) { loggedOut.Store(true) }),
	)

	_, err := m.Login(context.Background(), "mason@example.com", "pw", false)
	require.NoError(t, err)

	// three minutes left is inside the five minute warning window
	m.checkExpiry(context.Background())
	require.Equal(t, int32(1), warnings.Load())
	require.False(t, loggedOut.Load())

	// the warning fires once per token, not on every poll
	m.checkExpiry(context.Background())
	require.Equal(t, int32(1), warnings.Load())

	// at zero remaining the session is force-ended
	m.mu.Lock()
	m.expiresAt = time.Now().Add(-time.Second)
	m.mu.Unlock()
	m.checkExpiry(context.Background())
	require.True(t, loggedOut.Load())
	require.False(t, m.State().Authenticated())
}

func TestExpiryWarning_ExtendClears(t *testing.T) {
	fake := newFakeAPI(t)
	fake.refreshTTL = 3 * time.Minute
	var warnings atomic.Int32
	m, _ := newTestManager(t, fake, WithWarningFunc(func(Warning) { warnings.Add(1) }))

	_, err := m.Login(context.Background(), "mason@example.com", "pw", true)
	require.NoError(t, err)

	m.checkExpiry(context.Background())
	require.Equal(t, int32(1), warnings.Load())

	// the user extends: a fresh token leaves the warning window
	fake.refreshTTL = time.Hour
	require.NoError(t, m.Refresh(context.Background()))
	m.checkExpiry(context.Background())
	require.Equal(t, int32(1), warnings.Load())
}

func TestScheduler_PeriodicRefresh(t *testing.T) {
	fake := newFakeAPI(t)
	m, _ := newTestManager(t, fake,
		WithSchedule(20*time.Millisecond, time.Hour, 5*time.Minute, time.Hour))

	_, err := m.Login(context.Background(), "mason@example.com", "pw", true)
	require.NoError(t, err)

	m.Start(context.Background())
	defer m.Stop()

	require.Eventually(t, func() bool { return fake.refreshes.Load() >= 2 },
		time.Second, 5*time.Millisecond)
}
