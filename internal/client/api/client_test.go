package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

type tokenSourceStub struct {
	token      atomic.Value
	refreshes  atomic.Int32
	refreshErr error
}

func (s *tokenSourceStub) AccessToken() string {
	v, _ := s.token.Load().(string)
	return v
}

func (s *tokenSourceStub) RefreshNow(ctx context.Context) error {
	s.refreshes.Add(1)
	if s.refreshErr != nil {
		return s.refreshErr
	}
	s.token.Store("fresh-token")
	return nil
}

func TestClient_Login(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/auth/login", r.URL.Path)

		var req LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "mason@example.com", req.Email)
		require.True(t, req.RememberMe)

		json.NewEncoder(w).Encode(map[string]any{
			"success":      true,
			"message":      "Login successful",
			"token":        "access",
			"refreshToken": "refresh",
			"user":         User{ID: 1, Username: "mason"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	resp, err := c.Login(context.Background(), LoginRequest{
		Email: "mason@example.com", Password: "pw", RememberMe: true,
	})
	require.NoError(t, err)
	require.Equal(t, "access", resp.Token)
	require.Equal(t, "refresh", resp.RefreshToken)
	require.Equal(t, "mason", resp.User.Username)
}

func TestClient_LoginError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"message": "Invalid email or password",
			"error":   "Invalid email or password",
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Login(context.Background(), LoginRequest{Email: "a@b.c", Password: "x"})
	require.Error(t, err)
	require.True(t, IsUnauthorized(err))
	require.Contains(t, err.Error(), "Invalid email or password")
}

func TestClient_MeRetriesOnceAfter401(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Header.Get("Authorization") != "Bearer fresh-token" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "Token has expired"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    User{ID: 1, Username: "mason"},
		})
	}))
	defer srv.Close()

	ts := &tokenSourceStub{}
	ts.token.Store("stale-token")
	c := New(srv.URL)
	c.SetTokenSource(ts)

	user, err := c.Me(context.Background())
	require.NoError(t, err)
	require.Equal(t, "mason", user.Username)
	require.Equal(t, int32(1), ts.refreshes.Load())
	require.Equal(t, int32(2), calls.Load())
}

func TestClient_NoSecondRetryWhenRefreshFails(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "Invalid token"})
	}))
	defer srv.Close()

	ts := &tokenSourceStub{refreshErr: context.DeadlineExceeded}
	ts.token.Store("stale-token")
	c := New(srv.URL)
	c.SetTokenSource(ts)

	_, err := c.Me(context.Background())
	require.True(t, IsUnauthorized(err))
	require.Equal(t, int32(1), calls.Load())
	require.Equal(t, int32(1), ts.refreshes.Load())
}

func TestClient_RefreshDoesNotRecurse(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "Invalid token"})
	}))
	defer srv.Close()

	ts := &tokenSourceStub{}
	c := New(srv.URL)
	c.SetTokenSource(ts)

	// the refresh endpoint itself gets no transparent retry
	_, err := c.Refresh(context.Background(), "stale")
	require.True(t, IsUnauthorized(err))
	require.Equal(t, int32(1), calls.Load())
	require.Equal(t, int32(0), ts.refreshes.Load())
}
