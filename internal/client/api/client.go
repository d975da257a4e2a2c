package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const requestTimeout = 10 * time.Second

// User mirrors the public user representation of the API.
type User struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AuthResponse is a successful register/login/refresh result.
type AuthResponse struct {
	Token        string
	RefreshToken string
	User         User
}

type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

// envelope mirrors the server's uniform response shape.
type envelope struct {
	Success      bool            `json:"success"`
	Message      string          `json:"message"`
	Data         json.RawMessage `json:"data"`
	User         *User           `json:"user"`
	Token        string          `json:"token"`
	RefreshToken string          `json:"refreshToken"`
	Error        string          `json:"error"`
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
}

// IsUnauthorized reports whether err is a 401 from the server.
func IsUnauthorized(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.StatusCode == http.StatusUnauthorized
}

// TokenSource supplies the bearer token for authenticated calls and can
// be asked to refresh it after a 401. A session manager implements this.
type TokenSource interface {
	AccessToken() string
	RefreshNow(ctx context.Context) error
}

type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: requestTimeout},
	}
}

// SetTokenSource wires the session manager in after construction; the
// manager itself needs the client first.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.tokens = ts
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	return c.authCall(ctx, "/api/v1/auth/register", req)
}

func (c *Client) Login(ctx context.Context, req LoginRequest) (AuthResponse, error) {
	return c.authCall(ctx, "/api/v1/auth/login", req)
}

// Refresh exchanges a refresh token for a fresh pair. It never consults
// the token source: this is the call the source itself depends on.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (AuthResponse, error) {
	return c.authCall(ctx, "/api/v1/auth/refresh", map[string]string{"refreshToken": refreshToken})
}

func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/api/v1/auth/logout", nil, true)
	return err
}

// Me fetches the user behind the current access token.
func (c *Client) Me(ctx context.Context) (User, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/v1/auth/me", nil, true)
	if err != nil {
		return User{}, err
	}

	var user User
	if err := json.Unmarshal(env.Data, &user); err != nil {
		return User{}, fmt.Errorf("decode user: %w", err)
	}
	return user, nil
}

func (c *Client) authCall(ctx context.Context, path string, body any) (AuthResponse, error) {
	env, err := c.do(ctx, http.MethodPost, path, body, false)
	if err != nil {
		return AuthResponse{}, err
	}
	if env.Token == "" || env.RefreshToken == "" || env.User == nil {
		return AuthResponse{}, fmt.Errorf("api: incomplete auth response")
	}
	return AuthResponse{
		Token:        env.Token,
		RefreshToken: env.RefreshToken,
		User:         *env.User,
	}, nil
}

// do runs one request against the API. Authenticated calls that bounce
// with a 401 get a single refresh-and-retry before the error surfaces.
func (c *Client) do(ctx context.Context, method, path string, body any, authed bool) (*envelope, error) {
	env, err := c.once(ctx, method, path, body, authed)
	if err == nil || !authed || c.tokens == nil || !IsUnauthorized(err) {
		return env, err
	}

	if refreshErr := c.tokens.RefreshNow(ctx); refreshErr != nil {
		return nil, err
	}
	return c.once(ctx, method, path, body, authed)
}

func (c *Client) once(ctx context.Context, method, path string, body any, authed bool) (*envelope, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed && c.tokens != nil {
		if token := c.tokens.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= 400 {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode >= 400 || !env.Success {
		msg := env.Error
		if msg == "" {
			msg = env.Message
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	return &env, nil
}
