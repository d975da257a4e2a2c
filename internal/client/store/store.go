package store

import "context"

// Well-known keys for the persisted session slots.
const (
	KeyAuthToken    = "auth-token"
	KeyAuthUser     = "auth-user"
	KeyRefreshToken = "refresh-token"
	KeyRememberMe   = "remember-me"
)

// Store is a small key/value persistence layer for client state.
// Get returns (nil, nil) for a missing key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
