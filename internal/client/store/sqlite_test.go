package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := OpenSQLite(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.Set(ctx, KeyAuthToken, []byte("token")))
	got, err := st.Get(ctx, KeyAuthToken)
	require.NoError(t, err)
	require.Equal(t, "token", string(got))

	// upsert replaces
	require.NoError(t, st.Set(ctx, KeyAuthToken, []byte("newer")))
	got, err = st.Get(ctx, KeyAuthToken)
	require.NoError(t, err)
	require.Equal(t, "newer", string(got))
}

func TestSQLiteStore_MissingKeyIsNil(t *testing.T) {
	st := newTestStore(t)

	got, err := st.Get(context.Background(), "absent")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestSQLiteStore_ClearRemovesEverything(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	for _, key := range []string{KeyAuthToken, KeyAuthUser, KeyRefreshToken, KeyRememberMe} {
		require.NoError(t, st.Set(ctx, key, []byte("v")))
	}
	require.NoError(t, st.Clear(ctx))

	for _, key := range []string{KeyAuthToken, KeyAuthUser, KeyRefreshToken, KeyRememberMe} {
		got, err := st.Get(ctx, key)
		require.NoError(t, err)
		require.Nil(t, got, "key %s survived clear", key)
	}
}
