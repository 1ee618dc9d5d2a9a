package tokens_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/firmaboard/firmaboard-go/tokens"
)

func TestStore_Save(t *testing.T) {
	pair := tokens.Pair{Access: "access-1", Refresh: "refresh-1"}

	t.Run("rememberMe writes the durable area only", func(t *testing.T) {
		ephemeral := tokens.NewMemoryArea()
		durable := tokens.NewMemoryArea()
		store := tokens.NewStore(ephemeral, durable)

		require.NoError(t, store.Save(pair, true))

		access, ok := store.AccessToken()
		require.True(t, ok)
		require.Equal(t, "access-1", access)

		_, ok = ephemeral.Get(tokens.KeyAccessToken)
		require.False(t, ok)
		_, ok = ephemeral.Get(tokens.KeyRefreshToken)
		require.False(t, ok)
	})

	t.Run("no rememberMe writes the ephemeral area only", func(t *testing.T) {
		ephemeral := tokens.NewMemoryArea()
		durable := tokens.NewMemoryArea()
		store := tokens.NewStore(ephemeral, durable)

		require.NoError(t, store.Save(pair, false))

		access, ok := store.AccessToken()
		require.True(t, ok)
		require.Equal(t, "access-1", access)

		_, ok = durable.Get(tokens.KeyAccessToken)
		require.False(t, ok)
		_, ok = durable.Get(tokens.KeyRefreshToken)
		require.False(t, ok)
	})

	t.Run("save does not clear a stale copy in the other area", func(t *testing.T) {
		ephemeral := tokens.NewMemoryArea()
		durable := tokens.NewMemoryArea()
		store := tokens.NewStore(ephemeral, durable)

		require.NoError(t, store.Save(tokens.Pair{Access: "old", Refresh: "old-r"}, true))
		require.NoError(t, store.Save(pair, false))

		// Ephemeral wins on read; the durable copy lingers until cleared.
		access, ok := store.AccessToken()
		require.True(t, ok)
		require.Equal(t, "access-1", access)

		stale, ok := durable.Get(tokens.KeyAccessToken)
		require.True(t, ok)
		require.Equal(t, "old", stale)
	})
}

func TestStore_ReadFallback(t *testing.T) {
	t.Run("durable token read when ephemeral is empty", func(t *testing.T) {
		ephemeral := tokens.NewMemoryArea()
		durable := tokens.NewMemoryArea()
		require.NoError(t, durable.Set(tokens.KeyAccessToken, "abc"))

		store := tokens.NewStore(ephemeral, durable)
		access, ok := store.AccessToken()
		require.True(t, ok)
		require.Equal(t, "abc", access)
	})

	t.Run("absent everywhere", func(t *testing.T) {
		store := tokens.NewStore(tokens.NewMemoryArea(), tokens.NewMemoryArea())
		_, ok := store.AccessToken()
		require.False(t, ok)
		_, ok = store.RefreshToken()
		require.False(t, ok)
	})
}

func TestStore_Clear(t *testing.T) {
	ephemeral := tokens.NewMemoryArea()
	durable := tokens.NewMemoryArea()
	store := tokens.NewStore(ephemeral, durable)

	require.NoError(t, store.Save(tokens.Pair{Access: "a", Refresh: "r"}, false))
	require.NoError(t, store.Save(tokens.Pair{Access: "b", Refresh: "s"}, true))

	require.NoError(t, store.Clear())
	// Idempotent.
	require.NoError(t, store.Clear())

	for _, area := range []tokens.Area{ephemeral, durable} {
		_, ok := area.Get(tokens.KeyAccessToken)
		require.False(t, ok)
		_, ok = area.Get(tokens.KeyRefreshToken)
		require.False(t, ok)
	}
}

func TestStore_RotateAccess(t *testing.T) {
	t.Run("ephemeral copy preferred", func(t *testing.T) {
		ephemeral := tokens.NewMemoryArea()
		durable := tokens.NewMemoryArea()
		store := tokens.NewStore(ephemeral, durable)

		require.NoError(t, store.Save(tokens.Pair{Access: "old", Refresh: "r"}, false))
		require.NoError(t, durable.Set(tokens.KeyAccessToken, "stale"))

		require.NoError(t, store.RotateAccess("rotated"))

		fresh, _ := ephemeral.Get(tokens.KeyAccessToken)
		require.Equal(t, "rotated", fresh)
		stale, _ := durable.Get(tokens.KeyAccessToken)
		require.Equal(t, "stale", stale)
	})

	t.Run("durable area receives the token otherwise", func(t *testing.T) {
		ephemeral := tokens.NewMemoryArea()
		durable := tokens.NewMemoryArea()
		store := tokens.NewStore(ephemeral, durable)

		require.NoError(t, store.RotateAccess("rotated"))

		fresh, _ := durable.Get(tokens.KeyAccessToken)
		require.Equal(t, "rotated", fresh)
	})

	t.Run("refresh token untouched", func(t *testing.T) {
		store := tokens.NewStore(tokens.NewMemoryArea(), tokens.NewMemoryArea())
		require.NoError(t, store.Save(tokens.Pair{Access: "a", Refresh: "keep"}, false))

		require.NoError(t, store.RotateAccess("rotated"))

		refresh, ok := store.RefreshToken()
		require.True(t, ok)
		require.Equal(t, "keep", refresh)
	})
}

func TestStore_Provider(t *testing.T) {
	ephemeral := tokens.NewMemoryArea()
	durable := tokens.NewMemoryArea()
	store := tokens.NewStore(ephemeral, durable)

	require.NoError(t, store.RecordProvider(tokens.ProviderGoogle, true))

	provider, ok := store.Provider()
	require.True(t, ok)
	require.Equal(t, "google", provider)

	_, ok = ephemeral.Get(tokens.KeyAuthProvider)
	require.False(t, ok)

	require.NoError(t, store.ClearProvider())
	_, ok = store.Provider()
	require.False(t, ok)
}
