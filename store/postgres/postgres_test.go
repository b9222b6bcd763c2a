package postgres_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/edutime/generic"
	"github.com/warp/edutime/store/postgres"
)

func newTestStore(t *testing.T) *postgres.Store {
	dsn := os.Getenv("EDUTIME_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("EDUTIME_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	store, err := postgres.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		keys, _ := store.Keys(ctx, "test:")
		for _, k := range keys {
			_ = store.Delete(ctx, k)
		}
		store.Close()
	})
	return store
}

func TestStore_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "test:users", []byte(`[{"id":"3","name":"Arjun Singh"}]`)))
	v, found, err := store.Get(ctx, "test:users")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `[{"id":"3","name":"Arjun Singh"}]`, string(v))

	keys, err := store.Keys(ctx, "test:")
	require.NoError(t, err)
	assert.Equal(t, []string{"test:users"}, keys)
}

func TestStore_WithTx_Rollback(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.WithTx(ctx, func(s generic.Store) error {
		require.NoError(t, s.Put(ctx, "test:requests", []byte(`[]`)))
		return errors.New("abort")
	})
	require.Error(t, err)

	_, found, err := store.Get(ctx, "test:requests")
	require.NoError(t, err)
	assert.False(t, found)
}
