package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/edutime/generic"
	"github.com/warp/edutime/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_PutGetOverwrite(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, found, err := store.Get(ctx, generic.KeyLeaveTypes)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Put(ctx, generic.KeyLeaveTypes, []byte(`[1]`)))
	require.NoError(t, store.Put(ctx, generic.KeyLeaveTypes, []byte(`[1,2]`)))

	v, found, err := store.Get(ctx, generic.KeyLeaveTypes)
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `[1,2]`, string(v))
}

func TestStore_KeysAndDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, generic.BalanceKey("22"), []byte(`{}`)))
	require.NoError(t, store.Put(ctx, generic.BalanceKey("3"), []byte(`{}`)))
	require.NoError(t, store.Put(ctx, generic.KeyUsers, []byte(`[]`)))

	keys, err := store.Keys(ctx, generic.BalancePrefix)
	require.NoError(t, err)
	assert.Equal(t, []string{"balances:22", "balances:3"}, keys)

	all, err := store.Keys(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, store.Delete(ctx, generic.BalanceKey("22")))
	require.NoError(t, store.Delete(ctx, "missing"))
	keys, err = store.Keys(ctx, generic.BalancePrefix)
	require.NoError(t, err)
	assert.Equal(t, []string{"balances:3"}, keys)
}

func TestStore_WithTx_Rollback(t *testing.T) {
	// GIVEN: A transaction that writes two keys then fails
	// THEN: Neither key exists afterwards

	store := newTestStore(t)
	ctx := context.Background()

	err := store.WithTx(ctx, func(s generic.Store) error {
		require.NoError(t, s.Put(ctx, generic.KeyLeaveRequests, []byte(`[{"id":"LV-1"}]`)))
		require.NoError(t, s.Put(ctx, generic.BalanceKey("3"), []byte(`{"Casual Leave":"5"}`)))
		return errors.New("abort")
	})
	require.Error(t, err)

	_, found, err := store.Get(ctx, generic.KeyLeaveRequests)
	require.NoError(t, err)
	assert.False(t, found)
	_, found, err = store.Get(ctx, generic.BalanceKey("3"))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_FilePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "edutime.db")
	ctx := context.Background()

	store, err := sqlite.New(path)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, generic.KeyUsers, []byte(`[{"id":"3"}]`)))
	require.NoError(t, store.Close())

	reopened, err := sqlite.New(path)
	require.NoError(t, err)
	defer reopened.Close()

	v, found, err := reopened.Get(ctx, generic.KeyUsers)
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `[{"id":"3"}]`, string(v))
}
