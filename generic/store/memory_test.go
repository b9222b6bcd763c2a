package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/edutime/generic"
)

func TestMemory_PutGetDelete(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Put(ctx, "users", []byte(`[]`)))
	v, found, err := m.Get(ctx, "users")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[]`, string(v))

	require.NoError(t, m.Delete(ctx, "users"))
	require.NoError(t, m.Delete(ctx, "users"), "deleting an absent key is a no-op")

	_, found, err = m.Get(ctx, "users")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemory_GetReturnsCopy(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	require.NoError(t, m.Put(ctx, "k", []byte("abc")))

	v, _, _ := m.Get(ctx, "k")
	v[0] = 'z'

	again, _, _ := m.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestMemory_KeysByPrefix(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	for _, k := range []string{generic.BalanceKey("b"), generic.BalanceKey("a"), generic.KeyUsers} {
		require.NoError(t, m.Put(ctx, k, []byte("{}")))
	}

	keys, err := m.Keys(ctx, generic.BalancePrefix)
	require.NoError(t, err)
	assert.Equal(t, []string{"balances:a", "balances:b"}, keys)
}

func TestTxMemory_CommitAndRollback(t *testing.T) {
	tm := NewTxMemory()
	ctx := context.Background()
	require.NoError(t, tm.Put(ctx, "keep", []byte("1")))

	err := tm.WithTx(ctx, func(s generic.Store) error {
		require.NoError(t, s.Put(ctx, "new", []byte("2")))
		require.NoError(t, s.Delete(ctx, "keep"))
		return errors.New("abort")
	})
	require.Error(t, err)

	_, found, _ := tm.Get(ctx, "keep")
	assert.True(t, found, "delete rolled back")
	_, found, _ = tm.Get(ctx, "new")
	assert.False(t, found, "put rolled back")

	require.NoError(t, tm.WithTx(ctx, func(s generic.Store) error {
		return s.Put(ctx, "new", []byte("3"))
	}))
	v, found, _ := tm.Get(ctx, "new")
	assert.True(t, found)
	assert.Equal(t, "3", string(v))
}
