package mongo_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/edutime/generic"
	"github.com/warp/edutime/store/mongo"
)

func newTestStore(t *testing.T) *mongo.Store {
	uri := os.Getenv("EDUTIME_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("EDUTIME_TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	store, err := mongo.New(ctx, uri, "edutime_test")
	require.NoError(t, err)
	t.Cleanup(func() {
		keys, _ := store.Keys(ctx, "")
		for _, k := range keys {
			_ = store.Delete(ctx, k)
		}
		store.Close(ctx)
	})
	return store
}

func TestStore_RoundTripAndPrefix(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, generic.BalanceKey("3"), []byte(`{"Casual Leave":"8"}`)))
	require.NoError(t, store.Put(ctx, generic.BalanceKey("3"), []byte(`{"Casual Leave":"5"}`)))
	require.NoError(t, store.Put(ctx, generic.KeyUsers, []byte(`[]`)))

	v, found, err := store.Get(ctx, generic.BalanceKey("3"))
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"Casual Leave":"5"}`, string(v))

	keys, err := store.Keys(ctx, generic.BalancePrefix)
	require.NoError(t, err)
	assert.Equal(t, []string{"balances:3"}, keys)

	require.NoError(t, store.Delete(ctx, generic.KeyUsers))
	_, found, err = store.Get(ctx, generic.KeyUsers)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_IsNotTransactional(t *testing.T) {
	var s generic.Store = &mongo.Store{}
	_, ok := s.(generic.TxStore)
	assert.False(t, ok)
}
