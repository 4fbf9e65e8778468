package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStoreContract runs a suite of tests to verify that a Store implementation
// adheres to the defined interface contract.
func RunStoreContract(t *testing.T, store Store) {
	ctx := context.Background()
	prefix := "contract:" + time.Now().Format("20060102150405") + ":"

	t.Run("HashGetAll Missing", func(t *testing.T) {
		fields, err := store.HashGetAll(ctx, prefix+"missing")
		require.NoError(t, err)
		assert.Empty(t, fields)
	})

	t.Run("Transaction HashSet and Expire", func(t *testing.T) {
		key := prefix + "record"
		err := store.Transaction(ctx, func(tx Tx) {
			tx.HashSet(key, map[string][]byte{
				"a":     []byte("1"),
				"empty": {},
				"bin":   {0x00, 0xff, 0x10},
			})
			tx.Expire(key, time.Minute)
		})
		require.NoError(t, err)

		fields, err := store.HashGetAll(ctx, key)
		require.NoError(t, err)
		assert.Len(t, fields, 3)
		assert.Equal(t, []byte("1"), fields["a"])
		assert.Empty(t, fields["empty"])
		assert.Equal(t, []byte{0x00, 0xff, 0x10}, fields["bin"])

		ttl, err := store.TTL(ctx, key)
		require.NoError(t, err)
		assert.True(t, ttl > 0 && ttl <= time.Minute, "unexpected ttl %v", ttl)
	})

	t.Run("Transaction Delete", func(t *testing.T) {
		key := prefix + "doomed"
		require.NoError(t, store.Transaction(ctx, func(tx Tx) {
			tx.HashSet(key, map[string][]byte{"x": []byte("y")})
		}))
		require.NoError(t, store.Transaction(ctx, func(tx Tx) {
			tx.Delete(key)
		}))

		exists, err := store.Exists(ctx, key)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("SetIfAbsent", func(t *testing.T) {
		key := prefix + "claim"
		ok, err := store.SetIfAbsent(ctx, key, "first", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.SetIfAbsent(ctx, key, "second", time.Minute)
		require.NoError(t, err)
		assert.False(t, ok, "second claim must fail while the first is held")

		ttl, err := store.TTL(ctx, key)
		require.NoError(t, err)
		assert.True(t, ttl > 0, "claim must carry a ttl")
	})

	t.Run("CompareAndDelete", func(t *testing.T) {
		key := prefix + "cad"
		_, err := store.SetIfAbsent(ctx, key, "owner", time.Minute)
		require.NoError(t, err)

		deleted, err := store.CompareAndDelete(ctx, key, "intruder")
		require.NoError(t, err)
		assert.False(t, deleted)

		deleted, err = store.CompareAndDelete(ctx, key, "owner")
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = store.CompareAndDelete(ctx, key, "owner")
		require.NoError(t, err)
		assert.False(t, deleted, "deleting twice is a no-op")
	})

	t.Run("Expire and Delete", func(t *testing.T) {
		key := prefix + "plain"
		require.NoError(t, store.Transaction(ctx, func(tx Tx) {
			tx.HashSet(key, map[string][]byte{"f": []byte("v")})
		}))
		require.NoError(t, store.Expire(ctx, key, 2*time.Minute))

		ttl, err := store.TTL(ctx, key)
		require.NoError(t, err)
		assert.True(t, ttl > time.Minute && ttl <= 2*time.Minute, "unexpected ttl %v", ttl)

		require.NoError(t, store.Delete(ctx, key))
		exists, err := store.Exists(ctx, key)
		require.NoError(t, err)
		assert.False(t, exists)
	})
}
