package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/sessionlock/pkg/adapters/redis"
	"github.com/aretw0/sessionlock/pkg/config"
	"github.com/aretw0/sessionlock/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore_Contract(t *testing.T) {
	// Setup miniredis
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	defer mr.Close()

	// Initialize client
	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	// Run contract
	store := redis.NewFromClient(client)
	ports.RunStoreContract(t, store)
}

func TestRedisStore_TransactionIsAtomic(t *testing.T) {
	mr := miniredis.RunT(t)
	store := redis.NewFromClient(backend.NewClient(&backend.Options{Addr: mr.Addr()}))
	ctx := context.Background()

	require.NoError(t, store.Transaction(ctx, func(tx ports.Tx) {
		tx.HashSet("s:1", map[string][]byte{"a": []byte("1")})
		tx.Expire("s:1", 20*time.Minute)
	}))

	assert.Equal(t, "1", mr.HGet("s:1", "a"))
	assert.Equal(t, 20*time.Minute, mr.TTL("s:1"))

	// Key expiry is driven by the store alone.
	mr.FastForward(21 * time.Minute)
	fields, err := store.HashGetAll(ctx, "s:1")
	require.NoError(t, err)
	assert.Empty(t, fields)
}

func TestRedisStore_ErrorsPropagate(t *testing.T) {
	mr := miniredis.RunT(t)
	store := redis.NewFromClient(backend.NewClient(&backend.Options{Addr: mr.Addr()}))
	ctx := context.Background()

	mr.SetError("LOADING server is loading")
	defer mr.SetError("")

	_, err := store.HashGetAll(ctx, "s:1")
	assert.Error(t, err)

	err = store.Transaction(ctx, func(tx ports.Tx) {
		tx.HashSet("s:1", map[string][]byte{"a": []byte("1")})
	})
	assert.Error(t, err)
}

func TestNewClient_Strategies(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	pooled, err := redis.NewClient(ctx, redis.ClientOptions{Addr: mr.Addr(), Strategy: config.StrategyPooled, PoolSize: 4})
	require.NoError(t, err)
	defer pooled.Close()
	assert.Equal(t, 4, pooled.Options().PoolSize)

	basic, err := redis.NewClient(ctx, redis.ClientOptions{Addr: mr.Addr(), Strategy: config.StrategyBasic})
	require.NoError(t, err)
	defer basic.Close()
	assert.Equal(t, 1, basic.Options().PoolSize)

	_, err = redis.NewClient(ctx, redis.ClientOptions{Addr: mr.Addr(), Strategy: "exotic"})
	assert.Error(t, err)
}

func TestNewClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := redis.NewClient(context.Background(), redis.ClientOptions{Addr: addr})
	assert.Error(t, err)
}
