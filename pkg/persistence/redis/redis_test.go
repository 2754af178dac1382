package redis

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Layr-Labs/sorted-merkle-go/pkg/persistence"
	"github.com/Layr-Labs/sorted-merkle-go/pkg/persistence/storetest"
)

// getTestRedisAddress returns the Redis address for testing.
// Uses REDIS_TEST_ADDRESS env var if set, otherwise defaults to localhost:6379.
func getTestRedisAddress() string {
	if addr := os.Getenv("REDIS_TEST_ADDRESS"); addr != "" {
		return addr
	}
	return "localhost:6379"
}

// requireRedis skips the test if Redis is not available. Every store gets a
// unique key prefix on DB 15 so sub tests start empty.
func requireRedis(t *testing.T) *RedisPersistence {
	t.Helper()

	cfg := &RedisConfig{
		Address:   getTestRedisAddress(),
		DB:        15,
		KeyPrefix: "test:" + uuid.NewString() + ":",
	}

	rp, err := NewRedisPersistence(cfg, zap.NewNop())
	if err != nil {
		t.Skipf("Redis not available at %s: %v", cfg.Address, err)
		return nil
	}

	t.Cleanup(func() { cleanupRedis(t, cfg) })
	return rp
}

// cleanupRedis deletes every key written under the test prefix.
func cleanupRedis(t *testing.T, cfg *RedisConfig) {
	t.Helper()

	rp, err := NewRedisPersistence(cfg, zap.NewNop())
	if err != nil {
		return
	}
	defer func() { _ = rp.Close() }()

	ctx := context.Background()
	iter := rp.client.Scan(ctx, 0, cfg.KeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		rp.client.Del(ctx, iter.Val())
	}
}

func TestRedisPersistence(t *testing.T) {
	storetest.RunStoreTests(t, func(t *testing.T) persistence.ITreeStore {
		return requireRedis(t)
	})
}

func TestNewRedisPersistence_InvalidConfig(t *testing.T) {
	_, err := NewRedisPersistence(nil, zap.NewNop())
	assert.Error(t, err)

	_, err = NewRedisPersistence(&RedisConfig{}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "address cannot be empty")
}

func TestRedisPersistence_KeyPrefix(t *testing.T) {
	rp := requireRedis(t)
	defer func() { _ = rp.Close() }()

	record := storetest.NewRecord(t, "prefixed", 3)
	require.NoError(t, rp.SaveTree(record))

	ctx := context.Background()
	exists, err := rp.client.Exists(ctx, rp.keyPrefix+keyPrefixTree+record.ID).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), exists)
}

func TestRedisPersistence_ListPrunesStaleIndex(t *testing.T) {
	rp := requireRedis(t)
	defer func() { _ = rp.Close() }()

	record := storetest.NewRecord(t, "stale", 3)
	require.NoError(t, rp.SaveTree(record))

	ctx := context.Background()
	require.NoError(t, rp.client.Del(ctx, rp.treeKey(record.ID)).Err())

	all, err := rp.ListTrees()
	require.NoError(t, err)
	assert.Len(t, all, 0)

	isMember, err := rp.client.SIsMember(ctx, rp.prefixKey(keySetTrees), record.ID).Result()
	require.NoError(t, err)
	assert.False(t, isMember)
}
