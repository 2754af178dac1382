// Package factory opens the tree store selected by configuration.
package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Layr-Labs/sorted-merkle-go/pkg/config"
	"github.com/Layr-Labs/sorted-merkle-go/pkg/logger"
	"github.com/Layr-Labs/sorted-merkle-go/pkg/persistence"
	"github.com/Layr-Labs/sorted-merkle-go/pkg/persistence/badger"
	"github.com/Layr-Labs/sorted-merkle-go/pkg/persistence/memory"
	"github.com/Layr-Labs/sorted-merkle-go/pkg/persistence/redis"
)

// NewTreeStore opens the backend named by cfg.Type.
func NewTreeStore(cfg *config.PersistenceConfig, l *zap.Logger) (persistence.ITreeStore, error) {
	if cfg == nil {
		return nil, fmt.Errorf("persistence config cannot be nil")
	}
	l = logger.OrNop(l)

	switch cfg.Type {
	case config.PersistenceTypeMemory:
		l.Sugar().Warnw("Using in-memory tree store, records are lost when the process exits")
		return memory.NewMemoryPersistence(), nil
	case config.PersistenceTypeBadger:
		return badger.NewBadgerPersistence(cfg.DataPath, l)
	case config.PersistenceTypeRedis:
		return redis.NewRedisPersistence(&redis.RedisConfig{
			Address:   cfg.Redis.Address,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
		}, l)
	default:
		return nil, fmt.Errorf("unsupported persistence type %q (supported: %s)", cfg.Type, config.GetSupportedPersistenceTypesString())
	}
}
