package main

import (
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/Layr-Labs/sorted-merkle-go/pkg/config"
	"github.com/Layr-Labs/sorted-merkle-go/pkg/logger"
	"github.com/Layr-Labs/sorted-merkle-go/pkg/merkle"
	"github.com/Layr-Labs/sorted-merkle-go/pkg/persistence"
	"github.com/Layr-Labs/sorted-merkle-go/pkg/persistence/factory"
	"github.com/Layr-Labs/sorted-merkle-go/pkg/util"
)

// toolContext carries what every command needs after flags are resolved.
type toolContext struct {
	cfg    *config.ToolConfig
	logger *zap.Logger
	hasher *merkle.Hasher
}

func newToolContext(c *cli.Context) (*toolContext, error) {
	cfg, err := parseToolConfig(c)
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: cfg.Verbose})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	hasher, err := cfg.Hasher()
	if err != nil {
		return nil, err
	}

	return &toolContext{cfg: cfg, logger: l, hasher: hasher}, nil
}

// parseToolConfig layers explicitly set flags and env vars over the config
// file, which itself sits over the defaults.
func parseToolConfig(c *cli.Context) (*config.ToolConfig, error) {
	cfg, err := config.LoadFile(c.String("config"))
	if err != nil {
		return nil, err
	}

	if c.IsSet("hash") {
		cfg.HashAlgorithm = c.String("hash")
	}
	if c.IsSet("leaf-encoding") {
		cfg.LeafEncoding = util.LeafEncoding(c.String("leaf-encoding"))
	}
	if c.IsSet("persistence-type") {
		cfg.Persistence.Type = config.PersistenceType(c.String("persistence-type"))
	}
	if c.IsSet("data-path") {
		cfg.Persistence.DataPath = c.String("data-path")
	}
	if c.IsSet("redis-address") {
		cfg.Persistence.Redis.Address = c.String("redis-address")
	}
	if c.IsSet("redis-password") {
		cfg.Persistence.Redis.Password = c.String("redis-password")
	}
	if c.IsSet("redis-db") {
		cfg.Persistence.Redis.DB = c.Int("redis-db")
	}
	if c.IsSet("redis-key-prefix") {
		cfg.Persistence.Redis.KeyPrefix = c.String("redis-key-prefix")
	}
	if c.IsSet("verbose") {
		cfg.Verbose = c.Bool("verbose")
	}

	return cfg, nil
}

func (tc *toolContext) openStore() (persistence.ITreeStore, error) {
	store, err := factory.NewTreeStore(&tc.cfg.Persistence, tc.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open tree store: %w", err)
	}
	return store, nil
}

// loadTree rehydrates a saved tree by id.
func (tc *toolContext) loadTree(store persistence.ITreeStore, id string) (*merkle.Tree, *persistence.TreeRecord, error) {
	record, err := store.LoadTree(id)
	if err != nil {
		return nil, nil, err
	}
	if record == nil {
		return nil, nil, fmt.Errorf("tree %s not found", id)
	}

	tree, err := record.Rehydrate(merkle.WithLogger(tc.logger))
	if err != nil {
		return nil, nil, err
	}
	return tree, record, nil
}

// readLeaves reads leaf values from path and applies the configured encoding.
func (tc *toolContext) readLeaves(c *cli.Context, path string) ([][]byte, error) {
	values, err := readLeavesFrom(c, path)
	if err != nil {
		return nil, err
	}
	return util.EncodeLeaves(tc.cfg.LeafEncoding, values)
}

func (tc *toolContext) close() {
	_ = tc.logger.Sync()
}

func writeJSON(c *cli.Context, v interface{}) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
