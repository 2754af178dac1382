package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/Layr-Labs/sorted-merkle-go/pkg/merkle"
	"github.com/Layr-Labs/sorted-merkle-go/pkg/util"
)

// Environment variable names for merkletool configuration
const (
	EnvMerkleConfigFile      = "MERKLE_CONFIG_FILE"
	EnvMerkleHashAlgorithm   = "MERKLE_HASH_ALGORITHM"
	EnvMerkleLeafEncoding    = "MERKLE_LEAF_ENCODING"
	EnvMerklePersistenceType = "MERKLE_PERSISTENCE_TYPE"
	EnvMerkleDataPath        = "MERKLE_DATA_PATH"
	EnvMerkleRedisAddress    = "MERKLE_REDIS_ADDRESS"
	EnvMerkleRedisPassword   = "MERKLE_REDIS_PASSWORD"
	EnvMerkleRedisDB         = "MERKLE_REDIS_DB"
	EnvMerkleRedisKeyPrefix  = "MERKLE_REDIS_KEY_PREFIX"
	EnvMerkleVerbose         = "MERKLE_VERBOSE"
)

type PersistenceType string

func (p PersistenceType) String() string {
	return string(p)
}

const (
	PersistenceTypeMemory PersistenceType = "memory"
	PersistenceTypeBadger PersistenceType = "badger"
	PersistenceTypeRedis  PersistenceType = "redis"
)

// SupportedPersistenceTypes returns every persistence backend the tool can open
func SupportedPersistenceTypes() []PersistenceType {
	return []PersistenceType{PersistenceTypeMemory, PersistenceTypeBadger, PersistenceTypeRedis}
}

// GetSupportedPersistenceTypesString returns supported backends for CLI help
func GetSupportedPersistenceTypesString() string {
	names := make([]string, 0, 3)
	for _, p := range SupportedPersistenceTypes() {
		names = append(names, p.String())
	}
	return strings.Join(names, ", ")
}

// RedisConfig holds the redis connection settings
type RedisConfig struct {
	Address   string `json:"address" toml:"address"`
	Password  string `json:"password" toml:"password"`
	DB        int    `json:"db" toml:"db"`
	KeyPrefix string `json:"keyPrefix" toml:"key_prefix"`
}

// PersistenceConfig selects and configures the tree store
type PersistenceConfig struct {
	Type     PersistenceType `json:"type" toml:"type"`
	DataPath string          `json:"dataPath" toml:"data_path"`
	Redis    RedisConfig     `json:"redis" toml:"redis"`
}

// ToolConfig represents the complete configuration for merkletool
type ToolConfig struct {
	HashAlgorithm string            `json:"hashAlgorithm" toml:"hash_algorithm"`
	LeafEncoding  util.LeafEncoding `json:"leafEncoding" toml:"leaf_encoding"`
	Persistence   PersistenceConfig `json:"persistence" toml:"persistence"`
	Verbose       bool              `json:"verbose" toml:"verbose"`
}

// DefaultToolConfig returns the configuration used when nothing is set
func DefaultToolConfig() *ToolConfig {
	return &ToolConfig{
		HashAlgorithm: merkle.HashSHA256,
		LeafEncoding:  util.LeafEncodingRaw,
		Persistence: PersistenceConfig{
			Type:     PersistenceTypeMemory,
			DataPath: "./merkle-data",
			Redis: RedisConfig{
				Address: "localhost:6379",
			},
		},
	}
}

// LoadFile reads a TOML config file on top of the defaults
func LoadFile(path string) (*ToolConfig, error) {
	cfg := DefaultToolConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return cfg, nil
}

// Validate validates the tool configuration
func (c *ToolConfig) Validate() error {
	var allErrors field.ErrorList

	if _, err := merkle.HashFuncByName(c.HashAlgorithm); err != nil {
		allErrors = append(allErrors, field.NotSupported(field.NewPath("hashAlgorithm"), c.HashAlgorithm, merkle.SupportedHashFuncs()))
	}

	switch c.LeafEncoding {
	case util.LeafEncodingRaw, util.LeafEncodingABIString, util.LeafEncodingABIBytes:
	default:
		allErrors = append(allErrors, field.NotSupported(field.NewPath("leafEncoding"), string(c.LeafEncoding), util.SupportedLeafEncodings()))
	}

	allErrors = append(allErrors, c.Persistence.validate(field.NewPath("persistence"))...)

	if len(allErrors) > 0 {
		return allErrors.ToAggregate()
	}
	return nil
}

func (p *PersistenceConfig) validate(path *field.Path) field.ErrorList {
	var allErrors field.ErrorList

	switch p.Type {
	case PersistenceTypeMemory:
	case PersistenceTypeBadger:
		if p.DataPath == "" {
			allErrors = append(allErrors, field.Required(path.Child("dataPath"), "dataPath is required for badger persistence"))
		}
	case PersistenceTypeRedis:
		if p.Redis.Address == "" {
			allErrors = append(allErrors, field.Required(path.Child("redis", "address"), "address is required for redis persistence"))
		}
		if p.Redis.DB < 0 || p.Redis.DB > 15 {
			allErrors = append(allErrors, field.Invalid(path.Child("redis", "db"), p.Redis.DB, "must be between 0 and 15"))
		}
	default:
		supported := make([]string, 0, 3)
		for _, t := range SupportedPersistenceTypes() {
			supported = append(supported, t.String())
		}
		allErrors = append(allErrors, field.NotSupported(path.Child("type"), p.Type, supported))
	}

	return allErrors
}

// Hasher resolves the configured hash algorithm
func (c *ToolConfig) Hasher() (*merkle.Hasher, error) {
	return merkle.NewHasherByName(c.HashAlgorithm)
}
