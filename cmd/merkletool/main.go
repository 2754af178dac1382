package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/Layr-Labs/sorted-merkle-go/pkg/config"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "merkletool",
		Usage: "Build sorted merkle trees and create or check inclusion proofs",
		Description: `Leaves are read one per line. Lines starting with 0x are decoded as hex,
anything else is used as raw bytes. Empty lines are ignored.

Trees are sorted by leaf digest, so the root does not depend on input order.
Ordered proofs cover a single leaf; unordered proofs cover any set of positions.`,
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Path to a TOML config file",
				EnvVars: []string{config.EnvMerkleConfigFile},
			},
			&cli.StringFlag{
				Name:    "hash",
				Usage:   "Hash function (sha256, keccak256, sha3-256, blake2b)",
				EnvVars: []string{config.EnvMerkleHashAlgorithm},
			},
			&cli.StringFlag{
				Name:    "leaf-encoding",
				Usage:   "How leaf values are encoded before hashing (raw, abi-string, abi-bytes)",
				EnvVars: []string{config.EnvMerkleLeafEncoding},
			},
			&cli.StringFlag{
				Name:    "persistence-type",
				Usage:   "Tree store backend (" + config.GetSupportedPersistenceTypesString() + ")",
				EnvVars: []string{config.EnvMerklePersistenceType},
			},
			&cli.StringFlag{
				Name:    "data-path",
				Usage:   "Badger data directory",
				EnvVars: []string{config.EnvMerkleDataPath},
			},
			&cli.StringFlag{
				Name:    "redis-address",
				Usage:   "Redis address (host:port)",
				EnvVars: []string{config.EnvMerkleRedisAddress},
			},
			&cli.StringFlag{
				Name:    "redis-password",
				Usage:   "Redis password",
				EnvVars: []string{config.EnvMerkleRedisPassword},
			},
			&cli.IntFlag{
				Name:    "redis-db",
				Usage:   "Redis database number (0-15)",
				EnvVars: []string{config.EnvMerkleRedisDB},
			},
			&cli.StringFlag{
				Name:    "redis-key-prefix",
				Usage:   "Prefix for every redis key",
				EnvVars: []string{config.EnvMerkleRedisKeyPrefix},
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Usage:   "Enable debug logging",
				EnvVars: []string{config.EnvMerkleVerbose},
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "build",
				Usage: "Build a tree and print its root",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "input",
						Usage: "Leaf file, - for stdin",
						Value: "-",
					},
					&cli.BoolFlag{
						Name:  "save",
						Usage: "Persist the tree and print its id",
					},
					&cli.StringFlag{
						Name:  "name",
						Usage: "Label stored with a saved tree",
					},
				},
				Action: buildCommand,
			},
			{
				Name:  "prove",
				Usage: "Create an ordered or unordered proof",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "input",
						Usage: "Leaf file, - for stdin (ignored with --tree-id)",
						Value: "-",
					},
					&cli.StringFlag{
						Name:  "tree-id",
						Usage: "Prove against a saved tree",
					},
					&cli.IntFlag{
						Name:  "position",
						Usage: "Sorted position for an ordered proof",
					},
					&cli.StringFlag{
						Name:  "leaf",
						Usage: "Leaf value for an ordered proof",
					},
					&cli.IntSliceFlag{
						Name:  "positions",
						Usage: "Sorted positions for an unordered proof",
					},
				},
				Action: proveCommand,
			},
			{
				Name:  "verify",
				Usage: "Check a proof produced by prove",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "proof",
						Usage:    "Proof JSON file, - for stdin",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:     "leaf",
						Usage:    "Proven leaf, repeated in proof position order",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "root",
						Usage: "Expected root (defaults to the root in the proof file)",
					},
				},
				Action: verifyCommand,
			},
			{
				Name:  "show",
				Usage: "Show a saved tree",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "tree-id",
						Usage:    "Saved tree id",
						Required: true,
					},
				},
				Action: showCommand,
			},
			{
				Name:   "list",
				Usage:  "List saved trees",
				Action: listCommand,
			},
			{
				Name:  "delete",
				Usage: "Delete a saved tree",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "tree-id",
						Usage:    "Saved tree id",
						Required: true,
					},
				},
				Action: deleteCommand,
			},
		},
	}
}
