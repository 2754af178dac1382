package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/Layr-Labs/sorted-merkle-go/pkg/merkle"
	"github.com/Layr-Labs/sorted-merkle-go/pkg/persistence"
	"github.com/Layr-Labs/sorted-merkle-go/pkg/util"
)

const (
	proofKindOrdered   = "ordered"
	proofKindUnordered = "unordered"
)

type treeSummary struct {
	ID            string          `json:"id,omitempty"`
	Name          string          `json:"name,omitempty"`
	HashAlgorithm string          `json:"hashAlgorithm"`
	Root          merkle.Digest   `json:"root"`
	LeafCount     int             `json:"leafCount"`
	Depth         int             `json:"depth"`
	LeafDigests   []merkle.Digest `json:"leafDigests,omitempty"`
	CreatedAt     string          `json:"createdAt,omitempty"`
}

// proofDocument is what prove writes and verify reads.
type proofDocument struct {
	Kind          string                 `json:"kind"`
	HashAlgorithm string                 `json:"hashAlgorithm"`
	LeafEncoding  string                 `json:"leafEncoding,omitempty"`
	Root          merkle.Digest          `json:"root"`
	Ordered       *merkle.OrderedProof   `json:"ordered,omitempty"`
	Unordered     *merkle.UnorderedProof `json:"unordered,omitempty"`
}

type verifyResult struct {
	Valid bool          `json:"valid"`
	Root  merkle.Digest `json:"root"`
}

func summarize(tree *merkle.Tree, record *persistence.TreeRecord, withDigests bool) *treeSummary {
	s := &treeSummary{
		HashAlgorithm: tree.Hasher().Name(),
		Root:          tree.Root(),
		LeafCount:     tree.LeafCount(),
		Depth:         tree.Depth(),
	}
	if withDigests {
		s.LeafDigests = tree.LeafDigests()
	}
	if record != nil {
		s.ID = record.ID
		s.Name = record.Name
		s.CreatedAt = time.Unix(record.CreatedAt, 0).UTC().Format(time.RFC3339)
	}
	return s
}

func buildCommand(c *cli.Context) error {
	tc, err := newToolContext(c)
	if err != nil {
		return err
	}
	defer tc.close()

	leaves, err := tc.readLeaves(c, c.String("input"))
	if err != nil {
		return err
	}

	tree, err := merkle.Build(leaves, merkle.WithHasher(tc.hasher), merkle.WithLogger(tc.logger))
	if err != nil {
		return fmt.Errorf("failed to build tree: %w", err)
	}

	var record *persistence.TreeRecord
	if c.Bool("save") {
		store, err := tc.openStore()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		record = persistence.NewTreeRecord(c.String("name"), tree)
		record.LeafEncoding = string(tc.cfg.LeafEncoding)
		if err := store.SaveTree(record); err != nil {
			return fmt.Errorf("failed to save tree: %w", err)
		}
		tc.logger.Sugar().Infow("Saved tree", "id", record.ID, "root", tree.RootHex(), "leaves", tree.LeafCount())
	}

	return writeJSON(c, summarize(tree, record, true))
}

func proveCommand(c *cli.Context) error {
	tc, err := newToolContext(c)
	if err != nil {
		return err
	}
	defer tc.close()

	var tree *merkle.Tree
	encoding := tc.cfg.LeafEncoding
	if id := c.String("tree-id"); id != "" {
		store, err := tc.openStore()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		var record *persistence.TreeRecord
		if tree, record, err = tc.loadTree(store, id); err != nil {
			return err
		}
		if record.LeafEncoding != "" {
			encoding = util.LeafEncoding(record.LeafEncoding)
		}
	} else {
		leaves, err := tc.readLeaves(c, c.String("input"))
		if err != nil {
			return err
		}
		tree, err = merkle.Build(leaves, merkle.WithHasher(tc.hasher), merkle.WithLogger(tc.logger))
		if err != nil {
			return fmt.Errorf("failed to build tree: %w", err)
		}
	}

	doc := &proofDocument{
		HashAlgorithm: tree.Hasher().Name(),
		LeafEncoding:  string(encoding),
		Root:          tree.Root(),
	}

	selectors := 0
	for _, name := range []string{"position", "leaf", "positions"} {
		if c.IsSet(name) {
			selectors++
		}
	}
	if selectors != 1 {
		return fmt.Errorf("exactly one of --position, --leaf or --positions is required")
	}

	switch {
	case c.IsSet("positions"):
		proof, err := tree.ProveMany(c.IntSlice("positions"))
		if err != nil {
			return fmt.Errorf("failed to create unordered proof: %w", err)
		}
		doc.Kind = proofKindUnordered
		doc.Unordered = proof
	case c.IsSet("leaf"):
		leaf, err := parseEncodedLeaf(encoding, c.String("leaf"))
		if err != nil {
			return err
		}
		proof, err := tree.ProveLeaf(leaf)
		if err != nil {
			return fmt.Errorf("failed to create ordered proof: %w", err)
		}
		doc.Kind = proofKindOrdered
		doc.Ordered = proof
	default:
		proof, err := tree.ProveOne(c.Int("position"))
		if err != nil {
			return fmt.Errorf("failed to create ordered proof: %w", err)
		}
		doc.Kind = proofKindOrdered
		doc.Ordered = proof
	}

	return writeJSON(c, doc)
}

func readProofDocument(c *cli.Context, path string) (*proofDocument, error) {
	in, err := openInput(c, path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = in.Close() }()

	data, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("failed to read proof: %w", err)
	}

	var doc proofDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse proof: %w", err)
	}
	return &doc, nil
}

func verifyCommand(c *cli.Context) error {
	tc, err := newToolContext(c)
	if err != nil {
		return err
	}
	defer tc.close()

	doc, err := readProofDocument(c, c.String("proof"))
	if err != nil {
		return err
	}

	hasher := tc.hasher
	if doc.HashAlgorithm != "" {
		if hasher, err = merkle.NewHasherByName(doc.HashAlgorithm); err != nil {
			return err
		}
	}

	root := doc.Root
	if c.IsSet("root") {
		if root, err = merkle.DigestFromHex(c.String("root")); err != nil {
			return err
		}
	}

	encoding := tc.cfg.LeafEncoding
	if doc.LeafEncoding != "" {
		encoding = util.LeafEncoding(doc.LeafEncoding)
	}

	rawLeaves := c.StringSlice("leaf")
	leaves := make([][]byte, len(rawLeaves))
	for i, raw := range rawLeaves {
		if leaves[i], err = parseEncodedLeaf(encoding, raw); err != nil {
			return err
		}
	}

	var valid bool
	switch doc.Kind {
	case proofKindOrdered:
		if doc.Ordered == nil {
			return fmt.Errorf("ordered proof document has no proof")
		}
		if len(leaves) != 1 {
			return fmt.Errorf("ordered proofs take exactly one --leaf, got %d", len(leaves))
		}
		valid = hasher.VerifyOrderedProof(root, leaves[0], doc.Ordered)
	case proofKindUnordered:
		if doc.Unordered == nil {
			return fmt.Errorf("unordered proof document has no proof")
		}
		if valid, err = hasher.VerifyUnorderedProof(root, leaves, doc.Unordered); err != nil {
			return fmt.Errorf("malformed proof: %w", err)
		}
	default:
		return fmt.Errorf("unknown proof kind %q", doc.Kind)
	}

	tc.logger.Sugar().Debugw("Verified proof", "kind", doc.Kind, "root", root.Hex(), "valid", valid)

	if err := writeJSON(c, &verifyResult{Valid: valid, Root: root}); err != nil {
		return err
	}
	if !valid {
		return cli.Exit("proof is invalid", 1)
	}
	return nil
}

func showCommand(c *cli.Context) error {
	tc, err := newToolContext(c)
	if err != nil {
		return err
	}
	defer tc.close()

	store, err := tc.openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	tree, record, err := tc.loadTree(store, c.String("tree-id"))
	if err != nil {
		return err
	}

	return writeJSON(c, summarize(tree, record, true))
}

func listCommand(c *cli.Context) error {
	tc, err := newToolContext(c)
	if err != nil {
		return err
	}
	defer tc.close()

	store, err := tc.openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	records, err := store.ListTrees()
	if err != nil {
		return fmt.Errorf("failed to list trees: %w", err)
	}

	summaries := make([]*treeSummary, 0, len(records))
	for _, record := range records {
		summaries = append(summaries, &treeSummary{
			ID:            record.ID,
			Name:          record.Name,
			HashAlgorithm: record.HashAlgorithm,
			Root:          record.Root,
			LeafCount:     record.LeafCount,
			CreatedAt:     time.Unix(record.CreatedAt, 0).UTC().Format(time.RFC3339),
		})
	}

	return writeJSON(c, summaries)
}

func deleteCommand(c *cli.Context) error {
	tc, err := newToolContext(c)
	if err != nil {
		return err
	}
	defer tc.close()

	store, err := tc.openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	id := c.String("tree-id")
	if err := store.DeleteTree(id); err != nil {
		return fmt.Errorf("failed to delete tree %s: %w", id, err)
	}
	tc.logger.Sugar().Infow("Deleted tree", "id", id)
	return nil
}
