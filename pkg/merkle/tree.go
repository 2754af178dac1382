package merkle

import (
	"sort"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Tree is a built, immutable binary hash tree over sorted leaf digests.
// A *Tree always has a root; it is safe for concurrent readers.
type Tree struct {
	hasher *Hasher

	// levels[0] holds the sorted leaf digests, levels[len-1] holds the root.
	levels [][]Digest

	index *indexTable
}

type options struct {
	hasher *Hasher
	logger *zap.Logger
}

// Option configures Build, BuildFromDigests and NewBuilder.
type Option func(*options)

// WithHasher selects the hash primitive. The default is DefaultHasher.
func WithHasher(h *Hasher) Option {
	return func(o *options) {
		if h != nil {
			o.hasher = h
		}
	}
}

// WithLogger attaches a logger for build diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func resolveOptions(opts []Option) *options {
	o := &options{
		hasher: DefaultHasher,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Build digests every leaf, sorts the digests and builds the tree.
// The root depends only on the multiset of leaves, not on their order.
func Build(leaves [][]byte, opts ...Option) (*Tree, error) {
	if len(leaves) == 0 {
		return nil, ErrEmptyInput
	}
	o := resolveOptions(opts)
	return buildTree(o, o.hasher.digestLeaves(leaves))
}

// BuildFromDigests builds a tree from precomputed leaf digests.
// The digests must have been produced by the same Hasher's DigestLeaf.
func BuildFromDigests(digests []Digest, opts ...Option) (*Tree, error) {
	if len(digests) == 0 {
		return nil, ErrEmptyInput
	}
	o := resolveOptions(opts)
	leaves := make([]Digest, len(digests))
	copy(leaves, digests)
	return buildTree(o, leaves)
}

// buildTree takes ownership of leaves.
func buildTree(o *options, leaves []Digest) (*Tree, error) {
	start := time.Now()

	// Stable so duplicate digests keep their input order.
	sort.SliceStable(leaves, func(i, j int) bool {
		return leaves[i].Compare(leaves[j]) < 0
	})

	widths := levelWidths(len(leaves))
	levels := make([][]Digest, len(widths))
	levels[0] = leaves

	for k := 1; k < len(widths); k++ {
		below := levels[k-1]
		level := make([]Digest, widths[k])
		for i := range level {
			left := 2 * i
			if left+1 < len(below) {
				level[i] = o.hasher.Combine(below[left], below[left+1])
			} else {
				level[i] = below[left]
			}
		}
		levels[k] = level
	}

	top := levels[len(levels)-1]
	if len(top) != 1 {
		return nil, errors.Errorf("merkle: tree construction failed: top level has %d nodes instead of 1", len(top))
	}

	t := &Tree{
		hasher: o.hasher,
		levels: levels,
		index:  newIndexTable(leaves),
	}

	o.logger.Sugar().Debugw("Built merkle tree",
		"leaves", len(leaves),
		"depth", len(levels)-1,
		"hash", o.hasher.Name(),
		"root", top[0].Hex(),
		"duration", time.Since(start),
	)

	return t, nil
}

// Root returns the root digest.
func (t *Tree) Root() Digest {
	return t.levels[len(t.levels)-1][0]
}

// RootHex returns the root as 0x-prefixed hex.
func (t *Tree) RootHex() string {
	return t.Root().Hex()
}

// LeafCount returns the number of leaves, duplicates included.
func (t *Tree) LeafCount() int {
	return len(t.levels[0])
}

// Depth returns the number of levels above the leaves.
func (t *Tree) Depth() int {
	return len(t.levels) - 1
}

// Hasher returns the hash primitive the tree was built with.
func (t *Tree) Hasher() *Hasher {
	return t.hasher
}

// LeafDigests returns a copy of the sorted leaf digests.
func (t *Tree) LeafDigests() []Digest {
	out := make([]Digest, len(t.levels[0]))
	copy(out, t.levels[0])
	return out
}

// Level returns a copy of the nodes on level k, where 0 is the leaf level.
func (t *Tree) Level(k int) ([]Digest, error) {
	if k < 0 || k >= len(t.levels) {
		return nil, errors.Errorf("merkle: level %d out of range (tree has %d levels)", k, len(t.levels))
	}
	out := make([]Digest, len(t.levels[k]))
	copy(out, t.levels[k])
	return out, nil
}
