package merkle

import (
	"go.uber.org/zap"
)

// Builder accumulates leaves and (re)generates a Tree on demand.
//
// A Builder is a single-writer resource: callers must serialize Append,
// Insert, Rollback and GenerateTree. Trees returned by Tree stay valid and
// immutable after later regenerations.
type Builder struct {
	opts *options

	// pending holds every leaf digest in insertion order.
	pending []Digest

	// committed is the length of pending covered by the current tree.
	committed int

	tree *Tree
}

// NewBuilder returns an empty builder.
func NewBuilder(opts ...Option) *Builder {
	return &Builder{opts: resolveOptions(opts)}
}

// NewBuilderFromLeaves returns a builder pre-loaded with leaves. The tree is
// not generated until GenerateTree is called.
func NewBuilderFromLeaves(leaves [][]byte, opts ...Option) *Builder {
	b := NewBuilder(opts...)
	b.Append(leaves)
	return b
}

// Hasher returns the hash primitive used by the builder.
func (b *Builder) Hasher() *Hasher {
	return b.opts.hasher
}

// Append queues leaves without rebuilding.
func (b *Builder) Append(leaves [][]byte) {
	b.pending = append(b.pending, b.opts.hasher.digestLeaves(leaves)...)
}

// Insert queues one leaf and returns its digest.
func (b *Builder) Insert(leaf []byte) Digest {
	d := b.opts.hasher.DigestLeaf(leaf)
	b.pending = append(b.pending, d)
	return d
}

// AppendDigests queues precomputed leaf digests.
func (b *Builder) AppendDigests(digests []Digest) {
	b.pending = append(b.pending, digests...)
}

// Digests returns a copy of every queued leaf digest in insertion order.
func (b *Builder) Digests() []Digest {
	out := make([]Digest, len(b.pending))
	copy(out, b.pending)
	return out
}

// Len returns the number of queued leaves.
func (b *Builder) Len() int {
	return len(b.pending)
}

// Dirty reports whether leaves were queued since the last generation.
func (b *Builder) Dirty() bool {
	return b.tree == nil || len(b.pending) != b.committed
}

// Rollback discards leaves queued since the last successful GenerateTree.
func (b *Builder) Rollback() {
	b.pending = b.pending[:b.committed]
}

// GenerateTree sorts and builds the full leaf pool. It is a no-op when nothing
// was queued since the last generation. Positions from an earlier tree may
// change after a rebuild.
func (b *Builder) GenerateTree() error {
	if len(b.pending) == 0 {
		return ErrEmptyInput
	}
	if !b.Dirty() {
		return nil
	}

	leaves := make([]Digest, len(b.pending))
	copy(leaves, b.pending)

	tree, err := buildTree(b.opts, leaves)
	if err != nil {
		return err
	}

	if b.tree != nil {
		b.opts.logger.Debug("Regenerated merkle tree",
			zap.Int("previousLeaves", b.committed),
			zap.Int("leaves", len(b.pending)),
		)
	}

	b.tree = tree
	b.committed = len(b.pending)
	return nil
}

// Tree returns the most recently generated tree.
func (b *Builder) Tree() (*Tree, error) {
	if b.tree == nil {
		return nil, ErrTreeNotBuilt
	}
	return b.tree, nil
}

// HasTree reports whether GenerateTree has succeeded at least once.
func (b *Builder) HasTree() bool {
	return b.tree != nil
}

// Root returns the root of the current tree.
func (b *Builder) Root() (Digest, error) {
	t, err := b.Tree()
	if err != nil {
		return Digest{}, err
	}
	return t.Root(), nil
}

// RootHex returns the root of the current tree as 0x-prefixed hex.
func (b *Builder) RootHex() (string, error) {
	root, err := b.Root()
	if err != nil {
		return "", err
	}
	return root.Hex(), nil
}

// PositionOf returns the position of digest d in the current tree.
func (b *Builder) PositionOf(d Digest) (int, error) {
	t, err := b.Tree()
	if err != nil {
		return 0, err
	}
	return t.PositionOf(d)
}

// PositionOfLeaf returns the position of leaf in the current tree.
func (b *Builder) PositionOfLeaf(leaf []byte) (int, error) {
	t, err := b.Tree()
	if err != nil {
		return 0, err
	}
	return t.PositionOfLeaf(leaf)
}

// ProveOne returns a path proof from the current tree.
func (b *Builder) ProveOne(pos int) (*OrderedProof, error) {
	t, err := b.Tree()
	if err != nil {
		return nil, err
	}
	return t.ProveOne(pos)
}

// ProveMany returns a multiproof from the current tree.
func (b *Builder) ProveMany(positions []int) (*UnorderedProof, error) {
	t, err := b.Tree()
	if err != nil {
		return nil, err
	}
	return t.ProveMany(positions)
}
