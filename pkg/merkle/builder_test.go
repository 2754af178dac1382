package merkle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBuilderNotBuilt(t *testing.T) {
	b := NewBuilder()

	_, err := b.Root()
	require.ErrorIs(t, err, ErrTreeNotBuilt)
	_, err = b.RootHex()
	require.ErrorIs(t, err, ErrTreeNotBuilt)
	_, err = b.Tree()
	require.ErrorIs(t, err, ErrTreeNotBuilt)
	_, err = b.PositionOf(Digest{})
	require.ErrorIs(t, err, ErrTreeNotBuilt)
	_, err = b.PositionOfLeaf([]byte("a"))
	require.ErrorIs(t, err, ErrTreeNotBuilt)
	_, err = b.ProveOne(0)
	require.ErrorIs(t, err, ErrTreeNotBuilt)
	_, err = b.ProveMany([]int{0})
	require.ErrorIs(t, err, ErrTreeNotBuilt)

	require.ErrorIs(t, b.GenerateTree(), ErrEmptyInput)
	assert.False(t, b.HasTree())
}

func TestBuilderGenerateTree(t *testing.T) {
	b := NewBuilderFromLeaves([][]byte{[]byte("a"), []byte("b")}, WithLogger(zap.NewNop()))
	assert.True(t, b.Dirty())

	d := b.Insert([]byte("c"))
	assert.Equal(t, DefaultHasher.DigestLeaf([]byte("c")), d)
	assert.Equal(t, 3, b.Len())
	assert.Equal(t, d, b.Digests()[2])

	require.NoError(t, b.GenerateTree())
	assert.False(t, b.Dirty())

	root, err := b.RootHex()
	require.NoError(t, err)
	assert.Equal(t, goldenABCRoot, root)

	first, err := b.Tree()
	require.NoError(t, err)

	// No new leaves: idempotent.
	require.NoError(t, b.GenerateTree())
	second, err := b.Tree()
	require.NoError(t, err)
	assert.Same(t, first, second)

	pos, err := b.PositionOfLeaf([]byte("b"))
	require.NoError(t, err)
	proof, err := b.ProveOne(pos)
	require.NoError(t, err)
	assert.True(t, VerifyOrdered(first.Root(), []byte("b"), proof.Hashes))
}

func TestBuilderRegenerate(t *testing.T) {
	b := NewBuilder()
	b.Append(createTestLeaves(4))
	require.NoError(t, b.GenerateTree())
	before, err := b.Tree()
	require.NoError(t, err)

	b.Append([][]byte{[]byte("late-leaf")})
	assert.True(t, b.Dirty())
	require.NoError(t, b.GenerateTree())
	after, err := b.Tree()
	require.NoError(t, err)

	assert.NotEqual(t, before.Root(), after.Root())
	assert.Equal(t, 4, before.LeafCount())
	assert.Equal(t, 5, after.LeafCount())

	direct, err := Build(append(createTestLeaves(4), []byte("late-leaf")))
	require.NoError(t, err)
	assert.Equal(t, direct.Root(), after.Root())

	_, err = b.PositionOfLeaf([]byte("late-leaf"))
	require.NoError(t, err)
	_, err = before.PositionOfLeaf([]byte("late-leaf"))
	require.ErrorIs(t, err, ErrNotFound)

	multi, err := b.ProveMany([]int{0, 4})
	require.NoError(t, err)
	assert.Equal(t, 5, multi.LeafCount)
}

func TestBuilderRollback(t *testing.T) {
	b := NewBuilder()
	b.Append(createTestLeaves(3))
	require.NoError(t, b.GenerateTree())
	root, err := b.Root()
	require.NoError(t, err)

	b.Insert([]byte("uncommitted"))
	b.AppendDigests([]Digest{DefaultHasher.DigestLeaf([]byte("also-uncommitted"))})
	assert.Equal(t, 5, b.Len())

	b.Rollback()
	assert.Equal(t, 3, b.Len())
	assert.False(t, b.Dirty())
	require.NoError(t, b.GenerateTree())

	after, err := b.Root()
	require.NoError(t, err)
	assert.Equal(t, root, after)

	// Rolling back before any generation empties the pool.
	fresh := NewBuilder()
	fresh.Append(createTestLeaves(2))
	fresh.Rollback()
	assert.Equal(t, 0, fresh.Len())
}

func TestBuilderWithHasher(t *testing.T) {
	h, err := NewHasherByName(HashKeccak256)
	require.NoError(t, err)

	b := NewBuilder(WithHasher(h))
	assert.Same(t, h, b.Hasher())
	b.Append(createTestLeaves(5))
	require.NoError(t, b.GenerateTree())

	tree, err := b.Tree()
	require.NoError(t, err)
	proof, err := tree.ProveOne(2)
	require.NoError(t, err)
	d, err := tree.DigestAt(2)
	require.NoError(t, err)

	assert.True(t, h.VerifyOrderedDigest(tree.Root(), d, proof.Hashes))
	assert.False(t, DefaultHasher.VerifyOrderedDigest(tree.Root(), d, proof.Hashes))
}
