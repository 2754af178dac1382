package persistence

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Layr-Labs/sorted-merkle-go/pkg/merkle"
)

func buildTestTree(t *testing.T, n int) *merkle.Tree {
	t.Helper()
	leaves := make([][]byte, n)
	for i := range leaves {
		leaves[i] = []byte(fmt.Sprintf("record-leaf-%d", i))
	}
	tree, err := merkle.Build(leaves)
	require.NoError(t, err)
	return tree
}

func TestNewTreeRecord(t *testing.T) {
	tree := buildTestTree(t, 5)
	record := NewTreeRecord("block-100", tree)

	require.NoError(t, record.Validate())
	assert.Equal(t, "block-100", record.Name)
	assert.Equal(t, merkle.HashSHA256, record.HashAlgorithm)
	assert.Equal(t, tree.Root(), record.Root)
	assert.Equal(t, 5, record.LeafCount)
	assert.Equal(t, tree.LeafDigests(), record.LeafDigests)
	assert.NotZero(t, record.CreatedAt)

	other := NewTreeRecord("block-100", tree)
	assert.NotEqual(t, record.ID, other.ID)
}

func TestTreeRecordRehydrate(t *testing.T) {
	h, err := merkle.NewHasherByName(merkle.HashKeccak256)
	require.NoError(t, err)
	tree, err := merkle.Build([][]byte{[]byte("a"), []byte("b"), []byte("c")}, merkle.WithHasher(h))
	require.NoError(t, err)

	record := NewTreeRecord("", tree)
	rebuilt, err := record.Rehydrate()
	require.NoError(t, err)
	assert.Equal(t, tree.Root(), rebuilt.Root())
	assert.Equal(t, merkle.HashKeccak256, rebuilt.Hasher().Name())

	proof, err := rebuilt.ProveLeaf([]byte("b"))
	require.NoError(t, err)
	assert.True(t, h.VerifyOrdered(record.Root, []byte("b"), proof.Hashes))

	t.Run("Corrupted root", func(t *testing.T) {
		bad := record.Clone()
		bad.Root[0] ^= 0x01
		_, err := bad.Rehydrate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "corrupted")
	})

	t.Run("Corrupted digest", func(t *testing.T) {
		bad := record.Clone()
		bad.LeafDigests[1][0] ^= 0x01
		_, err := bad.Rehydrate()
		require.Error(t, err)
		// Clone must not alias the original.
		_, err = record.Rehydrate()
		require.NoError(t, err)
	})
}

func TestTreeRecordValidate(t *testing.T) {
	base := NewTreeRecord("x", buildTestTree(t, 3))

	tests := []struct {
		name   string
		mutate func(r *TreeRecord)
	}{
		{"empty id", func(r *TreeRecord) { r.ID = "" }},
		{"non uuid id", func(r *TreeRecord) { r.ID = "tree-1" }},
		{"no leaves", func(r *TreeRecord) { r.LeafCount = 0; r.LeafDigests = nil }},
		{"count mismatch", func(r *TreeRecord) { r.LeafCount = 4 }},
		{"unknown hash", func(r *TreeRecord) { r.HashAlgorithm = "md5" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := base.Clone()
			tt.mutate(r)
			assert.Error(t, r.Validate())
		})
	}
}

func TestTreeRecordSerialization(t *testing.T) {
	record := NewTreeRecord("receipts", buildTestTree(t, 4))

	data, err := MarshalTreeRecord(record)
	require.NoError(t, err)
	assert.Contains(t, string(data), record.Root.Hex())

	decoded, err := UnmarshalTreeRecord(data)
	require.NoError(t, err)
	assert.Equal(t, record, decoded)

	_, err = MarshalTreeRecord(nil)
	assert.Error(t, err)
	_, err = UnmarshalTreeRecord(nil)
	assert.Error(t, err)
	_, err = UnmarshalTreeRecord([]byte("{not json"))
	assert.Error(t, err)
}

func TestSortTreeRecords(t *testing.T) {
	records := []*TreeRecord{
		{ID: "c", CreatedAt: 2},
		{ID: "b", CreatedAt: 1},
		{ID: "a", CreatedAt: 2},
	}
	SortTreeRecords(records)
	assert.Equal(t, "b", records[0].ID)
	assert.Equal(t, "a", records[1].ID)
	assert.Equal(t, "c", records[2].ID)

	var nilRecord *TreeRecord
	assert.Nil(t, nilRecord.Clone())
}
