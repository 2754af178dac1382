package merkle

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// subsetLeaves returns the raw leaves at the given positions
func subsetLeaves(t *testing.T, tree *Tree, leaves [][]byte, positions []int) [][]byte {
	t.Helper()
	out := make([][]byte, len(positions))
	for i, pos := range positions {
		out[i] = leafAt(t, tree, leaves, pos)
	}
	return out
}

func TestProveManyAllSubsets(t *testing.T) {
	for n := 1; n <= 9; n++ {
		leaves := createTestLeaves(n)
		tree, err := Build(leaves)
		require.NoError(t, err)

		t.Run(fmt.Sprintf("Leaves_%d", n), func(t *testing.T) {
			for mask := 1; mask < 1<<n; mask++ {
				var positions []int
				for pos := 0; pos < n; pos++ {
					if mask&(1<<pos) != 0 {
						positions = append(positions, pos)
					}
				}

				proof, err := tree.ProveMany(positions)
				require.NoError(t, err)
				require.Equal(t, positions, proof.Positions)
				require.Equal(t, n, proof.LeafCount)

				ok, err := VerifyUnordered(tree.Root(), positions, subsetLeaves(t, tree, leaves, positions), proof.Hashes, n)
				require.NoError(t, err, "mask %b", mask)
				require.True(t, ok, "mask %b", mask)
			}
		})
	}
}

func TestProveManyRandomSubsets(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for _, n := range []int{31, 64, 100, 257} {
		leaves := createTestLeaves(n)
		tree, err := Build(leaves)
		require.NoError(t, err)

		t.Run(fmt.Sprintf("Leaves_%d", n), func(t *testing.T) {
			for round := 0; round < 20; round++ {
				k := 1 + rng.Intn(n)
				positions := rng.Perm(n)[:k]

				proof, err := tree.ProveMany(positions)
				require.NoError(t, err)

				// Leaves are supplied in the caller's (unsorted) order.
				ok, err := VerifyUnordered(tree.Root(), positions, subsetLeaves(t, tree, leaves, positions), proof.Hashes, n)
				require.NoError(t, err)
				require.True(t, ok)

				// A multiproof never needs more hashes than the independent path proofs.
				total := 0
				for _, pos := range positions {
					single, err := tree.ProveOne(pos)
					require.NoError(t, err)
					total += len(single.Hashes)
				}
				assert.LessOrEqual(t, len(proof.Hashes), total)
			}
		})
	}
}

func TestProveManySingleMatchesPathProof(t *testing.T) {
	tree, err := Build(createTestLeaves(13))
	require.NoError(t, err)

	for pos := 0; pos < tree.LeafCount(); pos++ {
		single, err := tree.ProveOne(pos)
		require.NoError(t, err)
		multi, err := tree.ProveMany([]int{pos})
		require.NoError(t, err)
		assert.Equal(t, single.Hashes, multi.Hashes, "position %d", pos)
	}
}

func TestProveManyInvalidInput(t *testing.T) {
	tree, err := Build(createTestLeaves(5))
	require.NoError(t, err)

	t.Run("Empty selection", func(t *testing.T) {
		proof, err := tree.ProveMany(nil)
		require.ErrorIs(t, err, ErrEmptySelection)
		require.Nil(t, proof)
	})

	t.Run("Out of range", func(t *testing.T) {
		proof, err := tree.ProveMany([]int{0, 5})
		require.ErrorIs(t, err, ErrPositionOutOfRange)
		require.Nil(t, proof)

		proof, err = tree.ProveMany([]int{-2})
		require.ErrorIs(t, err, ErrPositionOutOfRange)
		require.Nil(t, proof)
	})

	t.Run("Duplicates collapse", func(t *testing.T) {
		proof, err := tree.ProveMany([]int{3, 1, 3, 1})
		require.NoError(t, err)
		assert.Equal(t, []int{1, 3}, proof.Positions)
	})
}

func TestUnorderedTamperSensitivity(t *testing.T) {
	leaves := createTestLeaves(10)
	tree, err := Build(leaves)
	require.NoError(t, err)

	positions := []int{1, 4, 9}
	claimed := subsetLeaves(t, tree, leaves, positions)
	proof, err := tree.ProveMany(positions)
	require.NoError(t, err)
	require.NotEmpty(t, proof.Hashes)

	t.Run("Proof hash", func(t *testing.T) {
		for i := range proof.Hashes {
			tampered := append([]Digest(nil), proof.Hashes...)
			tampered[i][0] ^= 0x01
			ok, err := VerifyUnordered(tree.Root(), positions, claimed, tampered, 10)
			require.NoError(t, err)
			assert.False(t, ok, "tampered hash %d", i)
		}
	})

	t.Run("Leaf bytes", func(t *testing.T) {
		for i := range claimed {
			tampered := make([][]byte, len(claimed))
			copy(tampered, claimed)
			tampered[i] = append([]byte(nil), claimed[i]...)
			tampered[i][len(tampered[i])-1] ^= 0x01
			ok, err := VerifyUnordered(tree.Root(), positions, tampered, proof.Hashes, 10)
			require.NoError(t, err)
			assert.False(t, ok)
		}
	})

	t.Run("Root", func(t *testing.T) {
		badRoot := tree.Root()
		badRoot[0] ^= 0x01
		ok, err := VerifyUnordered(badRoot, positions, claimed, proof.Hashes, 10)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Swapped positions", func(t *testing.T) {
		ok, err := VerifyUnordered(tree.Root(), []int{4, 1, 9}, claimed, proof.Hashes, 10)
		if err == nil {
			assert.False(t, ok)
		}
	})

	t.Run("Wrong leaf count", func(t *testing.T) {
		for _, count := range []int{8, 11, 16} {
			ok, _ := VerifyUnordered(tree.Root(), positions, claimed, proof.Hashes, count)
			assert.False(t, ok, "leaf count %d", count)
		}
	})
}

func TestUnorderedExcessAndInsufficient(t *testing.T) {
	leaves := createTestLeaves(8)
	tree, err := Build(leaves)
	require.NoError(t, err)

	positions := []int{0, 5}
	claimed := subsetLeaves(t, tree, leaves, positions)
	proof, err := tree.ProveMany(positions)
	require.NoError(t, err)
	require.Len(t, proof.Hashes, 4)

	t.Run("Extra hash", func(t *testing.T) {
		extra := append(append([]Digest(nil), proof.Hashes...), DefaultHasher.DigestLeaf([]byte("unrelated")))
		ok, err := VerifyUnordered(tree.Root(), positions, claimed, extra, 8)
		require.ErrorIs(t, err, ErrExcessProofData)
		assert.False(t, ok)
	})

	t.Run("Truncated", func(t *testing.T) {
		ok, err := VerifyUnordered(tree.Root(), positions, claimed, proof.Hashes[:len(proof.Hashes)-1], 8)
		require.ErrorIs(t, err, ErrInsufficientProofData)
		assert.False(t, ok)
	})

	t.Run("No hashes", func(t *testing.T) {
		ok, err := VerifyUnordered(tree.Root(), positions, claimed, nil, 8)
		require.ErrorIs(t, err, ErrInsufficientProofData)
		assert.False(t, ok)
	})
}

func TestUnorderedShapeAndSelection(t *testing.T) {
	leaves := createTestLeaves(4)
	tree, err := Build(leaves)
	require.NoError(t, err)

	positions := []int{0, 2}
	claimed := subsetLeaves(t, tree, leaves, positions)
	proof, err := tree.ProveMany(positions)
	require.NoError(t, err)

	t.Run("Shape mismatch", func(t *testing.T) {
		ok, err := VerifyUnordered(tree.Root(), []int{0, 2, 3}, claimed, proof.Hashes, 4)
		require.ErrorIs(t, err, ErrProofShapeMismatch)
		assert.False(t, ok)
	})

	t.Run("Empty selection", func(t *testing.T) {
		ok, err := VerifyUnordered(tree.Root(), nil, nil, proof.Hashes, 4)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Out of range position", func(t *testing.T) {
		ok, err := VerifyUnordered(tree.Root(), []int{0, 7}, claimed, proof.Hashes, 4)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = VerifyUnordered(tree.Root(), []int{-1, 2}, claimed, proof.Hashes, 4)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Zero leaf count", func(t *testing.T) {
		ok, err := VerifyUnordered(tree.Root(), positions, claimed, proof.Hashes, 0)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Conflicting duplicate", func(t *testing.T) {
		ok, err := VerifyUnordered(tree.Root(), []int{0, 0, 2}, [][]byte{claimed[0], claimed[1], claimed[1]}, proof.Hashes, 4)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Repeated identical claim", func(t *testing.T) {
		ok, err := VerifyUnordered(tree.Root(), []int{2, 0, 2}, [][]byte{claimed[1], claimed[0], claimed[1]}, proof.Hashes, 4)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Nil proof", func(t *testing.T) {
		ok, err := DefaultHasher.VerifyUnorderedProof(tree.Root(), claimed, nil)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Proof object", func(t *testing.T) {
		ok, err := DefaultHasher.VerifyUnorderedProof(tree.Root(), claimed, proof)
		require.NoError(t, err)
		assert.True(t, ok)

		root, err := DefaultHasher.UnorderedRoot(proof.Positions, claimed, proof.Hashes, proof.LeafCount)
		require.NoError(t, err)
		assert.Equal(t, tree.Root(), root)
	})
}

func TestProofEncoding(t *testing.T) {
	tree, err := Build(createTestLeaves(9))
	require.NoError(t, err)

	ordered, err := tree.ProveOne(4)
	require.NoError(t, err)

	t.Run("Ordered bytes", func(t *testing.T) {
		raw := ordered.Bytes()
		require.Len(t, raw, len(ordered.Hashes)*DigestLength)
		decoded, err := OrderedProofFromBytes(raw)
		require.NoError(t, err)
		assert.Equal(t, ordered.Hashes, decoded.Hashes)
	})

	t.Run("Unordered bytes", func(t *testing.T) {
		multi, err := tree.ProveMany([]int{0, 4, 8})
		require.NoError(t, err)
		decoded, err := UnorderedProofFromBytes(multi.Bytes(), multi.Positions, multi.LeafCount)
		require.NoError(t, err)
		assert.Equal(t, multi, decoded)
	})

	t.Run("Invalid length", func(t *testing.T) {
		_, err := OrderedProofFromBytes(make([]byte, DigestLength+1))
		require.ErrorIs(t, err, ErrInvalidProofEncoding)
		_, err = UnorderedProofFromBytes(make([]byte, 5), []int{0}, 1)
		require.ErrorIs(t, err, ErrInvalidProofEncoding)
	})

	t.Run("Hex", func(t *testing.T) {
		hexes := ordered.HashesHex()
		require.Len(t, hexes, len(ordered.Hashes))
		for _, h := range hexes {
			assert.Len(t, h, 2+2*DigestLength)
			assert.Equal(t, "0x", h[:2])
		}
		parsed, err := DigestsFromHex(hexes)
		require.NoError(t, err)
		assert.Equal(t, ordered.Hashes, parsed)
	})

	t.Run("JSON", func(t *testing.T) {
		data, err := json.Marshal(ordered)
		require.NoError(t, err)
		assert.Contains(t, string(data), ordered.Hashes[0].Hex())

		var decoded OrderedProof
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, *ordered, decoded)
	})
}
