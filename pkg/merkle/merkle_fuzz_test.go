package merkle

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func FuzzProveManyRoundTrip(f *testing.F) {
	f.Add(uint8(1), uint64(1))
	f.Add(uint8(3), uint64(0b101))
	f.Add(uint8(9), uint64(0x1ff))
	f.Add(uint8(33), uint64(0xdeadbeef))

	f.Fuzz(func(t *testing.T, n uint8, mask uint64) {
		count := int(n%64) + 1
		leaves := createTestLeaves(count)
		tree, err := Build(leaves)
		require.NoError(t, err)

		positions := make([]int, 0)
		for i := 0; i < count; i++ {
			if mask&(1<<uint(i)) != 0 {
				positions = append(positions, i)
			}
		}
		if len(positions) == 0 {
			positions = append(positions, int(mask%uint64(count)))
		}

		proof, err := tree.ProveMany(positions)
		require.NoError(t, err)

		selected := make([][]byte, len(proof.Positions))
		for i, pos := range proof.Positions {
			selected[i] = leafAt(t, tree, leaves, pos)
		}

		ok, err := tree.Hasher().VerifyUnorderedProof(tree.Root(), selected, proof)
		require.NoError(t, err)
		require.True(t, ok)

		decoded, err := UnorderedProofFromBytes(proof.Bytes(), proof.Positions, proof.LeafCount)
		require.NoError(t, err)
		require.Equal(t, proof, decoded)
	})
}

func FuzzDigestFromHex(f *testing.F) {
	f.Add("0x9d3026143e49346d210b5e3d32a0540e346a228a59f0a40791e4a8760f7fc536")
	f.Add("0x")
	f.Add("not hex")

	f.Fuzz(func(t *testing.T, s string) {
		d, err := DigestFromHex(s)
		if err != nil {
			require.ErrorIs(t, err, ErrInvalidDigest)
			return
		}
		again, err := DigestFromHex(d.Hex())
		require.NoError(t, err)
		require.Equal(t, d, again)
	})
}
