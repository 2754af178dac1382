package merkle

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/pkg/errors"
)

// OrderedProof is a single-leaf path proof: sibling digests from the leaf to
// the root. Position and LeafCount are informational; ordered verification
// does not need them because node combination is commutative.
type OrderedProof struct {
	Position  int      `json:"position"`
	LeafCount int      `json:"leafCount"`
	Hashes    []Digest `json:"hashes"`
}

// HashesHex returns the proof hashes as 0x-prefixed hex.
func (p *OrderedProof) HashesHex() []string {
	return DigestsToHex(p.Hashes)
}

// Bytes returns the proof hashes concatenated.
func (p *OrderedProof) Bytes() []byte {
	return concatDigests(p.Hashes)
}

// UnorderedProof is a multiproof for a set of leaf positions. Hashes are in
// the order the position-ordered merge consumes them.
type UnorderedProof struct {
	Positions []int    `json:"positions"`
	LeafCount int      `json:"leafCount"`
	Hashes    []Digest `json:"hashes"`
}

// HashesHex returns the proof hashes as 0x-prefixed hex.
func (p *UnorderedProof) HashesHex() []string {
	return DigestsToHex(p.Hashes)
}

// Bytes returns the proof hashes concatenated.
func (p *UnorderedProof) Bytes() []byte {
	return concatDigests(p.Hashes)
}

// OrderedProofFromBytes decodes concatenated proof hashes.
func OrderedProofFromBytes(b []byte) (*OrderedProof, error) {
	hashes, err := splitDigests(b)
	if err != nil {
		return nil, err
	}
	return &OrderedProof{Hashes: hashes}, nil
}

// UnorderedProofFromBytes decodes concatenated proof hashes. The caller
// supplies the positions and leaf count that travel alongside them.
func UnorderedProofFromBytes(b []byte, positions []int, leafCount int) (*UnorderedProof, error) {
	hashes, err := splitDigests(b)
	if err != nil {
		return nil, err
	}
	return &UnorderedProof{
		Positions: append([]int(nil), positions...),
		LeafCount: leafCount,
		Hashes:    hashes,
	}, nil
}

func concatDigests(digests []Digest) []byte {
	out := make([]byte, 0, len(digests)*DigestLength)
	for _, d := range digests {
		out = append(out, d[:]...)
	}
	return out
}

func splitDigests(b []byte) ([]Digest, error) {
	if len(b)%DigestLength != 0 {
		return nil, errors.Wrapf(ErrInvalidProofEncoding, "length %d is not a multiple of %d", len(b), DigestLength)
	}
	out := make([]Digest, len(b)/DigestLength)
	for i := range out {
		copy(out[i][:], b[i*DigestLength:(i+1)*DigestLength])
	}
	return out, nil
}

// ProveOne returns the path proof for the leaf at pos. Levels where the node
// is promoted without a sibling contribute no hash.
func (t *Tree) ProveOne(pos int) (*OrderedProof, error) {
	n := t.LeafCount()
	if pos < 0 || pos >= n {
		return nil, errors.Wrapf(ErrPositionOutOfRange, "position %d (tree has %d leaves)", pos, n)
	}

	hashes := make([]Digest, 0, t.Depth())
	index := pos
	for level := 0; level < len(t.levels)-1; level++ {
		nodes := t.levels[level]
		if sib, ok := siblingOf(index, len(nodes)); ok {
			hashes = append(hashes, nodes[sib])
		}
		index = parentOf(index)
	}

	return &OrderedProof{
		Position:  pos,
		LeafCount: n,
		Hashes:    hashes,
	}, nil
}

// ProveLeaf returns the path proof for the lowest position holding leaf.
func (t *Tree) ProveLeaf(leaf []byte) (*OrderedProof, error) {
	pos, err := t.PositionOfLeaf(leaf)
	if err != nil {
		return nil, err
	}
	return t.ProveOne(pos)
}

// ProveMany returns a multiproof for the given positions. Duplicate positions
// are collapsed; the returned proof lists the positions in ascending order.
func (t *Tree) ProveMany(positions []int) (*UnorderedProof, error) {
	if len(positions) == 0 {
		return nil, ErrEmptySelection
	}

	n := t.LeafCount()
	selected := bitset.New(uint(n))
	for _, pos := range positions {
		if pos < 0 || pos >= n {
			return nil, errors.Wrapf(ErrPositionOutOfRange, "position %d (tree has %d leaves)", pos, n)
		}
		selected.Set(uint(pos))
	}

	sorted := make([]int, 0, selected.Count())
	known := make([]knownNode, 0, selected.Count())
	for i, ok := selected.NextSet(0); ok; i, ok = selected.NextSet(i + 1) {
		sorted = append(sorted, int(i))
		known = append(known, knownNode{pos: int(i), digest: t.levels[0][i]})
	}

	hashes := make([]Digest, 0)
	root, err := mergeToRoot(t.hasher, n, known, func(level, pos int) (Digest, error) {
		d := t.levels[level][pos]
		hashes = append(hashes, d)
		return d, nil
	})
	if err != nil {
		return nil, err
	}
	if root != t.Root() {
		return nil, errors.Errorf("merkle: multiproof reconstructs %s, expected root %s", root.Hex(), t.RootHex())
	}

	return &UnorderedProof{
		Positions: sorted,
		LeafCount: n,
		Hashes:    hashes,
	}, nil
}
