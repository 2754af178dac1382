package merkle

import "github.com/pkg/errors"

// indexTable maps leaf digests to their sorted positions and back.
// It is populated once per build and never mutated afterwards.
type indexTable struct {
	byDigest map[Digest]int
	digests  []Digest
}

func newIndexTable(sorted []Digest) *indexTable {
	idx := &indexTable{
		byDigest: make(map[Digest]int, len(sorted)),
		digests:  sorted,
	}
	for pos, d := range sorted {
		// Keep the lowest position for duplicates.
		if _, exists := idx.byDigest[d]; !exists {
			idx.byDigest[d] = pos
		}
	}
	return idx
}

func (idx *indexTable) positionOf(d Digest) (int, bool) {
	pos, ok := idx.byDigest[d]
	return pos, ok
}

// PositionOf returns the lowest position holding digest d.
func (t *Tree) PositionOf(d Digest) (int, error) {
	pos, ok := t.index.positionOf(d)
	if !ok {
		return 0, errors.Wrapf(ErrNotFound, "digest %s", d.Hex())
	}
	return pos, nil
}

// PositionOfLeaf digests leaf and returns its lowest position.
func (t *Tree) PositionOfLeaf(leaf []byte) (int, error) {
	return t.PositionOf(t.hasher.DigestLeaf(leaf))
}

// PositionsOf returns every position holding digest d, in ascending order.
func (t *Tree) PositionsOf(d Digest) []int {
	first, ok := t.index.positionOf(d)
	if !ok {
		return nil
	}
	var positions []int
	for pos := first; pos < len(t.index.digests) && t.index.digests[pos] == d; pos++ {
		positions = append(positions, pos)
	}
	return positions
}

// DigestAt returns the leaf digest at pos.
func (t *Tree) DigestAt(pos int) (Digest, error) {
	if pos < 0 || pos >= len(t.index.digests) {
		return Digest{}, errors.Wrapf(ErrPositionOutOfRange, "position %d (tree has %d leaves)", pos, len(t.index.digests))
	}
	return t.index.digests[pos], nil
}

// Contains reports whether leaf is part of the tree.
func (t *Tree) Contains(leaf []byte) bool {
	_, ok := t.index.positionOf(t.hasher.DigestLeaf(leaf))
	return ok
}
