package merkle

import "github.com/pkg/errors"

// OrderedRoot folds proof hashes over the leaf digest and returns the implied root.
func (h *Hasher) OrderedRoot(leaf []byte, proofHashes []Digest) Digest {
	return h.orderedRootFromDigest(h.DigestLeaf(leaf), proofHashes)
}

func (h *Hasher) orderedRootFromDigest(current Digest, proofHashes []Digest) Digest {
	for _, sibling := range proofHashes {
		current = h.Combine(current, sibling)
	}
	return current
}

// VerifyOrdered checks a path proof for leaf against root.
func (h *Hasher) VerifyOrdered(root Digest, leaf []byte, proofHashes []Digest) bool {
	return h.VerifyOrderedDigest(root, h.DigestLeaf(leaf), proofHashes)
}

// VerifyOrderedDigest checks a path proof for an already digested leaf.
func (h *Hasher) VerifyOrderedDigest(root, leafDigest Digest, proofHashes []Digest) bool {
	return h.orderedRootFromDigest(leafDigest, proofHashes) == root
}

// VerifyOrderedProof checks p for leaf against root.
func (h *Hasher) VerifyOrderedProof(root Digest, leaf []byte, p *OrderedProof) bool {
	if p == nil {
		return false
	}
	return h.VerifyOrdered(root, leaf, p.Hashes)
}

// UnorderedRoot reconstructs the root implied by a multiproof.
//
// It returns ErrProofShapeMismatch when positions and leaves differ in length,
// ErrInsufficientProofData or ErrExcessProofData when the merge does not
// consume exactly proofHashes, and an error for selections that no tree of
// leafCount leaves can contain (empty, out of range, conflicting duplicates).
func (h *Hasher) UnorderedRoot(positions []int, leaves [][]byte, proofHashes []Digest, leafCount int) (Digest, error) {
	if len(positions) != len(leaves) {
		return Digest{}, errors.Wrapf(ErrProofShapeMismatch, "%d positions, %d leaves", len(positions), len(leaves))
	}
	return h.UnorderedRootFromDigests(positions, h.digestLeaves(leaves), proofHashes, leafCount)
}

// UnorderedRootFromDigests is UnorderedRoot for already digested leaves.
func (h *Hasher) UnorderedRootFromDigests(positions []int, leafDigests []Digest, proofHashes []Digest, leafCount int) (Digest, error) {
	if len(positions) != len(leafDigests) {
		return Digest{}, errors.Wrapf(ErrProofShapeMismatch, "%d positions, %d leaves", len(positions), len(leafDigests))
	}
	if leafCount <= 0 || len(positions) == 0 {
		return Digest{}, errInvalidSelection
	}

	known := make([]knownNode, len(positions))
	for i, pos := range positions {
		if pos < 0 || pos >= leafCount {
			return Digest{}, errInvalidSelection
		}
		known[i] = knownNode{pos: pos, digest: leafDigests[i]}
	}
	known, ok := normalizeKnown(known)
	if !ok {
		return Digest{}, errInvalidSelection
	}

	consumed := 0
	root, err := mergeToRoot(h, leafCount, known, func(level, pos int) (Digest, error) {
		if consumed >= len(proofHashes) {
			return Digest{}, errors.Wrapf(ErrInsufficientProofData, "needed sibling at level %d position %d after %d hashes", level, pos, consumed)
		}
		d := proofHashes[consumed]
		consumed++
		return d, nil
	})
	if err != nil {
		return Digest{}, err
	}
	if consumed != len(proofHashes) {
		return Digest{}, errors.Wrapf(ErrExcessProofData, "%d of %d hashes unused", len(proofHashes)-consumed, len(proofHashes))
	}
	return root, nil
}

// VerifyUnordered checks a multiproof for leaves at positions against root.
//
// A well-formed proof that does not match root yields false with a nil error.
// Structural problems yield false with ErrProofShapeMismatch,
// ErrInsufficientProofData or ErrExcessProofData.
func (h *Hasher) VerifyUnordered(root Digest, positions []int, leaves [][]byte, proofHashes []Digest, leafCount int) (bool, error) {
	if len(positions) != len(leaves) {
		return false, errors.Wrapf(ErrProofShapeMismatch, "%d positions, %d leaves", len(positions), len(leaves))
	}
	return h.VerifyUnorderedDigests(root, positions, h.digestLeaves(leaves), proofHashes, leafCount)
}

// VerifyUnorderedDigests is VerifyUnordered for already digested leaves.
func (h *Hasher) VerifyUnorderedDigests(root Digest, positions []int, leafDigests []Digest, proofHashes []Digest, leafCount int) (bool, error) {
	computed, err := h.UnorderedRootFromDigests(positions, leafDigests, proofHashes, leafCount)
	if errors.Is(err, errInvalidSelection) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return computed == root, nil
}

// VerifyUnorderedProof checks p for leaves, given in the order of p.Positions.
func (h *Hasher) VerifyUnorderedProof(root Digest, leaves [][]byte, p *UnorderedProof) (bool, error) {
	if p == nil {
		return false, nil
	}
	return h.VerifyUnordered(root, p.Positions, leaves, p.Hashes, p.LeafCount)
}

// errInvalidSelection marks position sets that cannot belong to any tree of
// the claimed size. Verification reports these as a plain false.
var errInvalidSelection = errors.New("merkle: invalid leaf selection")

// VerifyOrdered checks a path proof with DefaultHasher.
func VerifyOrdered(root Digest, leaf []byte, proofHashes []Digest) bool {
	return DefaultHasher.VerifyOrdered(root, leaf, proofHashes)
}

// VerifyUnordered checks a multiproof with DefaultHasher.
func VerifyUnordered(root Digest, positions []int, leaves [][]byte, proofHashes []Digest, leafCount int) (bool, error) {
	return DefaultHasher.VerifyUnordered(root, positions, leaves, proofHashes, leafCount)
}
