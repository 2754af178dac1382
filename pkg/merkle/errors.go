package merkle

import "github.com/pkg/errors"

var (
	// ErrEmptyInput is returned when a tree is built from zero leaves.
	ErrEmptyInput = errors.New("merkle: cannot build tree from empty leaf set")

	// ErrTreeNotBuilt is returned by Builder queries before the first GenerateTree.
	ErrTreeNotBuilt = errors.New("merkle: tree not generated")

	// ErrNotFound is returned when a digest or leaf is not part of the built tree.
	ErrNotFound = errors.New("merkle: leaf not found")

	// ErrPositionOutOfRange is returned when a proof is requested for a nonexistent position.
	ErrPositionOutOfRange = errors.New("merkle: position out of range")

	// ErrEmptySelection is returned when a multiproof is requested for zero positions.
	ErrEmptySelection = errors.New("merkle: empty position selection")

	// ErrProofShapeMismatch is returned when positions and leaves differ in length.
	ErrProofShapeMismatch = errors.New("merkle: positions and leaves length mismatch")

	// ErrExcessProofData is returned when a multiproof carries hashes the merge never used.
	ErrExcessProofData = errors.New("merkle: excess proof hashes")

	// ErrInsufficientProofData is returned when a multiproof runs out of hashes mid-merge.
	ErrInsufficientProofData = errors.New("merkle: insufficient proof hashes")

	ErrInvalidDigest        = errors.New("merkle: invalid digest")
	ErrInvalidProofEncoding = errors.New("merkle: invalid proof encoding")
	ErrUnknownHashFunc      = errors.New("merkle: unknown hash function")
)
