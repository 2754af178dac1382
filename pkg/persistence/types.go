package persistence

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Layr-Labs/sorted-merkle-go/pkg/merkle"
)

// TreeRecord is the persisted form of a built tree. Only the sorted leaf
// digests are stored; the levels are recomputed on Rehydrate.
type TreeRecord struct {
	// ID uniquely identifies the record (UUID v4).
	ID string `json:"id"`

	// Name is an optional caller-supplied label, e.g. a block hash or contract address.
	Name string `json:"name"`

	// HashAlgorithm names the merkle.HashFunc the tree was built with.
	HashAlgorithm string `json:"hashAlgorithm"`

	// LeafEncoding records how leaf values were encoded before hashing, if known.
	LeafEncoding string `json:"leafEncoding,omitempty"`

	// Root is the tree root at the time the record was created.
	Root merkle.Digest `json:"root"`

	// LeafCount is the number of leaves, duplicates included.
	LeafCount int `json:"leafCount"`

	// LeafDigests are the sorted leaf digests.
	LeafDigests []merkle.Digest `json:"leafDigests"`

	// CreatedAt is the Unix timestamp when the record was created.
	CreatedAt int64 `json:"createdAt"`
}

// NewTreeRecord captures tree under a freshly generated ID.
func NewTreeRecord(name string, tree *merkle.Tree) *TreeRecord {
	return &TreeRecord{
		ID:            uuid.NewString(),
		Name:          name,
		HashAlgorithm: tree.Hasher().Name(),
		Root:          tree.Root(),
		LeafCount:     tree.LeafCount(),
		LeafDigests:   tree.LeafDigests(),
		CreatedAt:     time.Now().Unix(),
	}
}

// Validate checks the record is internally consistent.
func (r *TreeRecord) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("tree record id cannot be empty")
	}
	if _, err := uuid.Parse(r.ID); err != nil {
		return fmt.Errorf("tree record id %q is not a UUID: %w", r.ID, err)
	}
	if r.LeafCount <= 0 {
		return fmt.Errorf("tree record %s has no leaves", r.ID)
	}
	if r.LeafCount != len(r.LeafDigests) {
		return fmt.Errorf("tree record %s: leaf count %d does not match %d digests", r.ID, r.LeafCount, len(r.LeafDigests))
	}
	if _, err := merkle.HashFuncByName(r.HashAlgorithm); err != nil {
		return fmt.Errorf("tree record %s: %w", r.ID, err)
	}
	return nil
}

// Rehydrate rebuilds the tree and checks it reproduces the stored root.
func (r *TreeRecord) Rehydrate(opts ...merkle.Option) (*merkle.Tree, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	hasher, err := merkle.NewHasherByName(r.HashAlgorithm)
	if err != nil {
		return nil, err
	}

	tree, err := merkle.BuildFromDigests(r.LeafDigests, append(opts, merkle.WithHasher(hasher))...)
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild tree %s: %w", r.ID, err)
	}

	if tree.Root() != r.Root {
		return nil, fmt.Errorf("tree record %s is corrupted: rebuilt root %s, stored root %s", r.ID, tree.RootHex(), r.Root.Hex())
	}

	return tree, nil
}

// Clone returns a deep copy of the record.
func (r *TreeRecord) Clone() *TreeRecord {
	if r == nil {
		return nil
	}
	clone := *r
	clone.LeafDigests = append([]merkle.Digest(nil), r.LeafDigests...)
	return &clone
}

// SortTreeRecords orders records by CreatedAt, then ID.
func SortTreeRecords(records []*TreeRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt != records[j].CreatedAt {
			return records[i].CreatedAt < records[j].CreatedAt
		}
		return records[i].ID < records[j].ID
	})
}
