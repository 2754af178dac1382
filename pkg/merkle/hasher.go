package merkle

import (
	"crypto/sha256"
	"sort"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/wealdtech/go-merkletree/v2/blake2b"
	"golang.org/x/crypto/sha3"
)

// Names of the hash functions available through HashFuncByName.
const (
	HashSHA256    = "sha256"
	HashKeccak256 = "keccak256"
	HashSHA3256   = "sha3-256"
	HashBlake2b   = "blake2b"
)

// HashFunc is a fixed-output cryptographic hash producing DigestLength bytes.
// Implementations must be safe for concurrent use.
type HashFunc interface {
	Name() string
	Hash(data ...[]byte) Digest
}

type sha256Func struct{}

func (sha256Func) Name() string { return HashSHA256 }

func (sha256Func) Hash(data ...[]byte) Digest {
	h := sha256.New()
	for _, d := range data {
		h.Write(d)
	}
	var out Digest
	h.Sum(out[:0])
	return out
}

type keccak256Func struct{}

func (keccak256Func) Name() string { return HashKeccak256 }

func (keccak256Func) Hash(data ...[]byte) Digest {
	return Digest(crypto.Keccak256Hash(data...))
}

type sha3Func struct{}

func (sha3Func) Name() string { return HashSHA3256 }

func (sha3Func) Hash(data ...[]byte) Digest {
	h := sha3.New256()
	for _, d := range data {
		h.Write(d)
	}
	var out Digest
	h.Sum(out[:0])
	return out
}

// blake2bFunc delegates to the 256-bit BLAKE2b used by go-merkletree.
type blake2bFunc struct {
	inner *blake2b.BLAKE2b
}

func (blake2bFunc) Name() string { return HashBlake2b }

func (f blake2bFunc) Hash(data ...[]byte) Digest {
	var out Digest
	copy(out[:], f.inner.Hash(data...))
	return out
}

var hashFuncs = map[string]HashFunc{
	HashSHA256:    sha256Func{},
	HashKeccak256: keccak256Func{},
	HashSHA3256:   sha3Func{},
	HashBlake2b:   blake2bFunc{inner: blake2b.New()},
}

// HashFuncByName returns the registered hash function with the given name.
func HashFuncByName(name string) (HashFunc, error) {
	fn, ok := hashFuncs[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownHashFunc, "%q (supported: %v)", name, SupportedHashFuncs())
	}
	return fn, nil
}

// SupportedHashFuncs lists the registered hash function names in sorted order.
func SupportedHashFuncs() []string {
	names := make([]string, 0, len(hashFuncs))
	for name := range hashFuncs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Hasher is the single primitive used for leaf digesting and node combination.
// The same Hasher must be used to build, prove and verify.
type Hasher struct {
	fn HashFunc
}

// DefaultHasher hashes with SHA-256.
var DefaultHasher = NewHasher(sha256Func{})

// NewHasher wraps fn. A nil fn selects SHA-256.
func NewHasher(fn HashFunc) *Hasher {
	if fn == nil {
		fn = sha256Func{}
	}
	return &Hasher{fn: fn}
}

// NewHasherByName resolves name through HashFuncByName.
func NewHasherByName(name string) (*Hasher, error) {
	fn, err := HashFuncByName(name)
	if err != nil {
		return nil, err
	}
	return NewHasher(fn), nil
}

// Name returns the name of the underlying hash function.
func (h *Hasher) Name() string {
	return h.fn.Name()
}

// DigestLeaf returns H(H(leaf)). The double hash keeps a leaf from being
// presented as an internal node.
func (h *Hasher) DigestLeaf(leaf []byte) Digest {
	inner := h.fn.Hash(leaf)
	return h.fn.Hash(inner[:])
}

// Combine returns H(min(a,b) || max(a,b)).
func (h *Hasher) Combine(a, b Digest) Digest {
	if a.Compare(b) > 0 {
		a, b = b, a
	}
	return h.fn.Hash(a[:], b[:])
}

func (h *Hasher) digestLeaves(leaves [][]byte) []Digest {
	out := make([]Digest, len(leaves))
	for i, leaf := range leaves {
		out[i] = h.DigestLeaf(leaf)
	}
	return out
}
