package merkle

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
)

// DigestLength is the width in bytes of every leaf, node and root digest.
const DigestLength = 32

// Digest is a fixed-width hash output used for leaves, internal nodes and roots.
type Digest [DigestLength]byte

// Bytes returns a copy of the digest as a byte slice.
func (d Digest) Bytes() []byte {
	out := make([]byte, DigestLength)
	copy(out, d[:])
	return out
}

// Hex returns the digest as lowercase hex with a 0x prefix.
func (d Digest) Hex() string {
	return hexutil.Encode(d[:])
}

func (d Digest) String() string {
	return d.Hex()
}

// Compare orders digests as fixed-width byte strings.
func (d Digest) Compare(other Digest) int {
	return bytes.Compare(d[:], other[:])
}

// IsZero reports whether every byte of the digest is zero.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// MarshalText encodes the digest in its 0x hex form.
func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.Hex()), nil
}

// UnmarshalText decodes a 0x-prefixed hex digest.
func (d *Digest) UnmarshalText(text []byte) error {
	parsed, err := DigestFromHex(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DigestFromBytes copies b into a Digest. b must be exactly DigestLength bytes.
func DigestFromBytes(b []byte) (Digest, error) {
	var d Digest
	if len(b) != DigestLength {
		return d, errors.Wrapf(ErrInvalidDigest, "expected %d bytes, got %d", DigestLength, len(b))
	}
	copy(d[:], b)
	return d, nil
}

// DigestFromHex parses a 0x-prefixed hex string into a Digest.
func DigestFromHex(s string) (Digest, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return Digest{}, errors.Wrapf(ErrInvalidDigest, "%s: %v", s, err)
	}
	return DigestFromBytes(b)
}

// DigestsToHex renders a digest sequence in its transport form.
func DigestsToHex(digests []Digest) []string {
	out := make([]string, len(digests))
	for i, d := range digests {
		out[i] = d.Hex()
	}
	return out
}

// DigestsFromHex parses a sequence of 0x-prefixed hex digests.
func DigestsFromHex(hexes []string) ([]Digest, error) {
	out := make([]Digest, len(hexes))
	for i, h := range hexes {
		d, err := DigestFromHex(h)
		if err != nil {
			return nil, errors.Wrapf(err, "digest %d", i)
		}
		out[i] = d
	}
	return out, nil
}
