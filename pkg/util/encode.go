package util

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// LeafEncoding selects how a leaf value is turned into the bytes that get hashed.
type LeafEncoding string

const (
	// LeafEncodingRaw hashes the value as given.
	LeafEncodingRaw LeafEncoding = "raw"
	// LeafEncodingABIString hashes abi.encode(string(value)).
	LeafEncodingABIString LeafEncoding = "abi-string"
	// LeafEncodingABIBytes hashes abi.encode(bytes(value)).
	LeafEncodingABIBytes LeafEncoding = "abi-bytes"
)

func SupportedLeafEncodings() []string {
	return []string{string(LeafEncodingRaw), string(LeafEncodingABIString), string(LeafEncodingABIBytes)}
}

func EncodeString(str string) ([]byte, error) {
	stringType, _ := abi.NewType("string", "", nil)
	arguments := abi.Arguments{{Type: stringType}}

	encoded, err := arguments.Pack(str)
	if err != nil {
		return nil, err
	}

	return encoded, nil
}

func EncodeBytes(b []byte) ([]byte, error) {
	bytesType, _ := abi.NewType("bytes", "", nil)
	arguments := abi.Arguments{{Type: bytesType}}

	encoded, err := arguments.Pack(b)
	if err != nil {
		return nil, err
	}

	return encoded, nil
}

// EncodeLeaf applies enc to value. An empty encoding means raw.
func EncodeLeaf(enc LeafEncoding, value []byte) ([]byte, error) {
	switch enc {
	case LeafEncodingRaw, "":
		return value, nil
	case LeafEncodingABIString:
		return EncodeString(string(value))
	case LeafEncodingABIBytes:
		return EncodeBytes(value)
	default:
		return nil, fmt.Errorf("unsupported leaf encoding %q", enc)
	}
}

// EncodeLeaves applies enc to every value.
func EncodeLeaves(enc LeafEncoding, values [][]byte) ([][]byte, error) {
	out := make([][]byte, len(values))
	for i, v := range values {
		encoded, err := EncodeLeaf(enc, v)
		if err != nil {
			return nil, err
		}
		out[i] = encoded
	}
	return out, nil
}
