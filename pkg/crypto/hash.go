// Package crypto provides the content-addressing hash functions.
package crypto

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/Klingon-tech/klingnet-ledger/pkg/canonical"
	"github.com/Klingon-tech/klingnet-ledger/pkg/types"
	"github.com/zeebo/blake3"
	"golang.org/x/crypto/sha3"
)

// Algorithm names a 256-bit digest function.
type Algorithm string

// Supported digest algorithms.
const (
	SHA256 Algorithm = "sha256" // Default; digests match the JSON chain format.
	BLAKE3 Algorithm = "blake3"
	SHA3   Algorithm = "sha3-256"
)

// ParseAlgorithm maps a configuration string to an Algorithm.
// The empty string selects SHA256.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(strings.TrimSpace(s))) {
	case "", SHA256:
		return SHA256, nil
	case BLAKE3:
		return BLAKE3, nil
	case SHA3, "sha3":
		return SHA3, nil
	default:
		return "", fmt.Errorf("unknown hash algorithm %q (want sha256, blake3 or sha3-256)", s)
	}
}

// Sum hashes raw bytes with the algorithm. An unknown algorithm falls back
// to SHA256; use ParseAlgorithm to reject bad names at configuration time.
func (a Algorithm) Sum(data []byte) types.Hash {
	switch a {
	case BLAKE3:
		return blake3.Sum256(data)
	case SHA3:
		return sha3.Sum256(data)
	default:
		return sha256.Sum256(data)
	}
}

// Algorithms lists the supported algorithms, default first.
func Algorithms() []Algorithm {
	return []Algorithm{SHA256, BLAKE3, SHA3}
}

// Hasher computes content digests: the algorithm applied to the canonical
// serialization of a value. The zero value uses SHA256.
type Hasher struct {
	Algorithm Algorithm
}

// NewHasher returns a hasher for the named algorithm.
func NewHasher(name string) (Hasher, error) {
	alg, err := ParseAlgorithm(name)
	if err != nil {
		return Hasher{}, err
	}
	return Hasher{Algorithm: alg}, nil
}

// Digest returns the hash of the canonical encoding of v.
// Two values that encode to the same JSON document (regardless of map
// insertion order or struct field order) always produce the same digest.
func (h Hasher) Digest(v any) (types.Hash, error) {
	data, err := canonical.Marshal(v)
	if err != nil {
		return types.Hash{}, err
	}
	return h.Algorithm.Sum(data), nil
}

// String returns the algorithm name.
func (h Hasher) String() string {
	if h.Algorithm == "" {
		return string(SHA256)
	}
	return string(h.Algorithm)
}
