// Package types defines core primitive types for the ledger.
package types

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
)

// HashSize is the length of a hash in bytes.
const HashSize = 32

// ErrBadHash is returned when a hex string does not encode a Hash.
var ErrBadHash = errors.New("invalid hash")

// Hash represents a 256-bit digest.
type Hash [HashSize]byte

// IsZero returns true if the hash is all zeros.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// String returns the lowercase hex-encoded hash.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Short returns the first 8 hex characters, for log lines and tables.
func (h Hash) Short() string {
	return h.String()[:8]
}

// Bytes returns a copy of the hash as a byte slice.
func (h Hash) Bytes() []byte {
	b := make([]byte, HashSize)
	copy(b, h[:])
	return b
}

// Ptr returns a pointer to a copy of h. Used for optional parent links.
func (h Hash) Ptr() *Hash {
	return &h
}

// MarshalJSON encodes the hash as a hex string.
func (h Hash) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

// UnmarshalJSON decodes a hex string into a hash.
func (h *Hash) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %v", ErrBadHash, err)
	}
	decoded, err := HexToHash(s)
	if err != nil {
		return err
	}
	*h = decoded
	return nil
}

// HexToHash converts a hex string to a Hash.
// The string must be exactly 64 lowercase hex characters, the form the
// hasher emits, so that re-serializing a parsed hash yields the same bytes.
func HexToHash(s string) (Hash, error) {
	if len(s) != 2*HashSize {
		return Hash{}, fmt.Errorf("%w: want %d hex chars, got %d", ErrBadHash, 2*HashSize, len(s))
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return Hash{}, fmt.Errorf("%w: non-lowercase-hex character %q at %d", ErrBadHash, c, i)
		}
	}
	var h Hash
	if _, err := hex.Decode(h[:], []byte(s)); err != nil {
		return Hash{}, fmt.Errorf("%w: %v", ErrBadHash, err)
	}
	return h, nil
}

// EqualPtr reports whether two optional hashes are both nil or both equal.
func EqualPtr(a, b *Hash) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
