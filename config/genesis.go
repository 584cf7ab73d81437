package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/Klingon-tech/klingnet-ledger/pkg/crypto"
	"github.com/Klingon-tech/klingnet-ledger/pkg/types"
)

// Genesis defines the initial state of a chain. Every block built on it
// is hashed with the same algorithm, so both values are fixed once the
// genesis block exists.
type Genesis struct {
	Alloc map[string]int64 `json:"alloc"`          // Initial balances
	Hash  string           `json:"hash,omitempty"` // Digest algorithm (default sha256)
}

// DefaultGenesis returns the two-account allocation used when no genesis
// file is given.
func DefaultGenesis() *Genesis {
	return &Genesis{
		Alloc: map[string]int64{
			"Alice": 500,
			"Bob":   500,
		},
		Hash: DefaultHashAlgorithm,
	}
}

// LoadGenesis loads genesis configuration from a file.
func LoadGenesis(path string) (*Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading genesis file: %w", err)
	}

	var g Genesis
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("parsing genesis file: %w", err)
	}

	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("invalid genesis: %w", err)
	}

	return &g, nil
}

// Save writes the genesis configuration to a file.
func (g *Genesis) Save(path string) error {
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding genesis: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing genesis file: %w", err)
	}

	return nil
}

// Validate checks that the genesis configuration is valid.
func (g *Genesis) Validate() error {
	if _, err := crypto.ParseAlgorithm(g.Hash); err != nil {
		return err
	}

	var total int64
	for _, name := range g.Accounts() {
		v := g.Alloc[name]
		if name == "" {
			return fmt.Errorf("alloc has an empty account name")
		}
		if v < 0 {
			return fmt.Errorf("alloc for %q is negative (%d)", name, v)
		}
		if total+v < total {
			return fmt.Errorf("genesis allocations overflow")
		}
		total += v
	}

	return nil
}

// Accounts returns the allocated account names in sorted order.
func (g *Genesis) Accounts() []string {
	names := make([]string, 0, len(g.Alloc))
	for name := range g.Alloc {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Hasher returns the digest configured for this genesis.
func (g *Genesis) Hasher() (crypto.Hasher, error) {
	return crypto.NewHasher(g.Hash)
}

// ID returns a digest of the genesis configuration.
// Used to detect genesis mismatches between files.
func (g *Genesis) ID() (types.Hash, error) {
	h, err := g.Hasher()
	if err != nil {
		return types.Hash{}, err
	}
	return h.Digest(g)
}
