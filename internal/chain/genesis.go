package chain

import (
	"fmt"

	"github.com/Klingon-tech/klingnet-ledger/config"
	"github.com/Klingon-tech/klingnet-ledger/pkg/block"
	"github.com/Klingon-tech/klingnet-ledger/pkg/crypto"
)

// CreateGenesisBlock builds the genesis block from the genesis
// configuration. The block has number 0, a null parent, and a single
// transaction entry holding the whole allocation.
func CreateGenesisBlock(gen *config.Genesis) (*block.Block, crypto.Hasher, error) {
	if gen == nil {
		return nil, crypto.Hasher{}, fmt.Errorf("genesis config is nil")
	}
	if err := gen.Validate(); err != nil {
		return nil, crypto.Hasher{}, fmt.Errorf("invalid genesis: %w", err)
	}
	h, err := gen.Hasher()
	if err != nil {
		return nil, crypto.Hasher{}, err
	}
	blk, err := block.Genesis(h, gen.Alloc)
	if err != nil {
		return nil, crypto.Hasher{}, fmt.Errorf("create genesis: %w", err)
	}
	return blk, h, nil
}

// InitFromGenesis creates a fresh chain from genesis configuration.
func InitFromGenesis(gen *config.Genesis) (*Chain, error) {
	blk, h, err := CreateGenesisBlock(gen)
	if err != nil {
		return nil, err
	}
	return New(h, blk)
}
