package chain

import (
	"fmt"
	"math"

	"github.com/Klingon-tech/klingnet-ledger/pkg/block"
	"github.com/Klingon-tech/klingnet-ledger/pkg/crypto"
	"github.com/Klingon-tech/klingnet-ledger/pkg/ledger"
)

// Validator replays blocks against a running state. It holds no chain
// state of its own; every check is a pure function of its arguments.
type Validator struct {
	hasher crypto.Hasher
}

// NewValidator creates a validator that recomputes digests with h.
func NewValidator(h crypto.Hasher) *Validator {
	return &Validator{hasher: h}
}

// Hasher returns the digest used for hash checks.
func (v *Validator) Hasher() crypto.Hasher {
	return v.hasher
}

// CheckBlockHash recomputes the digest of the block content and fails
// with block.ErrHashMismatch if it differs from the stored hash.
func (v *Validator) CheckBlockHash(b *block.Block) error {
	if err := b.CheckHash(v.hasher); err != nil {
		return blockError(b, -1, err)
	}
	return nil
}

// CheckBlock validates b as the child of parent and returns the state
// after its transactions. Checks run in order: transactions are folded
// against the running state, then the hash is recomputed, then the block
// number and parent link are compared with parent. On error the returned
// state is the zero value and must be discarded.
func (v *Validator) CheckBlock(b, parent *block.Block, state ledger.State) (ledger.State, error) {
	if b == nil || parent == nil {
		return ledger.State{}, blockError(b, -1, block.ErrNilBlock)
	}
	if err := b.Validate(); err != nil {
		return ledger.State{}, blockError(b, -1, err)
	}

	next, idx, err := state.Fold(b.Content.Transactions)
	if err != nil {
		return ledger.State{}, blockError(b, idx, err)
	}

	if err := v.CheckBlockHash(b); err != nil {
		return ledger.State{}, err
	}

	if parent.Number() == math.MaxUint64 || b.Number() != parent.Number()+1 {
		return ledger.State{}, blockError(b, -1,
			fmt.Errorf("%w: got %d, parent is %d", ErrSequence, b.Number(), parent.Number()))
	}

	if b.Content.ParentHash == nil {
		return ledger.State{}, blockError(b, -1,
			fmt.Errorf("%w: parentHash is null, want %s", ErrLinkage, parent.Hash))
	}
	if *b.Content.ParentHash != parent.Hash {
		return ledger.State{}, blockError(b, -1,
			fmt.Errorf("%w: parentHash %s, want %s", ErrLinkage, b.Content.ParentHash, parent.Hash))
	}

	return next, nil
}

// CheckGenesis validates a genesis block and returns the state it
// allocates. The allocation is folded as-is, without the zero-sum rule,
// then the hash is recomputed. Genesis must be number 0 with a null
// parent.
func (v *Validator) CheckGenesis(b *block.Block) (ledger.State, error) {
	if err := b.Validate(); err != nil {
		return ledger.State{}, blockError(b, -1, err)
	}

	state := block.GenesisState(b)

	if err := v.CheckBlockHash(b); err != nil {
		return ledger.State{}, err
	}
	if b.Number() != 0 {
		return ledger.State{}, blockError(b, -1,
			fmt.Errorf("%w: genesis is block %d, want 0", ErrSequence, b.Number()))
	}
	if b.Content.ParentHash != nil {
		return ledger.State{}, blockError(b, -1,
			fmt.Errorf("%w: genesis has parent %s", ErrLinkage, b.Content.ParentHash))
	}
	return state, nil
}

// DetectAlgorithm returns the first supported algorithm under which b's
// stored hash matches its content.
func DetectAlgorithm(b *block.Block) (crypto.Algorithm, bool) {
	if b == nil {
		return "", false
	}
	for _, alg := range crypto.Algorithms() {
		if b.CheckHash(crypto.Hasher{Algorithm: alg}) == nil {
			return alg, true
		}
	}
	return "", false
}

// CheckChain replays blocks from genesis and returns the final state.
// The first failure aborts the replay; no prefix is certified.
func (v *Validator) CheckChain(blocks []*block.Block) (ledger.State, error) {
	if len(blocks) == 0 {
		return ledger.State{}, ErrEmptyChain
	}

	state, err := v.CheckGenesis(blocks[0])
	if err != nil {
		return ledger.State{}, err
	}

	for i := 1; i < len(blocks); i++ {
		state, err = v.CheckBlock(blocks[i], blocks[i-1], state)
		if err != nil {
			return ledger.State{}, err
		}
	}
	return state, nil
}

// CheckSerialized decodes a JSON chain and replays it.
func (v *Validator) CheckSerialized(data []byte) (ledger.State, error) {
	blocks, err := block.ParseChain(data)
	if err != nil {
		return ledger.State{}, err
	}
	return v.CheckChain(blocks)
}
