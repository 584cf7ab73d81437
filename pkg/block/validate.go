package block

import (
	"errors"
	"fmt"

	"github.com/Klingon-tech/klingnet-ledger/pkg/crypto"
	"github.com/Klingon-tech/klingnet-ledger/pkg/types"
)

// Validation errors.
var (
	ErrHashMismatch  = errors.New("block hash does not match contents")
	ErrMalformed     = types.ErrMalformed
	ErrCountMismatch = fmt.Errorf("%w: transactionCount does not match transactions", types.ErrMalformed)
	ErrNilBlock      = fmt.Errorf("%w: block is nil", types.ErrMalformed)
	ErrNilTx         = fmt.Errorf("%w: transaction is null", types.ErrMalformed)
	ErrNilParent     = errors.New("parent block is nil")
)

// Validate checks the shape of the content. It does not look at balances,
// hashes or parent links.
func (c *Content) Validate() error {
	if c.TransactionCount != len(c.Transactions) {
		return fmt.Errorf("%w: count %d, have %d", ErrCountMismatch, c.TransactionCount, len(c.Transactions))
	}
	for i, t := range c.Transactions {
		if t == nil {
			return fmt.Errorf("tx %d: %w", i, ErrNilTx)
		}
	}
	return nil
}

// Validate checks block structure.
func (b *Block) Validate() error {
	if b == nil {
		return ErrNilBlock
	}
	return b.Content.Validate()
}

// CheckHash recomputes the digest of the content and compares it with the
// stored hash. The stored hash is never trusted on its own.
func (b *Block) CheckHash(h crypto.Hasher) error {
	if b == nil {
		return ErrNilBlock
	}
	computed, err := h.Digest(b.Content)
	if err != nil {
		return fmt.Errorf("%w: block %d: %v", types.ErrMalformed, b.Content.BlockNumber, err)
	}
	if computed != b.Hash {
		return fmt.Errorf("%w: block %d stored=%s computed=%s",
			ErrHashMismatch, b.Content.BlockNumber, b.Hash, computed)
	}
	return nil
}
