package chain

import (
	"errors"
	"fmt"

	"github.com/Klingon-tech/klingnet-ledger/pkg/block"
	"github.com/Klingon-tech/klingnet-ledger/pkg/ledger"
	"github.com/Klingon-tech/klingnet-ledger/pkg/types"
)

// Chain validation errors.
var (
	ErrSequence      = errors.New("block number does not follow parent")
	ErrLinkage       = errors.New("parent hash does not match parent block")
	ErrEmptyChain    = fmt.Errorf("%w: chain has no blocks", types.ErrMalformed)
	ErrBlockNotFound = errors.New("block not found")
)

// BlockError reports which block, and which transaction inside it, failed
// validation. TxIndex is -1 when the failure is not tied to a transaction.
type BlockError struct {
	Number  uint64
	Hash    types.Hash
	TxIndex int
	Err     error
}

func (e *BlockError) Error() string {
	if e.TxIndex >= 0 {
		return fmt.Sprintf("block %d (%s) tx %d: %v", e.Number, e.Hash.Short(), e.TxIndex, e.Err)
	}
	return fmt.Sprintf("block %d (%s): %v", e.Number, e.Hash.Short(), e.Err)
}

func (e *BlockError) Unwrap() error { return e.Err }

func blockError(b *block.Block, txIndex int, err error) *BlockError {
	e := &BlockError{TxIndex: txIndex, Err: err}
	if b != nil {
		e.Number = b.Number()
		e.Hash = b.Hash
	}
	return e
}

// Kind names a class of validation failure.
type Kind string

// Failure kinds, one per class of broken invariant.
const (
	KindNone               Kind = ""
	KindInvalidTransaction Kind = "InvalidTransaction"
	KindHashMismatch       Kind = "HashMismatch"
	KindSequence           Kind = "SequenceError"
	KindLinkage            Kind = "LinkageError"
	KindMalformed          Kind = "MalformedInput"
	KindUnknown            Kind = "Unknown"
)

// KindOf classifies err. It returns KindNone for a nil error and
// KindUnknown for errors outside the validation taxonomy (I/O and so on).
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ledger.ErrInvalidTransaction):
		return KindInvalidTransaction
	case errors.Is(err, block.ErrHashMismatch):
		return KindHashMismatch
	case errors.Is(err, ErrSequence):
		return KindSequence
	case errors.Is(err, ErrLinkage):
		return KindLinkage
	case errors.Is(err, types.ErrMalformed):
		return KindMalformed
	default:
		return KindUnknown
	}
}
