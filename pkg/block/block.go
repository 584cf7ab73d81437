// Package block defines hash-addressed blocks and their construction.
package block

import (
	"encoding/json"
	"fmt"

	"github.com/Klingon-tech/klingnet-ledger/pkg/crypto"
	"github.com/Klingon-tech/klingnet-ledger/pkg/ledger"
	"github.com/Klingon-tech/klingnet-ledger/pkg/tx"
	"github.com/Klingon-tech/klingnet-ledger/pkg/types"
)

// Content is the hashed payload of a block.
type Content struct {
	BlockNumber      uint64           `json:"blockNumber"`
	ParentHash       *types.Hash      `json:"parentHash"` // nil for genesis.
	TransactionCount int              `json:"transactionCount"`
	Transactions     []tx.Transaction `json:"transactions"`
}

// contentJSON mirrors Content without its methods.
type contentJSON Content

// MarshalJSON encodes a nil transaction list as [] so the key set never
// changes shape.
func (c Content) MarshalJSON() ([]byte, error) {
	j := contentJSON(c)
	if j.Transactions == nil {
		j.Transactions = []tx.Transaction{}
	}
	return json.Marshal(j)
}

// Block pairs a content payload with its digest.
// Blocks are treated as immutable once built; use Clone before editing.
type Block struct {
	Hash    types.Hash `json:"hash"`
	Content Content    `json:"content"`
}

// Number returns the block number.
func (b *Block) Number() uint64 {
	return b.Content.BlockNumber
}

// IsGenesis reports whether the block has no parent link.
func (b *Block) IsGenesis() bool {
	return b.Content.ParentHash == nil
}

// Make builds the child of parent over txs. The order of txs is
// preserved: it is hashed and it is the replay order.
func Make(h crypto.Hasher, txs []tx.Transaction, parent *Block) (*Block, error) {
	if parent == nil {
		return nil, ErrNilParent
	}
	content := Content{
		BlockNumber:      parent.Content.BlockNumber + 1,
		ParentHash:       parent.Hash.Ptr(),
		TransactionCount: len(txs),
		Transactions:     cloneTxs(txs),
	}
	return seal(h, content)
}

// Genesis builds block 0 from an initial allocation. The allocation is
// stored as the single entry of the transaction list and is folded as-is
// on replay, without the zero-sum rule.
func Genesis(h crypto.Hasher, alloc map[string]int64) (*Block, error) {
	content := Content{
		BlockNumber:      0,
		ParentHash:       nil,
		TransactionCount: 1,
		Transactions:     []tx.Transaction{tx.Transaction(alloc).Clone()},
	}
	return seal(h, content)
}

// GenesisState returns the state produced by folding a genesis block.
func GenesisState(b *Block) ledger.State {
	var s ledger.State
	return s.ApplyAll(b.Content.Transactions)
}

func seal(h crypto.Hasher, content Content) (*Block, error) {
	hash, err := h.Digest(content)
	if err != nil {
		return nil, fmt.Errorf("hash block %d: %w", content.BlockNumber, err)
	}
	return &Block{Hash: hash, Content: content}, nil
}

// Clone returns a deep copy of the block.
func (b *Block) Clone() *Block {
	out := &Block{
		Hash: b.Hash,
		Content: Content{
			BlockNumber:      b.Content.BlockNumber,
			TransactionCount: b.Content.TransactionCount,
			Transactions:     cloneTxs(b.Content.Transactions),
		},
	}
	if b.Content.ParentHash != nil {
		out.Content.ParentHash = b.Content.ParentHash.Ptr()
	}
	return out
}

func cloneTxs(txs []tx.Transaction) []tx.Transaction {
	out := make([]tx.Transaction, len(txs))
	for i, t := range txs {
		out[i] = t.Clone()
	}
	return out
}
