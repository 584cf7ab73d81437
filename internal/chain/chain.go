// Package chain implements the append-only block chain and its validator.
//
// A Chain owns its block sequence and the state folded from it. It is not
// safe for concurrent use: one writer appends, and readers take copies
// through Blocks, Tip and State.
package chain

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	klog "github.com/Klingon-tech/klingnet-ledger/internal/log"
	"github.com/Klingon-tech/klingnet-ledger/pkg/block"
	"github.com/Klingon-tech/klingnet-ledger/pkg/crypto"
	"github.com/Klingon-tech/klingnet-ledger/pkg/ledger"
	"github.com/Klingon-tech/klingnet-ledger/pkg/tx"
	"github.com/Klingon-tech/klingnet-ledger/pkg/types"
)

// BlockHandler is called after a block is linked into the chain, with
// the state that block produced.
type BlockHandler func(blk *block.Block, state ledger.State)

// RejectHandler is called when a proposed block fails validation.
type RejectHandler func(blk *block.Block, err error)

// Chain is an ordered, hash-linked sequence of blocks from genesis to tip.
type Chain struct {
	validator *Validator
	blocks    []*block.Block
	state     ledger.State
	logger    zerolog.Logger

	blockHandler  BlockHandler
	rejectHandler RejectHandler
}

// New creates a chain holding only the given genesis block.
func New(h crypto.Hasher, genesis *block.Block) (*Chain, error) {
	v := NewValidator(h)
	state, err := v.CheckGenesis(genesis)
	if err != nil {
		return nil, fmt.Errorf("genesis: %w", err)
	}
	return &Chain{
		validator: v,
		blocks:    []*block.Block{genesis.Clone()},
		state:     state,
		logger:    klog.Chain,
	}, nil
}

// Load replays a serialized chain and returns it positioned at its tip.
func Load(h crypto.Hasher, data []byte) (*Chain, error) {
	blocks, err := block.ParseChain(data)
	if err != nil {
		return nil, err
	}
	return FromBlocks(h, blocks)
}

// LoadFile reads and replays a chain file.
func LoadFile(h crypto.Hasher, path string) (*Chain, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read chain file: %w", err)
	}
	return Load(h, data)
}

// FromBlocks validates blocks as a whole chain and wraps them.
func FromBlocks(h crypto.Hasher, blocks []*block.Block) (*Chain, error) {
	v := NewValidator(h)
	state, err := v.CheckChain(blocks)
	if err != nil {
		return nil, err
	}
	owned := make([]*block.Block, len(blocks))
	for i, b := range blocks {
		owned[i] = b.Clone()
	}
	return &Chain{
		validator: v,
		blocks:    owned,
		state:     state,
		logger:    klog.Chain,
	}, nil
}

// Append validates blk against the tip and the current state and links
// it. On error the chain and its state are unchanged.
func (c *Chain) Append(blk *block.Block) (ledger.State, error) {
	next, err := c.validator.CheckBlock(blk, c.tip(), c.state)
	if err != nil {
		c.logger.Warn().
			Str("kind", string(KindOf(err))).
			Err(err).
			Msg("Block rejected")
		if c.rejectHandler != nil {
			c.rejectHandler(blk, err)
		}
		return ledger.State{}, err
	}

	stored := blk.Clone()
	c.blocks = append(c.blocks, stored)
	c.state = next

	c.logger.Info().
		Uint64("number", stored.Number()).
		Str("hash", stored.Hash.Short()).
		Int("txs", len(stored.Content.Transactions)).
		Msg("Block accepted")
	if c.blockHandler != nil {
		c.blockHandler(stored.Clone(), next)
	}
	return next, nil
}

// Propose seals txs into a block over the current tip and appends it.
// The block is returned only if it was accepted.
func (c *Chain) Propose(txs []tx.Transaction) (*block.Block, error) {
	blk, err := block.Make(c.validator.Hasher(), txs, c.tip())
	if err != nil {
		return nil, err
	}
	if _, err := c.Append(blk); err != nil {
		return nil, err
	}
	return blk, nil
}

// Verify replays the whole chain from genesis and checks that the result
// matches the current state.
func (c *Chain) Verify() (ledger.State, error) {
	state, err := c.validator.CheckChain(c.blocks)
	if err != nil {
		return ledger.State{}, err
	}
	if !state.Equal(c.state) {
		return ledger.State{}, fmt.Errorf("replayed state %s differs from chain state %s", state, c.state)
	}
	return state, nil
}

func (c *Chain) tip() *block.Block {
	return c.blocks[len(c.blocks)-1]
}

// Tip returns a copy of the last block.
func (c *Chain) Tip() *block.Block {
	return c.tip().Clone()
}

// TipHash returns the hash of the last block.
func (c *Chain) TipHash() types.Hash {
	return c.tip().Hash
}

// Height returns the block number of the tip.
func (c *Chain) Height() uint64 {
	return c.tip().Number()
}

// Len returns the number of blocks, genesis included.
func (c *Chain) Len() int {
	return len(c.blocks)
}

// State returns the state folded from every block. States are immutable,
// so the result stays valid after later appends.
func (c *Chain) State() ledger.State {
	return c.state
}

// Hasher returns the digest the chain is hashed with.
func (c *Chain) Hasher() crypto.Hasher {
	return c.validator.Hasher()
}

// Genesis returns a copy of block 0.
func (c *Chain) Genesis() *block.Block {
	return c.blocks[0].Clone()
}

// Blocks returns copies of every block in order.
func (c *Chain) Blocks() []*block.Block {
	out := make([]*block.Block, len(c.blocks))
	for i, b := range c.blocks {
		out[i] = b.Clone()
	}
	return out
}

// BlockByNumber returns a copy of the block with the given number.
func (c *Chain) BlockByNumber(n uint64) (*block.Block, error) {
	if n >= uint64(len(c.blocks)) {
		return nil, fmt.Errorf("%w: number %d, height %d", ErrBlockNotFound, n, c.Height())
	}
	return c.blocks[n].Clone(), nil
}

// MarshalJSON encodes the chain as a JSON array of blocks.
func (c *Chain) MarshalJSON() ([]byte, error) {
	return block.MarshalChain(c.blocks)
}

// WriteFile writes the chain as JSON.
func (c *Chain) WriteFile(path string) error {
	data, err := c.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode chain: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write chain file: %w", err)
	}
	return nil
}

// SetBlockHandler sets the callback for accepted blocks.
func (c *Chain) SetBlockHandler(fn BlockHandler) {
	c.blockHandler = fn
}

// SetRejectHandler sets the callback for rejected blocks.
func (c *Chain) SetRejectHandler(fn RejectHandler) {
	c.rejectHandler = fn
}
