// Package miner turns a backlog of pending transactions into blocks.
package miner

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Klingon-tech/klingnet-ledger/config"
	klog "github.com/Klingon-tech/klingnet-ledger/internal/log"
	"github.com/Klingon-tech/klingnet-ledger/pkg/block"
	"github.com/Klingon-tech/klingnet-ledger/pkg/crypto"
	"github.com/Klingon-tech/klingnet-ledger/pkg/ledger"
	"github.com/Klingon-tech/klingnet-ledger/pkg/tx"
)

// ChainState is the chain the miner builds on.
type ChainState interface {
	Tip() *block.Block
	State() ledger.State
	Hasher() crypto.Hasher
	Append(blk *block.Block) (ledger.State, error)
}

// Backlog yields pending transactions oldest first.
type Backlog interface {
	Pop() (tx.Transaction, bool)
	Count() int
}

// DropHandler is called for each transaction left out of a block because
// it does not validate against the running state.
type DropHandler func(t tx.Transaction, err error)

// Miner produces blocks of at most limit transactions.
type Miner struct {
	chain       ChainState
	pool        Backlog
	limit       int
	dropHandler DropHandler
	logger      zerolog.Logger
}

// New creates a block producer. A limit below 1 selects the default.
func New(chain ChainState, pool Backlog, limit int) *Miner {
	if limit < 1 {
		limit = config.DefaultBlockSizeLimit
	}
	return &Miner{
		chain:  chain,
		pool:   pool,
		limit:  limit,
		logger: klog.Miner,
	}
}

// SetDropHandler sets the callback for dropped transactions.
func (m *Miner) SetDropHandler(fn DropHandler) {
	m.dropHandler = fn
}

// Limit returns the per-block transaction limit.
func (m *Miner) Limit() int {
	return m.limit
}

// ProduceBlock takes transactions from the backlog until limit of them
// validate or the backlog runs out, and seals them over the chain tip.
// Each admitted transaction is applied to a running state, so later ones
// see its effect. Transactions that fail are dropped, not requeued. The
// block is NOT applied to the chain; the caller appends it.
func (m *Miner) ProduceBlock() (*block.Block, error) {
	running := m.chain.State()
	selected := make([]tx.Transaction, 0, m.limit)

	for len(selected) < m.limit {
		t, ok := m.pool.Pop()
		if !ok {
			break
		}
		if err := running.Check(t); err != nil {
			m.logger.Debug().Err(err).Interface("tx", t).Msg("Dropped transaction")
			if m.dropHandler != nil {
				m.dropHandler(t, err)
			}
			continue
		}
		running = running.Apply(t)
		selected = append(selected, t)
	}

	blk, err := block.Make(m.chain.Hasher(), selected, m.chain.Tip())
	if err != nil {
		return nil, fmt.Errorf("build block: %w", err)
	}
	return blk, nil
}

// Drain produces and appends blocks until the backlog is empty and
// returns them in order. A batch whose candidates all failed still yields
// an empty block. An empty backlog yields no blocks.
func (m *Miner) Drain() ([]*block.Block, error) {
	var produced []*block.Block
	for m.pool.Count() > 0 {
		blk, err := m.ProduceBlock()
		if err != nil {
			return produced, err
		}
		if _, err := m.chain.Append(blk); err != nil {
			return produced, fmt.Errorf("append block %d: %w", blk.Number(), err)
		}
		produced = append(produced, blk)
	}

	if len(produced) > 0 {
		m.logger.Info().
			Int("blocks", len(produced)).
			Uint64("tip", produced[len(produced)-1].Number()).
			Msg("Backlog drained")
	}
	return produced, nil
}
