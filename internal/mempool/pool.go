// Package mempool manages pending transactions waiting for block inclusion.
package mempool

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Klingon-tech/klingnet-ledger/config"
	"github.com/Klingon-tech/klingnet-ledger/pkg/tx"
)

// Mempool errors.
var (
	ErrPoolFull   = errors.New("mempool is full")
	ErrValidation = errors.New("transaction failed validation")
)

// Order selects which end of the backlog Pop takes from.
type Order string

// Backlog orders.
const (
	FIFO Order = "fifo" // Oldest first.
	LIFO Order = "lifo" // Newest first.
)

// RejectHandler is called for each transaction AddBatch skips.
type RejectHandler func(t tx.Transaction, err error)

// Pool holds pending transactions in arrival order. Admission checks only
// the operator policy; balances are checked when a block is built,
// against the state at that point.
type Pool struct {
	mu       sync.Mutex
	txs      []tx.Transaction
	maxSize  int
	policy   *Policy
	order    Order
	onReject RejectHandler
}

// New creates a new mempool with the given max size.
func New(maxSize int) *Pool {
	if maxSize <= 0 {
		maxSize = config.DefaultMempoolSize
	}
	return &Pool{
		maxSize: maxSize,
		policy:  DefaultPolicy(),
		order:   FIFO,
	}
}

// NewFromConfig creates a mempool sized, policed and ordered by cfg.
func NewFromConfig(cfg config.MempoolConfig) *Pool {
	p := New(cfg.MaxSize)
	p.policy = &Policy{MaxAccounts: cfg.MaxAccounts}
	if cfg.Order == string(LIFO) {
		p.order = LIFO
	}
	return p
}

// SetOrder selects the drain order. Unknown values select FIFO.
func (p *Pool) SetOrder(o Order) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if o != LIFO {
		o = FIFO
	}
	p.order = o
}

// SetRejectHandler sets the callback for transactions AddBatch skips.
func (p *Pool) SetRejectHandler(fn RejectHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onReject = fn
}

// SetPolicy replaces the admission policy.
func (p *Pool) SetPolicy(policy *Policy) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.policy = policy
}

// Add validates a transaction against policy and queues a copy of it.
// Identical transactions are distinct transfers and may be queued twice.
func (p *Pool) Add(t tx.Transaction) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.policy != nil {
		if err := p.policy.Check(t); err != nil {
			return fmt.Errorf("%w: %w", ErrValidation, err)
		}
	}
	if len(p.txs) >= p.maxSize {
		return fmt.Errorf("%w: %d pending", ErrPoolFull, len(p.txs))
	}

	p.txs = append(p.txs, t.Clone())
	return nil
}

// AddBatch queues every transaction in order and returns how many were
// queued. Policy rejections are skipped and reported to the reject
// handler; a full pool stops the batch with ErrPoolFull.
func (p *Pool) AddBatch(txs []tx.Transaction) (int, error) {
	p.mu.Lock()
	onReject := p.onReject
	p.mu.Unlock()

	queued := 0
	for i, t := range txs {
		err := p.Add(t)
		switch {
		case err == nil:
			queued++
		case errors.Is(err, ErrValidation):
			if onReject != nil {
				onReject(t, err)
			}
		default:
			return queued, fmt.Errorf("tx %d: %w", i, err)
		}
	}
	return queued, nil
}

// Pop removes and returns the next pending transaction: the oldest under
// FIFO, the newest under LIFO.
func (p *Pool) Pop() (tx.Transaction, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := len(p.txs)
	if n == 0 {
		return nil, false
	}
	if p.order == LIFO {
		t := p.txs[n-1]
		p.txs[n-1] = nil
		p.txs = p.txs[:n-1]
		return t, true
	}
	t := p.txs[0]
	p.txs[0] = nil
	p.txs = p.txs[1:]
	return t, true
}

// Count returns the number of pending transactions.
func (p *Pool) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.txs)
}

// Pending returns copies of the pending transactions, oldest first.
func (p *Pool) Pending() []tx.Transaction {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]tx.Transaction, len(p.txs))
	for i, t := range p.txs {
		out[i] = t.Clone()
	}
	return out
}

// Clear drops every pending transaction and returns how many there were.
func (p *Pool) Clear() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := len(p.txs)
	p.txs = nil
	return n
}
