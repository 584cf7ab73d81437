package mempool

import (
	"github.com/Klingon-tech/klingnet-ledger/config"
	"github.com/Klingon-tech/klingnet-ledger/pkg/tx"
)

// Policy defines transaction acceptance rules.
type Policy struct {
	MaxAccounts int // Maximum accounts one transaction may touch (0 = no limit).
}

// DefaultPolicy returns a policy with sensible defaults.
func DefaultPolicy() *Policy {
	return &Policy{
		MaxAccounts: config.DefaultMaxAccounts,
	}
}

// Check validates a transaction against policy rules.
// Zero-sum and overdraft are not policy: they depend on the state the
// transaction lands on and are checked by the block builder. A
// transaction touching no accounts passes.
func (p *Policy) Check(t tx.Transaction) error {
	return t.Validate(p.MaxAccounts)
}
