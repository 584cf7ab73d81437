package chain

import "github.com/Klingon-tech/klingnet-ledger/pkg/types"

// Status summarizes the chain tip.
type Status struct {
	Height   uint64     `json:"height"`
	TipHash  types.Hash `json:"tipHash"`
	Blocks   int        `json:"blocks"`
	Accounts int        `json:"accounts"`
	Supply   int64      `json:"supply"` // Sum of all balances; fixed by genesis.
}

// Status returns a summary of the current tip and state.
func (c *Chain) Status() Status {
	return Status{
		Height:   c.Height(),
		TipHash:  c.TipHash(),
		Blocks:   c.Len(),
		Accounts: c.state.Len(),
		Supply:   c.state.Supply(),
	}
}
