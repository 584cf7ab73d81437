// Package ledger implements the account-balance state and its transition
// rules.
//
// A State is an immutable snapshot. Apply returns a new snapshot and never
// modifies the receiver, so a caller holding an older State observes no
// change when the ledger advances.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/Klingon-tech/klingnet-ledger/pkg/tx"
)

// Transaction validation errors. ErrUnbalanced, ErrOverdraft and
// ErrOverflow all match ErrInvalidTransaction with errors.Is.
var (
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrUnbalanced         = fmt.Errorf("%w: deltas do not sum to zero", ErrInvalidTransaction)
	ErrOverdraft          = fmt.Errorf("%w: balance would go negative", ErrInvalidTransaction)
	ErrOverflow           = fmt.Errorf("%w: balance overflows", ErrInvalidTransaction)
)

// State maps account identifiers to balances. Accounts without an entry
// have balance 0. The zero value is the empty state.
type State struct {
	balances map[string]int64
}

// New returns a state holding a copy of the given balances.
func New(balances map[string]int64) State {
	m := make(map[string]int64, len(balances))
	for a, b := range balances {
		m[a] = b
	}
	return State{balances: m}
}

// Balance returns the balance of an account (0 if absent).
func (s State) Balance(account string) int64 {
	return s.balances[account]
}

// Has reports whether the account has an entry.
func (s State) Has(account string) bool {
	_, ok := s.balances[account]
	return ok
}

// Len returns the number of accounts with an entry.
func (s State) Len() int {
	return len(s.balances)
}

// Accounts returns all accounts with an entry, sorted.
func (s State) Accounts() []string {
	accts := make([]string, 0, len(s.balances))
	for a := range s.balances {
		accts = append(accts, a)
	}
	sort.Strings(accts)
	return accts
}

// Balances returns a copy of the balance map.
func (s State) Balances() map[string]int64 {
	m := make(map[string]int64, len(s.balances))
	for a, b := range s.balances {
		m[a] = b
	}
	return m
}

// Supply returns the sum of all balances. Valid transactions are
// zero-sum, so supply is fixed after genesis.
func (s State) Supply() int64 {
	var total int64
	for _, b := range s.balances {
		total += b
	}
	return total
}

// Equal reports whether two states hold the same entries.
func (s State) Equal(o State) bool {
	if len(s.balances) != len(o.balances) {
		return false
	}
	for a, b := range s.balances {
		ob, ok := o.balances[a]
		if !ok || ob != b {
			return false
		}
	}
	return true
}

// Check returns nil if t may be applied to s: the deltas sum to zero and
// no touched account ends below zero. The result does not depend on the
// order accounts are visited in.
func (s State) Check(t tx.Transaction) error {
	sum, ok := t.Sum()
	if !ok {
		return fmt.Errorf("%w: delta sum", ErrOverflow)
	}
	if sum != 0 {
		return fmt.Errorf("%w: sum is %d", ErrUnbalanced, sum)
	}
	for _, a := range t.Accounts() {
		next, ok := add(s.balances[a], t[a])
		if !ok {
			return fmt.Errorf("%w: account %q", ErrOverflow, a)
		}
		if next < 0 {
			return fmt.Errorf("%w: account %q has %d, delta %d", ErrOverdraft, a, s.balances[a], t[a])
		}
	}
	return nil
}

// IsValid reports whether Check(t) passes.
func (s State) IsValid(t tx.Transaction) bool {
	return s.Check(t) == nil
}

// Apply returns the state after adding every delta in t. Untouched
// accounts carry over. The result is unspecified for transactions that
// fail Check; callers gate with Check first.
func (s State) Apply(t tx.Transaction) State {
	m := make(map[string]int64, len(s.balances)+len(t))
	for a, b := range s.balances {
		m[a] = b
	}
	for a, d := range t {
		m[a] += d
	}
	return State{balances: m}
}

// Fold checks and applies each transaction in order against the running
// state. It stops at the first failure and reports its index; the
// returned State is meaningful only when err is nil.
func (s State) Fold(txs []tx.Transaction) (State, int, error) {
	cur := s
	for i, t := range txs {
		if err := cur.Check(t); err != nil {
			return State{}, i, err
		}
		cur = cur.Apply(t)
	}
	return cur, -1, nil
}

// ApplyAll applies every transaction without checking it. Used for the
// genesis allocation, which is not a zero-sum transfer.
func (s State) ApplyAll(txs []tx.Transaction) State {
	cur := s
	for _, t := range txs {
		cur = cur.Apply(t)
	}
	return cur
}

// MarshalJSON encodes the state as an {account: balance} object.
func (s State) MarshalJSON() ([]byte, error) {
	if s.balances == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s.balances)
}

// String renders the state for log lines.
func (s State) String() string {
	data, err := s.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<state: %v>", err)
	}
	return string(data)
}

func add(a, b int64) (int64, bool) {
	c := a + b
	if (b > 0 && c < a) || (b < 0 && c > a) {
		return 0, false
	}
	return c, true
}
