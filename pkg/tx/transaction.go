// Package tx defines balance-transfer transactions.
package tx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/bits"
	"sort"

	"github.com/Klingon-tech/klingnet-ledger/pkg/crypto"
	"github.com/Klingon-tech/klingnet-ledger/pkg/types"
)

// Transaction maps account identifiers to signed balance deltas.
// A well-formed transaction is zero-sum; see Sum and ledger.State.Check.
type Transaction map[string]int64

// Accounts returns the touched accounts in sorted order.
func (t Transaction) Accounts() []string {
	accts := make([]string, 0, len(t))
	for a := range t {
		accts = append(accts, a)
	}
	sort.Strings(accts)
	return accts
}

// Sum returns the total of all deltas. Credits and debits are totalled
// separately, so the result does not depend on account order: ok is false
// only if either total exceeds 64 bits or the net does not fit in int64.
func (t Transaction) Sum() (sum int64, ok bool) {
	var credit, debit, carry uint64
	for _, d := range t {
		if d >= 0 {
			credit, carry = bits.Add64(credit, uint64(d), 0)
		} else {
			debit, carry = bits.Add64(debit, uint64(-(d+1))+1, 0)
		}
		if carry != 0 {
			return 0, false
		}
	}
	if credit >= debit {
		net := credit - debit
		if net > maxInt64 {
			return 0, false
		}
		return int64(net), true
	}
	net := debit - credit
	if net > -minInt64 {
		return 0, false
	}
	return -int64(net-1) - 1, true
}

// Clone returns an independent copy.
func (t Transaction) Clone() Transaction {
	out := make(Transaction, len(t))
	for a, d := range t {
		out[a] = d
	}
	return out
}

// Digest returns the content hash of the transaction.
func (t Transaction) Digest(h crypto.Hasher) (types.Hash, error) {
	return h.Digest(t)
}

// MarshalJSON encodes a nil transaction as {} rather than null so that
// every transaction in a block serializes as a mapping.
func (t Transaction) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]int64(t))
}

// UnmarshalJSON decodes a {account: integer} mapping and rejects values
// that are not integers.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return fmt.Errorf("%w: transaction is null", types.ErrMalformed)
	}
	var m map[string]int64
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("%w: transaction: %v", types.ErrMalformed, err)
	}
	*t = Transaction(m)
	return nil
}

// ParseBatch decodes a JSON array of transactions.
func ParseBatch(data []byte) ([]Transaction, error) {
	if !isJSONArray(data) {
		return nil, fmt.Errorf("%w: transaction batch must be a JSON array", types.ErrMalformed)
	}
	var txs []Transaction
	if err := json.Unmarshal(data, &txs); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrMalformed, err)
	}
	return txs, nil
}

func isJSONArray(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '['
}

const (
	maxInt64 = 1<<63 - 1
	minInt64 = -1 << 63
)
