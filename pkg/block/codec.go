package block

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/Klingon-tech/klingnet-ledger/pkg/tx"
	"github.com/Klingon-tech/klingnet-ledger/pkg/types"
)

// Exact key sets of the serialized forms.
var (
	blockKeys   = []string{"content", "hash"}
	contentKeys = []string{"blockNumber", "parentHash", "transactionCount", "transactions"}
)

// UnmarshalJSON decodes a block strictly: the key sets of the block and
// its content must match exactly, every field must have the right type,
// and transactionCount must equal the number of transactions.
func (b *Block) UnmarshalJSON(data []byte) error {
	fields, err := decodeObject(data, "block", blockKeys)
	if err != nil {
		return err
	}

	var hash types.Hash
	if err := json.Unmarshal(fields["hash"], &hash); err != nil {
		return fmt.Errorf("%w: hash: %v", types.ErrMalformed, err)
	}

	var content Content
	if err := content.decode(fields["content"]); err != nil {
		return err
	}

	b.Hash = hash
	b.Content = content
	return nil
}

func (c *Content) decode(data []byte) error {
	fields, err := decodeObject(data, "content", contentKeys)
	if err != nil {
		return err
	}

	var out Content
	if err := json.Unmarshal(fields["blockNumber"], &out.BlockNumber); err != nil {
		return fmt.Errorf("%w: blockNumber: %v", types.ErrMalformed, err)
	}

	if !isNull(fields["parentHash"]) {
		var parent types.Hash
		if err := json.Unmarshal(fields["parentHash"], &parent); err != nil {
			return fmt.Errorf("%w: parentHash: %v", types.ErrMalformed, err)
		}
		out.ParentHash = &parent
	}

	if err := json.Unmarshal(fields["transactionCount"], &out.TransactionCount); err != nil {
		return fmt.Errorf("%w: transactionCount: %v", types.ErrMalformed, err)
	}

	raw := fields["transactions"]
	if !isArray(raw) {
		return fmt.Errorf("%w: transactions must be a list", types.ErrMalformed)
	}
	var txs []tx.Transaction
	if err := json.Unmarshal(raw, &txs); err != nil {
		return fmt.Errorf("%w: transactions: %v", types.ErrMalformed, err)
	}
	if txs == nil {
		txs = []tx.Transaction{}
	}
	out.Transactions = txs

	if err := out.Validate(); err != nil {
		return fmt.Errorf("block %d: %w", out.BlockNumber, err)
	}
	*c = out
	return nil
}

// ParseChain decodes a serialized chain: a non-empty JSON array of blocks.
func ParseChain(data []byte) ([]*Block, error) {
	if !isArray(data) {
		return nil, fmt.Errorf("%w: chain must be a JSON array of blocks", types.ErrMalformed)
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: chain: %v", types.ErrMalformed, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: chain has no blocks", types.ErrMalformed)
	}

	blocks := make([]*Block, len(raw))
	for i, r := range raw {
		var b Block
		if err := b.UnmarshalJSON(r); err != nil {
			return nil, fmt.Errorf("block at index %d: %w", i, err)
		}
		blocks[i] = &b
	}
	return blocks, nil
}

// MarshalChain encodes blocks as a JSON array, indented for humans.
func MarshalChain(blocks []*Block) ([]byte, error) {
	if blocks == nil {
		blocks = []*Block{}
	}
	return json.MarshalIndent(blocks, "", "  ")
}

func decodeObject(data []byte, what string, keys []string) (map[string]json.RawMessage, error) {
	if !isObject(data) {
		return nil, fmt.Errorf("%w: %s must be a JSON object", types.ErrMalformed, what)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrMalformed, what, err)
	}

	var missing, extra []string
	for _, k := range keys {
		if _, ok := fields[k]; !ok {
			missing = append(missing, k)
		}
	}
	for k := range fields {
		if !contains(keys, k) {
			extra = append(extra, k)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s missing %s", types.ErrMalformed, what, strings.Join(missing, ", "))
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		return nil, fmt.Errorf("%w: %s has unexpected %s", types.ErrMalformed, what, strings.Join(extra, ", "))
	}
	return fields, nil
}

func contains(keys []string, k string) bool {
	for _, want := range keys {
		if want == k {
			return true
		}
	}
	return false
}

func firstByte(data []byte) byte {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}

func isArray(data []byte) bool  { return firstByte(data) == '[' }
func isObject(data []byte) bool { return firstByte(data) == '{' }
func isNull(data []byte) bool   { return bytes.Equal(bytes.TrimSpace(data), []byte("null")) }
