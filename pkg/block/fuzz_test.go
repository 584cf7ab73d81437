package block

import (
	"encoding/json"
	"testing"

	"github.com/Klingon-tech/klingnet-ledger/pkg/crypto"
)

// FuzzBlockUnmarshal tests that arbitrary JSON input does not panic
// when unmarshaled into a Block.
func FuzzBlockUnmarshal(f *testing.F) {
	f.Add([]byte(`{"hash":"9c90bae4f887042f5abd2989e9ffffcc722ff1c09d3d8f3154a55c78837af43f","content":{"blockNumber":0,"parentHash":null,"transactionCount":1,"transactions":[{"Alice":500,"Bob":500}]}}`))
	f.Add([]byte(`{}`))
	f.Add([]byte(`null`))
	f.Add([]byte(`{"hash":null,"content":null}`))
	f.Add([]byte(`{"hash":"","content":{"blockNumber":18446744073709551615,"parentHash":"","transactionCount":-1,"transactions":[]}}`))

	f.Fuzz(func(t *testing.T, data []byte) {
		var blk Block
		if err := json.Unmarshal(data, &blk); err != nil {
			return // Invalid input is expected.
		}
		// If unmarshal succeeded, the block is well formed and hashing must not panic.
		if err := blk.Validate(); err != nil {
			t.Errorf("decoded block fails Validate: %v", err)
		}
		blk.CheckHash(crypto.Hasher{})
		blk.Clone()
	})
}

// FuzzParseChain tests that arbitrary input does not panic the chain decoder.
func FuzzParseChain(f *testing.F) {
	f.Add([]byte(`[]`))
	f.Add([]byte(`[{}]`))
	f.Add([]byte(`{"a":1}`))

	f.Fuzz(func(t *testing.T, data []byte) {
		blocks, err := ParseChain(data)
		if err != nil {
			return
		}
		if len(blocks) == 0 {
			t.Error("ParseChain accepted an empty chain")
		}
		if _, err := MarshalChain(blocks); err != nil {
			t.Errorf("MarshalChain() of parsed chain: %v", err)
		}
	})
}
