package block

import (
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/Klingon-tech/klingnet-ledger/pkg/crypto"
	"github.com/Klingon-tech/klingnet-ledger/pkg/tx"
	"github.com/Klingon-tech/klingnet-ledger/pkg/types"
	"github.com/google/go-cmp/cmp"
)

func readReference(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/reference_chain.json")
	if err != nil {
		t.Fatalf("read testdata: %v", err)
	}
	return data
}

func TestParseChain_Reference(t *testing.T) {
	blocks, err := ParseChain(readReference(t))
	if err != nil {
		t.Fatalf("ParseChain() error: %v", err)
	}
	if len(blocks) != 3 {
		t.Fatalf("got %d blocks, want 3", len(blocks))
	}

	wantHashes := []string{genesisHashHex, block1HashHex, block2HashHex}
	for i, b := range blocks {
		if b.Hash.String() != wantHashes[i] {
			t.Errorf("block %d hash = %s, want %s", i, b.Hash, wantHashes[i])
		}
		if err := b.CheckHash(crypto.Hasher{}); err != nil {
			t.Errorf("block %d: %v", i, err)
		}
	}

	if !blocks[0].IsGenesis() {
		t.Error("first block should have a null parent")
	}
	if blocks[2].Content.Transactions == nil {
		t.Error("empty transaction list should decode as a non-nil slice")
	}
}

func TestMarshalChain_RoundTrip(t *testing.T) {
	g := testGenesis(t)
	b1, err := Make(crypto.Hasher{}, []tx.Transaction{{"Alice": -50, "Bob": 50}}, g)
	if err != nil {
		t.Fatal(err)
	}
	b2, err := Make(crypto.Hasher{}, nil, b1)
	if err != nil {
		t.Fatal(err)
	}

	data, err := MarshalChain([]*Block{g, b1, b2})
	if err != nil {
		t.Fatalf("MarshalChain() error: %v", err)
	}
	if !strings.Contains(string(data), `"parentHash": null`) {
		t.Error("genesis parentHash should serialize as null")
	}
	if !strings.Contains(string(data), `"transactions": []`) {
		t.Error("empty block should serialize transactions as []")
	}

	got, err := ParseChain(data)
	if err != nil {
		t.Fatalf("ParseChain() error: %v", err)
	}
	want := []*Block{g, b1, b2}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestParseChain_Malformed(t *testing.T) {
	const h = `"9c90bae4f887042f5abd2989e9ffffcc722ff1c09d3d8f3154a55c78837af43f"`
	const goodContent = `{"blockNumber": 0, "parentHash": null, "transactionCount": 1, "transactions": [{"Alice": 500}]}`

	tests := []struct {
		name  string
		input string
	}{
		{"not a list", `{"hash": ` + h + `, "content": ` + goodContent + `}`},
		{"string", `"chain"`},
		{"empty input", ``},
		{"invalid json", `[{`},
		{"empty list", `[]`},
		{"block not object", `[1]`},
		{"missing hash", `[{"content": ` + goodContent + `}]`},
		{"missing content", `[{"hash": ` + h + `}]`},
		{"extra block key", `[{"hash": ` + h + `, "content": ` + goodContent + `, "nonce": 1}]`},
		{"bad hash", `[{"hash": "xyz", "content": ` + goodContent + `}]`},
		{"hash not string", `[{"hash": 5, "content": ` + goodContent + `}]`},
		{"missing blockNumber", `[{"hash": ` + h + `, "content": {"parentHash": null, "transactionCount": 0, "transactions": []}}]`},
		{"extra content key", `[{"hash": ` + h + `, "content": {"blockNumber": 0, "parentHash": null, "transactionCount": 0, "transactions": [], "x": 1}}]`},
		{"negative blockNumber", `[{"hash": ` + h + `, "content": {"blockNumber": -1, "parentHash": null, "transactionCount": 0, "transactions": []}}]`},
		{"fractional blockNumber", `[{"hash": ` + h + `, "content": {"blockNumber": 1.5, "parentHash": null, "transactionCount": 0, "transactions": []}}]`},
		{"transactions not list", `[{"hash": ` + h + `, "content": {"blockNumber": 0, "parentHash": null, "transactionCount": 0, "transactions": {}}}]`},
		{"transactions null", `[{"hash": ` + h + `, "content": {"blockNumber": 0, "parentHash": null, "transactionCount": 0, "transactions": null}}]`},
		{"transaction not mapping", `[{"hash": ` + h + `, "content": {"blockNumber": 0, "parentHash": null, "transactionCount": 1, "transactions": [[1]]}}]`},
		{"float amount", `[{"hash": ` + h + `, "content": {"blockNumber": 0, "parentHash": null, "transactionCount": 1, "transactions": [{"Alice": 0.5}]}}]`},
		{"count mismatch", `[{"hash": ` + h + `, "content": {"blockNumber": 0, "parentHash": null, "transactionCount": 2, "transactions": [{"Alice": 1}]}}]`},
		{"parent not hex", `[{"hash": ` + h + `, "content": {"blockNumber": 1, "parentHash": "abc", "transactionCount": 0, "transactions": []}}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseChain([]byte(tt.input))
			if !errors.Is(err, types.ErrMalformed) {
				t.Errorf("expected ErrMalformed, got: %v", err)
			}
		})
	}
}

func TestParseChain_ReportsIndex(t *testing.T) {
	data := readReference(t)
	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	delete(raw[1], "hash")
	broken, err := json.Marshal(raw)
	if err != nil {
		t.Fatal(err)
	}
	_, err = ParseChain(broken)
	if err == nil || !strings.Contains(err.Error(), "index 1") {
		t.Errorf("error should name the offending block index, got: %v", err)
	}
}

func TestBlock_UnmarshalJSON_Strict(t *testing.T) {
	var b Block
	err := json.Unmarshal([]byte(`{"hash": "9c90bae4f887042f5abd2989e9ffffcc722ff1c09d3d8f3154a55c78837af43f"}`), &b)
	if !errors.Is(err, types.ErrMalformed) {
		t.Errorf("expected ErrMalformed, got: %v", err)
	}
}
