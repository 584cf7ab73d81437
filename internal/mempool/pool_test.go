package mempool

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Klingon-tech/klingnet-ledger/config"
	"github.com/Klingon-tech/klingnet-ledger/pkg/tx"
	"github.com/google/go-cmp/cmp"
)

func TestPool_FIFO(t *testing.T) {
	p := New(10)
	for i := 1; i <= 3; i++ {
		if err := p.Add(tx.Transaction{"Alice": int64(-i), "Bob": int64(i)}); err != nil {
			t.Fatalf("Add(%d): %v", i, err)
		}
	}
	if p.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", p.Count())
	}

	for i := 1; i <= 3; i++ {
		got, ok := p.Pop()
		if !ok {
			t.Fatalf("Pop() %d: empty", i)
		}
		if got["Bob"] != int64(i) {
			t.Errorf("Pop() %d = %v, want Bob %d", i, got, i)
		}
	}
	if _, ok := p.Pop(); ok {
		t.Error("Pop() on empty pool should report false")
	}
}

func TestPool_AdmitsUnfundedAndUnbalanced(t *testing.T) {
	// Balance rules depend on the state at block-building time.
	p := New(10)
	for _, txn := range []tx.Transaction{
		{"Alice": -1_000_000, "Bob": 1_000_000},
		{"Alice": -1, "Bob": 2},
	} {
		if err := p.Add(txn); err != nil {
			t.Errorf("Add(%v) = %v, want nil", txn, err)
		}
	}
}

func TestPool_Full(t *testing.T) {
	p := New(2)
	txn := tx.Transaction{"Alice": -1, "Bob": 1}
	if err := p.Add(txn); err != nil {
		t.Fatal(err)
	}
	if err := p.Add(txn); err != nil {
		t.Fatalf("duplicate transfer should be admitted: %v", err)
	}
	if err := p.Add(txn); !errors.Is(err, ErrPoolFull) {
		t.Errorf("Add() = %v, want ErrPoolFull", err)
	}
}

func TestPool_PolicyRejects(t *testing.T) {
	p := New(10)
	p.SetPolicy(&Policy{MaxAccounts: 2})

	err := p.Add(tx.Transaction{"A": -2, "B": 1, "C": 1})
	if !errors.Is(err, ErrValidation) || !errors.Is(err, tx.ErrTooMany) {
		t.Errorf("Add() = %v, want ErrValidation and ErrTooMany", err)
	}
	if p.Count() != 0 {
		t.Errorf("Count() = %d, rejected transactions must not be queued", p.Count())
	}
}

func TestPool_AdmitsEmptyShapes(t *testing.T) {
	// Zero-sum with nothing to overdraw: valid against any state.
	p := New(10)
	p.SetPolicy(&Policy{MaxAccounts: 1})
	for _, txn := range []tx.Transaction{{}, {"": 0}} {
		if err := p.Add(txn); err != nil {
			t.Errorf("Add(%v) = %v, want nil", txn, err)
		}
	}
	if p.Count() != 2 {
		t.Errorf("Count() = %d, want 2", p.Count())
	}
}

func TestPool_StoresCopies(t *testing.T) {
	p := New(10)
	txn := tx.Transaction{"Alice": -5, "Bob": 5}
	if err := p.Add(txn); err != nil {
		t.Fatal(err)
	}
	txn["Bob"] = 500

	pending := p.Pending()
	pending[0]["Alice"] = 0

	got, _ := p.Pop()
	if diff := cmp.Diff(tx.Transaction{"Alice": -5, "Bob": 5}, got); diff != "" {
		t.Errorf("pooled transaction changed (-want +got):\n%s", diff)
	}
}

func TestPool_AddBatch_Full(t *testing.T) {
	p := New(3)
	batch := make([]tx.Transaction, 5)
	for i := range batch {
		batch[i] = tx.Transaction{"Alice": -1, fmt.Sprintf("acct-%d", i): 1}
	}

	n, err := p.AddBatch(batch)
	if !errors.Is(err, ErrPoolFull) {
		t.Fatalf("AddBatch() = %v, want ErrPoolFull", err)
	}
	if n != 3 {
		t.Errorf("AddBatch() queued %d, want 3", n)
	}
}

func TestPool_AddBatch_SkipsRejected(t *testing.T) {
	p := New(10)
	p.SetPolicy(&Policy{MaxAccounts: 2})
	var rejected []tx.Transaction
	var errs []error
	p.SetRejectHandler(func(txn tx.Transaction, err error) {
		rejected = append(rejected, txn)
		errs = append(errs, err)
	})

	batch := []tx.Transaction{
		{"Alice": -1, "Bob": 1},
		{},
		{"A": -2, "B": 1, "C": 1},
		{"Alice": -2, "Bob": 2},
	}
	n, err := p.AddBatch(batch)
	if err != nil {
		t.Fatalf("AddBatch() error: %v", err)
	}
	if n != 3 {
		t.Errorf("AddBatch() queued %d, want 3", n)
	}
	if diff := cmp.Diff([]tx.Transaction{batch[2]}, rejected); diff != "" {
		t.Errorf("rejected mismatch (-want +got):\n%s", diff)
	}
	for _, err := range errs {
		if !errors.Is(err, tx.ErrTooMany) {
			t.Errorf("reject error = %v, want ErrTooMany", err)
		}
	}
	if diff := cmp.Diff([]tx.Transaction{batch[0], batch[1], batch[3]}, p.Pending()); diff != "" {
		t.Errorf("pending mismatch (-want +got):\n%s", diff)
	}
}

func TestPool_LIFO(t *testing.T) {
	p := New(10)
	p.SetOrder(LIFO)
	if _, err := p.AddBatch([]tx.Transaction{{"Bob": 1}, {"Bob": 2}, {"Bob": 3}}); err != nil {
		t.Fatal(err)
	}
	for _, want := range []int64{3, 2, 1} {
		got, ok := p.Pop()
		if !ok || got["Bob"] != want {
			t.Errorf("Pop() = %v, %v, want Bob %d", got, ok, want)
		}
	}
}

func TestPool_SetOrder_UnknownIsFIFO(t *testing.T) {
	p := New(10)
	p.SetOrder(Order("random"))
	_, _ = p.AddBatch([]tx.Transaction{{"Bob": 1}, {"Bob": 2}})
	if got, _ := p.Pop(); got["Bob"] != 1 {
		t.Errorf("Pop() = %v, want the oldest", got)
	}
}

func TestPool_Clear(t *testing.T) {
	p := New(10)
	_, _ = p.AddBatch([]tx.Transaction{{"A": -1, "B": 1}, {"B": -1, "A": 1}})
	if n := p.Clear(); n != 2 {
		t.Errorf("Clear() = %d, want 2", n)
	}
	if p.Count() != 0 {
		t.Errorf("Count() = %d after Clear", p.Count())
	}
}

func TestNewFromConfig(t *testing.T) {
	p := NewFromConfig(config.MempoolConfig{MaxSize: 1, MaxAccounts: 1})
	if err := p.Add(tx.Transaction{"A": -1, "B": 1}); !errors.Is(err, tx.ErrTooMany) {
		t.Errorf("Add() = %v, want ErrTooMany", err)
	}
	if err := p.Add(tx.Transaction{"A": 0}); err != nil {
		t.Fatalf("Add() = %v", err)
	}
	if err := p.Add(tx.Transaction{"A": 0}); !errors.Is(err, ErrPoolFull) {
		t.Errorf("Add() = %v, want ErrPoolFull", err)
	}
}

func TestNewFromConfig_Order(t *testing.T) {
	p := NewFromConfig(config.MempoolConfig{MaxSize: 10, MaxAccounts: 4, Order: "lifo"})
	if p.order != LIFO {
		t.Errorf("order = %q, want lifo", p.order)
	}
	p = NewFromConfig(config.MempoolConfig{MaxSize: 10, MaxAccounts: 4})
	if p.order != FIFO {
		t.Errorf("order = %q, want fifo", p.order)
	}
}

func TestNew_DefaultSize(t *testing.T) {
	p := New(0)
	if p.maxSize != config.DefaultMempoolSize {
		t.Errorf("maxSize = %d, want %d", p.maxSize, config.DefaultMempoolSize)
	}
}
