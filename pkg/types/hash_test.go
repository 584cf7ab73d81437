package types

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestHash_IsZero(t *testing.T) {
	var zero Hash
	if !zero.IsZero() {
		t.Error("zero-value Hash should be zero")
	}

	nonZero := Hash{0x01}
	if nonZero.IsZero() {
		t.Error("non-zero Hash should not be zero")
	}
}

func TestHash_String(t *testing.T) {
	var h Hash
	s := h.String()
	if len(s) != 64 {
		t.Errorf("String() length = %d, want 64", len(s))
	}
	if s != strings.Repeat("0", 64) {
		t.Errorf("zero hash String() = %s, want all zeros", s)
	}

	h[0] = 0xab
	h[31] = 0xcd
	s = h.String()
	if !strings.HasPrefix(s, "ab") {
		t.Errorf("String() should start with 'ab', got %s", s[:2])
	}
	if !strings.HasSuffix(s, "cd") {
		t.Errorf("String() should end with 'cd', got %s", s[62:])
	}
	if h.Short() != "ab000000" {
		t.Errorf("Short() = %s, want ab000000", h.Short())
	}
}

func TestHash_Bytes(t *testing.T) {
	h := Hash{0x01, 0x02, 0x03}
	b := h.Bytes()

	if len(b) != HashSize {
		t.Errorf("Bytes() length = %d, want %d", len(b), HashSize)
	}

	// Ensure it's a copy, not a reference
	b[0] = 0xFF
	if h[0] == 0xFF {
		t.Error("Bytes() should return a copy, not a reference")
	}
}

func TestHexToHash(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:  "valid 64 hex chars",
			input: "aed7b4dbe8e5b8fb54d8a1fa6cf7a9ba4709090e0f62d3369c3fee0e43da4565",
		},
		{
			name:  "all zeros",
			input: strings.Repeat("0", 64),
		},
		{
			name:    "too short",
			input:   "abcd",
			wantErr: true,
		},
		{
			name:    "too long",
			input:   strings.Repeat("a", 66),
			wantErr: true,
		},
		{
			name:    "uppercase",
			input:   strings.Repeat("A", 64),
			wantErr: true,
		},
		{
			name:    "not hex",
			input:   strings.Repeat("g", 64),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := HexToHash(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrBadHash) {
					t.Errorf("HexToHash(%q) error = %v, want ErrBadHash", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("HexToHash(%q) error: %v", tt.input, err)
			}
			if h.String() != tt.input {
				t.Errorf("round trip = %s, want %s", h, tt.input)
			}
		})
	}
}

func TestHash_JSON(t *testing.T) {
	h := Hash{0xde, 0xad, 0xbe, 0xef}
	data, err := json.Marshal(h)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if string(data) != `"`+h.String()+`"` {
		t.Errorf("Marshal() = %s", data)
	}

	var got Hash
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if got != h {
		t.Errorf("Unmarshal() = %s, want %s", got, h)
	}

	if err := json.Unmarshal([]byte(`123`), &got); !errors.Is(err, ErrBadHash) {
		t.Errorf("Unmarshal(number) error = %v, want ErrBadHash", err)
	}
}

func TestHash_JSONNullPointer(t *testing.T) {
	var parent *Hash
	if err := json.Unmarshal([]byte(`null`), &parent); err != nil {
		t.Fatalf("Unmarshal(null) error: %v", err)
	}
	if parent != nil {
		t.Error("null should decode to a nil *Hash")
	}
}

func TestEqualPtr(t *testing.T) {
	a := Hash{0x01}
	b := Hash{0x02}
	if !EqualPtr(nil, nil) {
		t.Error("nil, nil should be equal")
	}
	if EqualPtr(a.Ptr(), nil) || EqualPtr(nil, a.Ptr()) {
		t.Error("nil and non-nil should differ")
	}
	if !EqualPtr(a.Ptr(), a.Ptr()) {
		t.Error("same value should be equal")
	}
	if EqualPtr(a.Ptr(), b.Ptr()) {
		t.Error("different values should differ")
	}
}
