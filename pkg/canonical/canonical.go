// Package canonical implements the byte-exact serialization that content
// hashes are computed over.
//
// The format is JSON with:
//   - object keys sorted by Unicode code point
//   - ", " between elements and ": " between a key and its value
//   - integers in plain decimal; floating point numbers are rejected
//   - strings escaped to pure ASCII (\uXXXX, surrogate pairs above U+FFFF)
//
// This matches Python's json.dumps(v, sort_keys=True) with default
// arguments, so digests agree with chains produced by that tooling.
package canonical

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf16"
)

// ErrUnsupported is returned for values that have no canonical form.
var ErrUnsupported = errors.New("value has no canonical encoding")

const hexDigits = "0123456789abcdef"

// Marshal returns the canonical encoding of v.
// v is first encoded with encoding/json, so struct tags and custom
// MarshalJSON methods decide the key set; canonical then fixes the layout.
func Marshal(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canonical: %w", err)
	}
	return Transform(raw)
}

// Transform re-encodes an arbitrary JSON document into canonical form.
func Transform(raw []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, fmt.Errorf("canonical: decode: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("canonical: trailing data after JSON value")
	}

	buf := make([]byte, 0, len(raw)+len(raw)/4)
	return appendValue(buf, generic)
}

func appendValue(buf []byte, v any) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return append(buf, "null"...), nil
	case bool:
		if val {
			return append(buf, "true"...), nil
		}
		return append(buf, "false"...), nil
	case json.Number:
		s := string(val)
		if strings.ContainsAny(s, ".eE") {
			return nil, fmt.Errorf("%w: non-integer number %s", ErrUnsupported, s)
		}
		return append(buf, s...), nil
	case string:
		return AppendString(buf, val), nil
	case []any:
		buf = append(buf, '[')
		for i, elem := range val {
			if i > 0 {
				buf = append(buf, ',', ' ')
			}
			var err error
			if buf, err = appendValue(buf, elem); err != nil {
				return nil, err
			}
		}
		return append(buf, ']'), nil
	case map[string]any:
		// Go string comparison is bytewise over UTF-8, which orders
		// by code point.
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		buf = append(buf, '{')
		for i, k := range keys {
			if i > 0 {
				buf = append(buf, ',', ' ')
			}
			buf = AppendString(buf, k)
			buf = append(buf, ':', ' ')
			var err error
			if buf, err = appendValue(buf, val[k]); err != nil {
				return nil, err
			}
		}
		return append(buf, '}'), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupported, v)
	}
}

// AppendString appends s as an ASCII-only JSON string literal.
func AppendString(buf []byte, s string) []byte {
	buf = append(buf, '"')
	for _, r := range s {
		switch {
		case r == '"':
			buf = append(buf, '\\', '"')
		case r == '\\':
			buf = append(buf, '\\', '\\')
		case r == '\n':
			buf = append(buf, '\\', 'n')
		case r == '\r':
			buf = append(buf, '\\', 'r')
		case r == '\t':
			buf = append(buf, '\\', 't')
		case r == '\b':
			buf = append(buf, '\\', 'b')
		case r == '\f':
			buf = append(buf, '\\', 'f')
		case r >= 0x20 && r < 0x7f:
			buf = append(buf, byte(r))
		case r > 0xffff:
			hi, lo := utf16.EncodeRune(r)
			buf = appendEscape(buf, hi)
			buf = appendEscape(buf, lo)
		default:
			buf = appendEscape(buf, r)
		}
	}
	return append(buf, '"')
}

func appendEscape(buf []byte, r rune) []byte {
	return append(buf, '\\', 'u',
		hexDigits[(r>>12)&0xf],
		hexDigits[(r>>8)&0xf],
		hexDigits[(r>>4)&0xf],
		hexDigits[r&0xf],
	)
}
