package types

import "errors"

// ErrMalformed marks input that is missing required fields or has the
// wrong shape. Decoders in every package wrap it.
var ErrMalformed = errors.New("malformed input")
