package tx

import (
	"errors"
	"fmt"
)

// ErrTooMany is returned when a transaction exceeds the configured account
// limit. Empty transactions and the empty account identifier are valid:
// both are zero-sum and neither can overdraw.
var ErrTooMany = errors.New("transaction touches too many accounts")

// Validate checks transaction structure against an operator limit.
// maxAccounts <= 0 disables the limit.
func (t Transaction) Validate(maxAccounts int) error {
	if maxAccounts > 0 && len(t) > maxAccounts {
		return fmt.Errorf("%w: %d accounts, max %d", ErrTooMany, len(t), maxAccounts)
	}
	return nil
}
