package config

import (
	"fmt"

	"github.com/Klingon-tech/klingnet-ledger/internal/log"
	"github.com/Klingon-tech/klingnet-ledger/pkg/crypto"
)

// Validate checks runtime config for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.Block.SizeLimit < 1 {
		return fmt.Errorf("block.size_limit must be at least 1")
	}
	if _, err := crypto.ParseAlgorithm(cfg.Block.HashAlgorithm); err != nil {
		return fmt.Errorf("block.hash: %w", err)
	}
	if cfg.Mempool.MaxSize < 1 {
		return fmt.Errorf("mempool.max_size must be at least 1")
	}
	if cfg.Mempool.MaxAccounts < 1 {
		return fmt.Errorf("mempool.max_accounts must be at least 1")
	}
	switch cfg.Mempool.Order {
	case "fifo", "lifo":
	default:
		return fmt.Errorf("mempool.order %q must be fifo or lifo", cfg.Mempool.Order)
	}
	if !log.ValidLevel(cfg.Log.Level) {
		return fmt.Errorf("log.level %q is not a known level", cfg.Log.Level)
	}
	return nil
}
