// Package config handles ledger configuration.
//
// Configuration is split into two categories:
//   - Genesis: the initial allocation and digest algorithm, fixed for the life of a chain
//   - Runtime settings: file paths, batching limits, logging
package config

import (
	"fmt"

	"github.com/Klingon-tech/klingnet-ledger/pkg/crypto"
)

// Config holds runtime configuration for the ledger tools.
type Config struct {
	// Files
	ChainFile   string `conf:"chain"`
	GenesisFile string `conf:"genesis"`

	// Block production
	Block BlockConfig

	// Pending transaction pool
	Mempool MempoolConfig

	// Logging
	Log LogConfig
}

// BlockConfig controls how proposed transactions are batched into blocks.
type BlockConfig struct {
	SizeLimit     int    `conf:"block.size_limit"` // Max transactions per block
	HashAlgorithm string `conf:"block.hash"`       // sha256, blake3 or sha3-256
}

// MempoolConfig bounds the pending transaction pool.
type MempoolConfig struct {
	MaxSize     int    `conf:"mempool.max_size"`
	MaxAccounts int    `conf:"mempool.max_accounts"` // Max accounts touched by one transaction
	Order       string `conf:"mempool.order"`        // fifo or lifo
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// Load builds a Config from defaults, an optional config file and
// command-line flags, in that order of precedence.
func Load(args []string) (*Config, *Flags, error) {
	flags, err := ParseFlags(args)
	if err != nil {
		return nil, nil, err
	}

	cfg := Default()

	if flags.Config != "" {
		values, err := LoadFile(flags.Config)
		if err != nil {
			return nil, nil, fmt.Errorf("load config file: %w", err)
		}
		if err := ApplyFileConfig(cfg, values); err != nil {
			return nil, nil, err
		}
	}

	ApplyFlags(cfg, flags)

	if err := Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	alg, _ := crypto.ParseAlgorithm(cfg.Block.HashAlgorithm)
	cfg.Block.HashAlgorithm = string(alg)
	return cfg, flags, nil
}
