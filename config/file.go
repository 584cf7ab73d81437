package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LoadFile loads configuration from a .conf file.
// Format: key = value (one per line, # for comments)
func LoadFile(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("line %d: invalid format (expected key = value)", lineNum)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present
		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') ||
				(value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}

		values[key] = value
	}

	return values, scanner.Err()
}

// ApplyFileConfig applies file configuration to a Config struct.
func ApplyFileConfig(cfg *Config, values map[string]string) error {
	for key, value := range values {
		if err := setConfigValue(cfg, key, value); err != nil {
			return fmt.Errorf("config key %q: %w", key, err)
		}
	}
	return nil
}

func setConfigValue(cfg *Config, key, value string) error {
	switch key {
	// Files
	case "chain":
		cfg.ChainFile = value
	case "genesis":
		cfg.GenesisFile = value

	// Block production
	case "block.size_limit":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.Block.SizeLimit = n
	case "block.hash":
		cfg.Block.HashAlgorithm = value

	// Mempool
	case "mempool.max_size":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.Mempool.MaxSize = n
	case "mempool.max_accounts":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.Mempool.MaxAccounts = n
	case "mempool.order":
		cfg.Mempool.Order = strings.ToLower(value)

	// Logging
	case "log.level":
		cfg.Log.Level = value
	case "log.file":
		cfg.Log.File = value
	case "log.json":
		cfg.Log.JSON = parseBool(value)

	default:
		// Unknown keys are ignored
	}
	return nil
}

func parseBool(s string) bool {
	s = strings.ToLower(s)
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

// WriteDefaultConfig writes a default configuration file.
func WriteDefaultConfig(path string) error {
	content := `# Ledger Configuration

# Chain file read by verify, propose, inspect and state
# chain = chain.json

# Genesis allocation (default: Alice 500, Bob 500)
# genesis = genesis.json

# ============================================================================
# Block Production
# ============================================================================

block.size_limit = ` + strconv.Itoa(DefaultBlockSizeLimit) + `

# Digest algorithm: sha256, blake3 or sha3-256
block.hash = ` + DefaultHashAlgorithm + `

# ============================================================================
# Mempool
# ============================================================================

mempool.max_size = ` + strconv.Itoa(DefaultMempoolSize) + `
mempool.max_accounts = ` + strconv.Itoa(DefaultMaxAccounts) + `

# Backlog drain order: fifo (oldest first) or lifo (newest first)
mempool.order = ` + DefaultMempoolOrder + `

# ============================================================================
# Logging
# ============================================================================

log.level = info
# log.file =
log.json = false
`
	return os.WriteFile(path, []byte(content), 0644)
}
