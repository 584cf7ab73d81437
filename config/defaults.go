package config

const (
	// DefaultBlockSizeLimit is the number of transactions batched into one block.
	DefaultBlockSizeLimit = 5

	// DefaultMempoolSize caps the number of pending transactions.
	DefaultMempoolSize = 5000

	// DefaultMaxAccounts caps the accounts one transaction may touch.
	DefaultMaxAccounts = 256

	// DefaultMempoolOrder drains the backlog oldest first.
	DefaultMempoolOrder = "fifo"

	// DefaultHashAlgorithm matches the format chains have always been written in.
	DefaultHashAlgorithm = "sha256"
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Block: BlockConfig{
			SizeLimit:     DefaultBlockSizeLimit,
			HashAlgorithm: DefaultHashAlgorithm,
		},
		Mempool: MempoolConfig{
			MaxSize:     DefaultMempoolSize,
			MaxAccounts: DefaultMaxAccounts,
			Order:       DefaultMempoolOrder,
		},
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
	}
}
