package config

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

// Flags holds parsed command-line flags.
type Flags struct {
	// Commands
	Help bool

	// Files
	Config  string
	Chain   string
	Genesis string
	Txs     string
	Out     string

	// Block production
	SizeLimit int
	Hash      string

	// Mempool
	MempoolSize int
	MaxAccounts int
	Order       string

	// Logging
	LogLevel string
	LogFile  string
	LogJSON  bool

	// Remaining args
	Args []string

	// Explicitly-set bool flags (for true/false overrides).
	SetLogJSON bool
}

// ErrHelp is returned by ParseFlags when -h or --help was given.
var ErrHelp = flag.ErrHelp

// ParseFlags parses command-line flags. The flag package's own usage
// output is suppressed; callers print PrintUsage on error.
func ParseFlags(args []string) (*Flags, error) {
	f := &Flags{}
	fs := flag.NewFlagSet("ledger-cli", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.BoolVar(&f.Help, "help", false, "Show help message")
	fs.BoolVar(&f.Help, "h", false, "Show help message (shorthand)")

	fs.StringVar(&f.Config, "config", "", "Config file path")
	fs.StringVar(&f.Chain, "chain", "", "Chain JSON file")
	fs.StringVar(&f.Genesis, "genesis", "", "Genesis JSON file")
	fs.StringVar(&f.Txs, "txs", "", "JSON array of transactions")
	fs.StringVar(&f.Out, "out", "", "Output file (default stdout)")

	fs.IntVar(&f.SizeLimit, "block-size", 0, "Max transactions per block")
	fs.StringVar(&f.Hash, "hash", "", "Digest algorithm (sha256, blake3, sha3-256)")

	fs.IntVar(&f.MempoolSize, "mempool-size", 0, "Max pending transactions")
	fs.IntVar(&f.MaxAccounts, "max-accounts", 0, "Max accounts per transaction")
	fs.StringVar(&f.Order, "order", "", "Backlog drain order (fifo, lifo)")

	fs.StringVar(&f.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.LogFile, "log-file", "", "Log file path")
	fs.BoolVar(&f.LogJSON, "log-json", false, "Output logs as JSON")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if f.Help {
		return f, ErrHelp
	}

	f.SetLogJSON = isFlagSet(fs, "log-json")
	f.Args = fs.Args()

	// A positional argument stops the parser; anything flag-like after it
	// would be silently ignored.
	for _, arg := range f.Args {
		if strings.HasPrefix(arg, "-") {
			return nil, fmt.Errorf("flag %s appears after positional argument; place flags before arguments", arg)
		}
	}

	return f, nil
}

// ApplyFlags overrides config values with explicitly set flags.
func ApplyFlags(cfg *Config, f *Flags) {
	if f.Chain != "" {
		cfg.ChainFile = f.Chain
	}
	if f.Genesis != "" {
		cfg.GenesisFile = f.Genesis
	}

	if f.SizeLimit != 0 {
		cfg.Block.SizeLimit = f.SizeLimit
	}
	if f.Hash != "" {
		cfg.Block.HashAlgorithm = f.Hash
	}

	if f.MempoolSize != 0 {
		cfg.Mempool.MaxSize = f.MempoolSize
	}
	if f.MaxAccounts != 0 {
		cfg.Mempool.MaxAccounts = f.MaxAccounts
	}
	if f.Order != "" {
		cfg.Mempool.Order = strings.ToLower(f.Order)
	}

	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
	if f.LogFile != "" {
		cfg.Log.File = f.LogFile
	}
	if f.SetLogJSON {
		cfg.Log.JSON = f.LogJSON
	}
}

// isFlagSet checks if a flag was explicitly set.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// PrintUsage writes the command summary.
func PrintUsage(w io.Writer) {
	fmt.Fprint(w, `Usage: ledger-cli <command> [flags] [args]

Commands:
  build     Build a chain from a genesis allocation and a transaction batch
  verify    Verify a chain file
  propose   Batch transactions onto an existing chain
  inspect   Print the blocks of a chain
  state     Print the final balances of a chain
  config    Write a default config file

Files:
  --config <path>      Config file (key = value)
  --chain <path>       Chain JSON file
  --genesis <path>     Genesis JSON file
  --txs <path>         JSON array of transactions
  --out <path>         Output file (default stdout)

Block production:
  --block-size <n>     Max transactions per block (default 5)
  --hash <name>        Digest algorithm: sha256, blake3, sha3-256 (default sha256)

Mempool:
  --mempool-size <n>   Max pending transactions (default 5000)
  --max-accounts <n>   Max accounts per transaction (default 256)
  --order <fifo|lifo>  Backlog drain order (default fifo)

Logging:
  --log-level <lvl>    debug, info, warn, error, disabled (default info)
  --log-file <path>    Also write logs to a file
  --log-json           Output logs as JSON
`)
}
