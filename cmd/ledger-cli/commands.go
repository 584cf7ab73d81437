package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/Klingon-tech/klingnet-ledger/config"
	"github.com/Klingon-tech/klingnet-ledger/internal/chain"
	klog "github.com/Klingon-tech/klingnet-ledger/internal/log"
	"github.com/Klingon-tech/klingnet-ledger/internal/mempool"
	"github.com/Klingon-tech/klingnet-ledger/internal/miner"
	"github.com/Klingon-tech/klingnet-ledger/pkg/block"
	"github.com/Klingon-tech/klingnet-ledger/pkg/crypto"
	"github.com/Klingon-tech/klingnet-ledger/pkg/ledger"
	"github.com/Klingon-tech/klingnet-ledger/pkg/tx"
)

// ── build ───────────────────────────────────────────────────────────────

func (a *app) cmdBuild() error {
	gen, err := a.genesis()
	if err != nil {
		return err
	}
	c, err := chain.InitFromGenesis(gen)
	if err != nil {
		return err
	}

	dropped := 0
	drop := func(t tx.Transaction, err error) {
		dropped++
		klog.CLI.Warn().Interface("tx", t).Err(err).Msg("Ignored transaction")
	}

	pool := mempool.NewFromConfig(a.cfg.Mempool)
	pool.SetRejectHandler(drop)
	if a.flags.Txs != "" {
		txs, err := readBatch(a.flags.Txs)
		if err != nil {
			return err
		}
		if _, err := pool.AddBatch(txs); err != nil {
			return fmt.Errorf("queue transactions: %w", err)
		}
	}

	m := miner.New(c, pool, a.cfg.Block.SizeLimit)
	m.SetDropHandler(drop)
	if _, err := m.Drain(); err != nil {
		return err
	}

	klog.CLI.Info().
		Uint64("height", c.Height()).
		Str("tip", c.TipHash().Short()).
		Str("hash", c.Hasher().String()).
		Int("dropped", dropped).
		Msg("Chain built")
	if c.Hasher().String() != string(crypto.SHA256) {
		klog.CLI.Warn().
			Str("hash", c.Hasher().String()).
			Msgf("Chain is not sha256; read it back with --hash %s", c.Hasher())
	}

	return a.writeChain(c, a.flags.Out)
}

// ── verify ──────────────────────────────────────────────────────────────

func (a *app) cmdVerify() error {
	c, err := a.loadChain()
	if err != nil {
		return err
	}
	st := c.Status()
	fmt.Fprintf(a.out, "Chain valid\n")
	fmt.Fprintf(a.out, "Blocks:  %d\n", st.Blocks)
	fmt.Fprintf(a.out, "Height:  %d\n", st.Height)
	fmt.Fprintf(a.out, "Tip:     %s\n", st.TipHash)
	fmt.Fprintf(a.out, "Genesis: %s\n", c.Genesis().Hash)
	fmt.Fprintf(a.out, "Hash:    %s\n", c.Hasher())
	a.renderState(c.State())
	return nil
}

// ── propose ─────────────────────────────────────────────────────────────

func (a *app) cmdPropose() error {
	path, err := a.chainPath()
	if err != nil {
		return err
	}
	if a.flags.Txs == "" {
		return fmt.Errorf("propose requires --txs")
	}
	c, err := a.loadChainFile(path)
	if err != nil {
		return err
	}
	txs, err := readBatch(a.flags.Txs)
	if err != nil {
		return err
	}

	blk, err := c.Propose(txs)
	if err != nil {
		return fmt.Errorf("block rejected, %s unchanged: %w", path, err)
	}

	out := a.flags.Out
	if out == "" {
		out = path
	}
	if err := c.WriteFile(out); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Block %d accepted: %s\n", blk.Number(), blk.Hash)
	return nil
}

// ── inspect ─────────────────────────────────────────────────────────────

func (a *app) cmdInspect() error {
	c, err := a.loadChain()
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(a.out)
	table.SetHeader([]string{"Number", "Hash", "Parent", "Txs"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, b := range c.Blocks() {
		parent := "null"
		if b.Content.ParentHash != nil {
			parent = b.Content.ParentHash.Short()
		}
		table.Append([]string{
			strconv.FormatUint(b.Number(), 10),
			b.Hash.Short(),
			parent,
			strconv.Itoa(b.Content.TransactionCount),
		})
	}
	table.Render()
	return nil
}

// ── state ───────────────────────────────────────────────────────────────

func (a *app) cmdState() error {
	c, err := a.loadChain()
	if err != nil {
		return err
	}
	a.renderState(c.State())
	return nil
}

func (a *app) renderState(s ledger.State) {
	table := tablewriter.NewWriter(a.out)
	table.SetHeader([]string{"Account", "Balance"})
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
	for _, acct := range s.Accounts() {
		table.Append([]string{acct, strconv.FormatInt(s.Balance(acct), 10)})
	}
	table.SetFooter([]string{"Supply", strconv.FormatInt(s.Supply(), 10)})
	table.Render()
}

// ── config ──────────────────────────────────────────────────────────────

func (a *app) cmdConfig() error {
	path := a.flags.Out
	if path == "" {
		path = "ledger.conf"
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := config.WriteDefaultConfig(path); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Wrote %s\n", path)
	return nil
}

// ── helpers ─────────────────────────────────────────────────────────────

func (a *app) hasher() crypto.Hasher {
	// Load has already validated the name.
	h, _ := crypto.NewHasher(a.cfg.Block.HashAlgorithm)
	return h
}

// genesis resolves the genesis file, falling back to the default
// allocation. A genesis without a hash algorithm takes the configured one.
func (a *app) genesis() (*config.Genesis, error) {
	if a.cfg.GenesisFile == "" {
		gen := config.DefaultGenesis()
		gen.Hash = a.cfg.Block.HashAlgorithm
		return gen, nil
	}
	gen, err := config.LoadGenesis(a.cfg.GenesisFile)
	if err != nil {
		return nil, err
	}
	if gen.Hash == "" {
		gen.Hash = a.cfg.Block.HashAlgorithm
	}
	return gen, nil
}

// chainPath takes the first positional argument, then --chain, then the
// config file.
func (a *app) chainPath() (string, error) {
	if len(a.flags.Args) > 0 {
		return a.flags.Args[0], nil
	}
	if a.cfg.ChainFile != "" {
		return a.cfg.ChainFile, nil
	}
	return "", fmt.Errorf("no chain file given")
}

func (a *app) loadChain() (*chain.Chain, error) {
	path, err := a.chainPath()
	if err != nil {
		return nil, err
	}
	return a.loadChainFile(path)
}

// loadChainFile replays path with the configured digest. When genesis
// fails its hash check but matches another algorithm, the error names it.
func (a *app) loadChainFile(path string) (*chain.Chain, error) {
	defer klog.Benchmark("load chain")()

	h := a.hasher()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read chain file: %w", err)
	}
	c, err := chain.Load(h, data)
	var be *chain.BlockError
	if errors.As(err, &be) && be.Number == 0 && errors.Is(err, block.ErrHashMismatch) {
		if blocks, perr := block.ParseChain(data); perr == nil && len(blocks) > 0 {
			if alg, ok := chain.DetectAlgorithm(blocks[0]); ok && alg != h.Algorithm {
				return nil, fmt.Errorf("%w; genesis matches %s, rerun with --hash %s", err, alg, alg)
			}
		}
	}
	return c, err
}

func (a *app) writeChain(c *chain.Chain, path string) error {
	if path != "" {
		return c.WriteFile(path)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.out, "%s\n", data)
	return err
}

func readBatch(path string) ([]tx.Transaction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transactions: %w", err)
	}
	txs, err := tx.ParseBatch(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return txs, nil
}
