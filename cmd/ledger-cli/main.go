// ledger-cli builds, verifies and inspects ledger chain files.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Klingon-tech/klingnet-ledger/config"
	"github.com/Klingon-tech/klingnet-ledger/internal/chain"
	klog "github.com/Klingon-tech/klingnet-ledger/internal/log"
)

func main() {
	if len(os.Args) < 2 {
		config.PrintUsage(os.Stderr)
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "help", "--help", "-h":
		config.PrintUsage(os.Stdout)
		return
	}

	cfg, flags, err := config.Load(os.Args[2:])
	if errors.Is(err, config.ErrHelp) {
		config.PrintUsage(os.Stdout)
		return
	}
	if err != nil {
		fatal("%v", err)
	}

	if err := klog.Init(cfg.Log.Level, cfg.Log.JSON, cfg.Log.File); err != nil {
		fatal("init logging: %v", err)
	}

	a := &app{cfg: cfg, flags: flags, out: os.Stdout}
	if err := a.run(cmd); err != nil {
		if errors.Is(err, errUnknownCommand) {
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
			config.PrintUsage(os.Stderr)
			os.Exit(1)
		}
		fatal("%s", describe(err))
	}
}

var errUnknownCommand = errors.New("unknown command")

// app carries the resolved configuration into each command.
type app struct {
	cfg   *config.Config
	flags *config.Flags
	out   io.Writer
}

func (a *app) run(cmd string) error {
	switch cmd {
	case "build":
		return a.cmdBuild()
	case "verify":
		return a.cmdVerify()
	case "propose":
		return a.cmdPropose()
	case "inspect":
		return a.cmdInspect()
	case "state":
		return a.cmdState()
	case "config":
		return a.cmdConfig()
	default:
		return errUnknownCommand
	}
}

// describe prefixes validation failures with their kind.
func describe(err error) string {
	kind := chain.KindOf(err)
	if kind == chain.KindUnknown || kind == chain.KindNone {
		return err.Error()
	}
	return fmt.Sprintf("[%s] %v", kind, err)
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
