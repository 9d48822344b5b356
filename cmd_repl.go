package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"

	"loxvm/lox"
	"loxvm/vm"
)

// replCmd implements an interactive REPL. Unlike run, one VM instance is
// reused across every line entered, so globals, interned strings, and
// the VM's object list all persist for the session.
type replCmd struct{}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "start an interactive Lox session" }
func (*replCmd) Usage() string {
	return "repl:\n  Start an interactive REPL session.\n"
}
func (r *replCmd) SetFlags(f *flag.FlagSet) {}

func (r *replCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rl, err := readline.New("lox> ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "repl: %v\n", err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	machine := vm.New()
	defer machine.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
				return subcommands.ExitSuccess
			}
			fmt.Fprintf(os.Stderr, "repl: %v\n", err)
			return subcommands.ExitFailure
		}

		if line == "" {
			continue
		}

		result, errs := lox.Interpret(machine, line)
		switch result {
		case lox.CompileError, lox.RuntimeError:
			for _, e := range errs {
				fmt.Fprintln(os.Stderr, e)
			}
		}
	}
}
