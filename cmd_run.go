package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"loxvm/lox"
	"loxvm/vm"
)

// runCmd executes one source file to completion and exits with a
// sysexits-style code: 64 on a bad invocation, 65 on a compile error, 70
// on a runtime error.
type runCmd struct{}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "run a Lox source file" }
func (*runCmd) Usage() string {
	return "run <file>\n  Compile and execute a Lox source file.\n"
}
func (r *runCmd) SetFlags(f *flag.FlagSet) {}

func (r *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "run: expected exactly one file argument")
		return subcommands.ExitStatus(lox.ExitUsage)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "run: %v\n", err)
		return subcommands.ExitStatus(lox.ExitUsage)
	}

	machine := vm.New()
	defer machine.Close()

	result, errs := lox.Interpret(machine, string(data))
	switch result {
	case lox.CompileError:
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, e)
		}
		return subcommands.ExitStatus(lox.ExitDataError)
	case lox.RuntimeError:
		fmt.Fprintln(os.Stderr, errs[0])
		return subcommands.ExitStatus(lox.ExitSoftwareFail)
	}
	return subcommands.ExitSuccess
}
