package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"loxvm/chunk"
	"loxvm/compiler"
	"loxvm/lox"
	"loxvm/vm"
)

// emitCmd compiles a file without running it and writes the resulting
// chunk's disassembly to stdout or to -out.
type emitCmd struct {
	disassemble bool
	outPath     string
}

func (*emitCmd) Name() string     { return "emit" }
func (*emitCmd) Synopsis() string { return "compile a file and print its disassembly" }
func (*emitCmd) Usage() string {
	return "emit <file>\n  Compile a Lox source file and print its disassembled bytecode.\n"
}

func (cmd *emitCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&cmd.disassemble, "disassemble", true, "print the disassembled chunk")
	f.StringVar(&cmd.outPath, "out", "", "write the disassembly to this file instead of stdout")
}

func (cmd *emitCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "emit: expected exactly one file argument")
		return subcommands.ExitStatus(lox.ExitUsage)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "emit: %v\n", err)
		return subcommands.ExitStatus(lox.ExitUsage)
	}

	machine := vm.New()
	defer machine.Close()

	c, errs := compiler.Compile(machine, string(data))
	if errs != nil {
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, e)
		}
		return subcommands.ExitStatus(lox.ExitDataError)
	}

	if !cmd.disassemble {
		return subcommands.ExitSuccess
	}

	listing := chunk.Disassemble(c, strings.TrimSuffix(args[0], ".lox"))
	if cmd.outPath == "" {
		fmt.Print(listing)
		return subcommands.ExitSuccess
	}

	if err := os.WriteFile(cmd.outPath, []byte(listing), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "emit: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
