// Package lox wires the compiler and the VM together behind the single
// entry point every external collaborator (CLI, REPL, tests) drives the
// language through.
package lox

import (
	"loxvm/compiler"
	"loxvm/vm"
)

// Result classifies how an Interpret call ended.
type Result int

const (
	OK Result = iota
	CompileError
	RuntimeError
)

// Exit codes for the CLI's sysexits-style contract.
const (
	ExitUsage        = 64
	ExitDataError    = 65 // compile error
	ExitSoftwareFail = 70 // runtime error
)

// Interpret compiles source against v and, if compilation succeeds, runs
// the resulting chunk on v. v's globals, interned strings, and object
// list persist across calls, which is what gives the REPL its semantics.
func Interpret(v *vm.VM, source string) (Result, []error) {
	c, errs := compiler.Compile(v, source)
	if errs != nil {
		return CompileError, errs
	}

	if err := v.Run(c); err != nil {
		return RuntimeError, []error{err}
	}
	return OK, nil
}
