// Package vm implements the stack-based virtual machine that executes a
// compiled chunk: the value stack, the globals table, the interned-string
// table, and the intrusive list of every heap object the VM has allocated.
package vm

import (
	"fmt"
	"io"
	"os"

	"github.com/dolthub/swiss"

	"loxvm/chunk"
)

// VM executes one chunk at a time. A VM instance is reused across
// successive Run calls (REPL semantics): the globals table, the interned
// strings, and the object list all persist; only the value stack and
// instruction pointer reset per run.
type VM struct {
	// Out is where the print opcode writes. Defaults to os.Stdout; tests
	// and the REPL may redirect it.
	Out io.Writer

	stack []chunk.Value
	chnk  *chunk.Chunk
	ip    int
	line  int // source line of the instruction currently dispatching

	objects *chunk.ObjString
	strings *swiss.Map[string, *chunk.ObjString]
	globals *swiss.Map[*chunk.ObjString, chunk.Value]
}

// New returns a VM with empty globals and an empty string table.
func New() *VM {
	return &VM{
		Out:     os.Stdout,
		strings: swiss.NewMap[string, *chunk.ObjString](64),
		globals: swiss.NewMap[*chunk.ObjString, chunk.Value](16),
	}
}

// Close frees every object the VM has allocated. It mirrors the source's
// VM-drop teardown; call it once the VM will no longer be used for further
// compiles or runs.
func (vm *VM) Close() {
	vm.freeObjects()
}

// Run executes c from its first instruction. The instruction pointer and
// value stack are reset; globals, interned strings, and the object list
// carry over from any previous Run call on the same VM.
func (vm *VM) Run(c *chunk.Chunk) error {
	vm.chnk = c
	vm.ip = 0
	vm.stack = vm.stack[:0]
	return vm.run()
}

func (vm *VM) run() error {
	for {
		opIP := vm.ip
		b := vm.readByte()
		op := chunk.Opcode(b)
		if !op.Valid() {
			vm.line = vm.lineAt(opIP)
			return vm.fail("Unknown opcode.")
		}
		vm.line = vm.lineAt(opIP)

		switch op {
		case chunk.OpConstant:
			vm.push(vm.chnk.Constants[vm.readByte()])
		case chunk.OpNil:
			vm.push(chunk.Nil())
		case chunk.OpTrue:
			vm.push(chunk.Bool(true))
		case chunk.OpFalse:
			vm.push(chunk.Bool(false))
		case chunk.OpPop:
			vm.pop()
		case chunk.OpGetLocal:
			vm.push(vm.stack[vm.readByte()])
		case chunk.OpSetLocal:
			vm.stack[vm.readByte()] = vm.peek(0)
		case chunk.OpGetGlobal:
			name := vm.chnk.Constants[vm.readByte()].AsString()
			val, ok := vm.globals.Get(name)
			if !ok {
				return vm.fail(fmt.Sprintf("Undefined variable '%s'", name.Chars))
			}
			vm.push(val)
		case chunk.OpDefineGlobal:
			name := vm.chnk.Constants[vm.readByte()].AsString()
			vm.globals.Put(name, vm.peek(0))
			vm.pop()
		case chunk.OpSetGlobal:
			name := vm.chnk.Constants[vm.readByte()].AsString()
			if !vm.globals.Has(name) {
				return vm.fail(fmt.Sprintf("Undefined variable '%s'", name.Chars))
			}
			vm.globals.Put(name, vm.peek(0))
		case chunk.OpEqual:
			b := vm.pop()
			a := vm.pop()
			vm.push(chunk.Bool(a.Equal(b)))
		case chunk.OpGreater:
			if err := vm.compare(op); err != nil {
				return err
			}
		case chunk.OpLess:
			if err := vm.compare(op); err != nil {
				return err
			}
		case chunk.OpAdd:
			if err := vm.add(); err != nil {
				return err
			}
		case chunk.OpSubtract, chunk.OpMultiply, chunk.OpDivide:
			if err := vm.arith(op); err != nil {
				return err
			}
		case chunk.OpNot:
			vm.push(chunk.Bool(vm.pop().IsFalsey()))
		case chunk.OpNegate:
			if !vm.peek(0).IsNumber() {
				return vm.fail("Operand must be a number.")
			}
			vm.push(chunk.Number(-vm.pop().AsNumber()))
		case chunk.OpPrint:
			fmt.Fprintln(vm.Out, vm.pop().String())
		case chunk.OpJump:
			offset := vm.readShort()
			vm.ip += int(offset)
		case chunk.OpJumpIfFalse:
			offset := vm.readShort()
			if vm.peek(0).IsFalsey() {
				vm.ip += int(offset)
			}
		case chunk.OpLoop:
			offset := vm.readShort()
			vm.ip -= int(offset)
		case chunk.OpReturn:
			return nil
		default:
			return vm.fail("Unknown opcode.")
		}
	}
}

// add implements OpAdd: number+number or string+string (via the VM's
// interner, producing a new interned concatenation). Any other operand
// pairing is a runtime error.
func (vm *VM) add() error {
	b := vm.peek(0)
	a := vm.peek(1)
	switch {
	case a.IsString() && b.IsString():
		vm.pop()
		vm.pop()
		vm.push(chunk.String(vm.InternString(a.AsString().Chars + b.AsString().Chars)))
	case a.IsNumber() && b.IsNumber():
		vm.pop()
		vm.pop()
		vm.push(chunk.Number(a.AsNumber() + b.AsNumber()))
	default:
		return vm.fail("Operands must be numbers.")
	}
	return nil
}

func (vm *VM) arith(op chunk.Opcode) error {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		return vm.fail("Operands must be numbers.")
	}
	b := vm.pop().AsNumber()
	a := vm.pop().AsNumber()
	switch op {
	case chunk.OpSubtract:
		vm.push(chunk.Number(a - b))
	case chunk.OpMultiply:
		vm.push(chunk.Number(a * b))
	case chunk.OpDivide:
		vm.push(chunk.Number(a / b))
	}
	return nil
}

func (vm *VM) compare(op chunk.Opcode) error {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		return vm.fail("Operands must be numbers.")
	}
	b := vm.pop().AsNumber()
	a := vm.pop().AsNumber()
	switch op {
	case chunk.OpGreater:
		vm.push(chunk.Bool(a > b))
	case chunk.OpLess:
		vm.push(chunk.Bool(a < b))
	}
	return nil
}

func (vm *VM) fail(message string) error {
	vm.stack = vm.stack[:0]
	return RuntimeError{Message: message, Line: vm.line}
}

func (vm *VM) lineAt(ip int) int {
	if ip < 0 || ip >= len(vm.chnk.Lines) {
		return 0
	}
	return vm.chnk.Lines[ip]
}

func (vm *VM) readByte() byte {
	b := vm.chnk.Code[vm.ip]
	vm.ip++
	return b
}

func (vm *VM) readShort() uint16 {
	hi := vm.chnk.Code[vm.ip]
	lo := vm.chnk.Code[vm.ip+1]
	vm.ip += 2
	return uint16(hi)<<8 | uint16(lo)
}

func (vm *VM) push(v chunk.Value) {
	vm.stack = append(vm.stack, v)
}

func (vm *VM) pop() chunk.Value {
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v
}

func (vm *VM) peek(distance int) chunk.Value {
	return vm.stack[len(vm.stack)-1-distance]
}
