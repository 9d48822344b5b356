package chunk

import (
	"math"
	"strconv"
)

// ValueKind tags the active variant of a Value.
type ValueKind byte

const (
	ValNil ValueKind = iota
	ValBool
	ValNumber
	ValString
)

// Value is the tagged union every Lox expression evaluates to. It is
// value-copy: a String value copies only the handle to the interned
// ObjString it refers to, never the underlying bytes.
type Value struct {
	Kind   ValueKind
	number float64
	str    *ObjString
	b      bool
}

func Nil() Value              { return Value{Kind: ValNil} }
func Bool(b bool) Value       { return Value{Kind: ValBool, b: b} }
func Number(n float64) Value  { return Value{Kind: ValNumber, number: n} }
func String(s *ObjString) Value { return Value{Kind: ValString, str: s} }

func (v Value) IsNil() bool    { return v.Kind == ValNil }
func (v Value) IsBool() bool   { return v.Kind == ValBool }
func (v Value) IsNumber() bool { return v.Kind == ValNumber }
func (v Value) IsString() bool { return v.Kind == ValString }

func (v Value) AsBool() bool         { return v.b }
func (v Value) AsNumber() float64    { return v.number }
func (v Value) AsString() *ObjString { return v.str }

// IsFalsey implements Lox truthiness: only nil and false are falsey.
func (v Value) IsFalsey() bool {
	return v.Kind == ValNil || (v.Kind == ValBool && !v.b)
}

// Equal implements Lox's structural equality. Values of different kinds are
// never equal (except there is no cross-kind nil case to consider: Nil only
// equals Nil). String equality is handle identity, which the VM's string
// interning makes equivalent to content equality.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case ValNil:
		return true
	case ValBool:
		return v.b == o.b
	case ValNumber:
		return v.number == o.number
	case ValString:
		return v.str == o.str
	default:
		return false
	}
}

// String renders the value the way `print` writes it to stdout.
func (v Value) String() string {
	switch v.Kind {
	case ValNil:
		return "nil"
	case ValBool:
		if v.b {
			return "true"
		}
		return "false"
	case ValNumber:
		switch {
		case math.IsNaN(v.number):
			return "NaN"
		case math.IsInf(v.number, 1):
			return "inf"
		case math.IsInf(v.number, -1):
			return "-inf"
		default:
			return strconv.FormatFloat(v.number, 'g', -1, 64)
		}
	case ValString:
		return v.str.Chars
	default:
		return "<invalid value>"
	}
}

// ObjString is the sole heap object kind the VM manages: an interned,
// owned UTF-8 byte sequence with its FNV-1a hash precomputed at allocation
// time. Next threads the VM's intrusive list of every live object.
type ObjString struct {
	Chars string
	Hash  uint32
	Next  *ObjString
}
