package chunk

import "testing"

func TestWriteKeepsCodeAndLinesInSync(t *testing.T) {
	c := New()
	c.Write(byte(OpNil), 1)
	c.Write(byte(OpReturn), 1)
	c.Write(byte(OpPop), 2)

	if len(c.Code) != len(c.Lines) {
		t.Fatalf("len(Code)=%d != len(Lines)=%d", len(c.Code), len(c.Lines))
	}
	if c.Lines[0] != 1 || c.Lines[2] != 2 {
		t.Errorf("lines = %v, want [1 1 2]", c.Lines)
	}
}

func TestAddConstantReturnsIndex(t *testing.T) {
	c := New()
	i0 := c.AddConstant(Number(1))
	i1 := c.AddConstant(Number(2))
	if i0 != 0 || i1 != 1 {
		t.Errorf("got indices %d, %d, want 0, 1", i0, i1)
	}
	if len(c.Constants) != 2 {
		t.Fatalf("len(Constants) = %d, want 2", len(c.Constants))
	}
}

func TestValueEqual(t *testing.T) {
	a := &ObjString{Chars: "hi"}
	b := &ObjString{Chars: "hi"}

	tests := []struct {
		name string
		x, y Value
		want bool
	}{
		{"nil equals nil", Nil(), Nil(), true},
		{"nil not bool", Nil(), Bool(false), false},
		{"numbers equal", Number(1), Number(1), true},
		{"numbers differ", Number(1), Number(2), false},
		{"same string handle", String(a), String(a), true},
		{"different handles same content", String(a), String(b), false},
		{"bool vs number", Bool(true), Number(1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.x.Equal(tt.y); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValueIsFalsey(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want bool
	}{
		{"nil", Nil(), true},
		{"false", Bool(false), true},
		{"true", Bool(true), false},
		{"zero", Number(0), false},
		{"empty string", String(&ObjString{Chars: ""}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.IsFalsey(); got != tt.want {
				t.Errorf("IsFalsey() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValueString(t *testing.T) {
	if got := Number(7).String(); got != "7" {
		t.Errorf("Number(7).String() = %q, want %q", got, "7")
	}
	if got := Number(1.5).String(); got != "1.5" {
		t.Errorf("Number(1.5).String() = %q, want %q", got, "1.5")
	}
	if got := Bool(true).String(); got != "true" {
		t.Errorf("Bool(true).String() = %q, want %q", got, "true")
	}
	if got := Nil().String(); got != "nil" {
		t.Errorf("Nil().String() = %q, want %q", got, "nil")
	}
}

func TestDisassembleDoesNotPanic(t *testing.T) {
	c := New()
	idx := c.AddConstant(Number(1.2))
	c.Write(byte(OpConstant), 1)
	c.Write(byte(idx), 1)
	c.Write(byte(OpReturn), 1)

	out := Disassemble(c, "test chunk")
	if out == "" {
		t.Error("Disassemble returned empty string")
	}
}
