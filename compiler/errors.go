package compiler

import "fmt"

// CompileError is one diagnostic produced while compiling a chunk. Where
// distinguishes the three ways a token can be blamed: "at '<lexeme>'" for
// an ordinary token, "at end" for Eof, or empty for a synthetic scanner
// error token, whose Message already carries the full complaint.
type CompileError struct {
	Line    int
	Where   string
	Message string
}

func (e CompileError) Error() string {
	if e.Where == "" {
		return fmt.Sprintf("[line %d] Error: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("[line %d] Error %s: %s", e.Line, e.Where, e.Message)
}
