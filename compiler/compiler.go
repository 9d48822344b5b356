// Package compiler implements a single-pass Pratt parser that emits
// bytecode directly as it parses: no AST is ever built. Each token kind
// maps to a ParseRule carrying its prefix emitter, infix emitter, and
// binding precedence, driving both expression parsing and a full
// statement and scope grammar.
package compiler

import (
	"strconv"

	"loxvm/chunk"
	"loxvm/scanner"
	"loxvm/token"
	"loxvm/vm"
)

// Precedence orders how tightly an infix operator binds, lowest first.
type Precedence int

const (
	PrecNone Precedence = iota
	PrecAssignment
	PrecOr
	PrecAnd
	PrecEquality
	PrecComparison
	PrecTerm
	PrecFactor
	PrecUnary
	PrecCall
	PrecPrimary
)

// parseFn is bound as a method expression onto *Compiler, so prefix and
// infix emitters share one signature: the parser that invokes them, and
// whether an `=` seen here should be treated as an assignment target.
type parseFn func(*Compiler, bool)

type parseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence Precedence
}

// rules maps each token kind to its ParseRule. Missing entries default to
// the zero value (no prefix, no infix, PrecNone), which is exactly right
// for tokens that never start or continue an expression.
var rules = map[token.Kind]parseRule{
	token.LeftParen:    {prefix: (*Compiler).grouping},
	token.Minus:        {prefix: (*Compiler).unary, infix: (*Compiler).binary, precedence: PrecTerm},
	token.Plus:         {infix: (*Compiler).binary, precedence: PrecTerm},
	token.Slash:        {infix: (*Compiler).binary, precedence: PrecFactor},
	token.Star:         {infix: (*Compiler).binary, precedence: PrecFactor},
	token.Bang:         {prefix: (*Compiler).unary},
	token.BangEqual:    {infix: (*Compiler).binary, precedence: PrecEquality},
	token.EqualEqual:   {infix: (*Compiler).binary, precedence: PrecEquality},
	token.Greater:      {infix: (*Compiler).binary, precedence: PrecComparison},
	token.GreaterEqual: {infix: (*Compiler).binary, precedence: PrecComparison},
	token.Less:         {infix: (*Compiler).binary, precedence: PrecComparison},
	token.LessEqual:    {infix: (*Compiler).binary, precedence: PrecComparison},
	token.Identifier:   {prefix: (*Compiler).variable},
	token.String:       {prefix: (*Compiler).stringLiteral},
	token.Number:       {prefix: (*Compiler).number},
	token.And:          {infix: (*Compiler).and_, precedence: PrecAnd},
	token.Or:           {infix: (*Compiler).or_, precedence: PrecOr},
	token.False:        {prefix: (*Compiler).literal},
	token.Nil:          {prefix: (*Compiler).literal},
	token.True:         {prefix: (*Compiler).literal},
}

func ruleFor(kind token.Kind) parseRule {
	return rules[kind]
}

// Local is a variable resident on the VM's value stack at a fixed slot
// established at compile time. depth == -1 marks it declared but not yet
// initialized, which rejects `var x = x;` referring to itself.
type Local struct {
	name  string
	depth int
}

// Compiler compiles one source string into one chunk. It owns the
// scanner and the parser state; the vm it holds is only used to intern
// identifier and string-literal constants, so that global-variable
// lookups become handle-identity comparisons at run time.
type Compiler struct {
	scanner *scanner.Scanner
	vm      *vm.VM
	chunk   *chunk.Chunk

	current  token.Token
	previous token.Token

	hadError  bool
	panicMode bool
	errors    []error

	locals     []Local
	scopeDepth int
}

// Compile parses source to completion and returns the resulting chunk.
// Errors are collected rather than aborting at the first one: the parser
// keeps going in panic-mode recovery so that a single compile call can
// report more than one mistake.
func Compile(v *vm.VM, source string) (*chunk.Chunk, []error) {
	c := &Compiler{
		scanner: scanner.New(source),
		vm:      v,
		chunk:   chunk.New(),
	}

	c.advance()
	for !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.EOF, "Expect end of expression.")
	c.emitReturn()

	if c.hadError {
		return nil, c.errors
	}
	return c.chunk, nil
}

// --- parser plumbing ---

func (c *Compiler) advance() {
	c.previous = c.current
	for {
		c.current = c.scanner.Scan()
		if c.current.Kind != token.Error {
			break
		}
		c.errorAtCurrent(c.current.Lexeme)
	}
}

func (c *Compiler) consume(kind token.Kind, message string) {
	if c.current.Kind == kind {
		c.advance()
		return
	}
	c.errorAtCurrent(message)
}

func (c *Compiler) check(kind token.Kind) bool {
	return c.current.Kind == kind
}

func (c *Compiler) match(kind token.Kind) bool {
	if !c.check(kind) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) errorAtCurrent(message string) {
	c.errorAt(c.current, message)
}

func (c *Compiler) error(message string) {
	c.errorAt(c.previous, message)
}

func (c *Compiler) errorAt(tok token.Token, message string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	c.hadError = true

	where := ""
	switch tok.Kind {
	case token.EOF:
		where = "at end"
	case token.Error:
		// synthetic scanner error token: message already says it all
	default:
		where = "at '" + tok.Lexeme + "'"
	}
	c.errors = append(c.errors, CompileError{Line: tok.Line, Where: where, Message: message})
}

// synchronize discards tokens until it reaches a likely statement
// boundary, so one syntax error does not cascade into a wall of
// follow-on errors.
func (c *Compiler) synchronize() {
	c.panicMode = false

	for c.current.Kind != token.EOF {
		if c.previous.Kind == token.Semicolon {
			return
		}
		switch c.current.Kind {
		case token.Class, token.Fun, token.Var, token.For, token.If, token.While, token.Print, token.Return:
			return
		}
		c.advance()
	}
}

// --- declarations & statements ---

func (c *Compiler) declaration() {
	if c.match(token.Var) {
		c.varDeclaration()
	} else {
		c.statement()
	}

	if c.panicMode {
		c.synchronize()
	}
}

func (c *Compiler) varDeclaration() {
	global := c.parseVariable("Expect variable name.")

	if c.match(token.Equal) {
		c.expression()
	} else {
		c.emitByte(byte(chunk.OpNil))
	}
	c.consume(token.Semicolon, "Expect ';' after variable declaration.")

	c.defineVariable(global)
}

func (c *Compiler) statement() {
	switch {
	case c.match(token.Print):
		c.printStatement()
	case c.match(token.If):
		c.ifStatement()
	case c.match(token.While):
		c.whileStatement()
	case c.match(token.For):
		c.forStatement()
	case c.match(token.LeftBrace):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) printStatement() {
	c.expression()
	c.consume(token.Semicolon, "Expect ';' after value.")
	c.emitByte(byte(chunk.OpPrint))
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.consume(token.Semicolon, "Expect ';' after expression.")
	c.emitByte(byte(chunk.OpPop))
}

func (c *Compiler) block() {
	for !c.check(token.RightBrace) && !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.RightBrace, "Expect '}' after block.")
}

func (c *Compiler) ifStatement() {
	c.consume(token.LeftParen, "Expect '(' after 'if'.")
	c.expression()
	c.consume(token.RightParen, "Expect ')' after condition.")

	thenJump := c.emitJump(chunk.OpJumpIfFalse)
	c.emitByte(byte(chunk.OpPop))
	c.statement()

	elseJump := c.emitJump(chunk.OpJump)
	c.patchJump(thenJump)
	c.emitByte(byte(chunk.OpPop))

	if c.match(token.Else) {
		c.statement()
	}
	c.patchJump(elseJump)
}

func (c *Compiler) whileStatement() {
	loopStart := c.chunk.Len()
	c.consume(token.LeftParen, "Expect '(' after 'while'.")
	c.expression()
	c.consume(token.RightParen, "Expect ')' after condition.")

	exitJump := c.emitJump(chunk.OpJumpIfFalse)
	c.emitByte(byte(chunk.OpPop))
	c.statement()
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.emitByte(byte(chunk.OpPop))
}

func (c *Compiler) forStatement() {
	c.beginScope()
	c.consume(token.LeftParen, "Expect '(' after 'for'.")

	switch {
	case c.match(token.Semicolon):
		// no initializer
	case c.match(token.Var):
		c.varDeclaration()
	default:
		c.expressionStatement()
	}

	loopStart := c.chunk.Len()
	exitJump := -1
	if !c.match(token.Semicolon) {
		c.expression()
		c.consume(token.Semicolon, "Expect ';' after loop condition.")

		exitJump = c.emitJump(chunk.OpJumpIfFalse)
		c.emitByte(byte(chunk.OpPop))
	}

	if !c.match(token.RightParen) {
		bodyJump := c.emitJump(chunk.OpJump)
		incrementStart := c.chunk.Len()
		c.expression()
		c.emitByte(byte(chunk.OpPop))
		c.consume(token.RightParen, "Expect ')' after for clauses.")

		c.emitLoop(loopStart)
		loopStart = incrementStart
		c.patchJump(bodyJump)
	}

	c.statement()
	c.emitLoop(loopStart)

	if exitJump != -1 {
		c.patchJump(exitJump)
		c.emitByte(byte(chunk.OpPop))
	}

	c.endScope()
}

// --- scope & locals ---

func (c *Compiler) beginScope() {
	c.scopeDepth++
}

func (c *Compiler) endScope() {
	c.scopeDepth--
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].depth > c.scopeDepth {
		c.emitByte(byte(chunk.OpPop))
		c.locals = c.locals[:len(c.locals)-1]
	}
}

func (c *Compiler) parseVariable(errorMessage string) int {
	c.consume(token.Identifier, errorMessage)

	c.declareVariable()
	if c.scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(c.previous.Lexeme)
}

func (c *Compiler) declareVariable() {
	if c.scopeDepth == 0 {
		return
	}

	name := c.previous.Lexeme
	for i := len(c.locals) - 1; i >= 0; i-- {
		local := c.locals[i]
		if local.depth != -1 && local.depth < c.scopeDepth {
			break
		}
		if local.name == name {
			c.error("Already a variable with this name in this scope.")
		}
	}

	c.addLocal(name)
}

func (c *Compiler) addLocal(name string) {
	if len(c.locals) == 256 {
		c.error("Too many local variables in function.")
		return
	}
	c.locals = append(c.locals, Local{name: name, depth: -1})
}

func (c *Compiler) markInitialized() {
	c.locals[len(c.locals)-1].depth = c.scopeDepth
}

func (c *Compiler) defineVariable(global int) {
	if c.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitBytes(byte(chunk.OpDefineGlobal), byte(global))
}

// resolveLocal returns the stack slot of name in the innermost enclosing
// scope that declares it, or -1 if no local binds it (the caller then
// falls back to a global lookup).
func (c *Compiler) resolveLocal(name string) int {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].name == name {
			if c.locals[i].depth == -1 {
				c.error("Can't read local variable in its own initializer.")
			}
			return i
		}
	}
	return -1
}

// --- expressions ---

func (c *Compiler) expression() {
	c.parsePrecedence(PrecAssignment)
}

func (c *Compiler) parsePrecedence(min Precedence) {
	c.advance()
	prefix := ruleFor(c.previous.Kind).prefix
	if prefix == nil {
		c.error("Expect expression.")
		return
	}

	canAssign := min <= PrecAssignment
	prefix(c, canAssign)

	for min <= ruleFor(c.current.Kind).precedence {
		c.advance()
		infix := ruleFor(c.previous.Kind).infix
		infix(c, canAssign)
	}

	if canAssign && c.match(token.Equal) {
		c.error("Invalid assignment target.")
	}
}

func (c *Compiler) grouping(canAssign bool) {
	c.expression()
	c.consume(token.RightParen, "Expect ')' after expression.")
}

func (c *Compiler) unary(canAssign bool) {
	operator := c.previous.Kind
	c.parsePrecedence(PrecUnary)

	switch operator {
	case token.Minus:
		c.emitByte(byte(chunk.OpNegate))
	case token.Bang:
		c.emitByte(byte(chunk.OpNot))
	}
}

func (c *Compiler) binary(canAssign bool) {
	operator := c.previous.Kind
	rule := ruleFor(operator)
	c.parsePrecedence(rule.precedence + 1)

	switch operator {
	case token.BangEqual:
		c.emitBytes(byte(chunk.OpEqual), byte(chunk.OpNot))
	case token.EqualEqual:
		c.emitByte(byte(chunk.OpEqual))
	case token.Greater:
		c.emitByte(byte(chunk.OpGreater))
	case token.GreaterEqual:
		c.emitBytes(byte(chunk.OpLess), byte(chunk.OpNot))
	case token.Less:
		c.emitByte(byte(chunk.OpLess))
	case token.LessEqual:
		c.emitBytes(byte(chunk.OpGreater), byte(chunk.OpNot))
	case token.Plus:
		c.emitByte(byte(chunk.OpAdd))
	case token.Minus:
		c.emitByte(byte(chunk.OpSubtract))
	case token.Star:
		c.emitByte(byte(chunk.OpMultiply))
	case token.Slash:
		c.emitByte(byte(chunk.OpDivide))
	}
}

func (c *Compiler) and_(canAssign bool) {
	endJump := c.emitJump(chunk.OpJumpIfFalse)
	c.emitByte(byte(chunk.OpPop))
	c.parsePrecedence(PrecAnd)
	c.patchJump(endJump)
}

func (c *Compiler) or_(canAssign bool) {
	elseJump := c.emitJump(chunk.OpJumpIfFalse)
	endJump := c.emitJump(chunk.OpJump)
	c.patchJump(elseJump)
	c.emitByte(byte(chunk.OpPop))
	c.parsePrecedence(PrecOr)
	c.patchJump(endJump)
}

func (c *Compiler) number(canAssign bool) {
	value, _ := strconv.ParseFloat(c.previous.Lexeme, 64)
	c.emitConstant(chunk.Number(value))
}

func (c *Compiler) stringLiteral(canAssign bool) {
	lexeme := c.previous.Lexeme
	contents := lexeme[1 : len(lexeme)-1] // strip the surrounding quotes
	obj := c.vm.InternString(contents)
	c.emitConstant(chunk.String(obj))
}

func (c *Compiler) literal(canAssign bool) {
	switch c.previous.Kind {
	case token.Nil:
		c.emitByte(byte(chunk.OpNil))
	case token.True:
		c.emitByte(byte(chunk.OpTrue))
	case token.False:
		c.emitByte(byte(chunk.OpFalse))
	}
}

func (c *Compiler) variable(canAssign bool) {
	c.namedVariable(c.previous.Lexeme, canAssign)
}

func (c *Compiler) namedVariable(name string, canAssign bool) {
	var getOp, setOp chunk.Opcode
	arg := c.resolveLocal(name)
	if arg != -1 {
		getOp, setOp = chunk.OpGetLocal, chunk.OpSetLocal
	} else {
		arg = c.identifierConstant(name)
		getOp, setOp = chunk.OpGetGlobal, chunk.OpSetGlobal
	}

	if canAssign && c.match(token.Equal) {
		c.expression()
		c.emitBytes(byte(setOp), byte(arg))
	} else {
		c.emitBytes(byte(getOp), byte(arg))
	}
}

// --- emission ---

func (c *Compiler) identifierConstant(name string) int {
	return c.makeConstant(chunk.String(c.vm.InternString(name)))
}

func (c *Compiler) makeConstant(value chunk.Value) int {
	idx := c.chunk.AddConstant(value)
	if idx > 255 {
		c.error("Too many constants in one chunk.")
		return 0
	}
	return idx
}

func (c *Compiler) emitConstant(value chunk.Value) {
	c.emitBytes(byte(chunk.OpConstant), byte(c.makeConstant(value)))
}

func (c *Compiler) emitByte(b byte) {
	c.chunk.Write(b, c.previous.Line)
}

func (c *Compiler) emitBytes(b1, b2 byte) {
	c.emitByte(b1)
	c.emitByte(b2)
}

func (c *Compiler) emitReturn() {
	c.emitByte(byte(chunk.OpReturn))
}

// emitJump writes op followed by a two-byte placeholder offset and
// returns the offset of the first placeholder byte, for patchJump to
// fill in once the jump target is known.
func (c *Compiler) emitJump(op chunk.Opcode) int {
	c.emitByte(byte(op))
	c.emitByte(0xff)
	c.emitByte(0xff)
	return c.chunk.Len() - 2
}

func (c *Compiler) patchJump(offset int) {
	jump := c.chunk.Len() - offset - 2
	if jump > 65535 {
		c.error("Too much code to jump over.")
	}
	c.chunk.Code[offset] = byte(jump >> 8)
	c.chunk.Code[offset+1] = byte(jump)
}

func (c *Compiler) emitLoop(loopStart int) {
	c.emitByte(byte(chunk.OpLoop))

	offset := c.chunk.Len() - loopStart + 2
	if offset > 65535 {
		c.error("Loop body too large.")
	}
	c.emitByte(byte(offset >> 8))
	c.emitByte(byte(offset))
}
