package scanner

import (
	"testing"

	"loxvm/token"
)

func scanAll(source string) []token.Token {
	s := New(source)
	var toks []token.Token
	for {
		tok := s.Scan()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

func TestScanPunctuationAndOperators(t *testing.T) {
	toks := scanAll("(){},.-+;*/! != = == < <= > >=")
	want := []token.Kind{
		token.LeftParen, token.RightParen, token.LeftBrace, token.RightBrace,
		token.Comma, token.Dot, token.Minus, token.Plus, token.Semicolon,
		token.Star, token.Slash, token.Bang, token.BangEqual, token.Equal,
		token.EqualEqual, token.Less, token.LessEqual, token.Greater,
		token.GreaterEqual, token.EOF,
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: got %v, want %v", i, toks[i].Kind, k)
		}
	}
}

func TestScanKeywordsAndIdentifiers(t *testing.T) {
	toks := scanAll("and class x_1 print while")
	want := []token.Kind{token.And, token.Class, token.Identifier, token.Print, token.While, token.EOF}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: got %v, want %v", i, toks[i].Kind, k)
		}
	}
}

func TestScanNumbers(t *testing.T) {
	toks := scanAll("123 45.67")
	if toks[0].Kind != token.Number || toks[0].Lexeme != "123" {
		t.Errorf("got %v", toks[0])
	}
	if toks[1].Kind != token.Number || toks[1].Lexeme != "45.67" {
		t.Errorf("got %v", toks[1])
	}
}

func TestScanString(t *testing.T) {
	toks := scanAll(`"hello world"`)
	if toks[0].Kind != token.String {
		t.Fatalf("got %v", toks[0])
	}
	if toks[0].Lexeme != `"hello world"` {
		t.Errorf("lexeme = %q, want quotes included", toks[0].Lexeme)
	}
}

func TestScanUnterminatedString(t *testing.T) {
	toks := scanAll(`"hello`)
	if toks[0].Kind != token.Error {
		t.Fatalf("got %v, want Error", toks[0])
	}
	if toks[0].Lexeme != "Unterminated string." {
		t.Errorf("message = %q", toks[0].Lexeme)
	}
}

func TestScanLineCounting(t *testing.T) {
	toks := scanAll("1\n2\n\"a\nb\"\n3")
	var lines []int
	for _, tok := range toks {
		if tok.Kind == token.Number {
			lines = append(lines, tok.Line)
		}
	}
	want := []int{1, 2, 5}
	if len(lines) != len(want) {
		t.Fatalf("got lines %v, want %v", lines, want)
	}
	for i, l := range want {
		if lines[i] != l {
			t.Errorf("number %d on line %d, want %d", i, lines[i], l)
		}
	}
}

func TestScanComment(t *testing.T) {
	toks := scanAll("1 // this is a comment\n2")
	if toks[0].Kind != token.Number || toks[1].Kind != token.Number {
		t.Fatalf("got %v", toks)
	}
	if toks[1].Line != 2 {
		t.Errorf("second number on line %d, want 2", toks[1].Line)
	}
}

func TestScanEOFIsRepeatable(t *testing.T) {
	s := New("")
	first := s.Scan()
	second := s.Scan()
	if first.Kind != token.EOF || second.Kind != token.EOF {
		t.Fatalf("got %v, %v", first, second)
	}
}

func TestScanUnexpectedCharacter(t *testing.T) {
	toks := scanAll("@")
	if toks[0].Kind != token.Error {
		t.Fatalf("got %v", toks[0])
	}
}
