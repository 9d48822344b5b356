package token

import "testing"

func TestKindString(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		want string
	}{
		{name: "left paren", kind: LeftParen, want: "("},
		{name: "bang equal", kind: BangEqual, want: "!="},
		{name: "identifier", kind: Identifier, want: "identifier"},
		{name: "while keyword", kind: While, want: "while"},
		{name: "eof", kind: EOF, want: "eof"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.want {
				t.Errorf("Kind.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKeywords(t *testing.T) {
	tests := []struct {
		lexeme string
		want   Kind
	}{
		{"and", And},
		{"or", Or},
		{"print", Print},
		{"while", While},
		{"nil", Nil},
	}

	for _, tt := range tests {
		t.Run(tt.lexeme, func(t *testing.T) {
			got, ok := Keywords[tt.lexeme]
			if !ok {
				t.Fatalf("Keywords[%q] not found", tt.lexeme)
			}
			if got != tt.want {
				t.Errorf("Keywords[%q] = %v, want %v", tt.lexeme, got, tt.want)
			}
		})
	}

	if _, ok := Keywords["notakeyword"]; ok {
		t.Error("Keywords[\"notakeyword\"] should not exist")
	}
}

func TestTokenString(t *testing.T) {
	tok := Token{Kind: Number, Lexeme: "123", Line: 3}
	want := `Token{number "123" line 3}`
	if got := tok.String(); got != want {
		t.Errorf("Token.String() = %q, want %q", got, want)
	}
}
