package token

import (
	"strings"
	"testing"
)

func kinds(tokens []Token) []Kind {
	out := make([]Kind, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Kind
	}
	return out
}

func TestTokenizerBasics(t *testing.T) {
	input := `solver PCG;
tolerance 1e-06;
relTol -0.1;
nCells 100;
div(phi,U) Gauss linear;`

	tokenizer := NewTokenizer(input)
	tokens := tokenizer.Tokenize()
	if tokenizer.HasErrors() {
		t.Fatalf("Unexpected errors: %v", tokenizer.GetErrors())
	}

	expected := []Kind{
		KindWord, KindWord, KindPunctuation,
		KindWord, KindFloat, KindPunctuation,
		KindWord, KindFloat, KindPunctuation,
		KindWord, KindInteger, KindPunctuation,
		KindWord, KindWord, KindWord, KindPunctuation,
	}
	got := kinds(tokens)
	if len(got) != len(expected) {
		t.Fatalf("Expected %d tokens, got %d: %v", len(expected), len(got), tokens)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("Token %d: expected %s, got %s (%s)", i, expected[i], got[i], tokens[i])
		}
	}

	if tokens[4].Float != 1e-06 {
		t.Errorf("Expected 1e-06, got %v", tokens[4].Float)
	}
	if tokens[7].Float != -0.1 {
		t.Errorf("Expected -0.1, got %v", tokens[7].Float)
	}
	if tokens[10].Int != 100 {
		t.Errorf("Expected 100, got %d", tokens[10].Int)
	}
	if tokens[12].Text != "div(phi,U)" {
		t.Errorf("Expected div(phi,U) as one word, got %q", tokens[12].Text)
	}
	if tokens[12].Line != 5 {
		t.Errorf("Expected line 5, got %d", tokens[12].Line)
	}
}

func TestTokenizerPositions(t *testing.T) {
	tokens := NewTokenizer("solver PCG;\n  tolerance 1e-06;").Tokenize()

	expected := []struct {
		line, column int
	}{
		{1, 1}, {1, 8}, {1, 11},
		{2, 3}, {2, 13}, {2, 18},
	}
	if len(tokens) != len(expected) {
		t.Fatalf("Expected %d tokens, got %d: %v", len(expected), len(tokens), tokens)
	}
	for i, pos := range expected {
		if tokens[i].Line != pos.line || tokens[i].Column != pos.column {
			t.Errorf("Token %d (%s): expected %d:%d, got %d:%d",
				i, tokens[i], pos.line, pos.column, tokens[i].Line, tokens[i].Column)
		}
	}
}

func TestTokenizerComments(t *testing.T) {
	input := `// Line comment
a 1; /* block
comment */ b 2;`

	tokenizer := NewTokenizer(input)
	tokens := tokenizer.Tokenize()

	if len(tokens) != 6 {
		t.Fatalf("Expected 6 tokens, got %d: %v", len(tokens), tokens)
	}
	if tokens[0].Text != "a" || tokens[0].Line != 2 {
		t.Errorf("Expected word a on line 2, got %s on line %d", tokens[0], tokens[0].Line)
	}
	if tokens[3].Text != "b" || tokens[3].Line != 3 {
		t.Errorf("Expected word b on line 3, got %s on line %d", tokens[3], tokens[3].Line)
	}
}

func TestTokenizerStrings(t *testing.T) {
	tokenizer := NewTokenizer(`"plain" "with \"quotes\"" "tab\tnew\nline" "back\\slash"`)
	tokens := tokenizer.Tokenize()

	expected := []string{"plain", `with "quotes"`, "tab\tnew\nline", `back\slash`}
	if len(tokens) != len(expected) {
		t.Fatalf("Expected %d tokens, got %d", len(expected), len(tokens))
	}
	for i, want := range expected {
		if tokens[i].Kind != KindString || tokens[i].Text != want {
			t.Errorf("Token %d: expected string %q, got %s", i, want, tokens[i])
		}
		if again := NewTokenizer(tokens[i].Render()).Tokenize(); len(again) != 1 || !again[0].Equal(tokens[i]) {
			t.Errorf("Token %d does not survive rendering: %v", i, again)
		}
	}
}

func TestTokenizerVariablesAndDirectives(t *testing.T) {
	tokenizer := NewTokenizer(`$nu ${nu} $:top.x $..a $a/b #include "file" #{ code; #}`)
	tokens := tokenizer.Tokenize()
	if tokenizer.HasErrors() {
		t.Fatalf("Unexpected errors: %v", tokenizer.GetErrors())
	}

	tests := []struct {
		kind Kind
		text string
	}{
		{KindVariable, "nu"},
		{KindVariable, "{nu}"},
		{KindVariable, ":top.x"},
		{KindVariable, "..a"},
		{KindVariable, "a/b"},
		{KindDirective, "include"},
		{KindString, "file"},
		{KindVerbatim, " code; "},
	}
	if len(tokens) != len(tests) {
		t.Fatalf("Expected %d tokens, got %d: %v", len(tests), len(tokens), tokens)
	}
	for i, tt := range tests {
		if tokens[i].Kind != tt.kind || tokens[i].Text != tt.text {
			t.Errorf("Token %d: expected %s %q, got %s", i, tt.kind, tt.text, tokens[i])
		}
	}
	if tokens[1].VarName() != "nu" {
		t.Errorf("Expected braces stripped, got %q", tokens[1].VarName())
	}
}

func TestTokenizerErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
	}{
		{"unterminated string", `a "open`, "unterminated string"},
		{"newline in string", "a \"open\nclose\";", "unterminated string"},
		{"unterminated comment", "a /* never", "unterminated block comment"},
		{"unbalanced word", "f(x;", "unbalanced parentheses"},
		{"malformed number", "1.2.3;", "malformed number"},
		{"hex number", "0x10;", "malformed number"},
		{"lone dollar", "$ ;", "missing variable name"},
		{"unexpected character", "a `b`;", "unexpected character"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokenizer := NewTokenizer(tt.input)
			tokenizer.Tokenize()
			if !tokenizer.HasErrors() {
				t.Fatal("Expected tokenizer errors")
			}
			errors := tokenizer.GetErrors()
			if !strings.Contains(errors[0].Text, tt.message) {
				t.Errorf("Expected error containing %q, got %q", tt.message, errors[0].Text)
			}
		})
	}
}

func TestTokenizerSafeguards(t *testing.T) {
	t.Run("MaxTokens", func(t *testing.T) {
		tokenizer := NewTokenizer(strings.Repeat("a ", 100))
		tokenizer.SetMaxTokens(10)
		tokens := tokenizer.Tokenize()
		if len(tokens) > 11 {
			t.Errorf("Expected at most 11 tokens, got %d", len(tokens))
		}
	})

	t.Run("LargeWhitespace", func(t *testing.T) {
		tokenizer := NewTokenizer(strings.Repeat(" \n", 50000) + "x 1;")
		tokens := tokenizer.Tokenize()
		if tokenizer.HasErrors() {
			t.Fatalf("Unexpected errors: %v", tokenizer.GetErrors())
		}
		if len(tokens) != 3 || tokens[0].Line != 50001 {
			t.Errorf("Expected 3 tokens starting on line 50001, got %d", len(tokens))
		}
	})
}

func TestJoinAndRender(t *testing.T) {
	tokenizer := NewTokenizer(`( 1 2.5 "s" w ) [0 1] { a 1 ; }`)
	got := Join(tokenizer.Tokenize())
	want := `(1 2.5 "s" w) [0 1] { a 1; }`
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	if r := NewFloat(3).Render(); r != "3.0" {
		t.Errorf("Expected integral float to render as 3.0, got %q", r)
	}
	if r := NewCompound([]Token{NewInt(1), NewWord("x")}).Render(); r != "(1 x)" {
		t.Errorf("Expected (1 x), got %q", r)
	}
}

func TestIsValidWord(t *testing.T) {
	tests := map[string]bool{
		"simple":     true,
		"div(phi,U)": true,
		"a.b:c":      true,
		"_under":     true,
		"":           false,
		"1abc":       false,
		"two words":  false,
		"a,b":        false,
		"f(x":        false,
		"x)":         false,
		"a;":         false,
		"a//b":       false,
		`q"`:         false,
	}
	for word, want := range tests {
		if got := IsValidWord(word); got != want {
			t.Errorf("IsValidWord(%q) = %v, want %v", word, got, want)
		}
	}
}
