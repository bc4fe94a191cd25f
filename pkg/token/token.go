// Package token implements the lexical layer of the dictionary format: typed
// tokens, a rune-level tokenizer and a cursor-based token stream.
package token

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Kind represents the kind of a token
type Kind int

const (
	KindUndefined   Kind = iota
	KindPunctuation      // ; { } ( ) [ ] , : = + - * / ^ & ! < > ? | .
	KindWord             // bare word, may contain balanced parentheses
	KindString           // "quoted string"
	KindVariable         // $name, ${name}, $:a.b, $..a
	KindDirective        // #include, #remove, ...
	KindVerbatim         // #{ ... #}
	KindInteger
	KindFloat
	KindCompound // pre-parsed ( ... ) list
	KindError
)

var kindNames = map[Kind]string{
	KindUndefined:   "UNDEFINED",
	KindPunctuation: "PUNCT",
	KindWord:        "WORD",
	KindString:      "STRING",
	KindVariable:    "VARIABLE",
	KindDirective:   "DIRECTIVE",
	KindVerbatim:    "VERBATIM",
	KindInteger:     "INTEGER",
	KindFloat:       "FLOAT",
	KindCompound:    "COMPOUND",
	KindError:       "ERROR",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Flag carries per-token marker bits
type Flag uint8

const (
	// FlagPattern marks a string token that was read as a keyword pattern
	FlagPattern Flag = 1 << iota
)

// Token is a single lexical unit. Tokens are values: copy them freely, but
// never modify Items of a compound token after it was produced.
type Token struct {
	Kind  Kind
	Text  string  // word, string, variable, directive, verbatim, error message or number source
	Punct rune    // punctuation character
	Int   int64   // integer value
	Float float64 // floating point value
	Items  []Token // compound items
	Line   int
	Column int
	Flags  Flag
}

// NewPunct creates a punctuation token
func NewPunct(r rune) Token { return Token{Kind: KindPunctuation, Punct: r} }

// NewWord creates a word token
func NewWord(s string) Token { return Token{Kind: KindWord, Text: s} }

// NewString creates a string token
func NewString(s string) Token { return Token{Kind: KindString, Text: s} }

// NewVariable creates a variable token. name is the text following '$'.
func NewVariable(name string) Token { return Token{Kind: KindVariable, Text: name} }

// NewDirective creates a directive token. name is the text following '#'.
func NewDirective(name string) Token { return Token{Kind: KindDirective, Text: name} }

// NewVerbatim creates a verbatim token holding the text between #{ and #}
func NewVerbatim(s string) Token { return Token{Kind: KindVerbatim, Text: s} }

// NewInt creates an integer token
func NewInt(i int64) Token { return Token{Kind: KindInteger, Int: i} }

// NewFloat creates a floating point token
func NewFloat(f float64) Token { return Token{Kind: KindFloat, Float: f} }

// NewCompound creates a compound token from already parsed items
func NewCompound(items []Token) Token {
	return Token{Kind: KindCompound, Items: append([]Token(nil), items...)}
}

// NewError creates an error token carrying a diagnostic message
func NewError(msg string) Token { return Token{Kind: KindError, Text: msg} }

// WithLine returns a copy of the token carrying the given line number
func (t Token) WithLine(line int) Token {
	t.Line = line
	return t
}

// IsPunct reports whether the token is the punctuation character r
func (t Token) IsPunct(r rune) bool { return t.Kind == KindPunctuation && t.Punct == r }

// IsWord reports whether the token is a word
func (t Token) IsWord() bool { return t.Kind == KindWord }

// IsString reports whether the token is a quoted string
func (t Token) IsString() bool { return t.Kind == KindString }

// IsStringLike reports whether the token is a word or a string
func (t Token) IsStringLike() bool { return t.Kind == KindWord || t.Kind == KindString }

// IsNumber reports whether the token is an integer or a float
func (t Token) IsNumber() bool { return t.Kind == KindInteger || t.Kind == KindFloat }

// IsBad reports whether the token is undefined or an error
func (t Token) IsBad() bool { return t.Kind == KindUndefined || t.Kind == KindError }

// Number returns the numeric value of an integer or float token
func (t Token) Number() float64 {
	if t.Kind == KindInteger {
		return float64(t.Int)
	}
	return t.Float
}

// VarName returns the variable name without the surrounding braces
func (t Token) VarName() string {
	if t.Kind != KindVariable {
		return ""
	}
	if strings.HasPrefix(t.Text, "{") && strings.HasSuffix(t.Text, "}") {
		return t.Text[1 : len(t.Text)-1]
	}
	return t.Text
}

// Equal compares two tokens by kind and value, ignoring positions
func (t Token) Equal(o Token) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case KindPunctuation:
		return t.Punct == o.Punct
	case KindInteger:
		return t.Int == o.Int
	case KindFloat:
		return t.Float == o.Float || (math.IsNaN(t.Float) && math.IsNaN(o.Float))
	case KindCompound:
		if len(t.Items) != len(o.Items) {
			return false
		}
		for i := range t.Items {
			if !t.Items[i].Equal(o.Items[i]) {
				return false
			}
		}
		return true
	default:
		return t.Text == o.Text
	}
}

// String returns a debug representation of the token
func (t Token) String() string {
	switch t.Kind {
	case KindUndefined:
		return "EOF"
	case KindPunctuation:
		return fmt.Sprintf("PUNCT:%c", t.Punct)
	case KindCompound:
		return fmt.Sprintf("COMPOUND:%s", t.Render())
	default:
		return fmt.Sprintf("%s:%s", t.Kind, t.Render())
	}
}

// Render returns the token as it appears in dictionary text
func (t Token) Render() string {
	switch t.Kind {
	case KindPunctuation:
		return string(t.Punct)
	case KindWord, KindError:
		return t.Text
	case KindString:
		return Quote(t.Text)
	case KindVariable:
		return "$" + t.Text
	case KindDirective:
		return "#" + t.Text
	case KindVerbatim:
		return "#{" + t.Text + "#}"
	case KindInteger:
		if t.Text != "" {
			return t.Text
		}
		return strconv.FormatInt(t.Int, 10)
	case KindFloat:
		if t.Text != "" {
			return t.Text
		}
		s := strconv.FormatFloat(t.Float, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEn") {
			// keep integral floats floats when read back
			s += ".0"
		}
		return s
	case KindCompound:
		return Join(append(append([]Token{NewPunct('(')}, t.Items...), NewPunct(')')))
	default:
		return ""
	}
}

// Join renders a token sequence the way the writer lays out primitive values:
// single spaces, except directly inside brackets and before ';'.
func Join(tokens []Token) string {
	var b strings.Builder
	for i, tok := range tokens {
		if i > 0 {
			prev := tokens[i-1]
			if !prev.IsPunct('(') && !prev.IsPunct('[') && !tok.IsPunct(')') && !tok.IsPunct(']') && !tok.IsPunct(';') {
				b.WriteByte(' ')
			}
		}
		b.WriteString(tok.Render())
	}
	return b.String()
}

// Quote renders s as a double-quoted string with the escapes the tokenizer understands
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// IsValidWord reports whether s would be read back as a single word token
func IsValidWord(s string) bool {
	if s == "" {
		return false
	}
	depth := 0
	for i, r := range s {
		if i == 0 && !isWordStart(r) {
			return false
		}
		switch {
		case r == '(':
			depth++
		case r == ')':
			if depth == 0 {
				return false
			}
			depth--
		case r == ',' && depth == 0:
			return false
		case r == '/' && i+1 < len(s) && (s[i+1] == '/' || s[i+1] == '*'):
			return false
		case !isWordRune(r):
			return false
		}
	}
	return depth == 0
}

func isWordStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isWordRune(r rune) bool {
	return r != 0 && !unicode.IsSpace(r) && !strings.ContainsRune(`"';{}[]$`, r)
}
