package token

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// punctuation is the set of single-character punctuation tokens
const punctuation = ";{}()[],:=+-*/^&!<>?|.%~@"

// Tokenizer represents the tokenizer state
type Tokenizer struct {
	input     string
	pos       int // current position in input
	line      int // current line number
	column    int // current column number
	width     int // width of last rune read
	start     int // start position of current token
	startLine int // line of the start of the current token
	startCol  int // column of the start of the current token
	tokens    []Token
	maxTokens int // Maximum number of tokens to prevent OOM
	maxPos    int // Maximum position to prevent infinite loops
}

// NewTokenizer creates a new tokenizer
func NewTokenizer(input string) *Tokenizer {
	const maxTokensLimit = 1000000
	return &Tokenizer{
		input:     input,
		line:      1,
		column:    1,
		startLine: 1,
		startCol:  1,
		tokens:    make([]Token, 0, 256),
		maxTokens: maxTokensLimit,
		maxPos:    len(input) + 1000,
	}
}

// next reads the next rune and advances position
func (t *Tokenizer) next() rune {
	if t.pos >= len(t.input) {
		t.width = 0
		return 0
	}

	r, w := utf8.DecodeRuneInString(t.input[t.pos:])
	t.width = w
	t.pos += w

	if r == '\n' {
		t.line++
		t.column = 1
	} else {
		t.column++
	}

	return r
}

// backup steps back one rune
func (t *Tokenizer) backup() {
	t.pos -= t.width
	if t.pos < len(t.input) && t.input[t.pos] == '\n' {
		t.line--
		col := 1
		for i := t.pos - 1; i >= 0 && t.input[i] != '\n'; i-- {
			col++
		}
		t.column = col
	} else {
		t.column--
	}
}

// peek returns the next rune without advancing position
func (t *Tokenizer) peek() rune {
	r := t.next()
	t.backup()
	return r
}

// peekN returns the nth rune ahead without advancing position
func (t *Tokenizer) peekN(n int) rune {
	pos := t.pos
	line := t.line
	column := t.column

	var r rune
	for i := 0; i < n; i++ {
		r = t.next()
		if r == 0 {
			break
		}
	}

	t.pos = pos
	t.line = line
	t.column = column

	return r
}

// emit appends a token that started at the current token start
func (t *Tokenizer) emit(tok Token) {
	if len(t.tokens) >= t.maxTokens {
		if tok.Kind != KindError {
			t.tokens = append(t.tokens, NewError("too many tokens - possible infinite loop or memory exhaustion").WithLine(t.line))
		}
		return
	}
	tok = tok.WithLine(t.startLine)
	tok.Column = t.startCol
	t.tokens = append(t.tokens, tok)
	t.start = t.pos
}

// emitError creates an error token
func (t *Tokenizer) emitError(message string) {
	tok := NewError(message).WithLine(t.startLine)
	tok.Column = t.startCol
	t.tokens = append(t.tokens, tok)
	t.start = t.pos
}

// ignore discards the current token
func (t *Tokenizer) ignore() {
	t.start = t.pos
}

// Tokenize processes the input and returns all tokens. Whitespace and
// comments are discarded; line numbers keep counting through them.
func (t *Tokenizer) Tokenize() []Token {
	iterations := 0
	const maxIterations = 10000000

	for t.pos < len(t.input) {
		iterations++
		if iterations > maxIterations {
			t.emitError("tokenizer exceeded maximum iterations - possible infinite loop")
			break
		}
		if t.pos > t.maxPos {
			t.emitError("tokenizer position exceeded maximum bounds")
			break
		}

		oldPos := t.pos
		t.start = t.pos
		t.startLine = t.line
		t.startCol = t.column

		r := t.next()

		switch {
		case r == 0:
			return t.tokens

		case unicode.IsSpace(r):
			t.scanWhitespace()

		case r == '/' && (t.peek() == '/' || t.peek() == '*'):
			t.scanComment()

		case r == '"':
			t.scanString()

		case r == '$':
			t.scanVariable()

		case r == '#':
			t.scanHash()

		case isDigit(r) || (r == '-' || r == '+' || r == '.') && t.startsNumber(r):
			t.scanNumber()

		case isWordStart(r):
			t.scanWord()

		case strings.ContainsRune(punctuation, r):
			t.emit(NewPunct(r))

		default:
			t.emitError(fmt.Sprintf("unexpected character %q", r))
		}

		if t.pos == oldPos {
			t.emitError(fmt.Sprintf("tokenizer stuck at position %d", t.pos))
			t.pos++
		}

		if len(t.tokens) >= t.maxTokens {
			break
		}
	}

	return t.tokens
}

// HasErrors returns true if the tokenizer encountered any errors
func (t *Tokenizer) HasErrors() bool {
	for _, token := range t.tokens {
		if token.Kind == KindError {
			return true
		}
	}
	return false
}

// GetErrors returns all error tokens
func (t *Tokenizer) GetErrors() []Token {
	var errors []Token
	for _, token := range t.tokens {
		if token.Kind == KindError {
			errors = append(errors, token)
		}
	}
	return errors
}

// SetMaxTokens sets the maximum number of tokens (for testing purposes)
func (t *Tokenizer) SetMaxTokens(max int) {
	t.maxTokens = max
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// startsNumber reports whether a sign or dot just consumed begins a number
func (t *Tokenizer) startsNumber(r rune) bool {
	next := t.peek()
	if isDigit(next) {
		return true
	}
	return r != '.' && next == '.' && isDigit(t.peekN(2))
}

// scanWhitespace skips a run of whitespace
func (t *Tokenizer) scanWhitespace() {
	for unicode.IsSpace(t.peek()) {
		t.next()
	}
	t.ignore()
}

// scanComment skips // and /* */ comments
func (t *Tokenizer) scanComment() {
	const maxCommentLength = 1000000

	if t.next() == '/' {
		for count := 0; ; count++ {
			if count > maxCommentLength {
				t.emitError("comment too long - possible infinite loop")
				return
			}
			r := t.next()
			if r == '\n' || r == 0 {
				break
			}
		}
		t.ignore()
		return
	}

	for count := 0; ; count++ {
		if count > maxCommentLength {
			t.emitError("block comment too long - possible infinite loop")
			return
		}
		r := t.next()
		if r == 0 {
			t.emitError("unterminated block comment")
			return
		}
		if r == '*' && t.peek() == '/' {
			t.next()
			break
		}
	}
	t.ignore()
}

// scanString scans a string literal and decodes its escapes
func (t *Tokenizer) scanString() {
	const maxStringLength = 1000000
	var b strings.Builder

	for count := 0; ; count++ {
		if count > maxStringLength {
			t.emitError("string literal too long - possible infinite loop")
			return
		}
		r := t.next()
		if r == 0 || r == '\n' {
			t.emitError("unterminated string literal")
			return
		}
		if r == '"' {
			break
		}
		if r == '\\' {
			esc := t.next()
			switch esc {
			case 0:
				t.emitError("unterminated string literal - EOF after escape")
				return
			case '"', '\\':
				b.WriteRune(esc)
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte('\\')
				b.WriteRune(esc)
			}
			continue
		}
		b.WriteRune(r)
	}
	t.emit(NewString(b.String()))
}

// scanVariable scans $name, ${name} and the scoped forms $:a.b, $..a, $a/b
func (t *Tokenizer) scanVariable() {
	if t.peek() == '{' {
		t.next()
		for {
			r := t.next()
			if r == 0 || r == '\n' {
				t.emitError("unterminated ${ variable")
				return
			}
			if r == '}' {
				break
			}
		}
		name := t.input[t.start+1 : t.pos]
		if name == "{}" {
			t.emitError("empty variable name")
			return
		}
		t.emit(NewVariable(name))
		return
	}

	for isVariableRune(t.peek()) {
		t.next()
	}
	name := t.input[t.start+1 : t.pos]
	if name == "" {
		t.emitError("missing variable name after '$'")
		return
	}
	t.emit(NewVariable(name))
}

func isVariableRune(r rune) bool {
	return unicode.IsLetter(r) || isDigit(r) || r == '_' || r == '.' || r == ':' || r == '/'
}

// scanHash scans #directive and #{ verbatim #} blocks
func (t *Tokenizer) scanHash() {
	if t.peek() == '{' {
		t.next()
		bodyStart := t.pos
		for {
			r := t.next()
			if r == 0 {
				t.emitError("unterminated verbatim block")
				return
			}
			if r == '#' && t.peek() == '}' {
				body := t.input[bodyStart : t.pos-1]
				t.next()
				t.emit(NewVerbatim(body))
				return
			}
		}
	}

	if !isWordStart(t.peek()) {
		t.emitError("expected directive name after '#'")
		return
	}
	for r := t.peek(); unicode.IsLetter(r) || isDigit(r) || r == '_'; r = t.peek() {
		t.next()
	}
	t.emit(NewDirective(t.input[t.start+1 : t.pos]))
}

// scanNumber scans a numeric literal. Anything that is not a valid integer or
// float becomes an error token.
func (t *Tokenizer) scanNumber() {
	const maxNumberLength = 100
	prev := rune(0)

	for count := 0; ; count++ {
		if count > maxNumberLength {
			t.emitError("number too long")
			return
		}
		r := t.peek()
		if isDigit(r) || r == '.' || r == '_' || unicode.IsLetter(r) {
			prev = t.next()
			continue
		}
		if (r == '+' || r == '-') && (prev == 'e' || prev == 'E') {
			prev = t.next()
			continue
		}
		break
	}

	text := t.input[t.start:t.pos]
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		tok := NewInt(i)
		tok.Text = text
		t.emit(tok)
		return
	}
	if !strings.ContainsAny(text, "xXpP_") {
		if f, err := strconv.ParseFloat(text, 64); err == nil {
			tok := NewFloat(f)
			tok.Text = text
			t.emit(tok)
			return
		}
	}
	t.emitError(fmt.Sprintf("malformed number %q", text))
}

// scanWord scans a bare word. Parentheses are part of the word as long as
// they balance, so div(phi,U) is one token.
func (t *Tokenizer) scanWord() {
	const maxWordLength = 10000
	depth := 0

	for count := 0; ; count++ {
		if count > maxWordLength {
			t.emitError("word too long - possible infinite loop")
			return
		}
		r := t.peek()
		if r == '(' {
			depth++
		} else if r == ')' {
			if depth == 0 {
				break
			}
			depth--
		} else if r == ',' && depth == 0 {
			break
		} else if r == '/' && (t.peekN(2) == '/' || t.peekN(2) == '*') {
			break
		} else if !isWordRune(r) {
			break
		}
		t.next()
	}

	if depth != 0 {
		t.emitError(fmt.Sprintf("unbalanced parentheses in word %q", t.input[t.start:t.pos]))
		return
	}
	t.emit(NewWord(t.input[t.start:t.pos]))
}
