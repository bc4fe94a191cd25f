package token

import (
	"fmt"
	"strings"
)

// UnexpectedError reports a token that does not fit what a reader expected
type UnexpectedError struct {
	Stream   string
	Expected string
	Found    Token
}

func (e *UnexpectedError) Error() string {
	found := "end of input"
	if e.Found.Kind != KindUndefined {
		found = e.Found.String()
	}
	if e.Found.Line > 0 {
		return fmt.Sprintf("expected %s, found %s at line %d", e.Expected, found, e.Found.Line)
	}
	return fmt.Sprintf("expected %s, found %s", e.Expected, found)
}

// Stream is a token sequence with a read cursor. The cursor always stays in
// [0, Len()]; reading past the end yields an undefined token and puts the
// stream into the bad state.
type Stream struct {
	name    string
	tokens  []Token
	pos     int
	pending *Token
	line    int
	bad     bool
}

// NewStream creates a stream over tokens
func NewStream(name string, tokens []Token) *Stream {
	s := &Stream{name: name, tokens: tokens}
	if len(tokens) > 0 {
		s.line = tokens[0].Line
	}
	return s
}

// Parse tokenizes input into a stream. The first tokenizer error is returned
// together with its line number.
func Parse(name, input string) (*Stream, error) {
	tokenizer := NewTokenizer(input)
	tokens := tokenizer.Tokenize()

	if tokenizer.HasErrors() {
		errors := tokenizer.GetErrors()
		return nil, fmt.Errorf("tokenizer error in %s at line %d: %s", name, errors[0].Line, errors[0].Text)
	}

	return NewStream(name, tokens), nil
}

// Name returns the stream name used in diagnostics
func (s *Stream) Name() string { return s.name }

// Len returns the total number of tokens
func (s *Stream) Len() int { return len(s.tokens) }

// Tokens returns a copy of all tokens regardless of the cursor
func (s *Stream) Tokens() []Token { return append([]Token(nil), s.tokens...) }

// Next consumes and returns the next token
func (s *Stream) Next() Token {
	if s.pending != nil {
		tok := *s.pending
		s.pending = nil
		s.line = tok.Line
		return tok
	}
	if s.pos >= len(s.tokens) {
		s.bad = true
		return Token{Kind: KindUndefined, Line: s.line}
	}
	tok := s.tokens[s.pos]
	s.pos++
	if tok.Line > 0 {
		s.line = tok.Line
	}
	return tok
}

// Peek returns the next token without consuming it
func (s *Stream) Peek() Token {
	if s.pending != nil {
		return *s.pending
	}
	if s.pos >= len(s.tokens) {
		return Token{Kind: KindUndefined, Line: s.line}
	}
	return s.tokens[s.pos]
}

// PushBack un-reads a single token. Only one token may be pending at a time.
func (s *Stream) PushBack(tok Token) error {
	if s.pending != nil {
		return fmt.Errorf("%s: put back another token while one is already pending", s.name)
	}
	s.pending = &tok
	s.bad = false
	return nil
}

// Remaining returns the number of unread tokens, including a pushed back one
func (s *Stream) Remaining() int {
	n := len(s.tokens) - s.pos
	if s.pending != nil {
		n++
	}
	return n
}

// EOF reports whether every token has been consumed
func (s *Stream) EOF() bool { return s.Remaining() == 0 }

// Bad reports whether a read went past the end of the stream
func (s *Stream) Bad() bool { return s.bad }

// Good reports whether the stream has tokens left and no failed read
func (s *Stream) Good() bool { return !s.bad && !s.EOF() }

// LineNumber returns the line of the most recently read token
func (s *Stream) LineNumber() int { return s.line }

// Rewind resets the cursor to the first token
func (s *Stream) Rewind() {
	s.pos = 0
	s.pending = nil
	s.bad = false
	if len(s.tokens) > 0 {
		s.line = s.tokens[0].Line
	}
}

// String renders the remaining tokens
func (s *Stream) String() string {
	var rest []Token
	if s.pending != nil {
		rest = append(rest, *s.pending)
	}
	rest = append(rest, s.tokens[s.pos:]...)
	return Join(rest)
}

func (s *Stream) unexpected(expected string, found Token) error {
	return &UnexpectedError{Stream: s.name, Expected: expected, Found: found}
}

// ReadInt reads an integer token
func (s *Stream) ReadInt() (int64, error) {
	tok := s.Next()
	if tok.Kind != KindInteger {
		return 0, s.unexpected("integer", tok)
	}
	return tok.Int, nil
}

// ReadFloat reads an integer or float token as a float
func (s *Stream) ReadFloat() (float64, error) {
	tok := s.Next()
	if !tok.IsNumber() {
		return 0, s.unexpected("number", tok)
	}
	return tok.Number(), nil
}

// ReadWord reads a word token
func (s *Stream) ReadWord() (string, error) {
	tok := s.Next()
	if tok.Kind != KindWord {
		return "", s.unexpected("word", tok)
	}
	return tok.Text, nil
}

// ReadString reads a string or word token
func (s *Stream) ReadString() (string, error) {
	tok := s.Next()
	if !tok.IsStringLike() {
		return "", s.unexpected("string", tok)
	}
	return tok.Text, nil
}

var switchWords = map[string]bool{
	"true": true, "false": false,
	"on": true, "off": false,
	"yes": true, "no": false,
	"y": true, "n": false,
	"t": true, "f": false,
	"none": false,
}

// ReadBool reads a switch word (true/false, on/off, yes/no, ...) or 0/1
func (s *Stream) ReadBool() (bool, error) {
	tok := s.Next()
	switch tok.Kind {
	case KindWord:
		if v, ok := switchWords[strings.ToLower(tok.Text)]; ok {
			return v, nil
		}
	case KindInteger:
		return tok.Int != 0, nil
	}
	return false, s.unexpected("switch (true/false, on/off, yes/no)", tok)
}

// ReadCompound reads a ( ... ) list into a compound token. Nested lists become
// nested compounds. A leading size, as in 3(1 2 3), is checked against the
// number of items.
func (s *Stream) ReadCompound() (Token, error) {
	size := int64(-1)
	open := s.Next()
	if open.Kind == KindInteger && s.Peek().IsPunct('(') {
		size = open.Int
		open = s.Next()
	}
	if !open.IsPunct('(') {
		return Token{}, s.unexpected("'('", open)
	}

	var items []Token
	for {
		tok := s.Next()
		switch {
		case tok.Kind == KindUndefined:
			return Token{}, fmt.Errorf("%s: unterminated list starting at line %d", s.name, open.Line)
		case tok.IsPunct(')'):
			if size >= 0 && int64(len(items)) != size {
				return Token{}, fmt.Errorf("%s: list at line %d declares %d items but has %d", s.name, open.Line, size, len(items))
			}
			return NewCompound(items).WithLine(open.Line), nil
		case tok.IsPunct('('):
			if err := s.PushBack(tok); err != nil {
				return Token{}, err
			}
			nested, err := s.ReadCompound()
			if err != nil {
				return Token{}, err
			}
			items = append(items, nested)
		default:
			items = append(items, tok)
		}
	}
}
