package dictionary

import (
	"strings"

	"foamdict/pkg/keyword"
	"foamdict/pkg/token"
)

// Entry is one node of a dictionary: a keyword with either a primitive value
// (a token sequence) or a nested dictionary. Exactly one of the two is set.
type Entry struct {
	keyword   keyword.Keyword
	startLine int
	endLine   int
	owner     *Dictionary // non-owning; nil until the entry is added somewhere

	tokens []token.Token // primitive payload
	dict   *Dictionary   // dictionary payload
}

// NewPrimitiveEntry creates an entry holding a token sequence
func NewPrimitiveEntry(kw keyword.Keyword, tokens ...token.Token) *Entry {
	return &Entry{keyword: kw, tokens: append([]token.Token{}, tokens...)}
}

// NewDictEntry creates an entry holding d. The entry takes ownership of d;
// a nil d is replaced by an empty dictionary.
func NewDictEntry(kw keyword.Keyword, d *Dictionary) *Entry {
	if d == nil {
		d = New("")
	}
	d.name = kw.Text()
	return &Entry{keyword: kw, dict: d}
}

// NewValueEntry creates a literal-keyword entry from Go values; see ValueTokens
func NewValueEntry(key string, values ...any) (*Entry, error) {
	toks, err := ValueTokens(values...)
	if err != nil {
		return nil, &Error{Kind: InvalidInput, Keyword: key, Err: err}
	}
	return NewPrimitiveEntry(keyword.Literal(key), toks...), nil
}

// Keyword returns the entry keyword
func (e *Entry) Keyword() keyword.Keyword { return e.keyword }

// StartLine returns the first source line of the entry, 0 if unknown
func (e *Entry) StartLine() int { return e.startLine }

// EndLine returns the last source line of the entry, 0 if unknown
func (e *Entry) EndLine() int { return e.endLine }

// Owner returns the dictionary holding the entry, nil if detached
func (e *Entry) Owner() *Dictionary { return e.owner }

// IsDict reports whether the entry holds a dictionary
func (e *Entry) IsDict() bool { return e.dict != nil }

// Dict returns the nested dictionary, nil for primitive entries
func (e *Entry) Dict() *Dictionary { return e.dict }

// Tokens returns a copy of the primitive value, nil for dictionary entries
func (e *Entry) Tokens() []token.Token {
	if e.dict != nil {
		return nil
	}
	return append([]token.Token{}, e.tokens...)
}

// Stream returns a fresh stream over the primitive value
func (e *Entry) Stream() *token.Stream {
	return token.NewStream(e.Name(), e.Tokens())
}

// Name returns the dot-separated name of the entry
func (e *Entry) Name() string {
	if e.owner == nil || e.owner.Name() == "" {
		return e.keyword.Text()
	}
	return e.owner.Name() + "." + e.keyword.Text()
}

// Clone deep-copies the entry for a new owner
func (e *Entry) Clone(owner *Dictionary) *Entry {
	c := &Entry{
		keyword:   e.keyword,
		startLine: e.startLine,
		endLine:   e.endLine,
		owner:     owner,
	}
	if e.dict != nil {
		c.dict = e.dict.Clone(owner)
		c.dict.name = e.keyword.Text()
	} else {
		c.tokens = append([]token.Token{}, e.tokens...)
	}
	return c
}

// Equal compares keyword and content; line numbers and owners are ignored
func (e *Entry) Equal(o *Entry) bool {
	if e == o {
		return true
	}
	if o == nil || !e.keyword.Equal(o.keyword) || e.IsDict() != o.IsDict() {
		return false
	}
	if e.IsDict() {
		return e.dict.Equal(o.dict)
	}
	if len(e.tokens) != len(o.tokens) {
		return false
	}
	for i := range e.tokens {
		if !e.tokens[i].Equal(o.tokens[i]) {
			return false
		}
	}
	return true
}

// String renders the entry in dictionary syntax
func (e *Entry) String() string {
	var b strings.Builder
	w := newWriter(&b, false)
	w.entry(e)
	return b.String()
}

// check validates that the stream was non-empty and fully consumed
func (e *Entry) check(s *token.Stream) error {
	if s.Len() == 0 {
		return &Error{Kind: MalformedEntry, Dict: e.ownerName(), Keyword: e.keyword.Text(), Line: e.startLine, Msg: "entry has no tokens"}
	}
	if n := s.Remaining(); n > 0 {
		return &Error{Kind: MalformedEntry, Dict: e.ownerName(), Keyword: e.keyword.Text(), Line: s.LineNumber(), Remaining: n,
			Msg: "excess tokens " + s.String()}
	}
	return nil
}

func (e *Entry) ownerName() string {
	if e.owner == nil {
		return ""
	}
	return e.owner.Name()
}

// CheckStream validates a value stream after it was read: it must have held
// at least one token and none may be left over.
func CheckStream(s *token.Stream, key string) error {
	if s.Len() == 0 {
		return &Error{Kind: MalformedEntry, Dict: s.Name(), Keyword: key, Line: s.LineNumber(), Msg: "entry has no tokens"}
	}
	if n := s.Remaining(); n > 0 {
		return &Error{Kind: MalformedEntry, Dict: s.Name(), Keyword: key, Line: s.LineNumber(), Remaining: n,
			Msg: "excess tokens " + s.String()}
	}
	return nil
}
