package dictionary

import (
	"fmt"
	"io"
	"io/fs"

	"github.com/pkg/errors"

	"foamdict/pkg/keyword"
	"foamdict/pkg/token"
)

// Parse reads text into a new root dictionary named name
func Parse(name, text string, cfg *Config) (*Dictionary, error) {
	s, err := token.Parse(name, text)
	if err != nil {
		return nil, &Error{Kind: Syntax, Dict: name, Err: err}
	}
	return Read(name, s, cfg)
}

// ParseReader reads all of r into a new root dictionary
func ParseReader(name string, r io.Reader, cfg *Config) (*Dictionary, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", name)
	}
	return Parse(name, string(data), cfg)
}

// Read parses the entries of s into a new root dictionary. No partially read
// dictionary is returned on error.
func Read(name string, s *token.Stream, cfg *Config) (*Dictionary, error) {
	d := NewWithConfig(name, cfg)
	if err := d.Read(s); err != nil {
		return nil, err
	}
	return d, nil
}

// Read parses the entries of s into d, following the configured input mode
// for keywords d already holds
func (d *Dictionary) Read(s *token.Stream) error {
	cfg := d.config()
	p := &parser{s: s, cfg: cfg, mode: cfg.InputMode}
	return p.body(d, false)
}

type parser struct {
	s      *token.Stream
	cfg    *Config
	mode   InputMode
	depth  int
	source string // included file being read, empty at top level
}

func (p *parser) syntax(d *Dictionary, line int, format string, args ...any) error {
	return &Error{Kind: Syntax, Dict: d.Name(), Line: line, Msg: fmt.Sprintf(format, args...)}
}

// body reads entries until the end of input, or until '}' when nested
func (p *parser) body(d *Dictionary, nested bool) error {
	for {
		tok := p.s.Next()
		var err error

		switch {
		case tok.Kind == token.KindUndefined:
			if nested {
				return p.syntax(d, tok.Line, "missing '}' to close dictionary opened at line %d", d.startLine)
			}
			return nil

		case tok.IsPunct('}'):
			if !nested {
				return p.syntax(d, tok.Line, "unexpected '}'")
			}
			d.endLine = tok.Line
			return nil

		case tok.IsPunct(';'):
			continue

		case tok.Kind == token.KindDirective:
			err = p.directive(d, tok)

		case tok.Kind == token.KindVariable:
			err = p.substitution(d, tok)

		case tok.IsWord():
			err = p.entry(d, keyword.Literal(tok.Text), tok.Line)

		case tok.IsString():
			kw := keyword.Literal(tok.Text)
			if keyword.Classify(tok.Text) != keyword.KindLiteral {
				kw = keyword.New(tok.Text)
			}
			err = p.entry(d, kw, tok.Line)

		default:
			err = p.syntax(d, tok.Line, "expected a keyword, found %s", tok)
		}

		if err != nil {
			return err
		}
	}
}

// substitution splices the dictionary a $name keyword refers to
func (p *parser) substitution(d *Dictionary, tok token.Token) error {
	name := tok.VarName()
	if !d.SubstituteScopedKeyword(name, p.mode != InputProtect && p.mode != InputWarn) {
		return &Error{Kind: MissingEntry, Dict: d.Name(), Keyword: "$" + name, Line: tok.Line,
			Msg: "substitution does not name a dictionary"}
	}
	if p.s.Peek().IsPunct(';') {
		p.s.Next()
	}
	return nil
}

func (p *parser) entry(d *Dictionary, kw keyword.Keyword, line int) error {
	if p.s.Peek().IsPunct('{') {
		open := p.s.Next()
		return p.subDict(d, kw, line, open.Line)
	}

	values, endLine, err := p.value(d, kw)
	if err != nil {
		return err
	}

	e := &Entry{keyword: kw, startLine: line, endLine: endLine}
	if sub := dictReference(d, values); sub != nil {
		e.dict = sub
	} else if e.tokens, err = d.Expand(values); err != nil {
		return err
	}

	existing := d.lookupSlot(kw)
	if existing == nil {
		d.insert(e)
		return nil
	}
	return p.duplicate(d, existing, e)
}

// dictReference returns a copy of the dictionary a value consisting of a
// single $name refers to, or nil
func dictReference(d *Dictionary, values []token.Token) *Dictionary {
	if len(values) != 1 || values[0].Kind != token.KindVariable {
		return nil
	}
	s := d.SearchScoped(values[0].VarName(), keyword.MatchRegexRecursive)
	if !s.IsDict() {
		return nil
	}
	return s.Dict().Clone(d)
}

func (p *parser) duplicate(d *Dictionary, existing, e *Entry) error {
	switch p.mode {
	case InputMerge:
		if existing.IsDict() && e.IsDict() {
			existing.dict.merge(e.dict)
			return nil
		}
		d.replaceAt(d.indexOf(existing), e)
	case InputOverwrite:
		d.replaceAt(d.indexOf(existing), e)
	case InputWarn:
		p.cfg.logger().WithFields(logFields(d, e.keyword.Text(), e.startLine)).
			WithField("first", existing.startLine).Warn("duplicate entry ignored")
	case InputError:
		return &Error{Kind: DuplicateKey, Dict: d.Name(), Keyword: e.keyword.Text(), Line: e.startLine}
	}
	return nil
}

// subDict reads a { ... } body. The target dictionary is linked into d
// before its body is read so that the body can refer to it by name.
func (p *parser) subDict(d *Dictionary, kw keyword.Keyword, line, openLine int) error {
	existing := d.lookupSlot(kw)

	var target *Dictionary
	switch {
	case existing == nil:
		target = newDict(kw.Text(), d)
		d.insert(&Entry{keyword: kw, startLine: line, dict: target})

	case p.mode == InputError:
		return &Error{Kind: DuplicateKey, Dict: d.Name(), Keyword: kw.Text(), Line: line}

	case p.mode == InputProtect || p.mode == InputWarn:
		if p.mode == InputWarn {
			p.cfg.logger().WithFields(logFields(d, kw.Text(), line)).
				WithField("first", existing.startLine).Warn("duplicate entry ignored")
		}
		// read into a scratch dictionary that is never linked
		target = newDict(kw.Text(), d)

	case p.mode == InputMerge && existing.IsDict():
		target = existing.dict

	default:
		target = newDict(kw.Text(), d)
		d.replaceAt(d.indexOf(existing), &Entry{keyword: kw, startLine: line, dict: target})
	}

	if target.startLine == 0 {
		target.startLine = openLine
	}
	if err := p.body(target, true); err != nil {
		return err
	}
	if e := d.lookupSlot(kw); e != nil && e.dict == target {
		e.endLine = target.endLine
	}
	return nil
}

// value collects the tokens of a primitive entry up to its terminating ';'
func (p *parser) value(d *Dictionary, kw keyword.Keyword) ([]token.Token, int, error) {
	var values []token.Token
	depth := 0
	for {
		tok := p.s.Next()
		switch {
		case tok.Kind == token.KindUndefined:
			return nil, 0, &Error{Kind: MalformedEntry, Dict: d.Name(), Keyword: kw.Text(), Line: tok.Line,
				Msg: "unexpected end of input, missing ';'"}

		case tok.IsPunct(';') && depth == 0:
			if len(values) == 0 {
				return nil, 0, &Error{Kind: MalformedEntry, Dict: d.Name(), Keyword: kw.Text(), Line: tok.Line,
					Msg: "entry has no tokens"}
			}
			return values, tok.Line, nil

		case tok.IsPunct('(') || tok.IsPunct('[') || tok.IsPunct('{'):
			depth++

		case tok.IsPunct(')') || tok.IsPunct(']') || tok.IsPunct('}'):
			depth--
			if depth < 0 {
				return nil, 0, &Error{Kind: MalformedEntry, Dict: d.Name(), Keyword: kw.Text(), Line: tok.Line,
					Msg: fmt.Sprintf("unbalanced %s, missing ';'?", tok)}
			}
		}
		values = append(values, tok)
	}
}

func (p *parser) directive(d *Dictionary, tok token.Token) error {
	var err error
	switch tok.Text {
	case "include":
		err = p.include(d, tok, false)
	case "includeIfPresent", "sinclude":
		err = p.include(d, tok, true)
	case "remove":
		err = p.remove(d, tok)
	case "inputMode":
		err = p.inputMode(d, tok)
	default:
		return p.syntax(d, tok.Line, "unknown directive #%s", tok.Text)
	}
	if err != nil {
		return err
	}
	if p.s.Peek().IsPunct(';') {
		p.s.Next()
	}
	return nil
}

func (p *parser) include(d *Dictionary, tok token.Token, optional bool) error {
	arg := p.s.Next()
	if !arg.IsStringLike() {
		return p.syntax(d, tok.Line, "#%s expects a file name, found %s", tok.Text, arg)
	}
	name := arg.Text

	if p.cfg.Includer == nil {
		if optional {
			return nil
		}
		return p.syntax(d, tok.Line, "#include %q: includes are not enabled", name)
	}
	if p.cfg.MaxIncludeDepth > 0 && p.depth >= p.cfg.MaxIncludeDepth {
		return p.syntax(d, tok.Line, "#include %q: nesting deeper than %d", name, p.cfg.MaxIncludeDepth)
	}

	content, source, err := p.cfg.Includer(name, d, p.source)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return &Error{Kind: Syntax, Dict: d.Name(), Line: tok.Line, Err: errors.Wrapf(err, "#%s %q", tok.Text, name)}
	}

	s, err := token.Parse(source, content)
	if err != nil {
		return &Error{Kind: Syntax, Dict: d.Name(), Line: tok.Line, Err: errors.Wrapf(err, "#%s %q", tok.Text, name)}
	}
	sub := &parser{s: s, cfg: p.cfg, mode: p.mode, depth: p.depth + 1, source: source}
	return sub.body(d, false)
}

func (p *parser) remove(d *Dictionary, tok token.Token) error {
	var names []string
	arg := p.s.Next()
	switch {
	case arg.IsStringLike():
		names = append(names, arg.Text)
	case arg.IsPunct('('):
		for {
			item := p.s.Next()
			if item.IsPunct(')') {
				break
			}
			if !item.IsStringLike() {
				return p.syntax(d, tok.Line, "#remove expects keywords, found %s", item)
			}
			names = append(names, item.Text)
		}
	default:
		return p.syntax(d, tok.Line, "#remove expects a keyword or a list, found %s", arg)
	}

	for _, name := range names {
		d.RemovePattern(keyword.New(name))
	}
	return nil
}

func (p *parser) inputMode(d *Dictionary, tok token.Token) error {
	arg, err := p.s.ReadWord()
	if err != nil {
		return &Error{Kind: Syntax, Dict: d.Name(), Line: tok.Line, Err: err}
	}
	mode, err := ParseInputMode(arg)
	if err != nil {
		return &Error{Kind: Syntax, Dict: d.Name(), Line: tok.Line, Err: err}
	}
	p.mode = mode
	return nil
}
