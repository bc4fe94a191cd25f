package dictionary

import (
	"bytes"
	"io"
	"strings"

	"foamdict/pkg/keyword"
	"foamdict/pkg/token"
)

const (
	keywordWidth = 16
	indentWidth  = 4
)

type writer struct {
	w       io.Writer
	compact bool
	indent  int
	first   bool
	err     error
}

func newWriter(w io.Writer, compact bool) *writer {
	return &writer{w: w, compact: compact, first: true}
}

func (w *writer) write(s string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.w, s)
}

func (w *writer) pad() {
	w.write(strings.Repeat(" ", w.indent*indentWidth))
}

// sep starts a compact entry; entries on one line are space separated
func (w *writer) sep() {
	if !w.first {
		w.write(" ")
	}
	w.first = false
}

func (w *writer) dict(d *Dictionary) {
	for _, e := range d.entries {
		w.entry(e)
	}
}

func (w *writer) entry(e *Entry) {
	kw := keywordText(e.keyword)

	if w.compact {
		w.sep()
		w.write(kw)
		if e.IsDict() {
			w.write(" {")
			w.first = false
			w.dict(e.dict)
			w.write(" }")
			return
		}
		w.write(" ")
		w.write(token.Join(e.tokens))
		w.write(";")
		return
	}

	w.pad()
	w.write(kw)
	if e.IsDict() {
		w.write("\n")
		w.pad()
		w.write("{\n")
		w.indent++
		w.dict(e.dict)
		w.indent--
		w.pad()
		w.write("}\n")
		return
	}
	if n := keywordWidth - len(kw); n > 1 {
		w.write(strings.Repeat(" ", n))
	} else {
		w.write(" ")
	}
	w.write(token.Join(e.tokens))
	w.write(";\n")
}

// keywordText renders a keyword so that it reads back with the same kind
func keywordText(kw keyword.Keyword) string {
	if !kw.IsPattern() && token.IsValidWord(kw.Text()) {
		return kw.Text()
	}
	return token.Quote(kw.Text())
}

// Write writes the entries of d in dictionary layout: keywords padded to a
// fixed column, nested dictionaries indented with braces on their own lines
func (d *Dictionary) Write(w io.Writer) error {
	wr := newWriter(w, false)
	wr.dict(d)
	return wr.err
}

// WriteCompact writes the entries of d on a single line. This is the
// canonical form the digest is computed over.
func (d *Dictionary) WriteCompact(w io.Writer) error {
	wr := newWriter(w, true)
	wr.dict(d)
	return wr.err
}

// Bytes returns the dictionary layout of d
func (d *Dictionary) Bytes() []byte {
	var b bytes.Buffer
	_ = d.Write(&b)
	return b.Bytes()
}

// Tokens returns the token sequence of the compact form of d
func (d *Dictionary) Tokens() ([]token.Token, error) {
	var b strings.Builder
	if err := d.WriteCompact(&b); err != nil {
		return nil, err
	}
	s, err := token.Parse(d.Name(), b.String())
	if err != nil {
		return nil, &Error{Kind: Syntax, Dict: d.Name(), Err: err}
	}
	return s.Tokens(), nil
}
