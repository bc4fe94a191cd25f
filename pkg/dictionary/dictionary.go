// Package dictionary implements the hierarchical keyword dictionary: an
// ordered collection of entries with a literal hash index, a list of keyword
// patterns and a link to the enclosing scope. It parses, queries, mutates and
// serializes dictionaries in OpenFOAM dictionary syntax.
package dictionary

import (
	"sort"
	"strings"

	"foamdict/pkg/keyword"
)

// Dictionary is an ordered, indexed collection of entries. The entry slice is
// authoritative; byKey and patterns are indexes into it and are maintained by
// link and unlink only.
type Dictionary struct {
	name      string
	parent    *Dictionary
	entries   []*Entry
	byKey     map[string]*Entry
	patterns  keyword.Patterns[*Entry]
	cfg       *Config
	startLine int
	endLine   int
}

var null = &Dictionary{name: "null", byKey: map[string]*Entry{}}

// Null returns the shared empty dictionary that parents every root
func Null() *Dictionary { return null }

// IsNull reports whether d is the shared empty dictionary
func (d *Dictionary) IsNull() bool { return d == null || d == nil }

func newDict(name string, parent *Dictionary) *Dictionary {
	if parent == nil {
		parent = null
	}
	return &Dictionary{name: name, parent: parent, byKey: make(map[string]*Entry)}
}

// New creates an empty root dictionary
func New(name string) *Dictionary {
	return newDict(name, null)
}

// NewWithConfig creates an empty root dictionary carrying cfg for its whole tree
func NewWithConfig(name string, cfg *Config) *Dictionary {
	d := newDict(name, null)
	d.cfg = cfg
	return d
}

// Name returns the dot-separated path from the root, root name included
func (d *Dictionary) Name() string {
	if d.IsNull() {
		return ""
	}
	if d.parent.IsNull() {
		return d.name
	}
	if pn := d.parent.Name(); pn != "" {
		return pn + "." + d.name
	}
	return d.name
}

// DictName returns the local name of the dictionary
func (d *Dictionary) DictName() string { return d.name }

// RelativeName returns the dot-separated path below the top dictionary
func (d *Dictionary) RelativeName() string {
	if d.IsNull() || d.parent.IsNull() {
		return ""
	}
	if pn := d.parent.RelativeName(); pn != "" {
		return pn + "." + d.name
	}
	return d.name
}

// SetName renames the dictionary
func (d *Dictionary) SetName(name string) { d.name = name }

// Parent returns the enclosing dictionary, Null() for roots
func (d *Dictionary) Parent() *Dictionary { return d.parent }

// TopDict returns the root of the tree d belongs to
func (d *Dictionary) TopDict() *Dictionary {
	top := d
	for !top.parent.IsNull() {
		top = top.parent
	}
	return top
}

// Config returns the configuration in effect for d
func (d *Dictionary) Config() *Config { return d.config() }

// SetConfig attaches cfg to d and everything below it that has none of its own
func (d *Dictionary) SetConfig(cfg *Config) { d.cfg = cfg }

func (d *Dictionary) config() *Config {
	for p := d; !p.IsNull(); p = p.parent {
		if p.cfg != nil {
			return p.cfg
		}
	}
	return defaultConfig
}

// StartLine returns the line of the opening brace, 0 for roots
func (d *Dictionary) StartLine() int { return d.startLine }

// EndLine returns the line of the closing brace, 0 for roots
func (d *Dictionary) EndLine() int { return d.endLine }

// Len returns the number of entries
func (d *Dictionary) Len() int { return len(d.entries) }

// Empty reports whether the dictionary has no entries
func (d *Dictionary) Empty() bool { return len(d.entries) == 0 }

// Entries returns the entries in insertion order. The slice is a copy; the
// entries are not.
func (d *Dictionary) Entries() []*Entry {
	return append([]*Entry(nil), d.entries...)
}

// Toc returns the keywords in insertion order
func (d *Dictionary) Toc() []string {
	toc := make([]string, len(d.entries))
	for i, e := range d.entries {
		toc[i] = e.keyword.Text()
	}
	return toc
}

// SortedToc returns the keywords in lexical order
func (d *Dictionary) SortedToc() []string {
	toc := d.Toc()
	sort.Strings(toc)
	return toc
}

// Keys returns the literal keywords, or the pattern keywords when patterns is set
func (d *Dictionary) Keys(patterns bool) []string {
	var keys []string
	for _, e := range d.entries {
		if e.keyword.IsPattern() == patterns {
			keys = append(keys, e.keyword.Text())
		}
	}
	return keys
}

// Clone deep-copies d as a child of parent. A nil parent makes the copy a root.
func (d *Dictionary) Clone(parent *Dictionary) *Dictionary {
	c := newDict(d.name, parent)
	c.cfg = d.cfg
	c.startLine, c.endLine = d.startLine, d.endLine
	for _, e := range d.entries {
		c.insert(e.Clone(c))
	}
	return c
}

// Equal compares entries in order; names, lines and parents are ignored
func (d *Dictionary) Equal(o *Dictionary) bool {
	if d == o {
		return true
	}
	if o == nil || len(d.entries) != len(o.entries) {
		return false
	}
	for i := range d.entries {
		if !d.entries[i].Equal(o.entries[i]) {
			return false
		}
	}
	return true
}

// link registers e in the indexes and makes d its owner
func (d *Dictionary) link(e *Entry) {
	e.owner = d
	if e.dict != nil {
		e.dict.parent = d
		e.dict.name = e.keyword.Text()
	}
	if e.keyword.IsPattern() {
		d.patterns.Add(e.keyword, e)
	} else {
		d.byKey[e.keyword.Text()] = e
	}
}

// unlink removes e from the indexes
func (d *Dictionary) unlink(e *Entry) {
	if e.keyword.IsPattern() {
		d.patterns.Remove(e)
	} else if d.byKey[e.keyword.Text()] == e {
		delete(d.byKey, e.keyword.Text())
	}
	e.owner = nil
}

func (d *Dictionary) insert(e *Entry) {
	d.entries = append(d.entries, e)
	d.link(e)
}

func (d *Dictionary) replaceAt(i int, e *Entry) {
	old := d.entries[i]
	d.entries[i] = e
	if old.keyword.IsPattern() && e.keyword.IsPattern() {
		// keep the pattern priority of the replaced entry
		d.patterns.Replace(old, e.keyword, e)
		old.owner = nil
		e.owner = d
		if e.dict != nil {
			e.dict.parent = d
			e.dict.name = e.keyword.Text()
		}
		return
	}
	d.unlink(old)
	d.link(e)
}

func (d *Dictionary) removeAt(i int) *Entry {
	e := d.entries[i]
	d.unlink(e)
	d.entries = append(d.entries[:i], d.entries[i+1:]...)
	return e
}

func (d *Dictionary) indexOf(e *Entry) int {
	for i, x := range d.entries {
		if x == e {
			return i
		}
	}
	return -1
}

// lookupSlot returns the entry stored under exactly kw: the literal with the
// same text, or the pattern with the same source.
func (d *Dictionary) lookupSlot(kw keyword.Keyword) *Entry {
	if kw.IsPattern() {
		e, _ := d.patterns.Find(kw.Text())
		return e
	}
	return d.byKey[kw.Text()]
}

// String renders the dictionary body in dictionary syntax
func (d *Dictionary) String() string {
	var b strings.Builder
	_ = d.Write(&b)
	return b.String()
}
