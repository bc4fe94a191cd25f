package dictionary

import (
	"github.com/apex/log"

	"foamdict/pkg/keyword"
)

func logFields(d *Dictionary, key string, line int) log.Fields {
	f := log.Fields{"dict": d.Name(), "keyword": key}
	if line > 0 {
		f["line"] = line
	}
	return f
}

// Add inserts e. When the keyword exists and merge is set, dictionaries are
// merged and primitives replaced in place. Without merge the duplicate is
// discarded with a warning and Add returns nil. Otherwise Add returns the
// entry now held by d.
func (d *Dictionary) Add(e *Entry, merge bool) *Entry {
	if e == nil {
		return nil
	}
	if d.IsNull() {
		d.config().logger().WithField("keyword", e.keyword.Text()).Warn("cannot add to the null dictionary")
		return nil
	}
	if e.owner != nil && e.owner != d {
		e = e.Clone(d)
	}

	existing := d.lookupSlot(e.keyword)
	if existing == nil {
		d.insert(e)
		return e
	}
	if existing == e {
		return e
	}

	if !merge {
		dup := &Error{Kind: DuplicateKey, Dict: d.Name(), Keyword: e.keyword.Text(), Line: e.startLine}
		d.config().logger().WithFields(logFields(d, e.keyword.Text(), e.startLine)).
			WithError(dup).Warn("duplicate entry, keeping the first")
		return nil
	}
	if existing.IsDict() && e.IsDict() {
		existing.dict.merge(e.dict)
		return existing
	}
	d.replaceAt(d.indexOf(existing), e)
	return e
}

// Set inserts e, replacing any entry with the same keyword. A dictionary
// replacing a dictionary takes over the existing one's position and contents.
func (d *Dictionary) Set(e *Entry) *Entry {
	if e == nil {
		return nil
	}
	if existing := d.lookupSlot(e.keyword); existing != nil && existing != e && existing.IsDict() && e.IsDict() {
		existing.dict.Clear()
	}
	return d.Add(e, true)
}

// AddValue adds a primitive entry built from Go values; see ValueTokens
func (d *Dictionary) AddValue(key string, values ...any) error {
	e, err := NewValueEntry(key, values...)
	if err != nil {
		return err
	}
	d.Add(e, false)
	return nil
}

// SetValue sets a primitive entry built from Go values; see ValueTokens
func (d *Dictionary) SetValue(key string, values ...any) error {
	e, err := NewValueEntry(key, values...)
	if err != nil {
		return err
	}
	d.Set(e)
	return nil
}

// AddDict adds sub under key, or an empty dictionary when sub is nil, and
// returns the dictionary now held by d. sub is copied.
func (d *Dictionary) AddDict(key string, sub *Dictionary) *Dictionary {
	var content *Dictionary
	if sub == nil {
		content = New(key)
	} else {
		content = sub.Clone(nil)
	}
	e := d.Add(NewDictEntry(keyword.Literal(key), content), true)
	if e == nil {
		return nil
	}
	return e.dict
}

// Merge merges other into d: new keywords are appended, dictionaries merged
// recursively and differing primitives replaced in place. It reports whether
// d changed. Merging the same content twice changes nothing the second time.
func (d *Dictionary) Merge(other *Dictionary) (bool, error) {
	if other == d {
		return false, d.selfOperation("merge")
	}
	return d.merge(other), nil
}

func (d *Dictionary) merge(other *Dictionary) bool {
	changed := false
	for _, oe := range other.Entries() {
		existing := d.lookupSlot(oe.keyword)
		switch {
		case existing == nil:
			d.insert(oe.Clone(d))
			changed = true
		case existing.IsDict() && oe.IsDict():
			if existing.dict != oe.dict && existing.dict.merge(oe.dict) {
				changed = true
			}
		case existing.Equal(oe):
		default:
			d.replaceAt(d.indexOf(existing), oe.Clone(d))
			changed = true
		}
	}
	return changed
}

// Append adds a copy of every entry of other without merging (the += operator)
func (d *Dictionary) Append(other *Dictionary) error {
	if other == d {
		return d.selfOperation("append")
	}
	for _, oe := range other.Entries() {
		d.Add(oe.Clone(d), false)
	}
	return nil
}

// DefaultFill adds copies of the entries of other whose keywords d lacks (the |= operator)
func (d *Dictionary) DefaultFill(other *Dictionary) error {
	if other == d {
		return d.selfOperation("default fill")
	}
	for _, oe := range other.Entries() {
		if d.lookupSlot(oe.keyword) == nil {
			d.insert(oe.Clone(d))
		}
	}
	return nil
}

// Overwrite sets a copy of every entry of other (the <<= operator)
func (d *Dictionary) Overwrite(other *Dictionary) error {
	if other == d {
		return d.selfOperation("overwrite")
	}
	for _, oe := range other.Entries() {
		d.Set(oe.Clone(d))
	}
	return nil
}

// Assign replaces the content of d with a copy of other. Assigning d to
// itself does nothing.
func (d *Dictionary) Assign(other *Dictionary) {
	if other == d {
		return
	}
	entries := other.Entries()
	d.Clear()
	for _, oe := range entries {
		d.insert(oe.Clone(d))
	}
}

// Transfer moves the entries and the name of other into d, leaving other empty
func (d *Dictionary) Transfer(other *Dictionary) error {
	if other == d {
		return d.selfOperation("transfer")
	}
	entries := other.Entries()
	other.Clear()
	d.Clear()
	d.name = other.name
	for _, e := range entries {
		d.insert(e)
	}
	return nil
}

// Clear removes every entry
func (d *Dictionary) Clear() {
	for _, e := range d.entries {
		e.owner = nil
	}
	d.entries = nil
	d.byKey = make(map[string]*Entry)
	d.patterns.Clear()
}

// Remove deletes the entry stored under key, literal or pattern source
func (d *Dictionary) Remove(key string) bool {
	e := d.byKey[key]
	if e == nil {
		e, _ = d.patterns.Find(key)
	}
	if e == nil {
		return false
	}
	d.removeAt(d.indexOf(e))
	return true
}

// RemovePattern deletes every entry whose keyword kw matches, plus the
// pattern entry stored under kw itself. A literal kw behaves like Remove.
// It returns the number of entries removed.
func (d *Dictionary) RemovePattern(kw keyword.Keyword) int {
	if !kw.IsPattern() {
		if d.Remove(kw.Text()) {
			return 1
		}
		return 0
	}
	n := 0
	for i := len(d.entries) - 1; i >= 0; i-- {
		e := d.entries[i]
		if kw.Match(e.keyword.Text()) || (e.keyword.IsPattern() && e.keyword.Text() == kw.Text()) {
			d.removeAt(i)
			n++
		}
	}
	return n
}

// ChangeKeyword renames the entry stored under from. An entry already stored
// under to blocks the rename unless overwrite is set, in which case it is
// removed. The renamed entry keeps its position.
func (d *Dictionary) ChangeKeyword(from, to keyword.Keyword, overwrite bool) bool {
	if from.Equal(to) {
		return true
	}
	e := d.lookupSlot(from)
	if e == nil {
		d.config().logger().WithFields(logFields(d, from.Text(), 0)).Warn("cannot rename a missing entry")
		return false
	}
	if other := d.lookupSlot(to); other != nil {
		if !overwrite {
			d.config().logger().WithFields(logFields(d, to.Text(), other.startLine)).
				Warn("cannot rename onto an existing entry")
			return false
		}
		d.removeAt(d.indexOf(other))
	}
	i := d.indexOf(e)
	d.unlink(e)
	e.keyword = to
	d.link(e)
	d.entries[i] = e
	return true
}

func (d *Dictionary) selfOperation(op string) error {
	return &Error{Kind: SelfOperation, Dict: d.Name(), Msg: "attempted " + op + " of a dictionary with itself"}
}
