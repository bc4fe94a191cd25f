package dictionary

import (
	"foamdict/pkg/keyword"
	"foamdict/pkg/token"
)

// Find returns the entry for key, nil if there is none
func (d *Dictionary) Find(key string, opt keyword.MatchOption) *Entry {
	return d.Search(key, opt).Entry()
}

// FindScoped is Find with scoped key syntax
func (d *Dictionary) FindScoped(key string, opt keyword.MatchOption) *Entry {
	return d.SearchScoped(key, opt).Entry()
}

// Found reports whether key has an entry
func (d *Dictionary) Found(key string, opt keyword.MatchOption) bool {
	return d.Search(key, opt).Found()
}

// FindDict returns the sub-dictionary for key, nil if absent or primitive
func (d *Dictionary) FindDict(key string, opt keyword.MatchOption) *Dictionary {
	return d.Search(key, opt).Dict()
}

// Lookup returns the entry for key, matching patterns in this dictionary
func (d *Dictionary) Lookup(key string) (*Entry, error) {
	return d.LookupEntry(key, keyword.MatchRegex)
}

// LookupEntry returns the entry for key or a MissingEntry error
func (d *Dictionary) LookupEntry(key string, opt keyword.MatchOption) (*Entry, error) {
	if e := d.Find(key, opt); e != nil {
		return e, nil
	}
	return nil, d.missing(key)
}

// LookupScoped is LookupEntry with scoped key syntax
func (d *Dictionary) LookupScoped(key string, opt keyword.MatchOption) (*Entry, error) {
	if e := d.FindScoped(key, opt); e != nil {
		return e, nil
	}
	return nil, d.missing(key)
}

// LookupStream returns a fresh stream over the value of a primitive entry
func (d *Dictionary) LookupStream(key string, opt keyword.MatchOption) (*token.Stream, error) {
	e, err := d.LookupEntry(key, opt)
	if err != nil {
		return nil, err
	}
	if e.IsDict() {
		return nil, &Error{Kind: InvalidInput, Dict: d.Name(), Keyword: key, Line: e.startLine,
			Msg: "expected a primitive entry, found a dictionary"}
	}
	return e.Stream(), nil
}

// SubDict returns the sub-dictionary for key
func (d *Dictionary) SubDict(key string) (*Dictionary, error) {
	e, err := d.LookupEntry(key, keyword.MatchRegex)
	if err != nil {
		return nil, err
	}
	if !e.IsDict() {
		return nil, &Error{Kind: InvalidInput, Dict: d.Name(), Keyword: key, Line: e.startLine,
			Msg: "expected a dictionary, found a primitive entry"}
	}
	return e.dict, nil
}

// SubDictOrAdd returns the sub-dictionary for key, adding an empty one if the
// key is absent. An existing primitive entry is an error.
func (d *Dictionary) SubDictOrAdd(key string) (*Dictionary, error) {
	if e := d.Find(key, keyword.MatchLiteral); e != nil {
		if !e.IsDict() {
			return nil, &Error{Kind: InvalidInput, Dict: d.Name(), Keyword: key, Line: e.startLine,
				Msg: "expected a dictionary, found a primitive entry"}
		}
		return e.dict, nil
	}
	return d.AddDict(key, nil), nil
}

// SubOrEmptyDict returns the sub-dictionary for key. When mandatory is set it
// behaves like SubDict. Otherwise an absent key, or a primitive entry, yields
// an empty detached dictionary that is never linked into d.
func (d *Dictionary) SubOrEmptyDict(key string, mandatory bool) (*Dictionary, error) {
	if mandatory {
		return d.SubDict(key)
	}
	e := d.Find(key, keyword.MatchRegex)
	if e != nil && e.IsDict() {
		return e.dict, nil
	}
	if e != nil {
		d.config().logger().WithFields(logFields(d, key, e.startLine)).
			Warn("entry is not a dictionary, using an empty one")
	}
	empty := newDict(d.Name()+"."+key, null)
	empty.cfg = d.config()
	return empty, nil
}

// missing builds a MissingEntry error and routes it through the policy
func (d *Dictionary) missing(key string) error {
	err := &Error{Kind: MissingEntry, Dict: d.Name(), Keyword: key, Line: d.startLine}
	cfg := d.config()
	switch cfg.MissingPolicy {
	case PolicyLog:
		cfg.logger().WithFields(logFields(d, key, d.startLine)).WithError(err).Error("missing entry")
	case PolicyPanic:
		panic(err)
	}
	return err
}

// Value is the set of Go types entries can be read into
type Value interface {
	int | int64 | float64 | string | bool |
		[]int | []int64 | []float64 | []string
}

// ReadValue reads a T from the front of s
func ReadValue[T Value](s *token.Stream) (T, error) {
	var v T
	var err error
	switch p := any(&v).(type) {
	case *int:
		var i int64
		i, err = s.ReadInt()
		*p = int(i)
	case *int64:
		*p, err = s.ReadInt()
	case *float64:
		*p, err = s.ReadFloat()
	case *string:
		*p, err = s.ReadString()
	case *bool:
		*p, err = s.ReadBool()
	case *[]int:
		*p, err = readList(s, func(t token.Token) (int, bool) { return int(t.Int), t.Kind == token.KindInteger })
	case *[]int64:
		*p, err = readList(s, func(t token.Token) (int64, bool) { return t.Int, t.Kind == token.KindInteger })
	case *[]float64:
		*p, err = readList(s, func(t token.Token) (float64, bool) { return t.Number(), t.IsNumber() })
	case *[]string:
		*p, err = readList(s, func(t token.Token) (string, bool) { return t.Text, t.IsStringLike() })
	}
	return v, err
}

func readList[E any](s *token.Stream, conv func(token.Token) (E, bool)) ([]E, error) {
	list, err := s.ReadCompound()
	if err != nil {
		return nil, err
	}
	out := make([]E, 0, len(list.Items))
	for _, item := range list.Items {
		v, ok := conv(item)
		if !ok {
			return nil, &token.UnexpectedError{Stream: s.Name(), Expected: "list item of matching type", Found: item}
		}
		out = append(out, v)
	}
	return out, nil
}

// ReadEntry decodes the value of e into a T and checks that nothing is left
func ReadEntry[T Value](e *Entry) (T, error) {
	var zero T
	if e.IsDict() {
		return zero, &Error{Kind: InvalidInput, Dict: e.ownerName(), Keyword: e.keyword.Text(), Line: e.startLine,
			Msg: "expected a primitive entry, found a dictionary"}
	}
	s := e.Stream()
	v, err := ReadValue[T](s)
	if err != nil {
		return zero, &Error{Kind: InvalidInput, Dict: e.ownerName(), Keyword: e.keyword.Text(), Line: s.LineNumber(), Err: err}
	}
	if err := e.check(s); err != nil {
		return zero, err
	}
	return v, nil
}

// Get reads the mandatory entry key as a T
func Get[T Value](d *Dictionary, key string) (T, error) {
	e, err := d.Lookup(key)
	if err != nil {
		var zero T
		return zero, err
	}
	return ReadEntry[T](e)
}

// GetOrDefault reads the optional entry key as a T, returning def when absent.
// A present but malformed entry is still an error.
func GetOrDefault[T Value](d *Dictionary, key string, def T) (T, error) {
	e := d.Find(key, keyword.MatchRegex)
	if e == nil {
		d.reportDefault(key, def)
		return def, nil
	}
	return ReadEntry[T](e)
}

// ReadIfPresent stores the entry key into *v when present and reports whether it was
func ReadIfPresent[T Value](d *Dictionary, key string, v *T) (bool, error) {
	e := d.Find(key, keyword.MatchRegex)
	if e == nil {
		d.reportDefault(key, *v)
		return false, nil
	}
	got, err := ReadEntry[T](e)
	if err != nil {
		return false, err
	}
	*v = got
	return true, nil
}

func (d *Dictionary) reportDefault(key string, def any) {
	cfg := d.config()
	if !cfg.reportOptional() {
		return
	}
	cfg.logger().WithFields(logFields(d, key, 0)).WithField("default", def).Info("optional entry not found, using default")
}
