package dictionary

import (
	"strings"

	"foamdict/pkg/keyword"
)

// Location tells where a search found its entry
type Location int

const (
	NotFound    Location = iota
	FoundLocal           // in the dictionary searched
	FoundParent          // in an enclosing dictionary
)

// Searcher is the result of a search: the entry found, if any, and the
// dictionary it lives in.
type Searcher struct {
	origin  *Dictionary
	context *Dictionary
	entry   *Entry
}

// Found reports whether the search found an entry
func (s Searcher) Found() bool { return s.entry != nil }

// Good is an alias for Found
func (s Searcher) Good() bool { return s.entry != nil }

// Entry returns the entry found, nil if none
func (s Searcher) Entry() *Entry { return s.entry }

// Context returns the dictionary holding the entry
func (s Searcher) Context() *Dictionary { return s.context }

// IsDict reports whether a dictionary entry was found
func (s Searcher) IsDict() bool { return s.entry != nil && s.entry.IsDict() }

// Dict returns the dictionary found, nil for primitive entries
func (s Searcher) Dict() *Dictionary {
	if s.entry == nil {
		return nil
	}
	return s.entry.dict
}

// Location tells whether the entry is local or inherited
func (s Searcher) Location() Location {
	switch {
	case s.entry == nil:
		return NotFound
	case s.context == s.origin:
		return FoundLocal
	default:
		return FoundParent
	}
}

// Search looks key up in d. Literal keywords win over patterns; patterns are
// tried newest first and only with a regex option. Recursive options continue
// into enclosing dictionaries.
func (d *Dictionary) Search(key string, opt keyword.MatchOption) Searcher {
	for p := d; !p.IsNull(); p = p.parent {
		if e := p.searchLocal(key, opt); e != nil {
			return Searcher{origin: d, context: p, entry: e}
		}
		if !opt.Recursive() {
			break
		}
	}
	return Searcher{origin: d}
}

func (d *Dictionary) searchLocal(key string, opt keyword.MatchOption) *Entry {
	if e, ok := d.byKey[key]; ok {
		return e
	}
	if opt.Regex() {
		if e, ok := d.patterns.Match(key); ok {
			return e
		}
	}
	return nil
}

// SearchScoped looks up a scoped key. Keys containing '/' are paths
// ("a/b", "../a", "/top"). Otherwise '.' separates scopes: a leading ':'
// starts at the top dictionary and each leading '.' after the first moves one
// dictionary up. A literal key containing dots is preferred over its scoped
// reading.
func (d *Dictionary) SearchScoped(key string, opt keyword.MatchOption) Searcher {
	if strings.Contains(key, "/") {
		return d.searchSlashScoped(key, opt)
	}
	return d.searchDotScoped(key, opt)
}

func (d *Dictionary) searchDotScoped(key string, opt keyword.MatchOption) Searcher {
	if key == "" {
		return Searcher{origin: d}
	}

	if key[0] == ':' {
		return d.TopDict().searchDotScoped(key[1:], opt&^keyword.MatchRecursive).from(d)
	}

	if key[0] == '.' {
		scope := d
		i := 1
		for ; i < len(key) && key[i] == '.'; i++ {
			scope = scope.parent
			if scope.IsNull() {
				return Searcher{origin: d}
			}
		}
		return scope.searchDotScoped(key[i:], opt&^keyword.MatchRecursive).from(d)
	}

	if s := d.Search(key, opt); s.Found() {
		return s
	}

	for i := strings.IndexByte(key, '.'); i > 0; {
		if s := d.Search(key[:i], opt); s.IsDict() {
			if sub := s.Dict().searchDotScoped(key[i+1:], opt&^keyword.MatchRecursive); sub.Found() {
				return sub.from(d)
			}
		}
		next := strings.IndexByte(key[i+1:], '.')
		if next < 0 {
			break
		}
		i += next + 1
	}
	return Searcher{origin: d}
}

func (d *Dictionary) searchSlashScoped(key string, opt keyword.MatchOption) Searcher {
	scope := d
	if strings.HasPrefix(key, "/") {
		scope = d.TopDict()
	}

	parts := strings.Split(strings.Trim(key, "/"), "/")
	for i, part := range parts {
		last := i == len(parts)-1
		switch part {
		case "", ".":
			if last {
				return Searcher{origin: d}
			}
			continue
		case "..":
			if scope.parent.IsNull() || last {
				return Searcher{origin: d}
			}
			scope = scope.parent
			continue
		}

		s := scope.Search(part, opt)
		opt &^= keyword.MatchRecursive
		if last {
			return s.from(d)
		}
		if !s.IsDict() {
			return Searcher{origin: d}
		}
		scope = s.Dict()
	}
	return Searcher{origin: d}
}

func (s Searcher) from(origin *Dictionary) Searcher {
	s.origin = origin
	return s
}
