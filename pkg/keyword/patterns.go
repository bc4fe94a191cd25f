package keyword

// Patterns is an ordered set of pattern keywords, each paired with a value.
// Matching tries the most recently added pattern first, so later definitions
// override earlier ones.
type Patterns[T comparable] struct {
	items []patternItem[T]
}

type patternItem[T comparable] struct {
	kw  Keyword
	val T
}

// Add appends a pattern
func (p *Patterns[T]) Add(kw Keyword, val T) {
	p.items = append(p.items, patternItem[T]{kw: kw, val: val})
}

// Remove drops the pattern holding val
func (p *Patterns[T]) Remove(val T) bool {
	for i := range p.items {
		if p.items[i].val == val {
			p.items = append(p.items[:i], p.items[i+1:]...)
			return true
		}
	}
	return false
}

// Replace swaps the value held by a pattern in place, keeping its priority
func (p *Patterns[T]) Replace(old T, kw Keyword, val T) bool {
	for i := range p.items {
		if p.items[i].val == old {
			p.items[i] = patternItem[T]{kw: kw, val: val}
			return true
		}
	}
	return false
}

// Match returns the value of the newest pattern matching key
func (p *Patterns[T]) Match(key string) (T, bool) {
	for i := len(p.items) - 1; i >= 0; i-- {
		if p.items[i].kw.Match(key) {
			return p.items[i].val, true
		}
	}
	var zero T
	return zero, false
}

// Find returns the value stored under the exact pattern text
func (p *Patterns[T]) Find(text string) (T, bool) {
	for i := len(p.items) - 1; i >= 0; i-- {
		if p.items[i].kw.Text() == text {
			return p.items[i].val, true
		}
	}
	var zero T
	return zero, false
}

// Len returns the number of patterns
func (p *Patterns[T]) Len() int { return len(p.items) }

// Clear removes every pattern
func (p *Patterns[T]) Clear() { p.items = nil }

// Keywords returns the stored patterns, oldest first
func (p *Patterns[T]) Keywords() []Keyword {
	out := make([]Keyword, len(p.items))
	for i, it := range p.items {
		out[i] = it.kw
	}
	return out
}
