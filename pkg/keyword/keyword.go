// Package keyword classifies dictionary keywords as literals, regular
// expression patterns or scope-crossing substitution references, and matches
// lookup keys against stored patterns.
package keyword

import (
	"regexp"
	"strings"
	"sync"

	"github.com/segmentio/fasthash/fnv1a"
)

// Kind is the classification of a keyword
type Kind uint8

const (
	KindLiteral        Kind = iota // exact string match
	KindRegex                      // anchored regular expression
	KindRegexRecursive             // $name reference, resolved through parent scopes
)

func (k Kind) String() string {
	switch k {
	case KindLiteral:
		return "literal"
	case KindRegex:
		return "regex"
	case KindRegexRecursive:
		return "regex-recursive"
	default:
		return "unknown"
	}
}

// MatchOption controls how a lookup key is matched against stored keywords
type MatchOption uint8

const (
	MatchLiteral          MatchOption = 0
	MatchRegex            MatchOption = 1 << 0
	MatchRecursive        MatchOption = 1 << 1
	MatchLiteralRecursive             = MatchRecursive
	MatchRegexRecursive               = MatchRegex | MatchRecursive
)

// Regex reports whether pattern keywords are consulted
func (o MatchOption) Regex() bool { return o&MatchRegex != 0 }

// Recursive reports whether the search continues into parent scopes
func (o MatchOption) Recursive() bool { return o&MatchRecursive != 0 }

func (o MatchOption) String() string {
	switch o {
	case MatchLiteral:
		return "literal"
	case MatchRegex:
		return "regex"
	case MatchLiteralRecursive:
		return "literal-recursive"
	case MatchRegexRecursive:
		return "regex-recursive"
	default:
		return "unknown"
	}
}

// metaChars are the characters that turn a keyword into a pattern. A lone
// '.' does not: dotted keywords are far more common as scoped names.
const metaChars = `()|*+?[]{}^\`

// Classify returns the kind a keyword text would have
func Classify(text string) Kind {
	if strings.HasPrefix(text, "$") && len(text) > 1 {
		return KindRegexRecursive
	}
	if strings.ContainsAny(text, metaChars) {
		return KindRegex
	}
	if len(text) > 1 && strings.HasSuffix(text, "$") {
		return KindRegex
	}
	return KindLiteral
}

// Keyword is an immutable, classified dictionary key
type Keyword struct {
	text string
	kind Kind
	re   *regexp.Regexp
}

// New classifies text. Text that looks like a pattern but does not compile is
// kept as a literal.
func New(text string) Keyword {
	switch Classify(text) {
	case KindRegex:
		if kw, err := Pattern(text); err == nil {
			return kw
		}
		return Literal(text)
	case KindRegexRecursive:
		return Keyword{text: text, kind: KindRegexRecursive}
	default:
		return Literal(text)
	}
}

// Literal creates a keyword matched by exact string equality
func Literal(text string) Keyword {
	return Keyword{text: text, kind: KindLiteral}
}

// Pattern creates a regular expression keyword. The pattern must match the
// whole lookup key.
func Pattern(text string) (Keyword, error) {
	re, err := compile(text)
	if err != nil {
		return Keyword{}, err
	}
	return Keyword{text: text, kind: KindRegex, re: re}, nil
}

// Text returns the keyword as written
func (k Keyword) Text() string { return k.text }

// Kind returns the keyword classification
func (k Keyword) Kind() Kind { return k.kind }

// IsPattern reports whether the keyword is a regular expression
func (k Keyword) IsPattern() bool { return k.kind == KindRegex }

// IsReference reports whether the keyword is a $name substitution reference
func (k Keyword) IsReference() bool { return k.kind == KindRegexRecursive }

// RefName returns the referenced name of a $name or ${name} keyword
func (k Keyword) RefName() string {
	if !k.IsReference() {
		return ""
	}
	name := strings.TrimPrefix(k.text, "$")
	if strings.HasPrefix(name, "{") && strings.HasSuffix(name, "}") {
		name = name[1 : len(name)-1]
	}
	return name
}

// Match reports whether key matches this keyword
func (k Keyword) Match(key string) bool {
	if k.kind == KindRegex && k.re != nil {
		return k.re.MatchString(key)
	}
	return k.text == key
}

// Equal reports whether two keywords have the same text and kind
func (k Keyword) Equal(o Keyword) bool {
	return k.text == o.text && k.kind == o.kind
}

func (k Keyword) String() string { return k.text }

type cachedPattern struct {
	src string
	re  *regexp.Regexp
}

var patternCache = struct {
	sync.Mutex
	m map[uint64]cachedPattern
}{m: make(map[uint64]cachedPattern)}

// compile returns an anchored regexp for text, reusing earlier compilations
func compile(text string) (*regexp.Regexp, error) {
	h := fnv1a.HashString64(text)

	patternCache.Lock()
	defer patternCache.Unlock()

	if c, ok := patternCache.m[h]; ok && c.src == text {
		return c.re, nil
	}

	re, err := regexp.Compile("^(?:" + text + ")$")
	if err != nil {
		return nil, err
	}
	if _, taken := patternCache.m[h]; !taken {
		patternCache.m[h] = cachedPattern{src: text, re: re}
	}
	return re, nil
}
