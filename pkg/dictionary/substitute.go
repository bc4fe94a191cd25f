package dictionary

import (
	"os"

	"github.com/edwingeng/deque"

	"foamdict/pkg/keyword"
	"foamdict/pkg/token"
)

// maxExpansions bounds variable expansion of a single value; hitting it
// means a variable refers to itself.
const maxExpansions = 10000

// SubstituteKeyword splices a copy of the entries of the dictionary named key
// into d. The dictionary is looked up through enclosing scopes. It reports
// whether a dictionary was found.
func (d *Dictionary) SubstituteKeyword(key string, merge bool) bool {
	return d.splice(d.Search(key, keyword.MatchRegexRecursive), merge)
}

// SubstituteScopedKeyword is SubstituteKeyword with scoped key syntax
func (d *Dictionary) SubstituteScopedKeyword(key string, merge bool) bool {
	return d.splice(d.SearchScoped(key, keyword.MatchRegexRecursive), merge)
}

func (d *Dictionary) splice(s Searcher, merge bool) bool {
	if !s.IsDict() {
		return false
	}
	// snapshot: the source may be d itself or one of its ancestors
	for _, e := range s.Dict().Entries() {
		d.Add(e.Clone(d), merge)
	}
	return true
}

// Expand replaces variable tokens with the values they refer to, resolved
// from d outwards. Dictionary values expand to { ... }. Expanded values are
// expanded again.
func (d *Dictionary) Expand(tokens []token.Token) ([]token.Token, error) {
	hasVars := false
	for _, t := range tokens {
		if t.Kind == token.KindVariable {
			hasVars = true
			break
		}
	}
	if !hasVars {
		return tokens, nil
	}

	queue := deque.NewDeque()
	for _, t := range tokens {
		queue.PushBack(t)
	}

	out := make([]token.Token, 0, len(tokens))
	expansions := 0
	for !queue.Empty() {
		t := queue.PopFront().(token.Token)
		if t.Kind != token.KindVariable {
			out = append(out, t)
			continue
		}

		expansions++
		if expansions > maxExpansions {
			return nil, &Error{Kind: MalformedEntry, Dict: d.Name(), Keyword: "$" + t.VarName(), Line: t.Line,
				Msg: "variable expansion does not terminate"}
		}

		repl, err := d.resolveVariable(t)
		if err != nil {
			return nil, err
		}
		for i := len(repl) - 1; i >= 0; i-- {
			queue.PushFront(repl[i].WithLine(t.Line))
		}
	}
	return out, nil
}

func (d *Dictionary) resolveVariable(t token.Token) ([]token.Token, error) {
	name := t.VarName()

	if s := d.SearchScoped(name, keyword.MatchRegexRecursive); s.Found() {
		e := s.Entry()
		if !e.IsDict() {
			return e.Tokens(), nil
		}
		inner, err := e.dict.Tokens()
		if err != nil {
			return nil, err
		}
		repl := make([]token.Token, 0, len(inner)+2)
		repl = append(repl, token.NewPunct('{'))
		repl = append(repl, inner...)
		return append(repl, token.NewPunct('}')), nil
	}

	if d.config().AllowEnv {
		if v, ok := os.LookupEnv(name); ok {
			return []token.Token{stringToken(v)}, nil
		}
	}

	return nil, &Error{Kind: MalformedEntry, Dict: d.Name(), Keyword: "$" + name, Line: t.Line,
		Msg: "undefined variable"}
}
