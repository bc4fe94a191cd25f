package dictionary

import (
	"fmt"

	"foamdict/pkg/token"
)

// ValueTokens converts Go values to the tokens of a primitive entry. Integers,
// floats and bools become numbers and switch words, strings become words when
// they can be read back as one and quoted strings otherwise, and slices become
// ( ... ) lists. Tokens are passed through unchanged.
func ValueTokens(values ...any) ([]token.Token, error) {
	var out []token.Token
	for _, v := range values {
		toks, err := valueTokens(v)
		if err != nil {
			return nil, err
		}
		out = append(out, toks...)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no value given")
	}
	return out, nil
}

func valueTokens(v any) ([]token.Token, error) {
	switch x := v.(type) {
	case token.Token:
		return []token.Token{x}, nil
	case []token.Token:
		return x, nil
	case int:
		return []token.Token{token.NewInt(int64(x))}, nil
	case int32:
		return []token.Token{token.NewInt(int64(x))}, nil
	case int64:
		return []token.Token{token.NewInt(x)}, nil
	case uint:
		return []token.Token{token.NewInt(int64(x))}, nil
	case uint32:
		return []token.Token{token.NewInt(int64(x))}, nil
	case float32:
		return []token.Token{token.NewFloat(float64(x))}, nil
	case float64:
		return []token.Token{token.NewFloat(x)}, nil
	case bool:
		if x {
			return []token.Token{token.NewWord("true")}, nil
		}
		return []token.Token{token.NewWord("false")}, nil
	case string:
		return []token.Token{stringToken(x)}, nil
	case []int:
		return listTokens(x)
	case []int64:
		return listTokens(x)
	case []float64:
		return listTokens(x)
	case []string:
		return listTokens(x)
	case []any:
		return listTokens(x)
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

func listTokens[E any](items []E) ([]token.Token, error) {
	out := []token.Token{token.NewPunct('(')}
	for _, item := range items {
		toks, err := valueTokens(item)
		if err != nil {
			return nil, err
		}
		out = append(out, toks...)
	}
	return append(out, token.NewPunct(')')), nil
}

func stringToken(s string) token.Token {
	if token.IsValidWord(s) {
		return token.NewWord(s)
	}
	return token.NewString(s)
}
