// Package formatter converts dictionaries to other representations: ordered
// maps, JSON, YAML and TOML, Go structs, and short human-readable summaries.
package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v2"

	"foamdict/pkg/dictionary"
	"foamdict/pkg/token"
)

// Formatter renders dictionaries in export formats
type Formatter struct {
	indentSize int
	useSpaces  bool
}

// New creates a new formatter
func New() *Formatter {
	return &Formatter{
		indentSize: 4,
		useSpaces:  true,
	}
}

// WithIndent returns a copy of f indenting nested levels by size spaces, or
// by one tab per level when spaces is false
func (f *Formatter) WithIndent(size int, spaces bool) *Formatter {
	c := *f
	c.indentSize = size
	c.useSpaces = spaces
	return &c
}

// getIndent returns the indentation string for the given depth
func (f *Formatter) getIndent(depth int) string {
	if f.useSpaces {
		return strings.Repeat(" ", depth*f.indentSize)
	}
	return strings.Repeat("\t", depth)
}

// ToMap converts d to an ordered map. Dictionaries become nested maps,
// single tokens become scalars, ( ... ) lists become slices and any other
// value becomes its text.
func ToMap(d *dictionary.Dictionary) yaml.MapSlice {
	out := make(yaml.MapSlice, 0, d.Len())
	for _, e := range d.Entries() {
		out = append(out, yaml.MapItem{Key: e.Keyword().Text(), Value: EntryValue(e)})
	}
	return out
}

// EntryValue converts the value of a single entry; see ToMap
func EntryValue(e *dictionary.Entry) interface{} {
	if e.IsDict() {
		return ToMap(e.Dict())
	}
	tokens := e.Tokens()
	if len(tokens) == 1 {
		return scalar(tokens[0])
	}
	if s := e.Stream(); s.Peek().IsPunct('(') || (s.Peek().Kind == token.KindInteger && len(tokens) > 1 && tokens[1].IsPunct('(')) {
		if list, err := s.ReadCompound(); err == nil && s.EOF() {
			return listValue(list)
		}
	}
	return token.Join(tokens)
}

func scalar(t token.Token) interface{} {
	switch t.Kind {
	case token.KindInteger:
		return t.Int
	case token.KindFloat:
		return t.Float
	case token.KindWord:
		switch t.Text {
		case "true":
			return true
		case "false":
			return false
		}
		return t.Text
	case token.KindString, token.KindVerbatim:
		return t.Text
	case token.KindCompound:
		return listValue(t)
	default:
		return t.Render()
	}
}

func listValue(list token.Token) []interface{} {
	out := make([]interface{}, len(list.Items))
	for i, item := range list.Items {
		out[i] = scalar(item)
	}
	return out
}

// plain converts ordered maps to map[string]interface{} for encoders and
// decoders that do not need the order
func plain(v interface{}) interface{} {
	switch x := v.(type) {
	case yaml.MapSlice:
		m := make(map[string]interface{}, len(x))
		for _, item := range x {
			m[fmt.Sprint(item.Key)] = plain(item.Value)
		}
		return m
	case []interface{}:
		out := make([]interface{}, len(x))
		for i := range x {
			out[i] = plain(x[i])
		}
		return out
	default:
		return v
	}
}

// JSON renders d as a JSON object, keeping the entry order
func (f *Formatter) JSON(d *dictionary.Dictionary) ([]byte, error) {
	var b bytes.Buffer
	if err := f.writeJSON(&b, ToMap(d), 0); err != nil {
		return nil, err
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

func (f *Formatter) writeJSON(b *bytes.Buffer, v interface{}, depth int) error {
	switch x := v.(type) {
	case yaml.MapSlice:
		if len(x) == 0 {
			b.WriteString("{}")
			return nil
		}
		b.WriteString("{\n")
		for i, item := range x {
			key, err := json.Marshal(fmt.Sprint(item.Key))
			if err != nil {
				return err
			}
			b.WriteString(f.getIndent(depth + 1))
			b.Write(key)
			b.WriteString(": ")
			if err := f.writeJSON(b, item.Value, depth+1); err != nil {
				return err
			}
			if i < len(x)-1 {
				b.WriteByte(',')
			}
			b.WriteByte('\n')
		}
		b.WriteString(f.getIndent(depth))
		b.WriteByte('}')
	case []interface{}:
		b.WriteByte('[')
		for i, item := range x {
			if i > 0 {
				b.WriteString(", ")
			}
			if err := f.writeJSON(b, item, depth+1); err != nil {
				return err
			}
		}
		b.WriteByte(']')
	default:
		data, err := json.Marshal(x)
		if err != nil {
			return fmt.Errorf("failed to encode %v: %w", x, err)
		}
		b.Write(data)
	}
	return nil
}

// YAML renders d as a YAML mapping, keeping the entry order
func (f *Formatter) YAML(d *dictionary.Dictionary) ([]byte, error) {
	return yaml.Marshal(ToMap(d))
}

// TOML renders d as a TOML document. TOML tables are unordered, so keys are
// written sorted.
func (f *Formatter) TOML(d *dictionary.Dictionary) ([]byte, error) {
	var b bytes.Buffer
	enc := toml.NewEncoder(&b)
	enc.Indent = f.getIndent(1)
	if err := enc.Encode(plain(ToMap(d))); err != nil {
		return nil, fmt.Errorf("failed to encode TOML: %w", err)
	}
	return b.Bytes(), nil
}

// Encode renders d in the named format: foam, json, yaml or toml
func (f *Formatter) Encode(d *dictionary.Dictionary, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", "foam", "dict", "dictionary":
		return d.Bytes(), nil
	case "json":
		return f.JSON(d)
	case "yaml", "yml":
		return f.YAML(d)
	case "toml":
		return f.TOML(d)
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// Decode fills the struct pointed to by v from d. Fields are matched by their
// `foam` tag, or by name ignoring case; numbers and words convert loosely.
func Decode(d *dictionary.Dictionary, v interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           v,
		TagName:          "foam",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(plain(ToMap(d))); err != nil {
		return fmt.Errorf("failed to decode dictionary %s: %w", d.Name(), err)
	}
	return nil
}

// EntryContext describes an entry for display: optionally the dictionary it
// lives in and the keywords next to it, then the entry itself
func (f *Formatter) EntryContext(e *dictionary.Entry, includeParent bool, includeSiblings bool) string {
	var result strings.Builder
	owner := e.Owner()

	// Include parent context if requested
	if includeParent && owner != nil && owner.Name() != "" {
		result.WriteString("// Parent context:\n")
		result.WriteString(owner.Name() + " { /* ... */ }")
		result.WriteString("\n\n")
	}

	// Include sibling context if requested
	if includeSiblings && owner != nil {
		result.WriteString("// Sibling context:\n")
		for _, sibling := range owner.Entries() {
			if sibling != e {
				result.WriteString(f.entrySignature(sibling))
				result.WriteString("\n")
			}
		}
		result.WriteString("\n")
	}

	result.WriteString("// Target entry:\n")
	result.WriteString(e.String())

	return result.String()
}

// entrySignature formats an entry on one line, eliding dictionary bodies
func (f *Formatter) entrySignature(e *dictionary.Entry) string {
	if e.IsDict() {
		return e.Keyword().Text() + " { /* ... */ }"
	}
	return e.Keyword().Text() + " " + token.Join(e.Tokens()) + ";"
}

// EntrySummary returns a short description of an entry
func (f *Formatter) EntrySummary(e *dictionary.Entry) string {
	var result strings.Builder

	result.WriteString(fmt.Sprintf("Keyword: %s\n", e.Keyword().Text()))
	result.WriteString(fmt.Sprintf("Kind: %s\n", e.Keyword().Kind()))
	result.WriteString(fmt.Sprintf("Full Name: %s\n", e.Name()))

	if e.StartLine() > 0 {
		result.WriteString(fmt.Sprintf("Lines: %d-%d\n", e.StartLine(), e.EndLine()))
	}

	if e.IsDict() {
		result.WriteString("Type: dictionary\n")
		result.WriteString(fmt.Sprintf("Entries: %d\n", e.Dict().Len()))
		result.WriteString(fmt.Sprintf("Digest: %s\n", e.Dict().Digest()))
	} else {
		result.WriteString("Type: primitive\n")
		result.WriteString(fmt.Sprintf("Tokens: %d\n", len(e.Tokens())))
		result.WriteString(fmt.Sprintf("Value: %s\n", token.Join(e.Tokens())))
	}

	return result.String()
}
