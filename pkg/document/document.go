// Package document provides a file-backed dictionary. It loads a dictionary
// file, resolves its #include directives relative to the file, and offers
// path based edits, validation and saving behind a small API.
package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"foamdict/pkg/dictionary"
	"foamdict/pkg/formatter"
	"foamdict/pkg/keyword"
)

// HeaderKeyword is the keyword of the header dictionary found at the top of
// most dictionary files
const HeaderKeyword = "FoamFile"

// Header is the decoded FoamFile dictionary
type Header struct {
	Version  float64 `foam:"version"`
	Format   string  `foam:"format"`
	Class    string  `foam:"class"`
	Location string  `foam:"location"`
	Object   string  `foam:"object"`
	Note     string  `foam:"note"`
}

// Document represents a dictionary file with its parsed contents
type Document struct {
	filename  string                 // Original filename (if loaded from file)
	content   string                 // Text as last loaded or saved
	dict      *dictionary.Dictionary // Parsed dictionary
	cfg       *dictionary.Config     // Configuration used for parsing
	formatter *formatter.Formatter   // Formatter for summaries and exports
	loaded    dictionary.Digest      // Digest of the dictionary as last loaded or saved
	includes  []string               // Files read through #include
}

// NewFromFile creates a new document by loading and parsing a file. A nil
// cfg uses dictionary.DefaultConfig. Includes are resolved relative to the
// file holding the directive unless cfg brings its own Includer.
func NewFromFile(filename string, cfg *dictionary.Config) (*Document, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	absPath, err := filepath.Abs(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for %s: %w", filename, err)
	}

	return NewFromContent(absPath, string(content), cfg)
}

// NewFromContent creates a new document from content with a given name
func NewFromContent(name, content string, cfg *dictionary.Config) (*Document, error) {
	doc := &Document{
		filename:  name,
		formatter: formatter.New(),
	}
	doc.cfg = doc.configure(cfg)

	if err := doc.load(content); err != nil {
		return nil, err
	}
	return doc, nil
}

// configure copies cfg, installing the file relative includer when cfg has none
func (d *Document) configure(cfg *dictionary.Config) *dictionary.Config {
	if cfg == nil {
		cfg = dictionary.DefaultConfig()
	}
	c := *cfg
	if c.Includer == nil {
		c.Includer = d.include
	}
	return &c
}

func (d *Document) load(content string) error {
	d.includes = nil
	dict, err := dictionary.Parse(filepath.Base(d.filename), content, d.cfg)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", d.filename, err)
	}
	d.dict = dict
	d.content = content
	d.loaded = dict.Digest()
	return nil
}

// include reads an #include target. Environment variables in the name are
// expanded and relative names resolve against the directory of the including
// file.
func (d *Document) include(name string, from *dictionary.Dictionary, including string) (string, string, error) {
	path := os.ExpandEnv(name)
	if !filepath.IsAbs(path) {
		if including == "" {
			including = d.filename
		}
		path = filepath.Join(filepath.Dir(including), path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", path, err
	}
	d.includes = append(d.includes, path)
	return string(data), path, nil
}

// GetFilename returns the document's filename
func (d *Document) GetFilename() string {
	return d.filename
}

// GetContent returns the text the document was last loaded from or saved as
func (d *Document) GetContent() string {
	return d.content
}

// Includes returns the files read through #include, in reading order
func (d *Document) Includes() []string {
	return append([]string(nil), d.includes...)
}

// IsModified reports whether the dictionary differs from the last load or save
func (d *Document) IsModified() bool {
	return d.dict.Digest() != d.loaded
}

// Dict returns the underlying dictionary (for advanced use cases)
func (d *Document) Dict() *dictionary.Dictionary {
	return d.dict
}

// Header decodes the FoamFile header dictionary
func (d *Document) Header() (*Header, error) {
	sub, err := d.dict.SubDict(HeaderKeyword)
	if err != nil {
		return nil, err
	}
	var h Header
	if err := formatter.Decode(sub, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// Entry Lookup Methods

// FindEntry finds an entry by its scoped path (e.g., "solvers.p.tolerance").
// Patterns match; parents are not searched.
func (d *Document) FindEntry(path string) *dictionary.Entry {
	return d.dict.FindScoped(path, keyword.MatchRegex)
}

// FindEntriesByName finds all entries, at any depth, whose keyword matches name
func (d *Document) FindEntriesByName(name string) []*dictionary.Entry {
	var result []*dictionary.Entry
	for _, e := range d.GetAllEntries() {
		if e.Keyword().Match(name) {
			result = append(result, e)
		}
	}
	return result
}

// GetAllEntries returns all entries in document order, depth first
func (d *Document) GetAllEntries() []*dictionary.Entry {
	var result []*dictionary.Entry
	walk(d.dict, func(e *dictionary.Entry, _ int) {
		result = append(result, e)
	})
	return result
}

// EntryPaths returns the path of every entry, relative to the document
func (d *Document) EntryPaths() []string {
	var result []string
	walk(d.dict, func(e *dictionary.Entry, _ int) {
		result = append(result, entryPath(e))
	})
	return result
}

func walk(dict *dictionary.Dictionary, fn func(e *dictionary.Entry, depth int)) {
	var visit func(dict *dictionary.Dictionary, depth int)
	visit = func(dict *dictionary.Dictionary, depth int) {
		for _, e := range dict.Entries() {
			fn(e, depth)
			if e.IsDict() {
				visit(e.Dict(), depth+1)
			}
		}
	}
	visit(dict, 0)
}

func entryPath(e *dictionary.Entry) string {
	if owner := e.Owner(); owner != nil {
		if rel := owner.RelativeName(); rel != "" {
			return rel + "." + e.Keyword().Text()
		}
	}
	return e.Keyword().Text()
}

// splitPath separates the last component of a dotted path
func splitPath(path string) (parent []string, key string) {
	parts := strings.Split(path, ".")
	return parts[:len(parts)-1], parts[len(parts)-1]
}

// Editing Methods

// Set sets the value of the entry at path, creating intermediate
// dictionaries as needed. Components are separated by dots.
func (d *Document) Set(path string, values ...any) error {
	parent, key, err := d.parentForWrite(path)
	if err != nil {
		return err
	}
	if err := parent.SetValue(key, values...); err != nil {
		return fmt.Errorf("failed to set %s: %w", path, err)
	}
	return nil
}

// SetDict replaces the dictionary at path with a copy of sub
func (d *Document) SetDict(path string, sub *dictionary.Dictionary) error {
	parent, key, err := d.parentForWrite(path)
	if err != nil {
		return err
	}
	parent.Set(dictionary.NewDictEntry(keyword.Literal(key), sub.Clone(nil)))
	return nil
}

// Remove removes the entry at path
func (d *Document) Remove(path string) error {
	parentPath, key := splitPath(path)
	parent := d.dict
	if len(parentPath) > 0 {
		e := d.dict.FindScoped(strings.Join(parentPath, "."), keyword.MatchLiteral)
		if e == nil || !e.IsDict() {
			return fmt.Errorf("entry not found: %s", path)
		}
		parent = e.Dict()
	}
	if !parent.Remove(key) {
		return fmt.Errorf("entry not found: %s", path)
	}
	return nil
}

func (d *Document) parentForWrite(path string) (*dictionary.Dictionary, string, error) {
	if path == "" {
		return nil, "", fmt.Errorf("empty entry path")
	}
	parentPath, key := splitPath(path)
	parent := d.dict
	for _, name := range parentPath {
		sub, err := parent.SubDictOrAdd(name)
		if err != nil {
			return nil, "", fmt.Errorf("cannot write %s: %w", path, err)
		}
		parent = sub
	}
	return parent, key, nil
}

// Batch Operations

// BatchUpdate is one edit applied by ApplyBatchUpdates. Exactly one of
// Values, Dict and Remove should be set.
type BatchUpdate struct {
	Path   string
	Values []any
	Dict   *dictionary.Dictionary
	Remove bool
}

// ApplyBatchUpdates applies multiple updates in order, stopping at the first
// failing one
func (d *Document) ApplyBatchUpdates(updates []BatchUpdate) error {
	for i, update := range updates {
		var err error
		switch {
		case update.Remove:
			err = d.Remove(update.Path)
		case update.Dict != nil:
			err = d.SetDict(update.Path, update.Dict)
		default:
			err = d.Set(update.Path, update.Values...)
		}
		if err != nil {
			return fmt.Errorf("update %d: %w", i, err)
		}
	}
	return nil
}

// File Operations

// Save saves the document back to its original file (if loaded from file)
func (d *Document) Save() error {
	if d.filename == "" {
		return fmt.Errorf("cannot save: document was not loaded from a file")
	}
	return d.SaveAs(d.filename)
}

// SaveAs writes the dictionary to filename. Comments of the loaded text are
// not preserved.
func (d *Document) SaveAs(filename string) error {
	content, err := d.SaveToString()
	if err != nil {
		return err
	}

	if err := os.WriteFile(filename, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", filename, err)
	}

	d.content = content
	d.filename = filename
	d.loaded = d.dict.Digest()

	return nil
}

// SaveToString returns the dictionary text with all modifications applied
func (d *Document) SaveToString() (string, error) {
	var b strings.Builder
	if err := d.dict.Write(&b); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Export renders the dictionary in the named format (foam, json, yaml, toml)
func (d *Document) Export(format string) ([]byte, error) {
	return d.formatter.Encode(d.dict, format)
}

// Reload discards in-memory changes and parses the file again
func (d *Document) Reload() error {
	content, err := os.ReadFile(d.filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", d.filename, err)
	}
	return d.load(string(content))
}

// GetEntryContext returns formatted context for an entry
func (d *Document) GetEntryContext(path string, includeParent, includeSiblings bool) (string, error) {
	e := d.FindEntry(path)
	if e == nil {
		return "", fmt.Errorf("entry not found: %s", path)
	}

	return d.formatter.EntryContext(e, includeParent, includeSiblings), nil
}

// GetEntrySummary returns a formatted summary of an entry
func (d *Document) GetEntrySummary(path string) (string, error) {
	e := d.FindEntry(path)
	if e == nil {
		return "", fmt.Errorf("entry not found: %s", path)
	}

	return d.formatter.EntrySummary(e), nil
}

// Statistics

// Stats summarizes the shape of a document
type Stats struct {
	Entries      int
	Dictionaries int
	Patterns     int
	MaxDepth     int
}

// GetStats counts the entries of the document
func (d *Document) GetStats() *Stats {
	stats := &Stats{}
	walk(d.dict, func(e *dictionary.Entry, depth int) {
		stats.Entries++
		if e.IsDict() {
			stats.Dictionaries++
		}
		if e.Keyword().Kind() != keyword.KindLiteral {
			stats.Patterns++
		}
		if depth+1 > stats.MaxDepth {
			stats.MaxDepth = depth + 1
		}
	})
	return stats
}

// Validation Methods

// ValidationIssue is a problem found by Validate
type ValidationIssue struct {
	EntryPath string
	IssueType string
	Message   string
	Severity  string // "error", "warning", "info"
}

// Validate checks the document for common dictionary file issues
func (d *Document) Validate() []ValidationIssue {
	var issues []ValidationIssue

	var header *Header
	var err error
	present := d.dict.Find(HeaderKeyword, keyword.MatchLiteral) != nil
	if present {
		header, err = d.Header()
	}
	switch {
	case !present:
		issues = append(issues, ValidationIssue{
			EntryPath: HeaderKeyword,
			IssueType: "missing_header",
			Message:   "Document has no FoamFile header",
			Severity:  "warning",
		})
	case err != nil:
		issues = append(issues, ValidationIssue{
			EntryPath: HeaderKeyword,
			IssueType: "invalid_header",
			Message:   err.Error(),
			Severity:  "error",
		})
	default:
		if header.Class == "" || header.Object == "" {
			issues = append(issues, ValidationIssue{
				EntryPath: HeaderKeyword,
				IssueType: "incomplete_header",
				Message:   "FoamFile header lacks class or object",
				Severity:  "info",
			})
		}
		if base := filepath.Base(d.filename); header.Object != "" && d.filename != "" && header.Object != base {
			issues = append(issues, ValidationIssue{
				EntryPath: HeaderKeyword + ".object",
				IssueType: "object_mismatch",
				Message:   fmt.Sprintf("Header object %q does not match file name %q", header.Object, base),
				Severity:  "info",
			})
		}
	}

	walk(d.dict, func(e *dictionary.Entry, _ int) {
		if e.IsDict() && e.Dict().Empty() {
			issues = append(issues, ValidationIssue{
				EntryPath: entryPath(e),
				IssueType: "empty_dictionary",
				Message:   "Dictionary has no entries",
				Severity:  "info",
			})
		}
	})

	return issues
}

// String returns a string representation of the document
func (d *Document) String() string {
	stats := d.GetStats()
	return fmt.Sprintf("Document[%s]: %d entries, %d dictionaries, modified=%t",
		filepath.Base(d.filename), stats.Entries, stats.Dictionaries, d.IsModified())
}
