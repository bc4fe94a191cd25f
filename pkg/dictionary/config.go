package dictionary

import (
	"fmt"
	"strings"

	"github.com/apex/log"
	"github.com/tevino/abool/v2"
)

// InputMode decides what happens when parsing meets a keyword that already exists
type InputMode int

const (
	InputMerge     InputMode = iota // merge dictionaries, replace primitives
	InputOverwrite                  // replace, dictionaries included
	InputProtect                    // keep the existing entry silently
	InputWarn                       // keep the existing entry and warn
	InputError                      // fail with DuplicateKey
)

var inputModeNames = map[string]InputMode{
	"merge":     InputMerge,
	"default":   InputMerge,
	"overwrite": InputOverwrite,
	"protect":   InputProtect,
	"warn":      InputWarn,
	"error":     InputError,
}

// ParseInputMode converts a #inputMode word
func ParseInputMode(s string) (InputMode, error) {
	if m, ok := inputModeNames[strings.ToLower(s)]; ok {
		return m, nil
	}
	return InputMerge, fmt.Errorf("unknown input mode %q", s)
}

func (m InputMode) String() string {
	switch m {
	case InputOverwrite:
		return "overwrite"
	case InputProtect:
		return "protect"
	case InputWarn:
		return "warn"
	case InputError:
		return "error"
	default:
		return "merge"
	}
}

// Policy routes errors raised by mandatory lookups
type Policy int

const (
	PolicyReturn Policy = iota // return the error
	PolicyLog                  // log the error, then return it
	PolicyPanic                // panic with the error; see Recover
)

// ParsePolicy converts a policy name
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(s) {
	case "", "return":
		return PolicyReturn, nil
	case "log":
		return PolicyLog, nil
	case "panic", "fatal":
		return PolicyPanic, nil
	}
	return PolicyReturn, fmt.Errorf("unknown error policy %q", s)
}

// Includer returns the content of an included dictionary. name is the name
// as written after #include and including is the source of the file holding
// the directive, empty for the top-level text. The returned source identifies
// the content in diagnostics and is passed back as including for nested
// directives.
type Includer func(name string, from *Dictionary, including string) (content string, source string, err error)

// Config holds the settings shared by a dictionary tree. It is attached to a
// root dictionary and inherited by everything below it.
type Config struct {
	// Logger receives duplicate-key warnings and optional-entry reports
	Logger log.Interface
	// ReportOptional logs an info entry whenever an optional lookup falls
	// back to its default
	ReportOptional *abool.AtomicBool
	// MissingPolicy routes MissingEntry errors
	MissingPolicy Policy
	// InputMode is the initial duplicate-key policy while parsing
	InputMode InputMode
	// AllowEnv lets $NAME fall back to environment variables
	AllowEnv bool
	// Includer resolves #include directives; nil disables them
	Includer Includer
	// MaxIncludeDepth bounds nested #include directives
	MaxIncludeDepth int
}

// DefaultConfig returns the configuration used when none is given
func DefaultConfig() *Config {
	return &Config{
		Logger:          log.Log,
		ReportOptional:  abool.New(),
		MissingPolicy:   PolicyReturn,
		InputMode:       InputMerge,
		MaxIncludeDepth: 32,
	}
}

var defaultConfig = DefaultConfig()

func (c *Config) logger() log.Interface {
	if c == nil || c.Logger == nil {
		return log.Log
	}
	return c.Logger
}

func (c *Config) reportOptional() bool {
	return c != nil && c.ReportOptional != nil && c.ReportOptional.IsSet()
}
