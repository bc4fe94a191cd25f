package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/tevino/abool/v2"
	"gopkg.in/yaml.v2"

	"foamdict/pkg/dictionary"
)

// ConfigFileName is the settings file looked up in the working directory
const ConfigFileName = ".foamdict.yaml"

// envPrefix prefixes every environment variable read by the CLI
const envPrefix = "FOAMDICT_"

// Settings represents the structure of a .foamdict.yaml configuration file
type Settings struct {
	InputMode       string `yaml:"inputMode,omitempty"`
	MissingPolicy   string `yaml:"missingPolicy,omitempty"`
	AllowEnv        bool   `yaml:"allowEnv,omitempty"`
	ReportOptional  bool   `yaml:"reportOptional,omitempty"`
	MaxIncludeDepth int    `yaml:"maxIncludeDepth,omitempty"`
	LogLevel        string `yaml:"logLevel,omitempty"`
	NoColor         bool   `yaml:"noColor,omitempty"`
	Format          string `yaml:"format,omitempty"`
}

// defaultSettings returns the settings used without a configuration file
func defaultSettings() *Settings {
	return &Settings{
		InputMode:       "merge",
		MissingPolicy:   "return",
		MaxIncludeDepth: 32,
		LogLevel:        "warn",
		Format:          "json",
	}
}

// loadSettings reads a settings file over the defaults. A missing file is
// only an error when required is set.
func loadSettings(path string, required bool) (*Settings, error) {
	settings := defaultSettings()

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return settings, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := yaml.UnmarshalStrict(content, settings); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return settings, nil
}

// applyEnv overrides settings from FOAMDICT_* environment variables
func (s *Settings) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	boolean := func(name string, dst *bool) error {
		if v, ok := lookup(envPrefix + name); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid %s%s: %w", envPrefix, name, err)
			}
			*dst = b
		}
		return nil
	}

	str("INPUT_MODE", &s.InputMode)
	str("MISSING_POLICY", &s.MissingPolicy)
	str("LOG_LEVEL", &s.LogLevel)
	str("FORMAT", &s.Format)
	if err := boolean("ALLOW_ENV", &s.AllowEnv); err != nil {
		return err
	}
	if err := boolean("REPORT_OPTIONAL", &s.ReportOptional); err != nil {
		return err
	}
	if err := boolean("NO_COLOR", &s.NoColor); err != nil {
		return err
	}
	if v, ok := lookup(envPrefix + "MAX_INCLUDE_DEPTH"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sMAX_INCLUDE_DEPTH: %w", envPrefix, err)
		}
		s.MaxIncludeDepth = n
	}
	return nil
}

// DictConfig converts the settings into a dictionary configuration
func (s *Settings) DictConfig(logger log.Interface) (*dictionary.Config, error) {
	mode, err := dictionary.ParseInputMode(s.InputMode)
	if err != nil {
		return nil, err
	}
	policy, err := dictionary.ParsePolicy(s.MissingPolicy)
	if err != nil {
		return nil, err
	}
	if s.MaxIncludeDepth <= 0 {
		return nil, fmt.Errorf("maxIncludeDepth must be positive, got %d", s.MaxIncludeDepth)
	}

	report := abool.New()
	if s.ReportOptional {
		report.Set()
	}

	return &dictionary.Config{
		Logger:          logger,
		ReportOptional:  report,
		MissingPolicy:   policy,
		InputMode:       mode,
		AllowEnv:        s.AllowEnv,
		MaxIncludeDepth: s.MaxIncludeDepth,
	}, nil
}

// Level parses the configured log level
func (s *Settings) Level() (log.Level, error) {
	return log.ParseLevel(strings.ToLower(s.LogLevel))
}
