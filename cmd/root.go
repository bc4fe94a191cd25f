package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"foamdict/pkg/dictionary"
	"foamdict/pkg/document"
)

// Version information
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global state prepared by setup before every command
var (
	settings   *Settings
	dictConfig *dictionary.Config
	logger     = &log.Logger{Handler: cli.New(os.Stderr), Level: log.WarnLevel}
)

var rootCmd = &cobra.Command{
	Use:   "foamdict",
	Short: "A tool for OpenFOAM-style keyword dictionaries",
	Long: `foamdict reads hierarchical keyword dictionaries (the OpenFOAM dictionary
format): nested keyword/value entries with regular expression keywords,
$variable substitution and #include directives. It can query, validate,
merge, reformat and convert dictionary files, and compute content digests.`,
	Version:           getVersionString(),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "foamdict %s\n", getVersionString())
		fmt.Fprintf(out, "  Version: %s\n", version)
		fmt.Fprintf(out, "  Commit:  %s\n", commit)
		fmt.Fprintf(out, "  Date:    %s\n", date)
	},
}

func getVersionString() string {
	if version == "dev" {
		return fmt.Sprintf("%s (%s)", version, commit)
	}
	return version
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = getVersionString()
}

// Execute runs the command line. Panics raised by the panic missing-entry
// policy are returned as errors.
func Execute() (err error) {
	defer dictionary.Recover(&err)
	return rootCmd.Execute()
}

// setup loads the settings file, then environment variables, then flags,
// and prepares the logger and dictionary configuration
func setup(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	path, _ := flags.GetString("config")
	loaded, err := loadSettings(path, flags.Changed("config"))
	if err != nil {
		return err
	}
	if err := loaded.applyEnv(os.LookupEnv); err != nil {
		return err
	}

	if flags.Changed("input-mode") {
		loaded.InputMode, _ = flags.GetString("input-mode")
	}
	if flags.Changed("missing-policy") {
		loaded.MissingPolicy, _ = flags.GetString("missing-policy")
	}
	if flags.Changed("allow-env") {
		loaded.AllowEnv, _ = flags.GetBool("allow-env")
	}
	if flags.Changed("report-optional") {
		loaded.ReportOptional, _ = flags.GetBool("report-optional")
	}
	if flags.Changed("log-level") {
		loaded.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("no-color") {
		loaded.NoColor, _ = flags.GetBool("no-color")
	}
	if debug, _ := flags.GetBool("debug"); debug {
		loaded.LogLevel = "debug"
	}

	level, err := loaded.Level()
	if err != nil {
		return err
	}
	logger.Level = level
	logger.Handler = cli.New(cmd.ErrOrStderr())
	if loaded.NoColor {
		color.NoColor = true
	}

	cfg, err := loaded.DictConfig(logger)
	if err != nil {
		return err
	}

	settings = loaded
	dictConfig = cfg
	logger.WithFields(log.Fields{
		"inputMode": cfg.InputMode,
		"policy":    loaded.MissingPolicy,
	}).Debug("configuration loaded")
	return nil
}

// loadDocument loads a dictionary file with the current configuration
func loadDocument(path string) (*document.Document, error) {
	doc, err := document.NewFromFile(path, dictConfig)
	if err != nil {
		return nil, err
	}
	logger.WithField("file", path).WithField("includes", len(doc.Includes())).Debug("loaded")
	return doc, nil
}

// writeOutput writes content to output, or to out when output is empty
func writeOutput(out io.Writer, output string, content []byte) error {
	if output == "" {
		_, err := out.Write(content)
		return err
	}
	return writeToFile(output, content)
}

// writeInPlace writes content to a file, optionally creating a backup
func writeInPlace(filename string, content []byte, backup bool) error {
	if backup {
		backupFile := filename + ".bak"
		originalContent, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read original file for backup: %w", err)
		}

		if err := os.WriteFile(backupFile, originalContent, 0644); err != nil {
			return fmt.Errorf("failed to create backup file: %w", err)
		}

		logger.WithField("file", backupFile).Info("backup created")
	}

	return writeToFile(filename, content)
}

// writeToFile writes content to a specific file
func writeToFile(filename string, content []byte) error {
	if err := os.WriteFile(filename, content, 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", filename, err)
	}
	return nil
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", ConfigFileName, "Settings file")
	flags.String("input-mode", "merge", "Duplicate keyword handling while parsing (merge, overwrite, protect, warn, error)")
	flags.String("missing-policy", "return", "Missing mandatory entries (return, log, panic)")
	flags.Bool("allow-env", false, "Let $NAME fall back to environment variables")
	flags.Bool("report-optional", false, "Log optional lookups that fall back to their default")
	flags.String("log-level", "warn", "Log level (debug, info, warn, error)")
	flags.Bool("no-color", false, "Disable colored output")
	flags.BoolP("debug", "d", false, "Shorthand for --log-level debug")

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(digestCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(formatCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(versionCmd)
}
