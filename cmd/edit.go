package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"foamdict/pkg/dictionary"
	"foamdict/pkg/document"
	"foamdict/pkg/token"
)

var convertCmd = &cobra.Command{
	Use:   "convert [file]",
	Short: "Convert a dictionary file to JSON, YAML or TOML",
	Long: `Convert a dictionary file to another format. Entry order is kept for
JSON and YAML. Single values become numbers, booleans (true/false) or
strings, ( ... ) lists become arrays and other values become strings.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadDocument(args[0])
		if err != nil {
			return err
		}

		format := settings.Format
		if cmd.Flags().Changed("to") {
			format, _ = cmd.Flags().GetString("to")
		}
		data, err := doc.Export(format)
		if err != nil {
			return err
		}

		output, _ := cmd.Flags().GetString("output")
		return writeOutput(cmd.OutOrStdout(), output, data)
	},
}

// mergeOps maps --strategy values to dictionary operations
var mergeOps = map[string]func(d, other *dictionary.Dictionary) error{
	"merge": func(d, other *dictionary.Dictionary) error {
		_, err := d.Merge(other)
		return err
	},
	"append":    (*dictionary.Dictionary).Append,
	"default":   (*dictionary.Dictionary).DefaultFill,
	"overwrite": (*dictionary.Dictionary).Overwrite,
}

var mergeCmd = &cobra.Command{
	Use:   "merge [base] [overlay]...",
	Short: "Combine dictionary files",
	Long: `Combine overlay dictionaries into a base dictionary, in argument order.

Strategies:
  merge      new keywords are added, sub-dictionaries merged recursively,
             differing values replaced (default)
  append     every overlay entry is added; existing keywords are kept
  default    only keywords the base lacks are added
  overwrite  every overlay entry replaces the base entry`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		strategy, _ := cmd.Flags().GetString("strategy")
		op, ok := mergeOps[strategy]
		if !ok {
			return fmt.Errorf("unknown merge strategy %q", strategy)
		}

		base, err := loadDocument(args[0])
		if err != nil {
			return err
		}
		for _, filename := range args[1:] {
			overlay, err := loadDocument(filename)
			if err != nil {
				return err
			}
			if err := op(base.Dict(), overlay.Dict()); err != nil {
				return fmt.Errorf("failed to merge %s: %w", filename, err)
			}
		}

		return saveDocument(cmd, base)
	},
}

var setCmd = &cobra.Command{
	Use:   "set [file] [keyword] [value]...",
	Short: "Set or remove an entry",
	Long: `Set the entry at a dotted keyword path, creating sub-dictionaries as
needed. The value is read with the dictionary syntax: "set fvSolution
solvers.p.tolerance 1e-08" stores a number and "set controlDict functions
'{ }'" stores an empty dictionary. With --remove the entry is deleted.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadDocument(args[0])
		if err != nil {
			return err
		}

		remove, _ := cmd.Flags().GetBool("remove")
		update, err := newBatchUpdate(args[1], strings.Join(args[2:], " "), remove)
		if err != nil {
			return err
		}
		if err := doc.ApplyBatchUpdates([]document.BatchUpdate{update}); err != nil {
			return err
		}

		return saveDocument(cmd, doc)
	},
}

// BatchUpdateInput is the structure of an update file read by apply
type BatchUpdateInput struct {
	Updates []struct {
		Path   string `yaml:"path"`
		Value  string `yaml:"value"`
		Remove bool   `yaml:"remove"`
	} `yaml:"updates"`
}

var applyCmd = &cobra.Command{
	Use:   "apply [file] [update-file]",
	Short: "Apply a list of updates to a dictionary file",
	Long: `Apply the updates listed in a YAML (or JSON) file, in order. The file
has the following structure:

updates:
  - path: solvers.p.tolerance
    value: 1e-08
  - path: PISO.pRefCell
    remove: true

Values are read with the dictionary syntax, as for the set command. No
change is written when an update fails.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("failed to read update file %s: %w", args[1], err)
		}

		var input BatchUpdateInput
		if err := yaml.Unmarshal(content, &input); err != nil {
			return fmt.Errorf("failed to parse update file %s: %w", args[1], err)
		}

		updates := make([]document.BatchUpdate, 0, len(input.Updates))
		for _, u := range input.Updates {
			update, err := newBatchUpdate(u.Path, u.Value, u.Remove)
			if err != nil {
				return err
			}
			updates = append(updates, update)
		}

		doc, err := loadDocument(args[0])
		if err != nil {
			return err
		}
		if err := doc.ApplyBatchUpdates(updates); err != nil {
			return err
		}

		logger.WithField("updates", len(updates)).Info("updates applied")
		return saveDocument(cmd, doc)
	},
}

func init() {
	convertCmd.Flags().StringP("to", "t", "json", "Output format (json, yaml, toml, foam)")
	convertCmd.Flags().StringP("output", "o", "", "Write output to specific file")

	mergeCmd.Flags().StringP("strategy", "s", "merge", "Merge strategy (merge, append, default, overwrite)")
	addOutputFlags(mergeCmd)

	setCmd.Flags().BoolP("remove", "r", false, "Remove the entry")
	addOutputFlags(setCmd)

	addOutputFlags(applyCmd)
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("in-place", "i", false, "Update the file in place")
	cmd.Flags().StringP("output", "o", "", "Write output to specific file")
	cmd.Flags().BoolP("backup", "b", false, "Create backup when updating in place")
}

// saveDocument writes doc according to the output flags of cmd
func saveDocument(cmd *cobra.Command, doc *document.Document) error {
	content, err := doc.SaveToString()
	if err != nil {
		return err
	}

	inPlace, _ := cmd.Flags().GetBool("in-place")
	output, _ := cmd.Flags().GetString("output")
	backup, _ := cmd.Flags().GetBool("backup")

	if inPlace {
		return writeInPlace(doc.GetFilename(), []byte(content), backup)
	}
	return writeOutput(cmd.OutOrStdout(), output, []byte(content))
}

// newBatchUpdate reads value with the dictionary syntax. A value in braces
// becomes a sub-dictionary.
func newBatchUpdate(path, value string, remove bool) (document.BatchUpdate, error) {
	update := document.BatchUpdate{Path: path, Remove: remove}
	if remove {
		return update, nil
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return update, fmt.Errorf("no value given for %s", path)
	}

	if strings.HasPrefix(value, "{") && strings.HasSuffix(value, "}") {
		sub, err := dictionary.Parse(path, value[1:len(value)-1], dictConfig)
		if err != nil {
			return update, err
		}
		update.Dict = sub
		return update, nil
	}

	s, err := token.Parse(path, value)
	if err != nil {
		return update, err
	}
	update.Values = []any{s.Tokens()}
	return update, nil
}
