package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var formatCmd = &cobra.Command{
	Use:   "format [pattern]...",
	Short: "Rewrite dictionary files in canonical layout",
	Long: `Parse dictionary files and print them in canonical layout: one entry per
line, keywords padded to a common column and sub-dictionaries indented.
Comments are dropped and #include directives are replaced by the included
entries. With --write files are rewritten in place; with --check the command
lists the files that are not in canonical layout and fails if there are any.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := expandPatterns(args)
		if err != nil {
			return err
		}

		write, _ := cmd.Flags().GetBool("write")
		check, _ := cmd.Flags().GetBool("check")
		backup, _ := cmd.Flags().GetBool("backup")
		out := cmd.OutOrStdout()

		unformatted := 0
		for _, filename := range files {
			doc, err := loadDocument(filename)
			if err != nil {
				return err
			}
			formatted, err := doc.SaveToString()
			if err != nil {
				return err
			}

			switch {
			case check:
				if doc.GetContent() != formatted {
					unformatted++
					fmt.Fprintln(out, filename)
				}
			case write:
				if doc.GetContent() == formatted {
					continue
				}
				if err := writeInPlace(filename, []byte(formatted), backup); err != nil {
					return err
				}
				logger.WithField("file", filename).Info("formatted")
			default:
				fmt.Fprint(out, formatted)
			}
		}

		if unformatted > 0 {
			return fmt.Errorf("%d of %d files are not formatted", unformatted, len(files))
		}
		return nil
	},
}

func init() {
	formatCmd.Flags().BoolP("write", "w", false, "Rewrite files in place")
	formatCmd.Flags().BoolP("check", "c", false, "List files that are not formatted and fail if there are any")
	formatCmd.Flags().BoolP("backup", "b", false, "Create backups when rewriting")
}
