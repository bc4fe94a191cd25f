package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"foamdict/pkg/dictionary"
	"foamdict/pkg/document"
	"foamdict/pkg/token"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]...",
	Short: "Parse dictionary files and print their structure",
	Long: `Parse one or more dictionary files and print the tree of entries.
Includes and $variables are resolved while parsing. With --validate the
common dictionary file problems (missing header, empty dictionaries) are
listed as well. The command fails when any file does not parse.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		validate, _ := cmd.Flags().GetBool("validate")
		out := cmd.OutOrStdout()

		failed := 0
		for _, filename := range args {
			doc, err := loadDocument(filename)
			if err != nil {
				failed++
				logger.WithError(err).WithField("file", filename).Error("parse failed")
				continue
			}

			switch format {
			case "json", "yaml", "toml":
				data, err := doc.Export(format)
				if err != nil {
					return err
				}
				out.Write(data)
			case "human":
				outputHuman(out, doc)
			default:
				return fmt.Errorf("unknown format %q", format)
			}

			if validate {
				outputIssues(out, doc.Validate())
			}
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d files failed to parse", failed, len(args))
		}
		return nil
	},
}

func init() {
	parseCmd.Flags().StringP("format", "f", "human", "Output format (human, json, yaml, toml)")
	parseCmd.Flags().BoolP("validate", "v", false, "Report validation issues")
}

func outputHuman(out io.Writer, doc *document.Document) {
	fmt.Fprintf(out, "Parsed file: %s\n", doc.GetFilename())
	fmt.Fprintf(out, "=====================================\n\n")

	for _, e := range doc.Dict().Entries() {
		printEntry(out, e, 0)
	}

	stats := doc.GetStats()
	fmt.Fprintf(out, "\nSummary:\n")
	fmt.Fprintf(out, "--------\n")
	fmt.Fprintf(out, "Total entries: %d\n", stats.Entries)
	fmt.Fprintf(out, "Dictionaries: %d\n", stats.Dictionaries)
	fmt.Fprintf(out, "Pattern keywords: %d\n", stats.Patterns)
	fmt.Fprintf(out, "Maximum depth: %d\n", stats.MaxDepth)
	fmt.Fprintf(out, "Digest: %s\n", doc.Dict().Digest())
}

func printEntry(out io.Writer, e *dictionary.Entry, depth int) {
	indent := strings.Repeat("  ", depth)
	name := e.Keyword().Text()
	if e.Keyword().IsPattern() {
		name = color.CyanString("%q", name)
	}

	if e.IsDict() {
		fmt.Fprintf(out, "%s%s {} (line %d, %d entries)\n", indent, name, e.StartLine(), e.Dict().Len())
		for _, child := range e.Dict().Entries() {
			printEntry(out, child, depth+1)
		}
		return
	}
	fmt.Fprintf(out, "%s%s = %s (line %d)\n", indent, name, token.Join(e.Tokens()), e.StartLine())
}

func outputIssues(out io.Writer, issues []document.ValidationIssue) {
	if len(issues) == 0 {
		fmt.Fprintln(out, color.GreenString("No issues found"))
		return
	}
	for _, issue := range issues {
		severity := issue.Severity
		switch severity {
		case "error":
			severity = color.RedString(severity)
		case "warning":
			severity = color.YellowString(severity)
		}
		fmt.Fprintf(out, "%s: %s [%s] %s\n", severity, issue.EntryPath, issue.IssueType, issue.Message)
	}
}
