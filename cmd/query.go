package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"foamdict/pkg/dictionary"
	"foamdict/pkg/formatter"
	"foamdict/pkg/keyword"
	"foamdict/pkg/token"
)

var getCmd = &cobra.Command{
	Use:   "get [file] [keyword]",
	Short: "Print the value of an entry",
	Long: `Print the value of the entry found by a scoped keyword. Keywords use
dots to enter sub-dictionaries (solvers.p.tolerance), a leading colon to start
at the top (:solvers.p) or slashes (solvers/p/tolerance). Pattern keywords
match. Sub-dictionaries are printed in dictionary syntax.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadDocument(args[0])
		if err != nil {
			return err
		}

		key := args[1]
		out := cmd.OutOrStdout()
		e, err := doc.Dict().LookupScoped(key, keyword.MatchRegex)
		if err != nil {
			if def, _ := cmd.Flags().GetString("default"); cmd.Flags().Changed("default") && dictionary.IsKind(err, dictionary.MissingEntry) {
				if dictConfig.ReportOptional.IsSet() {
					logger.WithField("keyword", key).WithField("default", def).Info("optional entry not found, using default")
				}
				fmt.Fprintln(out, def)
				return nil
			}
			return err
		}

		showEntry, _ := cmd.Flags().GetBool("entry")
		showSummary, _ := cmd.Flags().GetBool("summary")
		switch {
		case showSummary:
			fmt.Fprint(out, formatter.New().EntrySummary(e))
		case showEntry:
			fmt.Fprint(out, e.String())
		case e.IsDict():
			fmt.Fprint(out, e.Dict().String())
		default:
			fmt.Fprintln(out, token.Join(e.Tokens()))
		}
		return nil
	},
}

var keysCmd = &cobra.Command{
	Use:   "keys [file] [dictionary]",
	Short: "List the keywords of a dictionary",
	Long: `List the keywords of the top-level dictionary, or of the sub-dictionary
named by a scoped keyword. With --all every entry path of the file is listed.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadDocument(args[0])
		if err != nil {
			return err
		}

		all, _ := cmd.Flags().GetBool("all")
		sorted, _ := cmd.Flags().GetBool("sorted")
		patterns, _ := cmd.Flags().GetBool("patterns")

		var keys []string
		switch {
		case all:
			keys = doc.EntryPaths()
		default:
			d := doc.Dict()
			if len(args) == 2 {
				e, err := d.LookupScoped(args[1], keyword.MatchRegex)
				if err != nil {
					return err
				}
				if !e.IsDict() {
					return fmt.Errorf("%s is not a dictionary", args[1])
				}
				d = e.Dict()
			}
			switch {
			case patterns:
				keys = d.Keys(true)
			case sorted:
				keys = d.SortedToc()
			default:
				keys = d.Toc()
			}
		}

		if len(keys) > 0 {
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(keys, "\n"))
		}
		return nil
	},
}

func init() {
	getCmd.Flags().BoolP("entry", "e", false, "Print the whole entry including its keyword")
	getCmd.Flags().BoolP("summary", "s", false, "Print an entry summary")
	getCmd.Flags().String("default", "", "Value printed when the keyword is missing")

	keysCmd.Flags().BoolP("all", "a", false, "List every entry path")
	keysCmd.Flags().BoolP("sorted", "s", false, "Sort the keywords")
	keysCmd.Flags().BoolP("patterns", "p", false, "List only pattern keywords")
}
