package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"foamdict/pkg/dictionary"
)

var digestCmd = &cobra.Command{
	Use:   "digest [pattern]...",
	Short: "Print the content digest of dictionary files",
	Long: `Print a 160-bit digest of each dictionary file. The digest covers the
parsed content only: comments, layout and included file boundaries do not
change it, so two files with the same digest hold the same dictionary.
Arguments are file names or glob patterns (system/**/*Dict).`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := expandPatterns(args)
		if err != nil {
			return err
		}

		expected, _ := cmd.Flags().GetString("verify")
		var want dictionary.Digest
		if expected != "" {
			if want, err = dictionary.ParseDigest(expected); err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		mismatched := 0
		for _, filename := range files {
			doc, err := loadDocument(filename)
			if err != nil {
				return err
			}
			got := doc.Dict().Digest()
			fmt.Fprintf(out, "%s  %s\n", got, filename)
			if expected != "" && got != want {
				mismatched++
			}
		}

		if mismatched > 0 {
			return fmt.Errorf("%d of %d files do not match digest %s", mismatched, len(files), want)
		}
		return nil
	},
}

func init() {
	digestCmd.Flags().String("verify", "", "Fail unless every file has this digest")
}

// expandPatterns resolves glob patterns to regular files, keeping argument
// order and dropping duplicates. Arguments without glob syntax are kept even
// when they do not exist so that loading reports the missing file.
func expandPatterns(args []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			files = append(files, name)
		}
	}

	for _, pattern := range args {
		if _, err := os.Stat(pattern); err == nil || !hasMeta(pattern) {
			add(pattern)
			continue
		}

		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			logger.WithField("pattern", pattern).Warn("no files match")
		}
		for _, match := range matches {
			if info, err := os.Stat(match); err == nil && !info.IsDir() {
				add(match)
			}
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no files to process")
	}
	return files, nil
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, `*?[{\`)
}
