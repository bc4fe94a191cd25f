package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mitchellh/go-wordwrap"
	"github.com/pkg/errors"

	"foamdict/pkg/dictionary"
)

const width = 78

var hints = map[dictionary.ErrorKind]string{
	dictionary.MissingEntry:   "The keyword is not defined in the dictionary or, for scoped lookups, in the dictionaries along the path. Check its spelling and the enclosing dictionary.",
	dictionary.MalformedEntry: "The entry exists but its value could not be read. Check the number of values and that the entry ends with a semicolon.",
	dictionary.InvalidInput:   "A primitive entry was used where a dictionary was expected, or the other way round.",
	dictionary.DuplicateKey:   "The keyword is defined twice while #inputMode error is active. Remove one definition or change the input mode.",
	dictionary.SelfOperation:  "A dictionary cannot be merged, appended or transferred into itself.",
	dictionary.Syntax:         "The file does not follow the dictionary syntax. Check braces, quotes and semicolons near the reported line.",
}

// FormatError renders an error for the terminal. Dictionary errors get a
// short hint after the message.
func FormatError(err error) string {
	var b strings.Builder
	wrapped := wordwrap.WrapString("Error: "+err.Error(), width)
	b.WriteString(color.RedString("Error:"))
	b.WriteString(strings.TrimPrefix(wrapped, "Error:"))
	b.WriteString("\n")

	var de *dictionary.Error
	if errors.As(err, &de) {
		if hint, ok := hints[de.Kind]; ok {
			b.WriteString("\n")
			b.WriteString(color.HiYellowString("HINT:"))
			b.WriteString("\n")
			b.WriteString(wordwrap.WrapString(hint, width))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// PrintError writes FormatError(err) to w
func PrintError(w io.Writer, err error) {
	fmt.Fprint(w, FormatError(err))
}
