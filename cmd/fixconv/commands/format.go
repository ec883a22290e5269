package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/wonny/fixconv/internal/fix"
)

// printExplained writes annotated fields as an aligned table, or JSON with --json
func printExplained(w io.Writer, message string, fields []fix.AnnotatedField) error {
	if jsonOutput {
		return printJSON(w, map[string]interface{}{
			"fixMessage":   message,
			"explainedFix": fields,
		})
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TAG\tVALUE\tEXPLANATION")
	for _, f := range fields {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", f.Tag, f.Value, f.Explanation)
	}
	return tw.Flush()
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
