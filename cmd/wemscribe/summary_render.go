package main

import (
	"fmt"
	"io"
	"strconv"

	"wemscribe/internal/workflow"
)

func renderSummary(w io.Writer, summary *workflow.Summary) {
	rows := [][]string{
		{"Requested", strconv.Itoa(summary.Requested)},
		{"Succeeded", strconv.Itoa(summary.Succeeded)},
		{"Failed", strconv.Itoa(summary.Failed)},
		{"Not found", strconv.Itoa(len(summary.Missing))},
		{"Output", summary.OutputPath},
	}
	if isTerminal(w) {
		fmt.Fprintln(w, renderTable([]string{"Result", "Value"}, rows))
	} else {
		for _, row := range rows {
			fmt.Fprintf(w, "%s: %s\n", row[0], row[1])
		}
	}

	if len(summary.Missing) > 0 {
		fmt.Fprintln(w, "Not found under the search directory:")
		for _, name := range summary.Missing {
			fmt.Fprintf(w, "  %s\n", name)
		}
	}
	if summary.Failed > 0 {
		fmt.Fprintln(w, "Failed items keep their staged copies in the source workspace; see `wemscribe queue list` for details.")
	}
}
