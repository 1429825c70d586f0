package emit

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/ekobres/edgerank/model"
)

// WriteTable renders the same columns as WriteCSV as a right-aligned
// terminal table, truncated to the first limit rows (spec §6's "-p").
func WriteTable(w io.Writer, rows []model.Measurement, includePort bool, limit int) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	defer tw.Flush()

	header := CSVHeader()
	for i, h := range header {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, h)
	}
	fmt.Fprintln(tw)

	if limit <= 0 || limit > len(rows) {
		limit = len(rows)
	}
	for _, m := range rows[:limit] {
		record := formatRow(m, includePort)
		for i, f := range record {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, f)
		}
		fmt.Fprintln(tw)
	}
}
