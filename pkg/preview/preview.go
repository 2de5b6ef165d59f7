// Package preview renders schema dumps and head-of-frame tables for
// observability logging. Nothing here feeds back into the pipeline.
package preview

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"

	"lakeingest/pkg/frame"
)

// SchemaString renders a schema dump, one column per line.
func SchemaString(s frame.Schema) string {
	var b strings.Builder
	b.WriteString("root\n")
	for _, cs := range s.Columns {
		nullable := "nullable = true"
		if !cs.Nullable {
			nullable = "nullable = false"
		}
		fmt.Fprintf(&b, " |-- %s: %s (%s)\n", cs.Name, cs.Type, nullable)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Head renders the first n rows of the frame as an ASCII table. Null
// cells render as "null".
func Head(f *frame.Frame, n int) string {
	if n > f.Rows() {
		n = f.Rows()
	}
	cols := f.Schema().Columns
	header := make([]string, len(cols))
	for i, cs := range cols {
		header[i] = cs.Name
	}
	var b strings.Builder
	tw := tablewriter.NewWriter(&b)
	tw.SetHeader(header)
	tw.SetAutoFormatHeaders(false)
	for r := 0; r < n; r++ {
		row := make([]string, len(cols))
		for i, cs := range cols {
			v, ok := f.RenderCell(r, cs.Name)
			if !ok {
				v = "null"
			}
			row[i] = v
		}
		tw.Append(row)
	}
	tw.Render()
	return strings.TrimRight(b.String(), "\n")
}

// NullCounts reports the number of null cells per column, for the
// post-read observability log line.
func NullCounts(f *frame.Frame) map[string]int {
	out := make(map[string]int, f.Cols())
	for _, cs := range f.Schema().Columns {
		col, _ := f.ColumnByName(cs.Name)
		n := 0
		for i := 0; i < col.Len(); i++ {
			if col.IsNull(i) {
				n++
			}
		}
		out[cs.Name] = n
	}
	return out
}
