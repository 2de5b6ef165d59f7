// Package transform provides column-level mutations applied between CSV
// ingestion and Parquet output.
package transform

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lakeingest/pkg/frame"
)

// ToDate retypes a string column into a date column by parsing each value
// with a fixed format. Values that do not match the format become null,
// as do values that were already null.
type ToDate struct {
	Column string
	Format string // Go reference layout; default frame.DateLayout
}

func (t *ToDate) Name() string { return "to_date" }

func (t *ToDate) Apply(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
	col, ok := f.ColumnByName(t.Column)
	if !ok {
		return nil, fmt.Errorf("to_date: column %q not in schema", t.Column)
	}
	sc, ok := col.(*frame.StringColumn)
	if !ok {
		if col.Kind() == frame.KindDate {
			return f, nil
		}
		return nil, fmt.Errorf("to_date: column %q is %s, want string", t.Column, col.Kind())
	}
	layout := t.Format
	if layout == "" {
		layout = frame.DateLayout
	}
	dc := frame.NewDateColumn(t.Column, 0)
	for i := 0; i < sc.Len(); i++ {
		v, present := sc.Get(i)
		if !present {
			dc.AppendNull()
			continue
		}
		d, err := time.ParseInLocation(layout, strings.TrimSpace(v), time.UTC)
		if err != nil {
			dc.AppendNull()
			continue
		}
		dc.Append(d)
	}
	if err := f.ReplaceColumn(t.Column, dc); err != nil {
		return nil, fmt.Errorf("to_date: %w", err)
	}
	return f, nil
}
