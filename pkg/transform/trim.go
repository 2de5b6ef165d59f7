package transform

import (
	"context"
	"strings"

	"lakeingest/pkg/frame"
)

// Trim strips surrounding whitespace from a string column in place.
// Non-string columns pass through untouched.
type Trim struct{ Column string }

func (t *Trim) Name() string { return "trim" }

func (t *Trim) Apply(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
	col, ok := f.ColumnByName(t.Column)
	if !ok {
		return f, nil
	}
	if c, ok := col.(*frame.StringColumn); ok {
		for i := 0; i < c.Len(); i++ {
			if c.IsNull(i) {
				continue
			}
			v, _ := c.Get(i)
			c.Set(i, strings.TrimSpace(v))
		}
	}
	return f, nil
}
