package transform

import (
	"context"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"lakeingest/pkg/frame"
)

func stringFrame(t *testing.T, name string, values []*string) *frame.Frame {
	t.Helper()
	f := frame.New(frame.Schema{Columns: []frame.ColumnSchema{
		{Name: name, Type: frame.KindString, Nullable: true},
	}})
	for i, v := range values {
		f.AppendNullRow()
		if v != nil {
			if err := f.SetCell(i, name, *v); err != nil {
				t.Fatal(err)
			}
		}
	}
	return f
}

func s(v string) *string { return &v }

func TestToDateParsesAndNulls(t *testing.T) {
	f := stringFrame(t, "sale_date", []*string{
		s("2023-07-01"),
		s("not-a-date"),
		nil,
		s("2023-13-40"),
		s(" 2023-08-05 "),
	})
	out, err := (&ToDate{Column: "sale_date"}).Apply(context.Background(), f)
	if err != nil {
		t.Fatal(err)
	}
	col, ok := out.ColumnByName("sale_date")
	if !ok || col.Kind() != frame.KindDate {
		t.Fatalf("sale_date kind = %v, want date", col.Kind())
	}
	dc := col.(*frame.DateColumn)

	d, present := dc.Get(0)
	if !present || !d.Equal(time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("row 0 = %v (present=%t)", d, present)
	}
	for _, row := range []int{1, 2, 3} {
		if !dc.IsNull(row) {
			t.Fatalf("row %d should be null", row)
		}
	}
	// surrounding whitespace is tolerated
	if dc.IsNull(4) {
		t.Fatal("padded date should still parse")
	}
}

func TestToDateRejectsNonStringColumn(t *testing.T) {
	f := frame.New(frame.Schema{Columns: []frame.ColumnSchema{
		{Name: "amount", Type: frame.KindFloat, Nullable: true},
	}})
	if _, err := (&ToDate{Column: "amount"}).Apply(context.Background(), f); err == nil {
		t.Fatal("expected kind error")
	}
	if _, err := (&ToDate{Column: "missing"}).Apply(context.Background(), f); err == nil {
		t.Fatal("expected unknown column error")
	}
}

func TestToDateProperties(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 200
	properties := gopter.NewProperties(params)

	properties.Property("text matching the format parses to the same calendar date", prop.ForAll(
		func(days int) bool {
			want := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, days)
			f := stringFrame(t, "d", []*string{s(want.Format(frame.DateLayout))})
			out, err := (&ToDate{Column: "d"}).Apply(context.Background(), f)
			if err != nil {
				return false
			}
			dc, _ := out.ColumnByName("d")
			got, present := dc.(*frame.DateColumn).Get(0)
			return present && got.Equal(want)
		},
		gen.IntRange(0, 36524),
	))

	properties.Property("text not matching the format becomes null", prop.ForAll(
		func(v string) bool {
			if _, err := time.ParseInLocation(frame.DateLayout, v, time.UTC); err == nil {
				return true // generated a valid date, out of scope here
			}
			f := stringFrame(t, "d", []*string{s(v)})
			out, err := (&ToDate{Column: "d"}).Apply(context.Background(), f)
			if err != nil {
				return false
			}
			dc, _ := out.ColumnByName("d")
			return dc.(*frame.DateColumn).IsNull(0)
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

func TestTrim(t *testing.T) {
	f := stringFrame(t, "region", []*string{s("  R-East "), nil, s("R-West")})
	out, err := (&Trim{Column: "region"}).Apply(context.Background(), f)
	if err != nil {
		t.Fatal(err)
	}
	v, ok := out.RenderCell(0, "region")
	if !ok || v != "R-East" {
		t.Fatalf("row 0 = %q", v)
	}
	col, _ := out.ColumnByName("region")
	if !col.IsNull(1) {
		t.Fatal("null stays null")
	}
}
