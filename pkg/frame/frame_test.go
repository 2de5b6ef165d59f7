package frame

import (
	"sort"
	"testing"
	"time"
)

func salesSchema() Schema {
	return Schema{Columns: []ColumnSchema{
		{Name: "sale_id", Type: KindString, Nullable: true},
		{Name: "region", Type: KindString, Nullable: true},
		{Name: "sale_date", Type: KindDate, Nullable: true},
		{Name: "amount", Type: KindFloat, Nullable: true},
	}}
}

func addSale(t *testing.T, f *Frame, id, region string, date time.Time, amount float64) {
	t.Helper()
	f.AppendNullRow()
	row := f.Rows() - 1
	if err := f.SetCell(row, "sale_id", id); err != nil {
		t.Fatal(err)
	}
	if region != "" {
		if err := f.SetCell(row, "region", region); err != nil {
			t.Fatal(err)
		}
	}
	if !date.IsZero() {
		if err := f.SetCell(row, "sale_date", date); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.SetCell(row, "amount", amount); err != nil {
		t.Fatal(err)
	}
}

func TestSetCellAndRender(t *testing.T) {
	f := New(salesSchema())
	d := time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC)
	addSale(t, f, "S1", "R-East", d, 100.0)

	if f.Rows() != 1 || f.Cols() != 4 {
		t.Fatalf("got %dx%d, want 1x4", f.Rows(), f.Cols())
	}
	v, ok := f.RenderCell(0, "sale_date")
	if !ok || v != "2023-07-01" {
		t.Fatalf("sale_date rendered %q (ok=%t)", v, ok)
	}
	v, ok = f.RenderCell(0, "amount")
	if !ok || v != "100" {
		t.Fatalf("amount rendered %q (ok=%t)", v, ok)
	}
}

func TestSplitByRegion(t *testing.T) {
	f := New(salesSchema())
	d := time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC)
	addSale(t, f, "S1", "R-East", d, 100.0)
	addSale(t, f, "S2", "R-West", d, 250.5)
	addSale(t, f, "S3", "R-East", d, 75.25)
	addSale(t, f, "S4", "", d, 88.5)

	parts, err := f.Split("region")
	if err != nil {
		t.Fatal(err)
	}
	if len(parts) != 3 {
		t.Fatalf("expected 3 partitions, got %d", len(parts))
	}
	east := parts["R-East"]
	if east == nil || east.Rows() != 2 {
		t.Fatalf("R-East partition wrong: %+v", east)
	}
	if east.Cols() != 3 {
		t.Fatalf("partition should drop key column, has %d cols", east.Cols())
	}
	if _, ok := east.ColumnByName("region"); ok {
		t.Fatal("region column should be dropped from partitions")
	}
	if parts[NullPartition] == nil || parts[NullPartition].Rows() != 1 {
		t.Fatal("null key rows should group under NullPartition")
	}

	// no rows dropped or duplicated
	total := 0
	for _, p := range parts {
		total += p.Rows()
	}
	if total != f.Rows() {
		t.Fatalf("partition rows sum to %d, source has %d", total, f.Rows())
	}
}

func TestDistinctStrings(t *testing.T) {
	f := New(salesSchema())
	d := time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC)
	addSale(t, f, "S1", "R-East", d, 1)
	addSale(t, f, "S2", "R-West", d, 2)
	addSale(t, f, "S3", "R-East", d, 3)

	got, err := f.DistinctStrings("region")
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(got)
	want := []string{"R-East", "R-West"}
	if len(got) != len(want) {
		t.Fatalf("distinct = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("distinct = %v, want %v", got, want)
		}
	}
}

func TestAppendFrameMatchesByName(t *testing.T) {
	src := New(salesSchema())
	d := time.Date(2023, 8, 1, 0, 0, 0, 0, time.UTC)
	addSale(t, src, "S5", "R-West", d, 42)

	dst := New(salesSchema())
	dst.AppendFrame(src)
	if dst.Rows() != 1 {
		t.Fatalf("got %d rows, want 1", dst.Rows())
	}
	v, ok := dst.RenderCell(0, "sale_id")
	if !ok || v != "S5" {
		t.Fatalf("sale_id = %q (ok=%t)", v, ok)
	}
}

func TestReplaceColumnRetypes(t *testing.T) {
	s := Schema{Columns: []ColumnSchema{{Name: "d", Type: KindString, Nullable: true}}}
	f := New(s)
	f.AppendNullRow()
	if err := f.SetCell(0, "d", "2023-07-01"); err != nil {
		t.Fatal(err)
	}
	dc := NewDateColumn("d", 0)
	dc.Append(time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC))
	if err := f.ReplaceColumn("d", dc); err != nil {
		t.Fatal(err)
	}
	if f.Schema().Columns[0].Type != KindDate {
		t.Fatalf("schema kind = %v, want date", f.Schema().Columns[0].Type)
	}
	short := NewDateColumn("d", 0)
	if err := f.ReplaceColumn("d", short); err == nil {
		t.Fatal("length mismatch should error")
	}
}

func TestReplaceColumnDoesNotLeakAcrossPartitions(t *testing.T) {
	f := New(salesSchema())
	d := time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC)
	addSale(t, f, "S1", "R-East", d, 100.0)
	addSale(t, f, "S2", "R-West", d, 250.5)

	parts, err := f.Split("region")
	if err != nil {
		t.Fatal(err)
	}
	east, west := parts["R-East"], parts["R-West"]

	// retype sale_id in one partition; the sibling keeps its own schema
	repl := NewIntColumn("sale_id", 0)
	repl.Append(1)
	if err := east.ReplaceColumn("sale_id", repl); err != nil {
		t.Fatal(err)
	}
	kindOf := func(fr *Frame) Kind {
		s := fr.Schema()
		return s.Columns[s.ColumnIndex("sale_id")].Type
	}
	if got := kindOf(east); got != KindInt {
		t.Fatalf("east sale_id kind = %v, want int", got)
	}
	if got := kindOf(west); got != KindString {
		t.Fatalf("west sale_id kind = %v, want string", got)
	}
	if got := kindOf(f); got != KindString {
		t.Fatalf("source sale_id kind = %v, want string", got)
	}
}
