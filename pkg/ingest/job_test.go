package ingest

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"lakeingest/pkg/config"
	"lakeingest/pkg/frame"
	"lakeingest/pkg/lake"
)

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	employees := writeCSV(t, dir, "employees.csv",
		"emp_id,name,department,salary\n"+
			"1,Asha,Engineering,98000.5\n"+
			"2,Ben,Sales,61500\n"+
			"3,Chen,Engineering,105250.75\n")
	sales := writeCSV(t, dir, "sales.csv",
		"sale_id,region,sale_date,amount\n"+
			"S1,R-East,2023-07-01,100.0\n"+
			"S2,R-West,2023-07-02,250.5\n"+
			"S3,R-East,bogus,75.25\n")
	return config.Config{
		Store: config.StoreConfig{
			Type:     config.StoreLocal,
			BasePath: t.TempDir(),
			Codec:    "snappy",
		},
		Datasets: []config.DatasetConfig{
			{Name: "employees", Input: employees, Output: "employees", PartitionBy: "department"},
			{
				Name: "sales", Input: sales, Output: "sales", PartitionBy: "region",
				Steps: []config.StepConfig{{Type: "to_date", Column: "sale_date"}},
			},
		},
	}
}

func TestJobEndToEnd(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	store, err := NewStore(ctx, cfg.Store)
	if err != nil {
		t.Fatal(err)
	}
	if err := NewJob(cfg, store).Run(ctx); err != nil {
		t.Fatal(err)
	}

	employees, err := lake.NewReader(store).Read(ctx, "employees")
	if err != nil {
		t.Fatal(err)
	}
	if employees.Rows() != 3 || employees.Cols() != 4 {
		t.Fatalf("employees read back %dx%d, want 3x4", employees.Rows(), employees.Cols())
	}
	depts, err := employees.DistinctStrings("department")
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(depts)
	if len(depts) != 2 || depts[0] != "Engineering" || depts[1] != "Sales" {
		t.Fatalf("departments = %v", depts)
	}

	sales, err := lake.NewReader(store).Read(ctx, "sales")
	if err != nil {
		t.Fatal(err)
	}
	if sales.Rows() != 3 {
		t.Fatalf("sales rows = %d, want 3", sales.Rows())
	}
	col, ok := sales.ColumnByName("sale_date")
	if !ok || col.Kind() != frame.KindDate {
		t.Fatalf("sale_date kind = %v, want date", col.Kind())
	}
	// the bogus date reached the store as null
	nulls := 0
	for i := 0; i < col.Len(); i++ {
		if col.IsNull(i) {
			nulls++
		}
	}
	if nulls != 1 {
		t.Fatalf("null sale_dates = %d, want 1", nulls)
	}
}

func TestReadInputAppliesSteps(t *testing.T) {
	cfg := testConfig(t)
	f, err := ReadInput(context.Background(), cfg.Datasets[1])
	if err != nil {
		t.Fatal(err)
	}
	col, ok := f.ColumnByName("sale_date")
	if !ok || col.Kind() != frame.KindDate {
		t.Fatalf("sale_date kind = %v, want date", col.Kind())
	}
	v, present := f.RenderCell(0, "sale_date")
	if !present || v != "2023-07-01" {
		t.Fatalf("sale_date row 0 = %q", v)
	}
}

func TestRunTwiceOverwrites(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	store, err := NewStore(ctx, cfg.Store)
	if err != nil {
		t.Fatal(err)
	}
	if err := NewJob(cfg, store).Run(ctx); err != nil {
		t.Fatal(err)
	}
	firstKeys, err := store.ListObjects(ctx, "sales/")
	if err != nil {
		t.Fatal(err)
	}
	if err := NewJob(cfg, store).Run(ctx); err != nil {
		t.Fatal(err)
	}
	secondKeys, err := store.ListObjects(ctx, "sales/")
	if err != nil {
		t.Fatal(err)
	}
	if len(firstKeys) != len(secondKeys) {
		t.Fatalf("object count changed: %d -> %d", len(firstKeys), len(secondKeys))
	}
	// part names are unique per run, so the first run's objects are gone
	first := map[string]struct{}{}
	for _, k := range firstKeys {
		first[k] = struct{}{}
	}
	for _, k := range secondKeys {
		if _, stale := first[k]; stale {
			t.Fatalf("object %s survived the overwrite", k)
		}
	}
}

func TestNewStoreRejectsUnknownType(t *testing.T) {
	if _, err := NewStore(context.Background(), config.StoreConfig{Type: "ftp"}); err == nil {
		t.Fatal("expected error for unknown store type")
	}
}
