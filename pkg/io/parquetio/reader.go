package parquetio

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	parquet "github.com/segmentio/parquet-go"

	"lakeingest/pkg/frame"
)

// Reader decodes a Parquet file back into a Frame. Column kinds come
// from the file's own schema; a bounded row sample is read only to
// promote string columns holding DateLayout values back to date
// columns, since dates are written as UTF8 strings.
type Reader struct {
	file   *os.File
	reader *parquet.GenericReader[map[string]any]
	schema frame.Schema
}

func OpenReader(path string, sampleRows int) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r := parquet.NewGenericReader[map[string]any](f)
	if sampleRows <= 0 {
		sampleRows = 100
	}
	rows := make([]map[string]any, sampleRows)
	n, err := r.Read(rows)
	if err != nil && !isEOF(err) {
		_ = r.Close()
		_ = f.Close()
		return nil, err
	}
	schema := schemaFromFile(r.Schema(), rows[:n])
	// the generic reader cannot rewind, so reopen for the full pass
	if err := r.Close(); err != nil {
		_ = f.Close()
		return nil, err
	}
	if _, err := f.Seek(0, 0); err != nil {
		_ = f.Close()
		return nil, err
	}
	return &Reader{file: f, reader: parquet.NewGenericReader[map[string]any](f), schema: schema}, nil
}

func isEOF(err error) bool {
	return err != nil && strings.Contains(err.Error(), "EOF")
}

func (r *Reader) Close() error {
	_ = r.reader.Close()
	return r.file.Close()
}

func (r *Reader) Schema() frame.Schema { return r.schema }

func (r *Reader) ReadAll() (*frame.Frame, error) {
	f := frame.New(r.schema)
	buf := make([]map[string]any, 1024)
	for {
		n, err := r.reader.Read(buf)
		for i := 0; i < n; i++ {
			f.AppendNullRow()
			setRow(f, f.Rows()-1, buf[i])
		}
		if err != nil {
			if isEOF(err) {
				break
			}
			return nil, err
		}
		if n == 0 {
			break
		}
	}
	return f, nil
}

func isDateString(s string) bool {
	if len(s) != len(frame.DateLayout) {
		return false
	}
	_, err := time.ParseInLocation(frame.DateLayout, s, time.UTC)
	return err == nil
}

// schemaFromFile maps the Parquet file schema onto frame kinds. rows is
// the sampled prefix used only for the string-to-date promotion.
func schemaFromFile(ps *parquet.Schema, rows []map[string]any) frame.Schema {
	fields := ps.Fields()
	schema := frame.Schema{Columns: make([]frame.ColumnSchema, len(fields))}
	for i, fld := range fields {
		var kind frame.Kind
		switch fld.Type().Kind() {
		case parquet.Boolean:
			kind = frame.KindBool
		case parquet.Int32, parquet.Int64:
			kind = frame.KindInt
		case parquet.Float, parquet.Double:
			kind = frame.KindFloat
		default:
			kind = frame.KindString
		}
		if kind == frame.KindString && allDateValues(fld.Name(), rows) {
			kind = frame.KindDate
		}
		schema.Columns[i] = frame.ColumnSchema{Name: fld.Name(), Type: kind, Nullable: true}
	}
	return schema
}

// allDateValues reports whether every sampled non-null value of the
// column is a DateLayout string, with at least one present.
func allDateValues(name string, rows []map[string]any) bool {
	seen := 0
	for _, m := range rows {
		v, ok := m[name]
		if !ok || v == nil {
			continue
		}
		s, ok := asString(v)
		if !ok {
			return false
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if !isDateString(s) {
			return false
		}
		seen++
	}
	return seen > 0
}

func asString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case []byte:
		return string(t), true
	}
	return "", false
}

func setRow(f *frame.Frame, row int, m map[string]any) {
	for _, cs := range f.Schema().Columns {
		v, ok := m[cs.Name]
		if !ok || v == nil {
			continue
		}
		switch cs.Type {
		case frame.KindFloat:
			switch t := v.(type) {
			case float64:
				_ = f.SetCell(row, cs.Name, t)
			case float32:
				_ = f.SetCell(row, cs.Name, float64(t))
			case int:
				_ = f.SetCell(row, cs.Name, float64(t))
			case int32:
				_ = f.SetCell(row, cs.Name, float64(t))
			case int64:
				_ = f.SetCell(row, cs.Name, float64(t))
			case string:
				if s := strings.TrimSpace(t); s != "" {
					if x, err := strconv.ParseFloat(s, 64); err == nil {
						_ = f.SetCell(row, cs.Name, x)
					}
				}
			}
		case frame.KindInt:
			switch t := v.(type) {
			case int64:
				_ = f.SetCell(row, cs.Name, t)
			case int32:
				_ = f.SetCell(row, cs.Name, int64(t))
			case int:
				_ = f.SetCell(row, cs.Name, int64(t))
			case string:
				if s := strings.TrimSpace(t); s != "" {
					if x, err := strconv.ParseInt(s, 10, 64); err == nil {
						_ = f.SetCell(row, cs.Name, x)
					}
				}
			}
		case frame.KindBool:
			switch t := v.(type) {
			case bool:
				_ = f.SetCell(row, cs.Name, t)
			case string:
				if x, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(t))); err == nil {
					_ = f.SetCell(row, cs.Name, x)
				}
			}
		case frame.KindDate:
			if s, ok := asString(v); ok {
				if d, err := time.ParseInLocation(frame.DateLayout, strings.TrimSpace(s), time.UTC); err == nil {
					_ = f.SetCell(row, cs.Name, d)
				}
			}
		default:
			if s, ok := asString(v); ok {
				_ = f.SetCell(row, cs.Name, s)
			} else {
				_ = f.SetCell(row, cs.Name, fmt.Sprintf("%v", v))
			}
		}
	}
}
