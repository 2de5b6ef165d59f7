// Package csvio reads delimited text files into typed frames with
// header-based schema inference.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"lakeingest/pkg/frame"
	"lakeingest/pkg/io/ioutils"
)

type ReaderOptions struct {
	HasHeader  bool
	Delimiter  rune // default ','
	SampleRows int  // for inference; default 100
	Strict     bool // if true, error on short/long records
}

type Reader struct {
	r      *csv.Reader
	closer io.Closer
	opt    ReaderOptions
	buf    [][]string
	// mismatch counters
	shortRecords int
	longRecords  int
}

// Open opens a CSV file (gzip-transparent) and returns a Reader.
// Close releases the underlying file.
func Open(path string, opt ReaderOptions) (*Reader, error) {
	rc, err := ioutils.OpenMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	rr := csv.NewReader(rc)
	if opt.Delimiter != 0 {
		rr.Comma = opt.Delimiter
	}
	rr.FieldsPerRecord = -1
	return &Reader{r: rr, closer: rc, opt: opt}, nil
}

// NewReaderFrom constructs a Reader from an arbitrary io.Reader (stdin, pipe).
func NewReaderFrom(r io.Reader, opt ReaderOptions) *Reader {
	rr := csv.NewReader(r)
	if opt.Delimiter != 0 {
		rr.Comma = opt.Delimiter
	}
	rr.FieldsPerRecord = -1
	return &Reader{r: rr, opt: opt}
}

func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// InferSchema reads the header (if present) and samples rows to determine
// column kinds. Date-like text stays KindString; retyping a column to
// KindDate is an explicit transform step, not an inference outcome.
func (r *Reader) InferSchema() (frame.Schema, error) {
	rec, err := r.r.Read()
	if err != nil {
		return frame.Schema{}, err
	}
	var names []string
	if r.opt.HasHeader {
		names = make([]string, len(rec))
		for i := range rec {
			names[i] = strings.ToValidUTF8(rec[i], "?")
		}
		// strip BOM on first header cell if present
		if len(names) > 0 {
			names[0] = strings.TrimPrefix(names[0], "\uFEFF")
		}
		rec, err = r.r.Read()
		if err == io.EOF {
			// header with no data rows is a valid, empty input
			schema := frame.Schema{Columns: make([]frame.ColumnSchema, len(names))}
			for i := range names {
				schema.Columns[i] = frame.ColumnSchema{Name: names[i], Type: frame.KindString, Nullable: true}
			}
			return schema, nil
		}
		if err != nil {
			return frame.Schema{}, err
		}
	} else {
		names = make([]string, len(rec))
		for i := range names {
			names[i] = "col_" + strconv.Itoa(i)
		}
	}

	sample := [][]string{append([]string(nil), rec...)}
	max := r.opt.SampleRows
	if max <= 0 {
		max = 100
	}
	for i := 1; i < max; i++ {
		rr, err := r.r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return frame.Schema{}, err
		}
		sample = append(sample, append([]string(nil), rr...))
	}

	kinds := inferKinds(sample)
	schema := frame.Schema{Columns: make([]frame.ColumnSchema, len(names))}
	for i := range names {
		schema.Columns[i] = frame.ColumnSchema{Name: names[i], Type: kinds[i], Nullable: true}
	}
	// retain sampled rows for the subsequent ReadAll
	r.buf = append(r.buf, sample...)
	return schema, nil
}

// ReadAll loads the rest of the CSV into a Frame. Empty and unparseable
// cells are null.
func (r *Reader) ReadAll(schema frame.Schema) (*frame.Frame, error) {
	f := frame.New(schema)
	for _, rec := range r.buf {
		if err := r.appendRecord(f, schema, rec); err != nil {
			return nil, err
		}
	}
	r.buf = nil
	for {
		rec, err := r.r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if err := r.appendRecord(f, schema, rec); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (r *Reader) appendRecord(f *frame.Frame, schema frame.Schema, rec []string) error {
	f.AppendNullRow()
	row := f.Rows() - 1
	if len(rec) > len(schema.Columns) {
		r.longRecords++
		if r.opt.Strict {
			return fmt.Errorf("csv long record: need %d fields, got %d", len(schema.Columns), len(rec))
		}
	}
	for i, cs := range schema.Columns {
		if i >= len(rec) {
			r.shortRecords++
			if r.opt.Strict {
				return fmt.Errorf("csv short record: need %d fields, got %d", len(schema.Columns), len(rec))
			}
			continue
		}
		val := strings.ToValidUTF8(strings.TrimSpace(rec[i]), "?")
		if val == "" {
			continue
		}
		switch cs.Type {
		case frame.KindFloat:
			if x, err := strconv.ParseFloat(val, 64); err == nil {
				_ = f.SetCell(row, cs.Name, x)
			}
		case frame.KindInt:
			if x, err := strconv.ParseInt(val, 10, 64); err == nil {
				_ = f.SetCell(row, cs.Name, x)
			}
		case frame.KindBool:
			if x, err := strconv.ParseBool(strings.ToLower(val)); err == nil {
				_ = f.SetCell(row, cs.Name, x)
			}
		default:
			_ = f.SetCell(row, cs.Name, val)
		}
	}
	return nil
}

var numRe = regexp.MustCompile(`^[-+]?[0-9]*\.?[0-9]+([eE][-+]?[0-9]+)?$`)

func inferKinds(rows [][]string) []frame.Kind {
	if len(rows) == 0 {
		return nil
	}
	ncol := len(rows[0])
	kinds := make([]frame.Kind, ncol)
	for c := 0; c < ncol; c++ {
		num, integer, boolean, str := 0, 0, 0, 0
		for _, row := range rows {
			if c >= len(row) {
				continue
			}
			v := strings.TrimSpace(row[c])
			if v == "" {
				continue
			}
			if numRe.MatchString(v) {
				num++
				if !strings.ContainsAny(v, ".eE") {
					integer++
				}
				continue
			}
			if lv := strings.ToLower(v); lv == "true" || lv == "false" {
				boolean++
				continue
			}
			str++
		}
		switch {
		case boolean > 0 && num == 0 && str == 0:
			kinds[c] = frame.KindBool
		case num > str:
			if integer == num {
				kinds[c] = frame.KindInt
			} else {
				kinds[c] = frame.KindFloat
			}
		default:
			kinds[c] = frame.KindString
		}
	}
	return kinds
}

// Warnings returns a summary of any record-shape mismatches encountered.
func (r *Reader) Warnings() string {
	if r.shortRecords == 0 && r.longRecords == 0 {
		return ""
	}
	var parts []string
	if r.shortRecords > 0 {
		parts = append(parts, fmt.Sprintf("short_records=%d", r.shortRecords))
	}
	if r.longRecords > 0 {
		parts = append(parts, fmt.Sprintf("long_records=%d", r.longRecords))
	}
	return strings.Join(parts, ", ")
}
