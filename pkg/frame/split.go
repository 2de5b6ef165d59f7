package frame

import (
	"fmt"
	"strconv"
)

// NullPartition is the directory name used for rows whose partition key is
// null, matching the Hive convention the downstream readers expect.
const NullPartition = "__HIVE_DEFAULT_PARTITION__"

func renderColumnCell(c Column, row int) (string, bool) {
	if c.IsNull(row) {
		return "", false
	}
	switch col := c.(type) {
	case *BoolColumn:
		v, _ := col.Get(row)
		return strconv.FormatBool(v), true
	case *IntColumn:
		v, _ := col.Get(row)
		return strconv.FormatInt(v, 10), true
	case *FloatColumn:
		v, _ := col.Get(row)
		return strconv.FormatFloat(v, 'g', -1, 64), true
	case *StringColumn:
		v, _ := col.Get(row)
		return v, true
	case *DateColumn:
		v, _ := col.Get(row)
		return v.Format(DateLayout), true
	}
	return "", false
}

func copyCell(dst *Frame, dstRow int, src Column, srcRow int) {
	if src.IsNull(srcRow) {
		return
	}
	switch col := src.(type) {
	case *BoolColumn:
		v, _ := col.Get(srcRow)
		_ = dst.SetCell(dstRow, col.Name(), v)
	case *IntColumn:
		v, _ := col.Get(srcRow)
		_ = dst.SetCell(dstRow, col.Name(), v)
	case *FloatColumn:
		v, _ := col.Get(srcRow)
		_ = dst.SetCell(dstRow, col.Name(), v)
	case *StringColumn:
		v, _ := col.Get(srcRow)
		_ = dst.SetCell(dstRow, col.Name(), v)
	case *DateColumn:
		v, _ := col.Get(srcRow)
		_ = dst.SetCell(dstRow, col.Name(), v)
	}
}

// Split partitions the frame by the rendered value of the key column.
// The key column is dropped from the sub-frames; its value lives in the
// map key (and, downstream, in the object path). Null keys group under
// NullPartition.
func (f *Frame) Split(key string) (map[string]*Frame, error) {
	keyCol, ok := f.ColumnByName(key)
	if !ok {
		return nil, fmt.Errorf("partition column %q not in schema", key)
	}
	sub := f.schema.Drop(key)
	parts := make(map[string]*Frame)
	for r := 0; r < f.nrows; r++ {
		kv, present := renderColumnCell(keyCol, r)
		if !present {
			kv = NullPartition
		}
		p, ok := parts[kv]
		if !ok {
			p = New(sub)
			parts[kv] = p
		}
		p.AppendNullRow()
		row := p.Rows() - 1
		for _, c := range f.cols {
			if c.Name() == key {
				continue
			}
			copyCell(p, row, c, r)
		}
	}
	return parts, nil
}

// DistinctStrings returns the distinct rendered values of the named
// column, with null represented as NullPartition.
func (f *Frame) DistinctStrings(name string) ([]string, error) {
	col, ok := f.ColumnByName(name)
	if !ok {
		return nil, fmt.Errorf("column %q not in schema", name)
	}
	seen := make(map[string]struct{})
	var out []string
	for r := 0; r < f.nrows; r++ {
		v, present := renderColumnCell(col, r)
		if !present {
			v = NullPartition
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out, nil
}

// AppendFrame appends all rows of src. Columns are matched by name; src
// columns missing from f are ignored, f columns missing from src stay null.
func (f *Frame) AppendFrame(src *Frame) {
	for r := 0; r < src.Rows(); r++ {
		f.AppendNullRow()
		row := f.nrows - 1
		for _, c := range src.cols {
			if _, ok := f.index[c.Name()]; !ok {
				continue
			}
			copyCell(f, row, c, r)
		}
	}
}
