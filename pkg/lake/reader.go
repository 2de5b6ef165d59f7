package lake

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"

	"lakeingest/pkg/frame"
	"lakeingest/pkg/io/parquetio"
	"lakeingest/pkg/storage"
)

// Reader reads a partitioned Parquet dataset back out of the object store,
// re-attaching the partition column from the object paths.
type Reader struct {
	store  storage.ObjectStorage
	tmpDir string
}

func NewReader(store storage.ObjectStorage) *Reader {
	return &Reader{store: store}
}

// partitionOf extracts the Hive-style partition column and value from an
// object path, if present.
func partitionOf(objectPath string) (col, val string, ok bool) {
	for _, seg := range strings.Split(objectPath, "/") {
		if c, v, found := strings.Cut(seg, "="); found && c != "" {
			if u, err := url.PathUnescape(v); err == nil {
				v = u
			}
			return c, v, true
		}
	}
	return "", "", false
}

// Read loads every part file under the dataset prefix into one frame.
// Returns storage.ErrObjectNotFound when the prefix holds no parquet
// objects.
func (r *Reader) Read(ctx context.Context, dataset string) (*frame.Frame, error) {
	keys, err := r.store.ListObjects(ctx, dataset+"/")
	if err != nil {
		return nil, fmt.Errorf("list dataset %s: %w", dataset, err)
	}
	var parts []string
	for _, k := range keys {
		if strings.HasSuffix(k, ".parquet") {
			parts = append(parts, k)
		}
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("dataset %s: %w", dataset, storage.ErrObjectNotFound)
	}
	sort.Strings(parts)

	var out *frame.Frame
	var partCol string
	for _, key := range parts {
		pf, err := r.readPart(ctx, key)
		if err != nil {
			return nil, err
		}
		col, val, partitioned := partitionOf(key)
		if out == nil {
			schema := pf.Schema()
			if partitioned {
				partCol = col
				schema.Columns = append(schema.Columns, frame.ColumnSchema{
					Name: col, Type: frame.KindString, Nullable: true,
				})
			}
			out = frame.New(schema)
		}
		start := out.Rows()
		out.AppendFrame(pf)
		if partitioned && col == partCol && val != frame.NullPartition {
			for row := start; row < out.Rows(); row++ {
				if err := out.SetCell(row, col, val); err != nil {
					return nil, fmt.Errorf("attach partition %s: %w", key, err)
				}
			}
		}
	}
	return out, nil
}

func (r *Reader) readPart(ctx context.Context, key string) (*frame.Frame, error) {
	tmp, err := os.CreateTemp(r.tmpDir, "lakeingest-read-*.parquet")
	if err != nil {
		return nil, err
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	defer os.Remove(tmpPath)

	if err := r.store.Download(ctx, key, tmpPath); err != nil {
		return nil, fmt.Errorf("download %s: %w", key, err)
	}
	pr, err := parquetio.OpenReader(tmpPath, 100)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", key, err)
	}
	defer pr.Close()
	pf, err := pr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return pf, nil
}
