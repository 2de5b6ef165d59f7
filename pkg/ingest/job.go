// Package ingest orchestrates the batch job: read each CSV input, apply
// its transforms, write it as a partitioned Parquet dataset, and verify
// the write by reading the dataset back.
package ingest

import (
	"context"
	"fmt"
	"log"

	"lakeingest/pkg/config"
	"lakeingest/pkg/frame"
	"lakeingest/pkg/io/csvio"
	"lakeingest/pkg/lake"
	"lakeingest/pkg/preview"
	"lakeingest/pkg/storage"
	"lakeingest/pkg/transform"
)

// headRows / verifyHeadRows match the sample sizes the job logs after
// ingestion and after read-back.
const (
	headRows       = 5
	verifyHeadRows = 3
)

// NewStore builds the object-store client described by the config.
func NewStore(ctx context.Context, sc config.StoreConfig) (storage.ObjectStorage, error) {
	switch sc.Type {
	case config.StoreLocal:
		return storage.NewLocalStorage(sc.BasePath)
	case "", config.StoreS3:
		s3cfg := storage.S3Config{
			Region:       sc.Region,
			Endpoint:     sc.Endpoint,
			AccessKey:    sc.AccessKey,
			SecretKey:    sc.SecretKey,
			UsePathStyle: sc.PathStyle,
		}
		return storage.NewS3Storage(ctx, sc.Bucket, s3cfg)
	}
	return nil, fmt.Errorf("unknown store type %q", sc.Type)
}

// datasetCounts is what verification compares against: the shape reported
// right after the initial read.
type datasetCounts struct {
	rows int
	cols int
}

// Job runs the configured datasets sequentially.
type Job struct {
	cfg    config.Config
	store  storage.ObjectStorage
	counts map[string]datasetCounts
}

func NewJob(cfg config.Config, store storage.ObjectStorage) *Job {
	return &Job{cfg: cfg, store: store, counts: make(map[string]datasetCounts)}
}

// Run executes the whole job. The first error aborts the run; there is no
// retry above the storage connector.
func (j *Job) Run(ctx context.Context) error {
	for _, ds := range j.cfg.Datasets {
		if err := j.ingestDataset(ctx, ds); err != nil {
			return fmt.Errorf("dataset %s: %w", ds.Name, err)
		}
	}
	for _, ds := range j.cfg.Datasets {
		if err := j.verifyDataset(ctx, ds); err != nil {
			return fmt.Errorf("verify %s: %w", ds.Name, err)
		}
	}
	return nil
}

func buildPipeline(steps []config.StepConfig) (*frame.Pipeline, error) {
	p := frame.NewPipeline()
	for _, s := range steps {
		switch s.Type {
		case "to_date":
			p.Add(&transform.ToDate{Column: s.Column, Format: s.Format})
		case "trim":
			p.Add(&transform.Trim{Column: s.Column})
		default:
			return nil, fmt.Errorf("unknown step type %q", s.Type)
		}
	}
	return p, nil
}

// ReadInput loads and transforms one dataset's CSV without writing it.
func ReadInput(ctx context.Context, ds config.DatasetConfig) (*frame.Frame, error) {
	rdr, err := csvio.Open(ds.Input, csvio.ReaderOptions{HasHeader: true, SampleRows: 100})
	if err != nil {
		return nil, err
	}
	defer rdr.Close()
	schema, err := rdr.InferSchema()
	if err != nil {
		return nil, fmt.Errorf("infer schema: %w", err)
	}
	f, err := rdr.ReadAll(schema)
	if err != nil {
		return nil, err
	}
	if w := rdr.Warnings(); w != "" {
		log.Printf("[%s] csv warnings: %s", ds.Name, w)
	}
	p, err := buildPipeline(ds.Steps)
	if err != nil {
		return nil, err
	}
	if p.Len() > 0 {
		if f, err = p.Run(ctx, f); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (j *Job) ingestDataset(ctx context.Context, ds config.DatasetConfig) error {
	log.Printf("[%s] reading CSV from %s", ds.Name, ds.Input)
	f, err := ReadInput(ctx, ds)
	if err != nil {
		return err
	}
	j.counts[ds.Name] = datasetCounts{rows: f.Rows(), cols: f.Cols()}
	log.Printf("[%s] rows: %d | columns: %d", ds.Name, f.Rows(), f.Cols())
	log.Printf("[%s] schema:\n%s", ds.Name, preview.SchemaString(f.Schema()))
	log.Printf("[%s] head:\n%s", ds.Name, preview.Head(f, headRows))

	w := lake.NewWriter(j.store, lake.WriterOptions{Codec: j.cfg.Store.Codec})
	if ds.PartitionBy != "" {
		log.Printf("[%s] writing parquet to %s (partitioned by %s)", ds.Name, ds.Output, ds.PartitionBy)
	} else {
		log.Printf("[%s] writing parquet to %s", ds.Name, ds.Output)
	}
	sum, err := w.Write(ctx, f, ds.Output, ds.PartitionBy)
	if err != nil {
		return err
	}
	log.Printf("[%s] written: %d rows in %d partitions (%d objects, %d replaced)",
		ds.Name, sum.Rows, sum.Partitions, len(sum.Objects), sum.Replaced)
	return nil
}

// verifyDataset reads the freshly written output back and reports counts.
// A count mismatch is logged, not fatal: verification is observational.
func (j *Job) verifyDataset(ctx context.Context, ds config.DatasetConfig) error {
	log.Printf("[%s] verifying parquet read-back from %s", ds.Name, ds.Output)
	f, err := lake.NewReader(j.store).Read(ctx, ds.Output)
	if err != nil {
		return err
	}
	log.Printf("[%s] read-back rows: %d | columns: %d", ds.Name, f.Rows(), f.Cols())
	log.Printf("[%s] read-back head:\n%s", ds.Name, preview.Head(f, verifyHeadRows))
	if want, ok := j.counts[ds.Name]; ok {
		if want.rows != f.Rows() || want.cols != f.Cols() {
			log.Printf("[%s] count mismatch: ingested %dx%d, read back %dx%d",
				ds.Name, want.rows, want.cols, f.Rows(), f.Cols())
		}
	}
	return nil
}
