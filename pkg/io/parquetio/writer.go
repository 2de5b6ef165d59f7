// Package parquetio encodes frames to Parquet files and decodes them back.
// Encoding and decoding are delegated entirely to off-the-shelf Parquet
// libraries; this package only maps frame schemas onto them.
package parquetio

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"lakeingest/pkg/frame"
)

type WriterOptions struct {
	Codec string // snappy (default), gzip, uncompressed
}

func codecOf(name string) (parquet.CompressionCodec, error) {
	switch strings.ToLower(name) {
	case "", "snappy":
		return parquet.CompressionCodec_SNAPPY, nil
	case "gzip":
		return parquet.CompressionCodec_GZIP, nil
	case "uncompressed", "none":
		return parquet.CompressionCodec_UNCOMPRESSED, nil
	}
	return parquet.CompressionCodec_UNCOMPRESSED, fmt.Errorf("unsupported parquet codec %q", name)
}

func schemaJSON(s frame.Schema) string {
	type field struct {
		Tag string `json:"Tag"`
	}
	type root struct {
		Tag    string  `json:"Tag"`
		Fields []field `json:"Fields"`
	}
	sc := root{Tag: "name=schema, repetitiontype=REQUIRED"}
	for _, cs := range s.Columns {
		tag := "name=" + cs.Name + ", repetitiontype=OPTIONAL, type="
		switch cs.Type {
		case frame.KindFloat:
			tag += "DOUBLE"
		case frame.KindInt:
			tag += "INT64"
		case frame.KindBool:
			tag += "BOOLEAN"
		default:
			// strings and dates travel as UTF8; dates render with DateLayout
			tag += "BYTE_ARRAY, convertedtype=UTF8"
		}
		sc.Fields = append(sc.Fields, field{Tag: tag})
	}
	b, _ := json.Marshal(sc)
	return string(b)
}

// WriteAll writes a Frame to a local Parquet file. Null cells are omitted
// from the record so they round-trip as Parquet nulls.
func WriteAll(path string, f *frame.Frame, opt WriterOptions) error {
	codec, err := codecOf(opt.Codec)
	if err != nil {
		return err
	}
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	pw, err := writer.NewJSONWriter(schemaJSON(f.Schema()), fw, 4)
	if err != nil {
		_ = fw.Close()
		return fmt.Errorf("parquet writer init: %w", err)
	}
	pw.CompressionType = codec

	for r := 0; r < f.Rows(); r++ {
		rec := make(map[string]any, len(f.Schema().Columns))
		for _, cs := range f.Schema().Columns {
			col, _ := f.ColumnByName(cs.Name)
			switch cs.Type {
			case frame.KindFloat:
				if v, ok := col.(*frame.FloatColumn).Get(r); ok {
					rec[cs.Name] = v
				}
			case frame.KindInt:
				if v, ok := col.(*frame.IntColumn).Get(r); ok {
					rec[cs.Name] = v
				}
			case frame.KindBool:
				if v, ok := col.(*frame.BoolColumn).Get(r); ok {
					rec[cs.Name] = v
				}
			case frame.KindString:
				if v, ok := col.(*frame.StringColumn).Get(r); ok {
					rec[cs.Name] = v
				}
			case frame.KindDate:
				if v, ok := col.(*frame.DateColumn).Get(r); ok {
					rec[cs.Name] = v.Format(frame.DateLayout)
				}
			}
		}
		b, err := json.Marshal(rec)
		if err != nil {
			_ = pw.WriteStop()
			_ = fw.Close()
			return fmt.Errorf("parquet encode row: %w", err)
		}
		if err := pw.Write(string(b)); err != nil {
			_ = pw.WriteStop()
			_ = fw.Close()
			return fmt.Errorf("parquet write row: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		_ = fw.Close()
		return fmt.Errorf("parquet finalize: %w", err)
	}
	return fw.Close()
}
