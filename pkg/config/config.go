// Package config holds the job configuration for lakeingest runs.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// StoreType selects the object-store backend.
type StoreType string

const (
	StoreS3    StoreType = "s3"
	StoreLocal StoreType = "local"
)

// Config is the full job configuration.
type Config struct {
	Store    StoreConfig     `toml:"store" yaml:"store"`
	Datasets []DatasetConfig `toml:"datasets" yaml:"datasets"`
}

// StoreConfig holds object-store connection parameters.
type StoreConfig struct {
	// Type is "s3" (default) or "local".
	Type StoreType `toml:"type" yaml:"type"`

	// Endpoint is the S3-compatible endpoint URL. A plain http scheme
	// runs without TLS, as MinIO deployments commonly do.
	Endpoint string `toml:"endpoint" yaml:"endpoint"`

	Region string `toml:"region" yaml:"region"`
	Bucket string `toml:"bucket" yaml:"bucket"`

	AccessKey string `toml:"access_key" yaml:"access_key"`
	SecretKey string `toml:"secret_key" yaml:"secret_key"`

	// PathStyle enables path-style addressing (required for MinIO).
	PathStyle bool `toml:"path_style" yaml:"path_style"`

	// Codec is the Parquet compression codec for written datasets.
	Codec string `toml:"codec" yaml:"codec"`

	// BasePath is the root directory when Type is "local".
	BasePath string `toml:"base_path" yaml:"base_path"`
}

// DatasetConfig describes one CSV input and its destination dataset.
type DatasetConfig struct {
	Name        string       `toml:"name" yaml:"name"`
	Input       string       `toml:"input" yaml:"input"`
	Output      string       `toml:"output" yaml:"output"`
	PartitionBy string       `toml:"partition_by" yaml:"partition_by"`
	Steps       []StepConfig `toml:"steps" yaml:"steps"`
}

// StepConfig describes one transform applied after ingestion.
type StepConfig struct {
	Type   string `toml:"type" yaml:"type"`     // to_date | trim
	Column string `toml:"column" yaml:"column"`
	Format string `toml:"format" yaml:"format"` // to_date only; Go layout
}

// Default reproduces the constants of the original ingest job: a local
// MinIO endpoint, the spark-data bucket, employees partitioned by
// department and sales partitioned by region with sale_date reparsed.
func Default() Config {
	return Config{
		Store: StoreConfig{
			Type:      StoreS3,
			Endpoint:  "http://minio:9000",
			Region:    "us-east-1",
			Bucket:    "spark-data",
			AccessKey: "minioadmin",
			SecretKey: "minioadmin",
			PathStyle: true,
			Codec:     "snappy",
		},
		Datasets: []DatasetConfig{
			{
				Name:        "employees",
				Input:       "data/employees.csv",
				Output:      "employees",
				PartitionBy: "department",
			},
			{
				Name:        "sales",
				Input:       "data/sales.csv",
				Output:      "sales",
				PartitionBy: "region",
				Steps: []StepConfig{
					{Type: "to_date", Column: "sale_date"},
				},
			},
		},
	}
}

// Load reads a config file, chosen by extension: .toml (default) or
// .yaml/.yml. Fields not set in the file keep their Default values for
// the store section; datasets in the file replace the defaults entirely.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg := Config{Store: Default().Store}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse yaml config: %w", err)
		}
	case ".toml", "":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse toml config: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("unsupported config extension %q", filepath.Ext(path))
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv lets credentials come from the environment instead of the
// config file. Load calls it; callers that start from Default must call
// it themselves.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("LAKEINGEST_ACCESS_KEY"); v != "" {
		c.Store.AccessKey = v
	}
	if v := os.Getenv("LAKEINGEST_SECRET_KEY"); v != "" {
		c.Store.SecretKey = v
	}
	if v := os.Getenv("LAKEINGEST_ENDPOINT"); v != "" {
		c.Store.Endpoint = v
	}
}

// Validate checks the configuration for contradictions before any work
// starts.
func (c *Config) Validate() error {
	switch c.Store.Type {
	case "", StoreS3:
		if c.Store.Bucket == "" {
			return fmt.Errorf("store: bucket is required for s3")
		}
	case StoreLocal:
		if c.Store.BasePath == "" {
			return fmt.Errorf("store: base_path is required for local")
		}
	default:
		return fmt.Errorf("store: unknown type %q", c.Store.Type)
	}
	if len(c.Datasets) == 0 {
		return fmt.Errorf("no datasets configured")
	}
	seen := make(map[string]struct{})
	for i, d := range c.Datasets {
		if d.Name == "" {
			return fmt.Errorf("datasets[%d]: name is required", i)
		}
		if _, dup := seen[d.Name]; dup {
			return fmt.Errorf("datasets[%d]: duplicate name %q", i, d.Name)
		}
		seen[d.Name] = struct{}{}
		if d.Input == "" {
			return fmt.Errorf("dataset %s: input is required", d.Name)
		}
		if d.Output == "" {
			return fmt.Errorf("dataset %s: output is required", d.Name)
		}
		for j, s := range d.Steps {
			switch s.Type {
			case "to_date", "trim":
				if s.Column == "" {
					return fmt.Errorf("dataset %s: steps[%d]: column is required", d.Name, j)
				}
			default:
				return fmt.Errorf("dataset %s: steps[%d]: unknown step type %q", d.Name, j, s.Type)
			}
		}
	}
	return nil
}
