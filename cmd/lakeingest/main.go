// Command lakeingest runs the CSV to Parquet ingest job against an
// S3-compatible object store.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"

	"lakeingest/pkg/config"
	"lakeingest/pkg/ingest"
)

var version = "0.1.0-dev"

func main() {
	showVersion := flag.Bool("version", false, "Print version and exit")
	configPath := flag.String("config", "", "Path to job config (.toml or .yaml); defaults match the local MinIO setup")
	flag.Parse()

	if *showVersion {
		fmt.Println("lakeingest", version)
		return
	}

	log.SetFlags(log.LstdFlags)

	// .env is optional; it carries LAKEINGEST_* overrides when present
	_ = godotenv.Load()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("config: %v", err)
		}
	} else {
		cfg.ApplyEnv()
	}

	ctx := context.Background()

	banner("JOB START - CSV to Parquet ingest")
	store, err := ingest.NewStore(ctx, cfg.Store)
	if err != nil {
		log.Fatalf("object store: %v", err)
	}
	log.Printf("store ready: type=%s endpoint=%s bucket=%s path_style=%t codec=%s",
		storeType(cfg), cfg.Store.Endpoint, cfg.Store.Bucket, cfg.Store.PathStyle, cfg.Store.Codec)

	if err := ingest.NewJob(cfg, store).Run(ctx); err != nil {
		log.Fatalf("job failed: %v", err)
	}
	banner("JOB COMPLETE - all datasets written")
}

func storeType(cfg config.Config) config.StoreType {
	if cfg.Store.Type == "" {
		return config.StoreS3
	}
	return cfg.Store.Type
}

func banner(msg string) {
	line := strings.Repeat("=", 60)
	log.Print(line)
	log.Printf("  %s", msg)
	log.Print(line)
}
