package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/christophergentle/goaltracker/internal/backup"
	"github.com/christophergentle/goaltracker/internal/config"
	"github.com/christophergentle/goaltracker/internal/store"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to goaltracker.yaml")
		inputPath  = flag.String("input", "", "Input path to backup directory (required if not using S3)")
		s3Bucket   = flag.String("s3-bucket", "", "S3 bucket name (optional, if provided backup will be downloaded from S3)")
		s3Prefix   = flag.String("s3-prefix", "", "S3 prefix of the backup directory (required if using S3)")
		latest     = flag.Bool("latest", false, "Restore the newest backup under --s3-prefix")
		skipVerify = flag.Bool("skip-verify", false, "Restore even when file checksums do not match the manifest")
		dryRun     = flag.Bool("dry-run", false, "Dry run mode - show what would be restored without actually restoring")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	if *inputPath == "" && *s3Bucket == "" {
		fmt.Fprintf(os.Stderr, "Error: either --input or --s3-bucket must be provided\n")
		flag.Usage()
		os.Exit(1)
	}

	if *s3Bucket != "" && *s3Prefix == "" && !*latest {
		fmt.Fprintf(os.Stderr, "Error: --s3-prefix is required when using --s3-bucket\n")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	s, err := store.NewStore(ctx, cfg.Tables(), cfg.AWSOptions()...)
	if err != nil {
		log.Fatalf("Failed to create store: %v", err)
	}

	if *dryRun {
		fmt.Println("DRY RUN MODE - No changes will be made")
		fmt.Println()
	}

	options := backup.RestoreOptions{
		InputPath:  *inputPath,
		S3Bucket:   *s3Bucket,
		S3Prefix:   *s3Prefix,
		Latest:     *latest,
		SkipVerify: *skipVerify,
		DryRun:     *dryRun,
	}
	if *verbose {
		options.ProgressFunc = func(records string, count int) {
			if count%100 == 0 {
				log.Printf("Progress: %s - %d restored", records, count)
			}
		}
	}

	source := *inputPath
	if *s3Bucket != "" {
		source = fmt.Sprintf("s3://%s/%s", *s3Bucket, *s3Prefix)
		if *latest {
			source += " (latest)"
		}
	}

	fmt.Printf("Starting restore from %s into %s and %s...\n", source, cfg.Storage.TasksTable, cfg.Storage.ReportsTable)
	fmt.Println()

	result, err := backup.Restore(ctx, s, options)
	if err != nil {
		log.Fatalf("Restore failed: %v", err)
	}

	fmt.Println()
	if *dryRun {
		fmt.Printf("Dry run completed!\n")
	} else {
		fmt.Printf("Restore completed successfully!\n")
	}
	fmt.Printf("  Tasks restored: %d\n", result.TasksRestored)
	fmt.Printf("  Reports restored: %d\n", result.ReportsRestored)
	if result.Skipped > 0 {
		fmt.Printf("  Reports skipped (unknown task): %d\n", result.Skipped)
	}
	fmt.Printf("  Duration: %v\n", result.Duration.Round(time.Millisecond))
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadConfig(path)
	}
	return config.Load()
}
