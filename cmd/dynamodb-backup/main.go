package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/christophergentle/goaltracker/internal/backup"
	"github.com/christophergentle/goaltracker/internal/config"
	"github.com/christophergentle/goaltracker/internal/store"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to goaltracker.yaml")
		outputDir  = flag.String("output", "", "Output directory for backups (default from config)")
		s3Bucket   = flag.String("s3-bucket", "", "S3 bucket name (optional, if provided backup will be uploaded)")
		s3Prefix   = flag.String("s3-prefix", "", "S3 prefix for backup files")
		compress   = flag.Bool("compress", false, "Compress backup files with gzip")
		workers    = flag.Int("workers", 4, "Concurrent report queries")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Flags override the backup section of the config
	options := backup.BackupOptions{
		OutputDir: firstNonEmpty(*outputDir, cfg.Backup.OutputDir),
		S3Bucket:  firstNonEmpty(*s3Bucket, cfg.Backup.Bucket),
		S3Prefix:  firstNonEmpty(*s3Prefix, cfg.Backup.Prefix),
		Compress:  *compress || cfg.Backup.Compress,
		Workers:   *workers,
	}
	if *verbose {
		options.ProgressFunc = func(records string, count int) {
			if count%100 == 0 {
				log.Printf("Progress: %s - %d backed up", records, count)
			}
		}
	}

	ctx := context.Background()
	s, err := store.NewStore(ctx, cfg.Tables(), cfg.AWSOptions()...)
	if err != nil {
		log.Fatalf("Failed to create store: %v", err)
	}

	fmt.Printf("Starting backup of tables %s and %s...\n", cfg.Storage.TasksTable, cfg.Storage.ReportsTable)
	fmt.Printf("Output: %s\n", options.OutputDir)
	if options.S3Bucket != "" {
		fmt.Printf("S3: s3://%s/%s\n", options.S3Bucket, options.S3Prefix)
	}
	fmt.Println()

	result, err := backup.Backup(ctx, s, options)
	if err != nil {
		log.Fatalf("Backup failed: %v", err)
	}

	fmt.Println()
	fmt.Printf("Backup completed successfully!\n")
	fmt.Printf("  Backup path: %s\n", result.BackupPath)
	if result.S3Prefix != "" {
		fmt.Printf("  S3 prefix: %s\n", result.S3Prefix)
	}
	fmt.Printf("  Total items: %d\n", result.TotalItems)
	fmt.Printf("  Duration: %v\n", result.Duration.Round(time.Millisecond))

	fmt.Println()
	fmt.Println("Files:")
	for _, f := range result.Manifest.Files {
		fmt.Printf("  %s: %d items, %s, checksum: %s\n",
			f.FileName,
			f.ItemCount,
			formatBytes(f.FileSize),
			f.Checksum[:16]+"...")
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadConfig(path)
	}
	return config.Load()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
