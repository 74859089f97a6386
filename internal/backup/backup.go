// Package backup exports tasks and reports to JSONL files with a checksummed
// manifest, optionally mirrored to S3, and restores them.
package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/christophergentle/goaltracker/internal/store"
)

// Source is where backups read records from
type Source interface {
	ListTasks(ctx context.Context) ([]store.Task, error)
	ListReports(ctx context.Context, taskID int64, descending bool) ([]store.Report, error)
}

// BackupOptions configures backup behavior
type BackupOptions struct {
	OutputDir    string
	S3Bucket     string
	S3Prefix     string
	Compress     bool
	Workers      int
	S3           *S3Client
	Now          func() time.Time
	ProgressFunc func(records string, count int)
}

// BackupResult contains information about a completed backup
type BackupResult struct {
	Manifest   Manifest
	BackupPath string
	S3Prefix   string
	TotalItems int
	Duration   time.Duration
}

// Backup writes every task and report of the source to a new backup directory
func Backup(ctx context.Context, src Source, options BackupOptions) (*BackupResult, error) {
	startTime := time.Now()
	now := time.Now
	if options.Now != nil {
		now = options.Now
	}

	timestamp := GenerateBackupTimestamp(now())
	backupDir := filepath.Join(options.OutputDir, fmt.Sprintf("backup-%s", timestamp))
	if err := os.MkdirAll(backupDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	log.Printf("Starting backup to %s", backupDir)

	tasks, err := src.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	progress(options, recordsTasks, len(tasks))

	reports, err := collectReports(ctx, src, tasks, options)
	if err != nil {
		return nil, err
	}

	manifest := Manifest{
		BackupTimestamp: timestamp,
		BackupVersion:   manifestVersion,
	}

	taskFile, err := writeRecords(backupDir, recordsTasks, tasks, options.Compress)
	if err != nil {
		return nil, err
	}
	reportFile, err := writeRecords(backupDir, recordsReports, reports, options.Compress)
	if err != nil {
		return nil, err
	}
	manifest.Files = []FileManifest{taskFile, reportFile}
	manifest.TotalItems = taskFile.ItemCount + reportFile.ItemCount

	if err := WriteManifest(filepath.Join(backupDir, manifestFile), manifest); err != nil {
		return nil, err
	}

	result := &BackupResult{
		Manifest:   manifest,
		BackupPath: backupDir,
		TotalItems: manifest.TotalItems,
	}

	if options.S3Bucket != "" {
		s3Client := options.S3
		if s3Client == nil {
			s3Client, err = NewS3Client(ctx, options.S3Bucket)
			if err != nil {
				return nil, fmt.Errorf("failed to create S3 client: %w", err)
			}
		}

		s3Prefix := options.S3Prefix
		if s3Prefix == "" {
			s3Prefix = "goaltracker-backup"
		}
		s3Prefix = BackupPrefix(s3Prefix, timestamp)

		log.Printf("Uploading backup to s3://%s/%s", options.S3Bucket, s3Prefix)
		if err := s3Client.UploadBackup(ctx, backupDir, manifest, s3Prefix); err != nil {
			return nil, fmt.Errorf("failed to upload to S3: %w", err)
		}
		result.S3Prefix = s3Prefix
	}

	result.Duration = time.Since(startTime)
	log.Printf("Backup completed: %d tasks, %d reports in %v", len(tasks), len(reports), result.Duration)

	return result, nil
}

// collectReports fetches the reports of every task with a bounded number of
// concurrent queries and returns them ordered by task and date
func collectReports(ctx context.Context, src Source, tasks []store.Task, options BackupOptions) ([]store.Report, error) {
	workers := options.Workers
	if workers <= 0 {
		workers = 4
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error
	var reports []store.Report
	sem := make(chan struct{}, workers)

	for _, task := range tasks {
		wg.Add(1)
		go func(taskID int64) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			taskReports, err := src.ListReports(ctx, taskID, false)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("failed to list reports of task %d: %w", taskID, err)
				}
				return
			}
			reports = append(reports, taskReports...)
			progress(options, recordsReports, len(reports))
		}(task.ID)
	}

	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}

	sort.Slice(reports, func(i, j int) bool {
		if reports[i].TaskID != reports[j].TaskID {
			return reports[i].TaskID < reports[j].TaskID
		}
		return reports[i].Date < reports[j].Date
	})
	return reports, nil
}

func writeRecords[T any](dir, records string, items []T, compress bool) (FileManifest, error) {
	fileName := records + ".jsonl"
	if compress {
		fileName += ".gz"
	}
	filePath := filepath.Join(dir, fileName)

	size, err := writeJSONL(filePath, items)
	if err != nil {
		return FileManifest{}, fmt.Errorf("failed to write %s: %w", records, err)
	}

	checksum, err := CalculateFileChecksum(filePath)
	if err != nil {
		return FileManifest{}, err
	}

	return FileManifest{
		Records:   records,
		ItemCount: len(items),
		FileSize:  size,
		FileName:  fileName,
		Checksum:  checksum,
	}, nil
}

func progress(options BackupOptions, records string, count int) {
	if options.ProgressFunc != nil {
		options.ProgressFunc(records, count)
	}
}
