package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/christophergentle/goaltracker/internal/store"
)

// Sink is where restores write records to
type Sink interface {
	PutTask(ctx context.Context, task store.Task) error
	BatchPutReports(ctx context.Context, reports []store.Report, progressFunc func(int)) error
	AdvanceCounter(ctx context.Context, name string, value int64) error
}

// RestoreOptions configures restore behavior
type RestoreOptions struct {
	InputPath    string
	S3Bucket     string
	S3Prefix     string
	Latest       bool
	S3           *S3Client
	SkipVerify   bool
	DryRun       bool
	ProgressFunc func(records string, count int)
}

// RestoreResult contains information about a completed restore
type RestoreResult struct {
	TasksRestored   int
	ReportsRestored int
	Skipped         int
	Duration        time.Duration
}

// Restore writes the records of a backup directory back into the sink.
// Reports of tasks missing from the backup are skipped. With Latest set,
// S3Prefix names the parent of the backups and the newest one is restored.
func Restore(ctx context.Context, dst Sink, options RestoreOptions) (*RestoreResult, error) {
	startTime := time.Now()

	restorePath := options.InputPath
	if options.S3Bucket != "" {
		tempDir, err := os.MkdirTemp("", "goaltracker-restore-*")
		if err != nil {
			return nil, fmt.Errorf("failed to create temp directory: %w", err)
		}
		defer os.RemoveAll(tempDir)

		s3Client := options.S3
		if s3Client == nil {
			s3Client, err = NewS3Client(ctx, options.S3Bucket)
			if err != nil {
				return nil, fmt.Errorf("failed to create S3 client: %w", err)
			}
		}

		prefix := options.S3Prefix
		if options.Latest {
			prefix, err = s3Client.LatestBackup(ctx, prefix)
			if err != nil {
				return nil, err
			}
		}

		log.Printf("Downloading backup from s3://%s/%s", options.S3Bucket, prefix)
		if err := s3Client.DownloadBackup(ctx, prefix, tempDir); err != nil {
			return nil, fmt.Errorf("failed to download from S3: %w", err)
		}
		restorePath = tempDir
	}

	manifest, err := ReadManifest(filepath.Join(restorePath, manifestFile))
	if err != nil {
		return nil, err
	}

	log.Printf("Restoring backup from %s (created: %s)", restorePath, manifest.BackupTimestamp)

	tasks, err := readRecords[store.Task](restorePath, manifest, recordsTasks, options.SkipVerify)
	if err != nil {
		return nil, err
	}
	reports, err := readRecords[store.Report](restorePath, manifest, recordsReports, options.SkipVerify)
	if err != nil {
		return nil, err
	}

	known := make(map[int64]bool, len(tasks))
	var maxTaskID, maxReportID int64
	for _, task := range tasks {
		known[task.ID] = true
		maxTaskID = max(maxTaskID, task.ID)
	}

	result := &RestoreResult{}
	valid := reports[:0]
	for _, report := range reports {
		if !known[report.TaskID] {
			log.WithFields(log.Fields{"taskId": report.TaskID, "reportId": report.ID}).Warn("Skipping report of unknown task")
			result.Skipped++
			continue
		}
		maxReportID = max(maxReportID, report.ID)
		valid = append(valid, report)
	}

	if options.DryRun {
		log.Printf("[DRY RUN] Would restore %d tasks and %d reports", len(tasks), len(valid))
		result.TasksRestored = len(tasks)
		result.ReportsRestored = len(valid)
		result.Duration = time.Since(startTime)
		return result, nil
	}

	for _, task := range tasks {
		if err := dst.PutTask(ctx, task); err != nil {
			return result, fmt.Errorf("failed to restore task %d: %w", task.ID, err)
		}
		result.TasksRestored++
		if options.ProgressFunc != nil {
			options.ProgressFunc(recordsTasks, result.TasksRestored)
		}
	}

	err = dst.BatchPutReports(ctx, valid, func(n int) {
		result.ReportsRestored += n
		if options.ProgressFunc != nil {
			options.ProgressFunc(recordsReports, result.ReportsRestored)
		}
	})
	if err != nil {
		return result, fmt.Errorf("failed to restore reports: %w", err)
	}

	if err := dst.AdvanceCounter(ctx, "tasks", maxTaskID); err != nil {
		return result, err
	}
	if err := dst.AdvanceCounter(ctx, "reports", maxReportID); err != nil {
		return result, err
	}

	result.Duration = time.Since(startTime)
	log.Printf("Restored %d tasks and %d reports in %v", result.TasksRestored, result.ReportsRestored, result.Duration)

	return result, nil
}

func readRecords[T any](dir string, manifest *Manifest, records string, skipVerify bool) ([]T, error) {
	file, ok := manifest.File(records)
	if !ok {
		return nil, fmt.Errorf("backup manifest has no %s file", records)
	}

	filePath := filepath.Join(dir, file.FileName)
	if !skipVerify {
		if err := VerifyChecksum(filePath, file.Checksum); err != nil {
			return nil, err
		}
	}

	items, err := readJSONL[T](filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", records, err)
	}

	if len(items) != file.ItemCount {
		log.Printf("Warning: manifest lists %d %s but file has %d", file.ItemCount, records, len(items))
	}

	return items, nil
}
