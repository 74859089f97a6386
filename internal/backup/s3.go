package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectAPI is the part of the S3 client backups use
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Client stores backups in a bucket. A backup lives under
// <prefix>/backup-<timestamp>/ and its manifest is written last, so a backup
// without a manifest is incomplete.
type S3Client struct {
	client ObjectAPI
	bucket string
}

// NewS3Client creates a new S3 client
func NewS3Client(ctx context.Context, bucket string) (*S3Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewS3ClientWithAPI(s3.NewFromConfig(cfg), bucket), nil
}

// NewS3ClientWithAPI creates an S3 client over an existing object API
func NewS3ClientWithAPI(client ObjectAPI, bucket string) *S3Client {
	return &S3Client{client: client, bucket: bucket}
}

// BackupPrefix returns the key prefix of the backup taken at timestamp
func BackupPrefix(prefix, timestamp string) string {
	name := "backup-" + timestamp
	if prefix == "" {
		return name
	}
	return strings.TrimSuffix(prefix, "/") + "/" + name
}

// UploadBackup uploads the record files listed in the manifest from dir,
// then the manifest itself.
func (s *S3Client) UploadBackup(ctx context.Context, dir string, manifest Manifest, prefix string) error {
	for _, file := range manifest.Files {
		if err := checkFileName(file.FileName); err != nil {
			return err
		}
		if err := s.putFile(ctx, prefix+"/"+file.FileName, filepath.Join(dir, file.FileName)); err != nil {
			return err
		}
	}

	return s.putFile(ctx, prefix+"/"+manifestFile, filepath.Join(dir, manifestFile))
}

// DownloadBackup downloads the manifest under prefix and the record files it
// lists into dir.
func (s *S3Client) DownloadBackup(ctx context.Context, prefix string, dir string) error {
	manifestPath := filepath.Join(dir, manifestFile)
	if err := s.getFile(ctx, prefix+"/"+manifestFile, manifestPath); err != nil {
		return err
	}

	manifest, err := ReadManifest(manifestPath)
	if err != nil {
		return err
	}

	for _, file := range manifest.Files {
		if err := checkFileName(file.FileName); err != nil {
			return err
		}
		if err := s.getFile(ctx, prefix+"/"+file.FileName, filepath.Join(dir, file.FileName)); err != nil {
			return err
		}
	}

	return nil
}

// ListBackups returns the prefixes of the complete backups under prefix,
// oldest first.
func (s *S3Client) ListBackups(ctx context.Context, prefix string) ([]string, error) {
	type found struct {
		prefix    string
		timestamp string
	}

	parent := strings.TrimSuffix(prefix, "/")
	search := parent + "/"
	if parent == "" {
		parent, search = ".", ""
	}

	var backups []found
	var continuationToken *string
	for {
		result, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(search),
			ContinuationToken: continuationToken,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}

		for _, obj := range result.Contents {
			key := aws.ToString(obj.Key)
			if path.Base(key) != manifestFile {
				continue
			}
			dir := path.Dir(key)
			if path.Dir(dir) != parent {
				continue
			}
			ts, ok := strings.CutPrefix(path.Base(dir), "backup-")
			if !ok {
				continue
			}
			if _, err := ParseBackupTimestamp(ts); err != nil {
				continue
			}
			backups = append(backups, found{prefix: dir, timestamp: ts})
		}

		if !aws.ToBool(result.IsTruncated) {
			break
		}
		continuationToken = result.NextContinuationToken
	}

	// The timestamp layout sorts chronologically as text
	sort.Slice(backups, func(i, j int) bool { return backups[i].timestamp < backups[j].timestamp })

	prefixes := make([]string, len(backups))
	for i, b := range backups {
		prefixes[i] = b.prefix
	}
	return prefixes, nil
}

// LatestBackup returns the prefix of the newest complete backup under prefix
func (s *S3Client) LatestBackup(ctx context.Context, prefix string) (string, error) {
	backups, err := s.ListBackups(ctx, prefix)
	if err != nil {
		return "", err
	}
	if len(backups) == 0 {
		return "", fmt.Errorf("no backups found under s3://%s/%s", s.bucket, prefix)
	}
	return backups[len(backups)-1], nil
}

func (s *S3Client) putFile(ctx context.Context, key string, filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType(key)),
	})
	if err != nil {
		return fmt.Errorf("failed to upload file %s to s3://%s/%s: %w", filePath, s.bucket, key, err)
	}

	return nil
}

func (s *S3Client) getFile(ctx context.Context, key string, filePath string) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to download file s3://%s/%s: %w", s.bucket, key, err)
	}
	defer result.Body.Close()

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", filePath, err)
	}
	defer file.Close()

	if _, err := io.Copy(file, result.Body); err != nil {
		return fmt.Errorf("failed to write file %s: %w", filePath, err)
	}

	return nil
}

// checkFileName rejects manifest entries that would leave the backup directory
func checkFileName(name string) error {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid backup file name %q", name)
	}
	return nil
}

func contentType(key string) string {
	switch {
	case strings.HasSuffix(key, ".gz"):
		return "application/gzip"
	case strings.HasSuffix(key, ".jsonl"):
		return "application/x-ndjson"
	default:
		return "application/json"
	}
}
