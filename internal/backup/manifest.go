package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

const (
	manifestFile    = "manifest.json"
	manifestVersion = "2.0"
	timestampLayout = "2006-01-02T15-04-05Z"
	recordsTasks    = "tasks"
	recordsReports  = "reports"
)

// Manifest represents backup metadata
type Manifest struct {
	BackupTimestamp string         `json:"backupTimestamp"`
	BackupVersion   string         `json:"backupVersion"`
	Files           []FileManifest `json:"files"`
	TotalItems      int            `json:"totalItems"`
}

// FileManifest describes one JSONL file of a backup
type FileManifest struct {
	Records   string `json:"records"`
	ItemCount int    `json:"itemCount"`
	FileSize  int64  `json:"fileSize"`
	FileName  string `json:"fileName"`
	Checksum  string `json:"checksum"`
}

// File returns the manifest entry for a record kind
func (m *Manifest) File(records string) (FileManifest, bool) {
	for _, f := range m.Files {
		if f.Records == records {
			return f, true
		}
	}
	return FileManifest{}, false
}

// WriteManifest writes the manifest to a file
func WriteManifest(path string, manifest Manifest) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	return nil
}

// ReadManifest reads and parses a manifest file
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	return &manifest, nil
}

// CalculateFileChecksum calculates SHA256 checksum of a file
func CalculateFileChecksum(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file for checksum: %w", err)
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", fmt.Errorf("failed to read file for checksum: %w", err)
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

// VerifyChecksum compares a file against its manifest checksum
func VerifyChecksum(filePath string, expected string) error {
	actual, err := CalculateFileChecksum(filePath)
	if err != nil {
		return err
	}
	if actual != expected {
		return fmt.Errorf("checksum mismatch for %s: expected %s, got %s", filePath, expected, actual)
	}
	return nil
}

// GenerateBackupTimestamp generates a timestamp string for backup directory names
func GenerateBackupTimestamp(now time.Time) string {
	return now.UTC().Format(timestampLayout)
}

// ParseBackupTimestamp parses a backup timestamp string
func ParseBackupTimestamp(ts string) (time.Time, error) {
	return time.Parse(timestampLayout, ts)
}
