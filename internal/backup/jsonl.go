package backup

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// writeJSONL writes records one per line, gzip-compressed when the file name
// ends in .gz, and returns the file size
func writeJSONL[T any](filePath string, records []T) (int64, error) {
	file, err := os.Create(filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	var w io.Writer = file
	var gzipWriter *gzip.Writer
	if strings.HasSuffix(filePath, ".gz") {
		gzipWriter = gzip.NewWriter(file)
		w = gzipWriter
	}

	encoder := json.NewEncoder(w)
	for _, record := range records {
		if err := encoder.Encode(record); err != nil {
			return 0, fmt.Errorf("failed to encode record: %w", err)
		}
	}

	if gzipWriter != nil {
		if err := gzipWriter.Close(); err != nil {
			return 0, fmt.Errorf("failed to close gzip writer: %w", err)
		}
	}

	fileInfo, err := file.Stat()
	if err != nil {
		return 0, fmt.Errorf("failed to stat %s: %w", filePath, err)
	}
	return fileInfo.Size(), nil
}

// readJSONL reads records written by writeJSONL. Lines that fail to parse
// are skipped with a warning.
func readJSONL[T any](filePath string) ([]T, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var r io.Reader = file
	if strings.HasSuffix(filePath, ".gz") {
		gzipReader, err := gzip.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gzipReader.Close()
		r = gzipReader
	}

	var records []T
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var record T
		if err := json.Unmarshal(line, &record); err != nil {
			log.WithFields(log.Fields{"file": filePath, "line": lineNum}).WithError(err).Warn("Skipping unparseable record")
			continue
		}
		records = append(records, record)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return records, nil
}
