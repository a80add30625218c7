// Package files handles batch URL files and download folder housekeeping.
package files

import (
	"bufio"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"batchtube/internal/models"

	"github.com/spf13/afero"
)

// LoadURLFile reads newline-separated URLs, skipping blank lines and comments.
func LoadURLFile(fs afero.Fs, path string) ([]string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open batch file %q: %w", path, err)
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read batch file %q: %w", path, err)
	}
	return urls, nil
}

// SaveURLFile writes URLs one per line.
func SaveURLFile(fs afero.Fs, path string, urls []string) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %q: %w", path, err)
	}

	var b strings.Builder
	for _, u := range urls {
		b.WriteString(u)
		b.WriteByte('\n')
	}
	if err := afero.WriteFile(fs, path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write batch file %q: %w", path, err)
	}
	return nil
}

// batchLog is the on-disk JSON shape of a batch summary.
type batchLog struct {
	BatchID   string                       `json:"batch_id"`
	Timestamp time.Time                    `json:"timestamp"`
	Total     int                          `json:"total"`
	Succeeded int                          `json:"succeeded"`
	Failed    int                          `json:"failed"`
	Skipped   int                          `json:"skipped"`
	Items     map[string]models.ItemResult `json:"items"`
}

// WriteBatchLog saves a JSON summary of a finished batch next to the downloads.
func WriteBatchLog(fs afero.Fs, dir string, result *models.BatchResult) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create log directory %q: %w", dir, err)
	}

	succeeded, failed, skipped := result.Counts()
	log := batchLog{
		BatchID:   result.BatchID,
		Timestamp: result.FinishedAt,
		Total:     len(result.Items),
		Succeeded: succeeded,
		Failed:    failed,
		Skipped:   skipped,
		Items:     result.Items,
	}

	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal batch log: %w", err)
	}

	name := fmt.Sprintf("batch_log_%s.json", result.FinishedAt.Format("2006-01-02_15-04-05"))
	path := filepath.Join(dir, name)
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write batch log %q: %w", path, err)
	}
	return path, nil
}
