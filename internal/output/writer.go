// Package output serializes run envelopes to disk.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MuditaSai/redlens/internal/collector"
)

// Write serializes the run envelope as JSON and returns the path it ended up
// at. When path is empty or names a directory, a timestamped filename is
// generated. The file is written to a temp file first and renamed into place
// so a crashed run never leaves a truncated envelope behind.
func Write(path string, run *collector.Run, pretty bool) (string, error) {
	if run == nil {
		return "", fmt.Errorf("run is required")
	}
	target, err := resolvePath(path, time.Now())
	if err != nil {
		return "", err
	}
	if dir := filepath.Dir(target); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create output directory: %w", err)
		}
	}

	var data []byte
	if pretty {
		data, err = json.MarshalIndent(run, "", "  ")
	} else {
		data, err = json.Marshal(run)
	}
	if err != nil {
		return "", fmt.Errorf("marshal envelope: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".redlens-*.json")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("write envelope: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("rename envelope: %w", err)
	}
	return target, nil
}

// Load reads an envelope back. Mostly useful in tests and ad-hoc inspection.
func Load(path string) (*collector.Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read envelope: %w", err)
	}
	var run collector.Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}
	return &run, nil
}

func resolvePath(path string, now time.Time) (string, error) {
	if path == "" {
		return defaultFilename(now), nil
	}
	if strings.HasSuffix(path, string(os.PathSeparator)) || strings.HasSuffix(path, "/") {
		return filepath.Join(path, defaultFilename(now)), nil
	}
	info, err := os.Stat(path)
	if err == nil && info.IsDir() {
		return filepath.Join(path, defaultFilename(now)), nil
	}
	return path, nil
}

func defaultFilename(now time.Time) string {
	return fmt.Sprintf("redlens_data_%s.json", now.Format("20060102_150405"))
}
