package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ReportWriter stores reports, such as reconciliation summaries, as
// individual files in a directory.
type ReportWriter struct {
	Dir string
}

func NewReportWriter(dir string) *ReportWriter {
	return &ReportWriter{Dir: dir}
}

// SaveJSON writes data to "<kind>-<timestamp>-<uuid>.json" and returns the
// file path.
func (w *ReportWriter) SaveJSON(kind string, data any) (string, error) {
	return w.save(kind, "json", func(v any) ([]byte, error) {
		return json.MarshalIndent(v, "", "  ")
	}, data)
}

// SaveYAML is SaveJSON with a YAML body and a .yaml extension.
func (w *ReportWriter) SaveYAML(kind string, data any) (string, error) {
	return w.save(kind, "yaml", yaml.Marshal, data)
}

func (w *ReportWriter) save(kind, ext string, marshal func(any) ([]byte, error), data any) (string, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	body, err := marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	name := fmt.Sprintf("%s-%s-%s.%s", kind, time.Now().UTC().Format("20060102T150405Z"), uuid.NewString(), ext)
	path := filepath.Join(w.Dir, name)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}
