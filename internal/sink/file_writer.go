package sink

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// FileWriter writes the JSON artifacts into one directory
type FileWriter struct {
	dir    string
	logger *zap.Logger
}

// NewFileWriter creates a new file writer for dir
func NewFileWriter(dir string, logger *zap.Logger) *FileWriter {
	return &FileWriter{
		dir:    dir,
		logger: logger,
	}
}

// Dir returns the output directory
func (w *FileWriter) Dir() string {
	return w.dir
}

// WriteAll writes every artifact. A failed artifact does not stop the others;
// all failures are returned joined.
func (w *FileWriter) WriteAll(a *Artifacts) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data dir %s: %w", w.dir, err)
	}

	var errs []error
	for _, item := range a.list() {
		if err := w.writeJSON(item.name, item.payload); err != nil {
			w.logger.Error("Failed to write artifact",
				zap.String("file", item.name),
				zap.Error(err),
			)
			errs = append(errs, err)
			continue
		}
		w.logger.Info("Wrote artifact",
			zap.String("file", filepath.Join(w.dir, item.name)),
		)
	}
	return errors.Join(errs...)
}

// writeJSON replaces dir/name through a temp file in the same directory
func (w *FileWriter) writeJSON(name string, payload interface{}) error {
	data, err := EncodeJSON(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(w.dir, "."+name+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", name, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close %s: %w", name, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to chmod %s: %w", name, err)
	}
	if err := os.Rename(tmpPath, filepath.Join(w.dir, name)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}
	return nil
}

// EncodeJSON encodes v with two-space indent, literal non-ASCII and no HTML escaping
func EncodeJSON(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
