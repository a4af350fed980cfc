package store

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/uni-enrich/internal/model"
)

// JSONFile stores universities as an indented JSON array in one file.
type JSONFile struct {
	path string
}

// NewJSONFile creates a JSONFile writing to path.
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

// Path returns the file location.
func (s *JSONFile) Path() string { return s.path }

// Save writes unis to a temp file beside the target and renames it into place,
// creating parent directories as needed.
func (s *JSONFile) Save(_ context.Context, unis []model.University) error {
	if unis == nil {
		unis = []model.University{}
	}
	data, err := json.MarshalIndent(unis, "", "  ")
	if err != nil {
		return eris.Wrap(err, "json store: marshal")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "json store: create dir %s", dir)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return eris.Wrap(err, "json store: create temp file")
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck
		return eris.Wrap(err, "json store: write")
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrap(err, "json store: close")
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return eris.Wrapf(err, "json store: rename to %s", s.path)
	}

	zap.L().Info("saved universities", zap.Int("count", len(unis)), zap.String("path", s.path))
	return nil
}

// Load reads the file. A missing file is an empty result.
func (s *JSONFile) Load(_ context.Context) ([]model.University, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "json store: read %s", s.path)
	}

	var unis []model.University
	if err := json.Unmarshal(data, &unis); err != nil {
		return nil, eris.Wrapf(err, "json store: parse %s", s.path)
	}
	return unis, nil
}

// Close is a no-op.
func (s *JSONFile) Close() error { return nil }
