// Package export writes dashboard frames to a directory for headless use:
// one PNG per chart plus a JSON document of gauge parameters. Every write is
// atomic, so a reader polling the directory never sees a partial file.
package export

import (
	"encoding/json"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
)

// Store is a flat directory of exported files.
//
//	<dir>/
//	  cpu.png
//	  temperature.png
//	  network.png
//	  frame.json
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore creates a store at the given directory.
// The directory is created with 0700 permissions if it does not exist.
func NewStore(dir string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("export: create directory %s: %w", dir, err)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Dir returns the store directory.
func (s *Store) Dir() string { return s.dir }

// Path returns the filesystem path of a file in the store.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// WriteJSON writes v as indented JSON to name.
func (s *Store) WriteJSON(name string, v any) error {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("export: marshal %s: %w", name, err)
	}
	return s.write(name, func(w io.Writer) error {
		_, err := w.Write(append(encoded, '\n'))
		return err
	})
}

// WritePNG encodes img as PNG to name.
func (s *Store) WritePNG(name string, img image.Image) error {
	if img == nil || img.Bounds().Empty() {
		return fmt.Errorf("export: %s: empty image", name)
	}
	return s.write(name, func(w io.Writer) error {
		return imaging.Encode(w, img, imaging.PNG)
	})
}

// write creates name atomically (write to temp file, then rename) with
// 0600 permissions.
func (s *Store) write(name string, fill func(io.Writer) error) error {
	path := s.Path(name)

	tmp, err := os.CreateTemp(s.dir, ".tmp-"+name+"-*")
	if err != nil {
		return fmt.Errorf("export: create temp for %s: %w", name, err)
	}
	tmpName := tmp.Name()

	// Clean up the temp file on any failure path.
	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpName)
		}
	}()

	if err := os.Chmod(tmpName, 0600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("export: chmod temp for %s: %w", name, err)
	}

	if err := fill(tmp); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("export: write temp for %s: %w", name, err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("export: close temp for %s: %w", name, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("export: rename temp for %s: %w", name, err)
	}

	success = true
	s.logger.Debug("exported", slog.String("file", name))
	return nil
}

// Age returns how old an exported file is based on its modification time.
// Returns 0 if the file does not exist.
func (s *Store) Age(name string) time.Duration {
	info, err := os.Stat(s.Path(name))
	if err != nil {
		return 0
	}
	return time.Since(info.ModTime())
}

// Files returns the names of all exported files, skipping temp files.
func (s *Store) Files() []string {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".tmp-") {
			continue
		}
		names = append(names, e.Name())
	}
	return names
}
