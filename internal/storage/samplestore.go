package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SampleStoreManager keeps downloaded bundles and the generated index under
// the samples directory:
//
//	<dir>/<bundle-id>/<filename>
//	<dir>/index.json
//	<dir>/index.md
type SampleStoreManager interface {
	// SaveBundle writes files (name to content) for a bundle and returns the
	// local path of each file keyed by its stored name.
	SaveBundle(bundleID string, files map[string]string) (map[string]string, error)
	// WriteIndex writes index.json and index.md and returns their paths.
	WriteIndex(indexJSON []byte, indexMD string) (jsonPath, mdPath string, err error)
	Dir() string
}

type fileSampleStore struct {
	dir string
}

// NewSampleStoreManager creates a SampleStoreManager rooted at dir.
func NewSampleStoreManager(dir string) SampleStoreManager {
	return &fileSampleStore{dir: dir}
}

func (s *fileSampleStore) Dir() string { return s.dir }

// safeName reduces a remote name to a single path element, rejecting names
// that would resolve outside their directory.
func safeName(name string) (string, error) {
	base := filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	switch base {
	case "", ".", "..", "/":
		return "", fmt.Errorf("unsafe file name %q", name)
	}
	return base, nil
}

func (s *fileSampleStore) SaveBundle(bundleID string, files map[string]string) (map[string]string, error) {
	id, err := safeName(bundleID)
	if err != nil || id != bundleID {
		return nil, fmt.Errorf("saving bundle: invalid bundle id %q", bundleID)
	}
	dest := filepath.Join(s.dir, id)
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return nil, fmt.Errorf("saving bundle %s: %w", id, err)
	}

	written := make(map[string]string, len(files))
	for name, content := range files {
		base, err := safeName(name)
		if err != nil {
			return nil, fmt.Errorf("saving bundle %s: %w", id, err)
		}
		if _, dup := written[base]; dup {
			return nil, fmt.Errorf("saving bundle %s: two files reduce to %q", id, base)
		}
		path := filepath.Join(dest, base)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return nil, fmt.Errorf("saving bundle %s: writing %s: %w", id, base, err)
		}
		written[base] = path
	}
	return written, nil
}

func (s *fileSampleStore) WriteIndex(indexJSON []byte, indexMD string) (string, string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", "", fmt.Errorf("writing index: %w", err)
	}
	jsonPath := filepath.Join(s.dir, "index.json")
	if err := os.WriteFile(jsonPath, indexJSON, 0o644); err != nil {
		return "", "", fmt.Errorf("writing index.json: %w", err)
	}
	mdPath := filepath.Join(s.dir, "index.md")
	if err := os.WriteFile(mdPath, []byte(indexMD), 0o644); err != nil {
		return "", "", fmt.Errorf("writing index.md: %w", err)
	}
	return jsonPath, mdPath, nil
}
