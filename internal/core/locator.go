package core

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// TranscriptLocator finds the files that make up one session.
type TranscriptLocator interface {
	// Locate returns the main transcript followed by its attachments. An
	// empty slice with a nil error means the session was not found.
	Locate(sessionID string) ([]string, error)
}

type fileLocator struct {
	claudeHome string
}

// NewTranscriptLocator creates a TranscriptLocator rooted at claudeHome
// (normally ~/.claude).
func NewTranscriptLocator(claudeHome string) TranscriptLocator {
	return &fileLocator{claudeHome: claudeHome}
}

// validSessionID rejects IDs that could never name a single transcript file.
func validSessionID(id string) bool {
	if id == "" || id == "." || id == ".." {
		return false
	}
	return !strings.ContainsAny(id, `/\*?[]`)
}

// Locate searches <claudeHome>/projects/*/<id>.jsonl, then the older
// <claudeHome>/projects/*/sessions/<id>.jsonl layout. When a session ID
// appears under more than one project the first project in lexical order
// wins; duplicates are not reconciled. Project directories are listed rather
// than globbed so claudeHome may contain glob metacharacters.
func (l *fileLocator) Locate(sessionID string) ([]string, error) {
	if !validSessionID(sessionID) {
		return []string{}, nil
	}

	projectsDir := filepath.Join(l.claudeHome, "projects")
	entries, err := os.ReadDir(projectsDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("listing projects: %w", err)
	}

	// Non-directories drop out at the Stat below; symlinked projects stay.
	projects := make([]string, 0, len(entries))
	for _, e := range entries {
		projects = append(projects, filepath.Join(projectsDir, e.Name()))
	}

	var main string
	for _, layout := range [][]string{{}, {"sessions"}} {
		for _, project := range projects {
			candidate := filepath.Join(append(append([]string{project}, layout...), sessionID+".jsonl")...)
			if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
				main = candidate
				break
			}
		}
		if main != "" {
			break
		}
	}
	if main == "" {
		return []string{}, nil
	}

	paths := []string{main}
	attachDir := filepath.Join(filepath.Dir(main), sessionID)
	info, err := os.Stat(attachDir)
	if err != nil || !info.IsDir() {
		return paths, nil
	}

	_ = filepath.WalkDir(attachDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && path != attachDir {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			paths = append(paths, path)
		}
		return nil
	})

	return paths, nil
}
