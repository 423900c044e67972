package integration

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/moredip/session-share/pkg/models"
)

// GistFile is one file of a gist as returned by the gists API.
type GistFile struct {
	Filename  string `json:"filename"`
	Content   string `json:"content"`
	Truncated bool   `json:"truncated"`
	RawURL    string `json:"raw_url"`
	Size      int64  `json:"size"`
}

// Gist is the subset of the gists API object session-share reads.
type Gist struct {
	ID          string              `json:"id"`
	Description *string             `json:"description"`
	HTMLURL     string              `json:"html_url"`
	Files       map[string]GistFile `json:"files"`
}

// DescriptionText returns the description, treating null as empty.
func (g Gist) DescriptionText() string {
	if g.Description == nil {
		return ""
	}
	return *g.Description
}

// GistClient is the set of gist operations the remote store needs. It is
// implemented by the gh CLI backend and the REST backend.
type GistClient interface {
	// Create uploads files as one secret gist and returns its URL.
	Create(ctx context.Context, files []string, description string) (string, error)
	UpdateDescription(ctx context.Context, id, description string) error
	// List returns every gist of the authenticated user across all pages.
	List(ctx context.Context) ([]Gist, error)
	// Get returns a gist with file contents filled in, including files the
	// API truncated.
	Get(ctx context.Context, id string) (*Gist, error)
}

// fillTruncated downloads the full content of files the API truncated.
func fillTruncated(ctx context.Context, client *http.Client, g *Gist) error {
	for name, f := range g.Files {
		if !f.Truncated {
			continue
		}
		if f.RawURL == "" {
			return fmt.Errorf("file %s is truncated and has no raw_url", name)
		}
		content, err := fetchRaw(ctx, client, f.RawURL)
		if err != nil {
			return fmt.Errorf("fetching %s: %w", name, err)
		}
		f.Content = content
		f.Truncated = false
		g.Files[name] = f
	}
	return nil
}

func fetchRaw(ctx context.Context, client *http.Client, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d from %s", resp.StatusCode, rawURL)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// checkUniqueNames rejects bundles in which two paths share a base name; a
// gist keys its files by name, so one would silently replace the other.
func checkUniqueNames(files []string) error {
	seen := make(map[string]string, len(files))
	for _, path := range files {
		name := filepath.Base(path)
		if prev, dup := seen[name]; dup {
			return &models.RemoteError{Op: models.OpCreate, Err: fmt.Errorf("duplicate file name %s in bundle (%s and %s)", name, prev, path)}
		}
		seen[name] = path
	}
	return nil
}
