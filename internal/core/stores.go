package core

import (
	"context"

	"github.com/moredip/session-share/pkg/models"
)

// RemoteObject is one multi-file object held by the remote store.
type RemoteObject struct {
	ID          string
	Description string
	// Files maps filename to content. Listings carry names only; Get fills
	// in the contents.
	Files map[string]string
}

// RemoteStore is the remote paste store. It is defined here so core does
// not import the integration package.
type RemoteStore interface {
	// Create uploads files as one object and returns its reference URL.
	Create(ctx context.Context, files []string, description string) (string, error)
	UpdateDescription(ctx context.Context, id, description string) error
	// List returns every object owned by the current credentials, across
	// all pages.
	List(ctx context.Context) ([]RemoteObject, error)
	Get(ctx context.Context, id string) (*RemoteObject, error)
}

// PublishLedger records publishes locally.
// This interface is defined locally in core to avoid importing storage.
type PublishLedger interface {
	// Digest returns a content digest over the named files.
	Digest(files []string) (string, error)
	Record(rec models.PublishRecord) error
	FindByDigest(digest string) ([]models.PublishRecord, error)
}

// BundleFetcher downloads a bundle and returns the local paths of its
// files, keyed by filename.
type BundleFetcher interface {
	Fetch(ctx context.Context, bundleID string) (map[string]string, error)
}
