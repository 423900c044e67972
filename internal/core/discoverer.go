package core

import (
	"context"
	"fmt"
	"sort"

	"github.com/moredip/session-share/pkg/models"
)

// BundleDiscoverer recovers previously published bundles from the remote store.
type BundleDiscoverer interface {
	// Discover returns every bundle whose label carries the marker, in the
	// order the remote listing returned them.
	Discover(ctx context.Context) ([]models.DiscoveredBundle, error)
}

type discoverer struct {
	store  RemoteStore
	marker string
}

// NewBundleDiscoverer creates a BundleDiscoverer matching labels against marker.
func NewBundleDiscoverer(store RemoteStore, marker string) BundleDiscoverer {
	return &discoverer{store: store, marker: marker}
}

func (d *discoverer) Discover(ctx context.Context) ([]models.DiscoveredBundle, error) {
	objects, err := d.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("discovering bundles: %w", err)
	}

	var bundles []models.DiscoveredBundle
	for _, obj := range objects {
		if !HasMarker(obj.Description, d.marker) {
			continue
		}
		b := models.DiscoveredBundle{BundleID: obj.ID, Label: obj.Description}
		for name := range obj.Files {
			b.Files = append(b.Files, name)
		}
		sort.Strings(b.Files)
		bundles = append(bundles, b)
	}
	return bundles, nil
}
