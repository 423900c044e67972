package core

import (
	"fmt"
	"strings"
)

// ViewerURL returns the viewer reference for a bundle.
func ViewerURL(baseURL, bundleID string) string {
	return strings.TrimRight(baseURL, "/") + "/g/" + bundleID
}

// BuildLabel returns the canonical label for a bundle: the marker followed
// by the bundle's viewer URL.
func BuildLabel(marker, baseURL, bundleID string) string {
	return marker + " " + ViewerURL(baseURL, bundleID)
}

// BundleIDFromURL extracts the bundle ID from a reference URL returned by
// the remote store. The ID is the final path segment.
func BundleIDFromURL(ref string) (string, error) {
	ref = strings.TrimRight(strings.TrimSpace(ref), "/")
	if ref == "" {
		return "", fmt.Errorf("empty bundle reference")
	}
	id := ref[strings.LastIndex(ref, "/")+1:]
	if id == "" {
		return "", fmt.Errorf("no bundle id in reference %q", ref)
	}
	return id, nil
}

// HasMarker reports whether label carries the discovery marker.
func HasMarker(label, marker string) bool {
	if label == "" || marker == "" {
		return false
	}
	return strings.Contains(label, marker)
}
