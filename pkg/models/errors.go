package models

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that a session has no local transcript or that
// discovery found no published bundles. The locator and discoverer report
// these as empty results; the commands that treat them as fatal wrap it.
var ErrNotFound = errors.New("not found")

// ErrNotAuthenticated reports that the remote store rejected the current
// credentials.
var ErrNotAuthenticated = errors.New("not authenticated: run 'gh auth login' first")

// Remote operation names used in RemoteError.
const (
	OpCreate   = "create"
	OpUpdate   = "update"
	OpList     = "list"
	OpGet      = "get"
	OpDownload = "download"
)

// RemoteError wraps a failed remote store operation.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote %s failed: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// PartialPublishError reports a bundle that was created but could not be
// relabelled. The bundle exists remotely without the marker and must be
// cleaned up or relabelled by hand.
type PartialPublishError struct {
	BundleID string
	URL      string
	Err      error
}

func (e *PartialPublishError) Error() string {
	return fmt.Sprintf("bundle %s created but not labelled (%s): %v", e.BundleID, e.URL, e.Err)
}

func (e *PartialPublishError) Unwrap() error { return e.Err }

// IsNotAuthenticated reports whether err stems from rejected credentials.
func IsNotAuthenticated(err error) bool {
	return errors.Is(err, ErrNotAuthenticated)
}
