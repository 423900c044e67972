package models

import "time"

// LabelMarkerV1 is the marker carried by every label published since the
// two-phase protocol was introduced. Changing it orphans earlier bundles, so
// a new marker gets a new constant.
const LabelMarkerV1 = "Claude Code session transcript:"

// SubagentPrefix is the filename prefix of sub-agent transcripts.
const SubagentPrefix = "agent-"

// PublishResult describes the remote bundle produced by a publish.
type PublishResult struct {
	BundleID  string          `json:"bundle_id"`
	URL       string          `json:"url"`
	ViewerURL string          `json:"viewer_url"`
	Label     string          `json:"label"`
	FileCount int             `json:"file_count"`
	Protocol  PublishProtocol `json:"protocol"`
	// Labeled is false when the bundle was created but the relabel step
	// failed. Such a bundle is not discoverable.
	Labeled bool `json:"labeled"`
}

// DiscoveredBundle is a remote bundle whose label carries the marker.
type DiscoveredBundle struct {
	BundleID string   `json:"bundle_id"`
	Label    string   `json:"label"`
	Files    []string `json:"files,omitempty"`
}

// PublishRecord is one entry in the local publish ledger.
type PublishRecord struct {
	BundleID    string          `yaml:"bundle_id"`
	URL         string          `yaml:"url"`
	ViewerURL   string          `yaml:"viewer_url"`
	Label       string          `yaml:"label"`
	SessionID   string          `yaml:"session_id,omitempty"`
	Files       []string        `yaml:"files"`
	Digest      string          `yaml:"digest"`
	Protocol    PublishProtocol `yaml:"protocol"`
	Labeled     bool            `yaml:"labeled"`
	PublishedAt time.Time       `yaml:"published_at"`
}

// PublishLedger is the on-disk form of the publish ledger.
type PublishLedger struct {
	Version string          `yaml:"version"`
	Records []PublishRecord `yaml:"records"`
}
