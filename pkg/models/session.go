package models

import "time"

// EntryType is the "type" tag of a transcript record. The set is open:
// values outside the constants below are counted under their raw string.
type EntryType string

const (
	EntryUser                EntryType = "user"
	EntryAssistant           EntryType = "assistant"
	EntrySystem              EntryType = "system"
	EntrySummary             EntryType = "summary"
	EntryProgress            EntryType = "progress"
	EntryFileHistorySnapshot EntryType = "file-history-snapshot"
	// EntryUnknown is the bucket for records without a type.
	EntryUnknown EntryType = "unknown"
)

// BlockType is the "type" tag of a content block. Like EntryType the set is
// open; unrecognised tags are counted but set no flag.
type BlockType string

const (
	BlockText             BlockType = "text"
	BlockToolUse          BlockType = "tool_use"
	BlockToolResult       BlockType = "tool_result"
	BlockThinking         BlockType = "thinking"
	BlockRedactedThinking BlockType = "redacted_thinking"
	BlockImage            BlockType = "image"
)

// Known reports whether b is one of the block types the analyzer recognises.
func (b BlockType) Known() bool {
	switch b {
	case BlockText, BlockToolUse, BlockToolResult, BlockThinking, BlockRedactedThinking, BlockImage:
		return true
	}
	return false
}

// SessionAnalysis aggregates one transcript file.
type SessionAnalysis struct {
	EntryTypeCounts    map[string]int `json:"entry_type_counts"`
	ContentBlockCounts map[string]int `json:"content_block_counts"`
	ToolsUsed          []string       `json:"tools_used"`
	HasThinking        bool           `json:"has_thinking"`
	HasImages          bool           `json:"has_images"`
	TotalEntries       int            `json:"total_entries"`
	// SkippedLines counts non-blank lines that did not decode as a record.
	SkippedLines int `json:"skipped_lines"`
}

// TranscriptAnalysis is a SessionAnalysis tagged with the file it came from.
type TranscriptAnalysis struct {
	Filename string `json:"filename"`
	SessionAnalysis
}

// IndexEntry is one row of the bundle index.
type IndexEntry struct {
	BundleID            string               `json:"bundle_id"`
	Label               string               `json:"label,omitempty"`
	ViewerURL           string               `json:"viewer_url"`
	FetchedAt           time.Time            `json:"fetched_at"`
	MainTranscript      *TranscriptAnalysis  `json:"main_transcript"`
	SubagentTranscripts []TranscriptAnalysis `json:"subagent_transcripts"`
	HasSubagents        bool                 `json:"has_subagents"`
}

// IndexFailure records a bundle skipped during an index run.
type IndexFailure struct {
	BundleID string `json:"bundle_id"`
	Error    string `json:"error"`
}

// BundleIndex is the result of an index run.
type BundleIndex struct {
	Entries  []IndexEntry
	Failures []IndexFailure
}
