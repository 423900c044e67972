package core

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/moredip/session-share/pkg/models"
)

const maxToolsWidth = 40

// IndexBuilder downloads discovered bundles and analyses them into an index.
type IndexBuilder interface {
	// Build processes bundles in order. A bundle that fails to download or
	// analyse is reported in Failures and skipped.
	Build(ctx context.Context, bundles []models.DiscoveredBundle) *models.BundleIndex
}

type indexBuilder struct {
	fetcher       BundleFetcher
	analyzer      TranscriptAnalyzer
	viewerBaseURL string
	events        EventLogger
	errOut        io.Writer
	now           func() time.Time
}

// NewIndexBuilder creates an IndexBuilder. Per-bundle failures are written
// to errOut, which may be nil.
func NewIndexBuilder(fetcher BundleFetcher, analyzer TranscriptAnalyzer, viewerBaseURL string, events EventLogger, errOut io.Writer) IndexBuilder {
	if errOut == nil {
		errOut = io.Discard
	}
	return &indexBuilder{
		fetcher:       fetcher,
		analyzer:      analyzer,
		viewerBaseURL: viewerBaseURL,
		events:        events,
		errOut:        errOut,
		now:           time.Now,
	}
}

func (b *indexBuilder) Build(ctx context.Context, bundles []models.DiscoveredBundle) *models.BundleIndex {
	idx := &models.BundleIndex{Entries: []models.IndexEntry{}}
	for _, bundle := range bundles {
		entry, err := b.buildEntry(ctx, bundle)
		if err != nil {
			fmt.Fprintf(b.errOut, "  ERROR processing %s: %v\n", bundle.BundleID, err)
			idx.Failures = append(idx.Failures, models.IndexFailure{BundleID: bundle.BundleID, Error: err.Error()})
			logEvent(b.events, EventBundleFailed, map[string]any{
				"bundle_id": bundle.BundleID,
				"error":     err.Error(),
			})
			continue
		}
		idx.Entries = append(idx.Entries, *entry)
		logEvent(b.events, EventBundleIndexed, map[string]any{
			"bundle_id":     bundle.BundleID,
			"has_subagents": entry.HasSubagents,
		})
	}
	return idx
}

func (b *indexBuilder) buildEntry(ctx context.Context, bundle models.DiscoveredBundle) (*models.IndexEntry, error) {
	files, err := b.fetcher.Fetch(ctx, bundle.BundleID)
	if err != nil {
		return nil, fmt.Errorf("downloading: %w", err)
	}

	names := make([]string, 0, len(files))
	for name := range files {
		if strings.HasSuffix(name, ".jsonl") {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	entry := &models.IndexEntry{
		BundleID:            bundle.BundleID,
		Label:               bundle.Label,
		ViewerURL:           ViewerURL(b.viewerBaseURL, bundle.BundleID),
		FetchedAt:           b.now().UTC(),
		SubagentTranscripts: []models.TranscriptAnalysis{},
	}

	for _, name := range names {
		isAgent := strings.HasPrefix(filepath.Base(name), models.SubagentPrefix)
		if !isAgent && entry.MainTranscript != nil {
			continue
		}
		analysis, err := b.analyzer.Analyze(files[name])
		if err != nil {
			return nil, err
		}
		ta := models.TranscriptAnalysis{Filename: filepath.Base(name), SessionAnalysis: *analysis}
		if isAgent {
			entry.SubagentTranscripts = append(entry.SubagentTranscripts, ta)
		} else {
			entry.MainTranscript = &ta
		}
	}
	entry.HasSubagents = len(entry.SubagentTranscripts) > 0

	return entry, nil
}

// MarshalIndex renders entries as an indented JSON array.
func MarshalIndex(entries []models.IndexEntry) ([]byte, error) {
	if entries == nil {
		entries = []models.IndexEntry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling index: %w", err)
	}
	return append(data, '\n'), nil
}

// RenderIndexTable renders entries as a Markdown summary table, one row per
// entry in input order.
func RenderIndexTable(entries []models.IndexEntry, generatedAt time.Time) string {
	var sb strings.Builder
	sb.WriteString("# Published Session Index\n\n")
	fmt.Fprintf(&sb, "Generated: %s  \n", generatedAt.UTC().Format("2006-01-02 15:04 UTC"))
	fmt.Fprintf(&sb, "Total bundles: %d\n\n", len(entries))
	sb.WriteString("| Bundle ID | Entries | Tools | Subagents | Thinking | Images | Viewer |\n")
	sb.WriteString("|-----------|---------|-------|-----------|----------|--------|--------|\n")

	for _, e := range entries {
		total := "?"
		tools := ""
		thinking, images := false, false
		if mt := e.MainTranscript; mt != nil {
			total = fmt.Sprintf("%d", mt.TotalEntries)
			tools = truncateRunes(strings.Join(mt.ToolsUsed, ", "), maxToolsWidth)
			thinking = mt.HasThinking
			images = mt.HasImages
		}
		if tools == "" {
			tools = "-"
		}
		fmt.Fprintf(&sb, "| `%s` | %s | %s | %s | %s | %s | [view](%s) |\n",
			truncateRunes(e.BundleID, 12), total, tools,
			yesNo(e.HasSubagents), yesNo(thinking), yesNo(images), e.ViewerURL)
	}
	return sb.String()
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
