// Package mcp provides an MCP (Model Context Protocol) server that exposes
// session-share operations as tools for AI coding assistants.
package mcp

import (
	"context"
	"fmt"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/moredip/session-share/internal/core"
	"github.com/moredip/session-share/internal/observability"
	"github.com/moredip/session-share/pkg/models"
)

// Server wraps the session-share services and exposes them as MCP tools.
type Server struct {
	server      *gomcp.Server
	locator     core.TranscriptLocator
	publisher   core.BundlePublisher
	discoverer  core.BundleDiscoverer
	analyzer    core.TranscriptAnalyzer
	metricsCalc observability.MetricsCalculator
}

// Services bundles the dependencies of the MCP server. MetricsCalc may be
// nil when the event log is unavailable.
type Services struct {
	Locator     core.TranscriptLocator
	Publisher   core.BundlePublisher
	Discoverer  core.BundleDiscoverer
	Analyzer    core.TranscriptAnalyzer
	MetricsCalc observability.MetricsCalculator
}

// NewServer creates a new MCP server backed by svc.
func NewServer(svc Services, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		locator:     svc.Locator,
		publisher:   svc.Publisher,
		discoverer:  svc.Discoverer,
		analyzer:    svc.Analyzer,
		metricsCalc: svc.MetricsCalc,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "session-share", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run serves on stdio, blocking until the client disconnects or the context
// is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type sessionInput struct {
	SessionID string `json:"session_id" jsonschema:"required,the agent session id (the transcript file name without .jsonl)"`
}

type locateOutput struct {
	SessionID string   `json:"session_id"`
	Files     []string `json:"files"`
}

type publishOutput struct {
	BundleID  string `json:"bundle_id"`
	URL       string `json:"url"`
	ViewerURL string `json:"viewer_url"`
	FileCount int    `json:"file_count"`
	Protocol  string `json:"protocol"`
	Labeled   bool   `json:"labeled"`
}

type discoverInput struct{}

type discoverOutput struct {
	Bundles []models.DiscoveredBundle `json:"bundles"`
	Count   int                       `json:"count"`
}

type analyzeInput struct {
	Path string `json:"path" jsonschema:"required,path of a local JSONL transcript"`
}

type analyzeOutput struct {
	Path     string                 `json:"path"`
	Analysis models.SessionAnalysis `json:"analysis"`
}

type getMetricsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for metrics (e.g. 7d, 30d, 24h). Defaults to 7d."`
}

type metricsOutput struct {
	BundlesCreated    int            `json:"bundles_created"`
	BundlesLabeled    int            `json:"bundles_labeled"`
	PartialPublishes  int            `json:"partial_publishes"`
	BundlesByProtocol map[string]int `json:"bundles_by_protocol"`
	FilesPublished    int            `json:"files_published"`
	BundlesIndexed    int            `json:"bundles_indexed"`
	IndexFailures     int            `json:"index_failures"`
	EventCount        int            `json:"event_count"`
	OldestEvent       string         `json:"oldest_event,omitempty"`
	NewestEvent       string         `json:"newest_event,omitempty"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "locate_session",
		Description: "Find the transcript file and attachments recorded for a session id.",
	}, s.handleLocate)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "publish_session",
		Description: "Publish a session's transcript files as a labelled remote bundle and return its viewer URL.",
	}, s.handlePublish)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "discover_bundles",
		Description: "List the remote bundles whose label carries the session-share marker.",
	}, s.handleDiscover)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "analyze_transcript",
		Description: "Summarise a local JSONL transcript: entry and block counts, tools used, thinking and image flags.",
	}, s.handleAnalyze)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_metrics",
		Description: "Get publish and index counts from the event log.",
	}, s.handleGetMetrics)
}

// --- Tool handlers ---

func (s *Server) handleLocate(_ context.Context, _ *gomcp.CallToolRequest, input sessionInput) (*gomcp.CallToolResult, locateOutput, error) {
	if input.SessionID == "" {
		return errorResult("session_id is required"), emptyLocateOutput(), nil
	}
	files, err := s.locator.Locate(input.SessionID)
	if err != nil {
		return errorResult(fmt.Sprintf("locating session %s: %s", input.SessionID, err)), emptyLocateOutput(), nil
	}
	if len(files) == 0 {
		return errorResult(fmt.Sprintf("no transcript found for session %s", input.SessionID)), emptyLocateOutput(), nil
	}
	return nil, locateOutput{SessionID: input.SessionID, Files: files}, nil
}

func (s *Server) handlePublish(ctx context.Context, _ *gomcp.CallToolRequest, input sessionInput) (*gomcp.CallToolResult, publishOutput, error) {
	if input.SessionID == "" {
		return errorResult("session_id is required"), publishOutput{}, nil
	}
	files, err := s.locator.Locate(input.SessionID)
	if err != nil {
		return errorResult(fmt.Sprintf("locating session %s: %s", input.SessionID, err)), publishOutput{}, nil
	}
	if len(files) == 0 {
		return errorResult(fmt.Sprintf("no transcript found for session %s", input.SessionID)), publishOutput{}, nil
	}

	result, err := s.publisher.PublishSession(ctx, input.SessionID, files)
	if err != nil {
		if pe, ok := core.IsPartialPublish(err); ok {
			return errorResult(fmt.Sprintf("bundle %s was created at %s but could not be labelled: %s", pe.BundleID, pe.URL, pe.Err)), publishOutput{}, nil
		}
		return errorResult(fmt.Sprintf("publishing session %s: %s", input.SessionID, err)), publishOutput{}, nil
	}

	return nil, publishOutput{
		BundleID:  result.BundleID,
		URL:       result.URL,
		ViewerURL: result.ViewerURL,
		FileCount: result.FileCount,
		Protocol:  string(result.Protocol),
		Labeled:   result.Labeled,
	}, nil
}

func (s *Server) handleDiscover(ctx context.Context, _ *gomcp.CallToolRequest, _ discoverInput) (*gomcp.CallToolResult, discoverOutput, error) {
	bundles, err := s.discoverer.Discover(ctx)
	if err != nil {
		return errorResult(err.Error()), discoverOutput{Bundles: []models.DiscoveredBundle{}}, nil
	}
	if bundles == nil {
		bundles = []models.DiscoveredBundle{}
	}
	return nil, discoverOutput{Bundles: bundles, Count: len(bundles)}, nil
}

func (s *Server) handleAnalyze(_ context.Context, _ *gomcp.CallToolRequest, input analyzeInput) (*gomcp.CallToolResult, analyzeOutput, error) {
	if input.Path == "" {
		return errorResult("path is required"), emptyAnalyzeOutput(), nil
	}
	analysis, err := s.analyzer.Analyze(input.Path)
	if err != nil {
		return errorResult(err.Error()), emptyAnalyzeOutput(), nil
	}
	return nil, analyzeOutput{Path: input.Path, Analysis: *analysis}, nil
}

func (s *Server) handleGetMetrics(_ context.Context, _ *gomcp.CallToolRequest, input getMetricsInput) (*gomcp.CallToolResult, metricsOutput, error) {
	if s.metricsCalc == nil {
		return errorResult("metrics calculator not available (event log may be disabled)"), emptyMetricsOutput(), nil
	}

	sinceStr := input.Since
	if sinceStr == "" {
		sinceStr = "7d"
	}

	sinceTime, err := parseSince(sinceStr)
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), emptyMetricsOutput(), nil
	}

	metrics, err := s.metricsCalc.Calculate(sinceTime)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating metrics: %s", err)), emptyMetricsOutput(), nil
	}

	out := metricsOutput{
		BundlesCreated:    metrics.BundlesCreated,
		BundlesLabeled:    metrics.BundlesLabeled,
		PartialPublishes:  metrics.PartialPublishes,
		BundlesByProtocol: metrics.BundlesByProtocol,
		FilesPublished:    metrics.FilesPublished,
		BundlesIndexed:    metrics.BundlesIndexed,
		IndexFailures:     metrics.IndexFailures,
		EventCount:        metrics.EventCount,
	}
	if out.BundlesByProtocol == nil {
		out.BundlesByProtocol = make(map[string]int)
	}
	if metrics.OldestEvent != nil {
		out.OldestEvent = metrics.OldestEvent.Format(time.RFC3339)
	}
	if metrics.NewestEvent != nil {
		out.NewestEvent = metrics.NewestEvent.Format(time.RFC3339)
	}

	return nil, out, nil
}

// --- Helpers ---

// Error results still carry an output value, and the SDK validates it
// against the output schema, so maps and slices must not be nil.

func emptyLocateOutput() locateOutput {
	return locateOutput{Files: []string{}}
}

func emptyAnalyzeOutput() analyzeOutput {
	return analyzeOutput{Analysis: models.SessionAnalysis{
		EntryTypeCounts:    map[string]int{},
		ContentBlockCounts: map[string]int{},
		ToolsUsed:          []string{},
	}}
}

func emptyMetricsOutput() metricsOutput {
	return metricsOutput{BundlesByProtocol: make(map[string]int)}
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}

// parseSince parses a human-friendly duration string like "7d", "30d", or "24h"
// into the corresponding time in the past.
func parseSince(s string) (time.Time, error) {
	now := time.Now().UTC()

	if len(s) < 2 {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}

	suffix := s[len(s)-1]
	numStr := s[:len(s)-1]
	var num int
	if _, err := fmt.Sscanf(numStr, "%d", &num); err != nil {
		return time.Time{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}

	switch suffix {
	case 'd':
		return now.AddDate(0, 0, -num), nil
	case 'h':
		return now.Add(-time.Duration(num) * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported duration suffix %q (use d or h)", string(suffix))
	}
}
