package cli

import (
	"github.com/moredip/session-share/internal/core"
	"github.com/moredip/session-share/internal/integration"
	"github.com/moredip/session-share/internal/observability"
	"github.com/moredip/session-share/internal/storage"
)

// Service instances, set during app initialization in app.go.
var (
	Locator      core.TranscriptLocator
	Publisher    core.BundlePublisher
	Discoverer   core.BundleDiscoverer
	Analyzer     core.TranscriptAnalyzer
	IndexBuilder core.IndexBuilder
	Samples      storage.SampleStoreManager
	Ledger       storage.PublishStoreManager
	Updates      integration.UpdateChecker
)

// Observability, nil when the event log could not be opened.
var (
	EventLog    observability.EventLog
	Events      core.EventLogger
	MetricsCalc observability.MetricsCalculator
)
