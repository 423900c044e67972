package observability

import (
	"fmt"
	"time"
)

// Metrics holds counts derived from the event log.
type Metrics struct {
	BundlesCreated    int            `json:"bundles_created"`
	BundlesLabeled    int            `json:"bundles_labeled"`
	PartialPublishes  int            `json:"partial_publishes"`
	BundlesByProtocol map[string]int `json:"bundles_by_protocol"`
	FilesPublished    int            `json:"files_published"`
	BundlesIndexed    int            `json:"bundles_indexed"`
	IndexFailures     int            `json:"index_failures"`
	IndexRuns         int            `json:"index_runs"`
	EventCount        int            `json:"event_count"`
	OldestEvent       *time.Time     `json:"oldest_event,omitempty"`
	NewestEvent       *time.Time     `json:"newest_event,omitempty"`
}

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*Metrics, error)
}

// metricsCalculator implements MetricsCalculator by reading from an EventLog.
type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a MetricsCalculator that reads from eventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate reads all events since the given time and aggregates them.
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{BundlesByProtocol: make(map[string]int)}
	m.EventCount = len(events)

	for i, event := range events {
		if i == 0 {
			t := event.Time
			m.OldestEvent = &t
		}
		t := event.Time
		m.NewestEvent = &t

		switch event.Type {
		case "bundle.created":
			m.BundlesCreated++
			if p, ok := event.Data["protocol"].(string); ok {
				m.BundlesByProtocol[p]++
			}
			// JSON numbers decode as float64.
			if n, ok := event.Data["file_count"].(float64); ok {
				m.FilesPublished += int(n)
			}
		case "bundle.labeled":
			m.BundlesLabeled++
		case "bundle.partial":
			m.PartialPublishes++
		case "index.bundle_indexed":
			m.BundlesIndexed++
		case "index.bundle_failed":
			m.IndexFailures++
		case "index.written":
			m.IndexRuns++
		}
	}

	return m, nil
}
