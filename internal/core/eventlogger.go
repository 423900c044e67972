package core

// EventLogger is the subset of the observability event log that core
// services need. Defining it here avoids importing the observability package.
type EventLogger interface {
	LogEvent(eventType string, data map[string]any) error
}

// Event types written by core services.
const (
	EventBundleCreated = "bundle.created"
	EventBundleLabeled = "bundle.labeled"
	EventBundlePartial = "bundle.partial"
	EventBundleIndexed = "index.bundle_indexed"
	EventBundleFailed  = "index.bundle_failed"
	EventIndexWritten  = "index.written"
)

func logEvent(l EventLogger, eventType string, data map[string]any) {
	if l == nil {
		return
	}
	_ = l.LogEvent(eventType, data)
}
