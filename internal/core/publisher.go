package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/moredip/session-share/pkg/models"
)

// BundlePublisher uploads a set of files as one labelled remote bundle.
type BundlePublisher interface {
	// Publish uploads files as one bundle. Under the two-phase protocol
	// label is the placeholder description used at creation time; under
	// the single-phase protocol it is the final label and must carry the
	// marker.
	Publish(ctx context.Context, files []string, label string) (*models.PublishResult, error)
	// PublishSession publishes a located session with the label the
	// configured protocol expects and records the session ID in the ledger.
	PublishSession(ctx context.Context, sessionID string, files []string) (*models.PublishResult, error)
}

// PublisherConfig holds the settings a BundlePublisher needs.
type PublisherConfig struct {
	Marker        string
	ViewerBaseURL string
	Protocol      models.PublishProtocol
}

type publisher struct {
	store  RemoteStore
	cfg    PublisherConfig
	ledger PublishLedger
	events EventLogger
	warn   io.Writer
	now    func() time.Time
}

// NewBundlePublisher creates a BundlePublisher. ledger, events and warn may
// be nil.
func NewBundlePublisher(store RemoteStore, cfg PublisherConfig, ledger PublishLedger, events EventLogger, warn io.Writer) BundlePublisher {
	if cfg.Protocol == "" {
		cfg.Protocol = models.ProtocolTwoPhase
	}
	if warn == nil {
		warn = io.Discard
	}
	return &publisher{
		store:  store,
		cfg:    cfg,
		ledger: ledger,
		events: events,
		warn:   warn,
		now:    time.Now,
	}
}

func (p *publisher) PublishSession(ctx context.Context, sessionID string, files []string) (*models.PublishResult, error) {
	label := ""
	if p.protocolFor(files) == models.ProtocolSinglePhase {
		label = p.cfg.Marker
	}
	return p.publish(ctx, sessionID, files, label)
}

func (p *publisher) Publish(ctx context.Context, files []string, label string) (*models.PublishResult, error) {
	return p.publish(ctx, "", files, label)
}

// protocolFor returns the protocol used for a bundle. Multi-file bundles
// are always relabelled in a second step because the store cannot edit the
// description of a multi-file object in one non-interactive call.
func (p *publisher) protocolFor(files []string) models.PublishProtocol {
	if p.cfg.Protocol == models.ProtocolSinglePhase && len(files) == 1 {
		return models.ProtocolSinglePhase
	}
	return models.ProtocolTwoPhase
}

func (p *publisher) publish(ctx context.Context, sessionID string, files []string, label string) (*models.PublishResult, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("publishing bundle: no files to publish")
	}

	protocol := p.protocolFor(files)
	if protocol == models.ProtocolSinglePhase && !HasMarker(label, p.cfg.Marker) {
		return nil, fmt.Errorf("publishing bundle: single-phase label %q does not carry marker %q", label, p.cfg.Marker)
	}

	digest := p.checkDuplicate(files)

	ref, err := p.store.Create(ctx, files, label)
	if err != nil {
		return nil, err
	}
	ref = strings.TrimSpace(ref)
	id, err := BundleIDFromURL(ref)
	if err != nil {
		return nil, &models.RemoteError{Op: models.OpCreate, Err: err}
	}

	result := &models.PublishResult{
		BundleID:  id,
		URL:       ref,
		ViewerURL: ViewerURL(p.cfg.ViewerBaseURL, id),
		Label:     label,
		FileCount: len(files),
		Protocol:  protocol,
		Labeled:   protocol == models.ProtocolSinglePhase,
	}
	logEvent(p.events, EventBundleCreated, map[string]any{
		"bundle_id":  id,
		"file_count": len(files),
		"protocol":   string(protocol),
	})

	var partial error
	if protocol == models.ProtocolTwoPhase {
		final := BuildLabel(p.cfg.Marker, p.cfg.ViewerBaseURL, id)
		if err := p.store.UpdateDescription(ctx, id, final); err != nil {
			partial = &models.PartialPublishError{BundleID: id, URL: ref, Err: err}
			logEvent(p.events, EventBundlePartial, map[string]any{
				"bundle_id": id,
				"error":     err.Error(),
			})
		} else {
			result.Label = final
			result.Labeled = true
		}
	}
	if result.Labeled {
		logEvent(p.events, EventBundleLabeled, map[string]any{"bundle_id": id})
	}

	p.record(sessionID, files, digest, result)
	return result, partial
}

// checkDuplicate warns when an identical file set was published before.
// Publishing again still creates a new bundle.
func (p *publisher) checkDuplicate(files []string) string {
	if p.ledger == nil {
		return ""
	}
	digest, err := p.ledger.Digest(files)
	if err != nil {
		fmt.Fprintf(p.warn, "Warning: could not digest bundle files: %v\n", err)
		return ""
	}
	prev, err := p.ledger.FindByDigest(digest)
	if err != nil {
		fmt.Fprintf(p.warn, "Warning: could not read publish ledger: %v\n", err)
		return digest
	}
	if len(prev) > 0 {
		fmt.Fprintf(p.warn, "Warning: identical files were already published as %s\n", prev[len(prev)-1].ViewerURL)
	}
	return digest
}

func (p *publisher) record(sessionID string, files []string, digest string, result *models.PublishResult) {
	if p.ledger == nil {
		return
	}
	rec := models.PublishRecord{
		BundleID:    result.BundleID,
		URL:         result.URL,
		ViewerURL:   result.ViewerURL,
		Label:       result.Label,
		SessionID:   sessionID,
		Files:       append([]string(nil), files...),
		Digest:      digest,
		Protocol:    result.Protocol,
		Labeled:     result.Labeled,
		PublishedAt: p.now().UTC(),
	}
	if err := p.ledger.Record(rec); err != nil {
		fmt.Fprintf(p.warn, "Warning: could not record publish of %s: %v\n", result.BundleID, err)
	}
}

// IsPartialPublish reports whether err is a PartialPublishError and returns it.
func IsPartialPublish(err error) (*models.PartialPublishError, bool) {
	var pe *models.PartialPublishError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
