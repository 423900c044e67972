package core

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/moredip/session-share/pkg/models"
)

func testPublisherConfig(protocol models.PublishProtocol) PublisherConfig {
	return PublisherConfig{
		Marker:        models.LabelMarkerV1,
		ViewerBaseURL: "https://custardseed.com",
		Protocol:      protocol,
	}
}

func TestPublish_TwoPhase(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		writeFile(t, dir, "sess.jsonl", `{"type":"user"}`+"\n"),
		writeFile(t, dir, "sess/agent-a.jsonl", `{"type":"assistant"}`+"\n"),
	}
	store := newFakeRemoteStore()
	events := &recordingEvents{}
	ledger := &memLedger{}
	p := NewBundlePublisher(store, testPublisherConfig(models.ProtocolTwoPhase), ledger, events, nil)

	res, err := p.Publish(context.Background(), files, "")
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if res.BundleID == "" || !strings.HasSuffix(res.ViewerURL, "/g/"+res.BundleID) {
		t.Errorf("result = %+v", res)
	}
	wantLabel := BuildLabel(models.LabelMarkerV1, "https://custardseed.com", res.BundleID)
	if res.Label != wantLabel || !res.Labeled {
		t.Errorf("Label = %q (labeled=%v), want %q", res.Label, res.Labeled, wantLabel)
	}
	if res.FileCount != 2 || res.Protocol != models.ProtocolTwoPhase {
		t.Errorf("FileCount = %d, Protocol = %q", res.FileCount, res.Protocol)
	}
	if store.objects[0].Description != wantLabel {
		t.Errorf("remote description = %q, want %q", store.objects[0].Description, wantLabel)
	}
	if len(store.updates) != 1 || store.updates[0] != res.BundleID {
		t.Errorf("updates = %v, want one update for %s", store.updates, res.BundleID)
	}
	if events.count(EventBundleCreated) != 1 || events.count(EventBundleLabeled) != 1 {
		t.Errorf("events = %v", events.events)
	}
	if len(ledger.records) != 1 || !ledger.records[0].Labeled || ledger.records[0].Digest == "" {
		t.Errorf("ledger records = %+v", ledger.records)
	}
}

func TestPublish_EmptyFileList(t *testing.T) {
	store := newFakeRemoteStore()
	p := NewBundlePublisher(store, testPublisherConfig(models.ProtocolTwoPhase), nil, nil, nil)

	if _, err := p.Publish(context.Background(), nil, ""); err == nil {
		t.Fatal("expected error for empty file list")
	}
	if store.creates != 0 {
		t.Errorf("remote Create called %d times, want 0", store.creates)
	}
}

func TestPublish_CreateFailure(t *testing.T) {
	dir := t.TempDir()
	files := []string{writeFile(t, dir, "s.jsonl", "{}\n")}

	store := newFakeRemoteStore()
	store.createErr = models.ErrNotAuthenticated
	p := NewBundlePublisher(store, testPublisherConfig(models.ProtocolTwoPhase), nil, nil, nil)

	_, err := p.Publish(context.Background(), files, "")
	if !models.IsNotAuthenticated(err) {
		t.Fatalf("err = %v, want not authenticated", err)
	}
	if len(store.updates) != 0 {
		t.Error("update must not run after a failed create")
	}
	if store.creates != 1 {
		t.Errorf("creates = %d, want exactly one attempt", store.creates)
	}
}

func TestPublish_UpdateFailureIsPartial(t *testing.T) {
	dir := t.TempDir()
	files := []string{writeFile(t, dir, "s.jsonl", "{}\n")}

	store := newFakeRemoteStore()
	store.updateErr = &models.RemoteError{Op: models.OpUpdate, Err: errors.New("boom")}
	events := &recordingEvents{}
	ledger := &memLedger{}
	p := NewBundlePublisher(store, testPublisherConfig(models.ProtocolTwoPhase), ledger, events, nil)

	res, err := p.Publish(context.Background(), files, "")
	pe, ok := IsPartialPublish(err)
	if !ok {
		t.Fatalf("err = %v, want PartialPublishError", err)
	}
	if res == nil || res.Labeled {
		t.Fatalf("result = %+v, want created but unlabeled", res)
	}
	if pe.BundleID != res.BundleID {
		t.Errorf("PartialPublishError.BundleID = %q, want %q", pe.BundleID, res.BundleID)
	}
	var re *models.RemoteError
	if !errors.As(err, &re) || re.Op != models.OpUpdate {
		t.Errorf("partial error should wrap the update RemoteError, got %v", err)
	}
	if HasMarker(store.objects[0].Description, models.LabelMarkerV1) {
		t.Error("remote object must not carry the marker after a failed relabel")
	}
	if events.count(EventBundlePartial) != 1 || events.count(EventBundleLabeled) != 0 {
		t.Errorf("events = %v", events.events)
	}
	if len(ledger.records) != 1 || ledger.records[0].Labeled {
		t.Errorf("ledger should record the unlabeled bundle, got %+v", ledger.records)
	}
}

func TestPublish_SinglePhaseSingleFile(t *testing.T) {
	dir := t.TempDir()
	files := []string{writeFile(t, dir, "s.jsonl", "{}\n")}

	store := newFakeRemoteStore()
	p := NewBundlePublisher(store, testPublisherConfig(models.ProtocolSinglePhase), nil, nil, nil)

	res, err := p.PublishSession(context.Background(), "s", files)
	if err != nil {
		t.Fatalf("PublishSession: %v", err)
	}
	if res.Protocol != models.ProtocolSinglePhase || !res.Labeled {
		t.Errorf("result = %+v", res)
	}
	if len(store.updates) != 0 {
		t.Errorf("single-phase must not relabel, got updates %v", store.updates)
	}
	if !HasMarker(store.objects[0].Description, models.LabelMarkerV1) {
		t.Errorf("description %q lacks marker", store.objects[0].Description)
	}
}

func TestPublish_SinglePhaseRequiresMarker(t *testing.T) {
	dir := t.TempDir()
	files := []string{writeFile(t, dir, "s.jsonl", "{}\n")}

	store := newFakeRemoteStore()
	p := NewBundlePublisher(store, testPublisherConfig(models.ProtocolSinglePhase), nil, nil, nil)

	if _, err := p.Publish(context.Background(), files, "my transcript"); err == nil {
		t.Fatal("expected error for single-phase label without marker")
	}
	if store.creates != 0 {
		t.Error("remote Create must not be called")
	}
}

func TestPublish_SinglePhaseMultiFileFallsBackToTwoPhase(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		writeFile(t, dir, "s.jsonl", "{}\n"),
		writeFile(t, dir, "s/agent-x.jsonl", "{}\n"),
	}

	store := newFakeRemoteStore()
	p := NewBundlePublisher(store, testPublisherConfig(models.ProtocolSinglePhase), nil, nil, nil)

	res, err := p.PublishSession(context.Background(), "s", files)
	if err != nil {
		t.Fatalf("PublishSession: %v", err)
	}
	if res.Protocol != models.ProtocolTwoPhase || len(store.updates) != 1 {
		t.Errorf("Protocol = %q, updates = %v; want two-phase with one update", res.Protocol, store.updates)
	}
}

func TestPublish_RepublishCreatesNewBundleAndWarns(t *testing.T) {
	dir := t.TempDir()
	files := []string{writeFile(t, dir, "s.jsonl", "{}\n")}

	store := newFakeRemoteStore()
	ledger := &memLedger{}
	var warn bytes.Buffer
	p := NewBundlePublisher(store, testPublisherConfig(models.ProtocolTwoPhase), ledger, nil, &warn)

	first, err := p.PublishSession(context.Background(), "s", files)
	if err != nil {
		t.Fatalf("first publish: %v", err)
	}
	second, err := p.PublishSession(context.Background(), "s", files)
	if err != nil {
		t.Fatalf("second publish: %v", err)
	}
	if first.BundleID == second.BundleID {
		t.Errorf("republish reused bundle id %s", first.BundleID)
	}
	if !strings.Contains(warn.String(), first.ViewerURL) {
		t.Errorf("expected duplicate warning naming %s, got %q", first.ViewerURL, warn.String())
	}
	if ledger.records[1].SessionID != "s" {
		t.Errorf("SessionID = %q, want s", ledger.records[1].SessionID)
	}
}
