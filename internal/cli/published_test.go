package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/moredip/session-share/internal/storage"
	"github.com/moredip/session-share/pkg/models"
)

func TestPublishedCmd(t *testing.T) {
	origLedger, origUnlabeled := Ledger, publishedUnlabeled
	defer func() { Ledger, publishedUnlabeled = origLedger, origUnlabeled }()

	Ledger = storage.NewPublishStoreManager(t.TempDir())
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for _, rec := range []models.PublishRecord{
		{BundleID: "good", ViewerURL: "https://custardseed.com/g/good", Labeled: true, SessionID: "s1", PublishedAt: base},
		{BundleID: "orphan", ViewerURL: "https://custardseed.com/g/orphan", Labeled: false, PublishedAt: base.Add(time.Hour)},
	} {
		if err := Ledger.Record(rec); err != nil {
			t.Fatal(err)
		}
	}

	publishedUnlabeled = false
	out, _, err := runCmd(t, publishedCmd, nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "good") || !strings.Contains(out, "orphan") || !strings.Contains(out, "[unlabeled]") {
		t.Errorf("output = %q", out)
	}

	publishedUnlabeled = true
	out, _, err = runCmd(t, publishedCmd, nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(out, "custardseed.com/g/good") || !strings.Contains(out, "orphan") {
		t.Errorf("--unlabeled output = %q", out)
	}
}

func TestPublishedCmd_Empty(t *testing.T) {
	orig := Ledger
	defer func() { Ledger = orig }()
	Ledger = storage.NewPublishStoreManager(t.TempDir())

	out, _, err := runCmd(t, publishedCmd, nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "No published bundles") {
		t.Errorf("output = %q", out)
	}
}
