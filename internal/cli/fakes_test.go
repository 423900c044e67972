package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/moredip/session-share/internal/observability"
	"github.com/moredip/session-share/pkg/models"
	"github.com/spf13/cobra"
)

type fakeLocator struct {
	paths map[string][]string
	err   error
}

func (f *fakeLocator) Locate(sessionID string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	if p, ok := f.paths[sessionID]; ok {
		return p, nil
	}
	return []string{}, nil
}

type fakePublisher struct {
	result   *models.PublishResult
	err      error
	sessions []string
}

func (f *fakePublisher) Publish(ctx context.Context, files []string, label string) (*models.PublishResult, error) {
	return f.PublishSession(ctx, "", files)
}

func (f *fakePublisher) PublishSession(_ context.Context, sessionID string, _ []string) (*models.PublishResult, error) {
	f.sessions = append(f.sessions, sessionID)
	return f.result, f.err
}

type fakeDiscoverer struct {
	bundles []models.DiscoveredBundle
	err     error
}

func (f *fakeDiscoverer) Discover(_ context.Context) ([]models.DiscoveredBundle, error) {
	return f.bundles, f.err
}

type metricsMock struct {
	calcFn func(since time.Time) (*observability.Metrics, error)
}

func (m *metricsMock) Calculate(since time.Time) (*observability.Metrics, error) {
	return m.calcFn(since)
}

type recordingEvents struct {
	types []string
}

func (r *recordingEvents) LogEvent(eventType string, _ map[string]any) error {
	r.types = append(r.types, eventType)
	return nil
}

// runCmd invokes cmd's RunE with captured output and the given stdin.
func runCmd(t *testing.T, cmd *cobra.Command, args []string, stdin string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	defer func() {
		cmd.SetOut(nil)
		cmd.SetErr(nil)
		cmd.SetIn(nil)
	}()
	err := cmd.RunE(cmd, args)
	return stdout.String(), stderr.String(), err
}
