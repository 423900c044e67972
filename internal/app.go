// Package internal provides the App struct that wires all components of
// session-share together and initializes the CLI layer.
package internal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/moredip/session-share/internal/cli"
	"github.com/moredip/session-share/internal/core"
	"github.com/moredip/session-share/internal/integration"
	"github.com/moredip/session-share/internal/observability"
	"github.com/moredip/session-share/internal/storage"
	"github.com/moredip/session-share/pkg/models"
)

// App holds all service dependencies of session-share.
type App struct {
	BasePath string
	Config   *models.GlobalConfig

	// Configuration
	ConfigMgr core.ConfigurationManager

	// Storage layer
	Ledger  storage.PublishStoreManager
	Samples storage.SampleStoreManager

	// Integration services
	Executor integration.CLIExecutor
	Gists    integration.GistClient
	Updates  integration.UpdateChecker

	// Core services
	Store        core.RemoteStore
	Locator      core.TranscriptLocator
	Publisher    core.BundlePublisher
	Discoverer   core.BundleDiscoverer
	Analyzer     core.TranscriptAnalyzer
	IndexBuilder core.IndexBuilder

	// Observability
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
}

// NewApp creates and wires all components. basePath is the directory holding
// config.yaml, the publish ledger and the event log (typically
// ~/.session-share).
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	cfg, err := app.ConfigMgr.LoadGlobalConfig()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if err := app.ConfigMgr.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	app.Config = cfg

	// --- Storage layer ---
	app.Ledger = storage.NewPublishStoreManager(basePath)
	app.Samples = storage.NewSampleStoreManager(cfg.SamplesDir)

	// --- Integration services ---
	app.Executor = integration.NewCLIExecutor()
	switch cfg.Remote.Backend {
	case models.BackendAPI:
		app.Gists = integration.NewAPIGistClient(cfg.Remote.APIURL, os.Getenv(cfg.Remote.TokenEnv), nil)
	default:
		app.Gists = integration.NewGHGistClient(app.Executor, cfg.Remote.GHCommand, nil)
	}
	app.Updates = integration.NewUpdateChecker(cfg.UpdateManifest, nil)

	// --- Observability ---
	// A missing event log disables metrics; it never blocks publishing.
	var events core.EventLogger
	app.EventLog, err = observability.NewJSONLEventLog(filepath.Join(basePath, "events.jsonl"))
	if err != nil {
		app.EventLog = nil
	}
	if app.EventLog != nil {
		events = observability.NewLogger(app.EventLog)
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
	}

	// --- Core services ---
	app.Store = &gistStoreAdapter{client: app.Gists}
	app.Locator = core.NewTranscriptLocator(cfg.ClaudeHome)
	app.Publisher = core.NewBundlePublisher(app.Store, core.PublisherConfig{
		Marker:        cfg.Marker,
		ViewerBaseURL: cfg.ViewerBaseURL,
		Protocol:      cfg.Protocol,
	}, app.Ledger, events, os.Stderr)
	app.Discoverer = core.NewBundleDiscoverer(app.Store, cfg.Marker)
	app.Analyzer = core.NewTranscriptAnalyzer()
	app.IndexBuilder = core.NewIndexBuilder(
		&sampleFetcher{store: app.Store, samples: app.Samples},
		app.Analyzer,
		cfg.ViewerBaseURL,
		events,
		os.Stderr,
	)

	// --- Wire CLI package-level variables ---
	cli.Locator = app.Locator
	cli.Publisher = app.Publisher
	cli.Discoverer = app.Discoverer
	cli.Analyzer = app.Analyzer
	cli.IndexBuilder = app.IndexBuilder
	cli.Samples = app.Samples
	cli.Ledger = app.Ledger
	cli.Updates = app.Updates
	cli.EventLog = app.EventLog
	cli.Events = events
	cli.MetricsCalc = app.MetricsCalc

	return app, nil
}

// Close releases resources held by the App.
// It is safe to call Close on an App whose EventLog is nil.
func (a *App) Close() error {
	if a.EventLog != nil {
		return a.EventLog.Close()
	}
	return nil
}

// ResolveBasePath returns $SESSION_SHARE_HOME, else ~/.session-share. When
// the home directory cannot be determined it falls back to the working
// directory.
func ResolveBasePath() string {
	if home := os.Getenv("SESSION_SHARE_HOME"); home != "" {
		return home
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".session-share")
	}
	cwd, _ := os.Getwd()
	return filepath.Join(cwd, ".session-share")
}

// --- Adapters ---

// gistStoreAdapter adapts integration.GistClient to core.RemoteStore.
type gistStoreAdapter struct {
	client integration.GistClient
}

func (a *gistStoreAdapter) Create(ctx context.Context, files []string, description string) (string, error) {
	return a.client.Create(ctx, files, description)
}

func (a *gistStoreAdapter) UpdateDescription(ctx context.Context, id, description string) error {
	return a.client.UpdateDescription(ctx, id, description)
}

func (a *gistStoreAdapter) List(ctx context.Context) ([]core.RemoteObject, error) {
	gists, err := a.client.List(ctx)
	if err != nil {
		return nil, err
	}
	objects := make([]core.RemoteObject, 0, len(gists))
	for i := range gists {
		objects = append(objects, remoteObjectFromGist(&gists[i]))
	}
	return objects, nil
}

func (a *gistStoreAdapter) Get(ctx context.Context, id string) (*core.RemoteObject, error) {
	g, err := a.client.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	obj := remoteObjectFromGist(g)
	return &obj, nil
}

func remoteObjectFromGist(g *integration.Gist) core.RemoteObject {
	obj := core.RemoteObject{
		ID:          g.ID,
		Description: g.DescriptionText(),
		Files:       make(map[string]string, len(g.Files)),
	}
	for key, f := range g.Files {
		name := f.Filename
		if name == "" {
			name = key
		}
		obj.Files[name] = f.Content
	}
	return obj
}

// sampleFetcher implements core.BundleFetcher by downloading a bundle into
// the sample store.
type sampleFetcher struct {
	store   core.RemoteStore
	samples storage.SampleStoreManager
}

func (f *sampleFetcher) Fetch(ctx context.Context, bundleID string) (map[string]string, error) {
	obj, err := f.store.Get(ctx, bundleID)
	if err != nil {
		return nil, err
	}
	return f.samples.SaveBundle(bundleID, obj.Files)
}
