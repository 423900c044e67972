package core

import (
	"strings"
	"testing"

	"github.com/moredip/session-share/pkg/models"
)

func TestLoadGlobalConfig_Defaults_WhenNoFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CLAUDE_HOME", "/tmp/claude-home")
	cm := NewConfigurationManager(dir)

	cfg, err := cm.LoadGlobalConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Marker != models.LabelMarkerV1 {
		t.Errorf("Marker = %q, want %q", cfg.Marker, models.LabelMarkerV1)
	}
	if cfg.ViewerBaseURL != DefaultViewerBaseURL {
		t.Errorf("ViewerBaseURL = %q, want %q", cfg.ViewerBaseURL, DefaultViewerBaseURL)
	}
	if cfg.ClaudeHome != "/tmp/claude-home" {
		t.Errorf("ClaudeHome = %q, want /tmp/claude-home", cfg.ClaudeHome)
	}
	if cfg.Remote.Backend != models.BackendGH {
		t.Errorf("Remote.Backend = %q, want gh", cfg.Remote.Backend)
	}
	if cfg.Protocol != models.ProtocolTwoPhase {
		t.Errorf("Protocol = %q, want two-phase", cfg.Protocol)
	}
	if !strings.HasPrefix(cfg.SamplesDir, dir) {
		t.Errorf("SamplesDir = %q, want it under %q", cfg.SamplesDir, dir)
	}
	if err := cm.ValidateConfig(cfg); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadGlobalConfig_ReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.yaml", `
marker: "Shared transcript v2:"
viewer:
  base_url: https://viewer.example.com/
claude:
  home: /data/claude
remote:
  backend: api
  api_url: https://ghe.example.com/api/v3
  token_env: GHE_TOKEN
publish:
  protocol: single-phase
index:
  samples_dir: /data/samples
`)

	cfg, err := NewConfigurationManager(dir).LoadGlobalConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Marker != "Shared transcript v2:" {
		t.Errorf("Marker = %q", cfg.Marker)
	}
	if cfg.ViewerBaseURL != "https://viewer.example.com/" {
		t.Errorf("ViewerBaseURL = %q", cfg.ViewerBaseURL)
	}
	if cfg.ClaudeHome != "/data/claude" {
		t.Errorf("ClaudeHome = %q", cfg.ClaudeHome)
	}
	if cfg.Remote.Backend != models.BackendAPI || cfg.Remote.APIURL != "https://ghe.example.com/api/v3" || cfg.Remote.TokenEnv != "GHE_TOKEN" {
		t.Errorf("Remote = %+v", cfg.Remote)
	}
	if cfg.Remote.GHCommand != "gh" {
		t.Errorf("Remote.GHCommand = %q, want default gh", cfg.Remote.GHCommand)
	}
	if cfg.Protocol != models.ProtocolSinglePhase {
		t.Errorf("Protocol = %q", cfg.Protocol)
	}
	if cfg.SamplesDir != "/data/samples" {
		t.Errorf("SamplesDir = %q", cfg.SamplesDir)
	}
}

func TestLoadGlobalConfig_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SESSION_SHARE_VIEWER_BASE_URL", "https://env.example.com")

	cfg, err := NewConfigurationManager(dir).LoadGlobalConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ViewerBaseURL != "https://env.example.com" {
		t.Errorf("ViewerBaseURL = %q, want env override", cfg.ViewerBaseURL)
	}
}

func TestLoadGlobalConfig_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.yaml", "marker: [unterminated\n")

	if _, err := NewConfigurationManager(dir).LoadGlobalConfig(); err == nil {
		t.Fatal("expected error for malformed config.yaml")
	}
}

func TestValidateConfig(t *testing.T) {
	valid := func() *models.GlobalConfig {
		return &models.GlobalConfig{
			Marker:        models.LabelMarkerV1,
			ViewerBaseURL: "https://custardseed.com",
			Remote:        models.RemoteConfig{Backend: models.BackendGH, GHCommand: "gh"},
			Protocol:      models.ProtocolTwoPhase,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*models.GlobalConfig)
		wantKey string
	}{
		{"valid", func(*models.GlobalConfig) {}, ""},
		{"empty marker", func(c *models.GlobalConfig) { c.Marker = "  " }, "marker"},
		{"relative viewer", func(c *models.GlobalConfig) { c.ViewerBaseURL = "custardseed.com" }, "viewer.base_url"},
		{"ftp viewer", func(c *models.GlobalConfig) { c.ViewerBaseURL = "ftp://x.example.com" }, "viewer.base_url"},
		{"unknown backend", func(c *models.GlobalConfig) { c.Remote.Backend = "s3" }, "remote.backend"},
		{"api without url", func(c *models.GlobalConfig) { c.Remote = models.RemoteConfig{Backend: models.BackendAPI} }, "remote.api_url"},
		{"unknown protocol", func(c *models.GlobalConfig) { c.Protocol = "three-phase" }, "publish.protocol"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := ValidateConfig(cfg)
			if tt.wantKey == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error naming %s", tt.wantKey)
			}
			if !strings.Contains(err.Error(), tt.wantKey) {
				t.Errorf("error %q does not name %s", err, tt.wantKey)
			}
		})
	}

	if err := ValidateConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
}
