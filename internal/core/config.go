// Package core contains the business logic for session-share: locating
// session transcripts, publishing them as labelled bundles, rediscovering
// published bundles and analysing them into an index.
package core

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/moredip/session-share/pkg/models"
	"github.com/spf13/viper"
)

// DefaultViewerBaseURL is the host serving rendered transcripts.
const DefaultViewerBaseURL = "https://custardseed.com"

// DefaultUpdateManifest is the published plugin manifest used by the update check.
const DefaultUpdateManifest = "https://raw.githubusercontent.com/moredip/session-share/main/.claude-plugin/plugin.json"

// ConfigurationManager loads and validates the global configuration.
type ConfigurationManager interface {
	LoadGlobalConfig() (*models.GlobalConfig, error)
	ValidateConfig(cfg *models.GlobalConfig) error
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading config.yaml from the base directory.
type viperConfigManager struct {
	basePath string
}

// NewConfigurationManager creates a ConfigurationManager that reads
// config.yaml from basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// defaultClaudeHome returns $CLAUDE_HOME or ~/.claude.
func defaultClaudeHome() string {
	if h := os.Getenv("CLAUDE_HOME"); h != "" {
		return h
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".claude"
	}
	return filepath.Join(home, ".claude")
}

func (cm *viperConfigManager) defaultGlobalConfig() *models.GlobalConfig {
	return &models.GlobalConfig{
		Marker:        models.LabelMarkerV1,
		ViewerBaseURL: DefaultViewerBaseURL,
		ClaudeHome:    defaultClaudeHome(),
		Remote: models.RemoteConfig{
			Backend:   models.BackendGH,
			GHCommand: "gh",
			APIURL:    "https://api.github.com",
			TokenEnv:  "GITHUB_TOKEN",
		},
		Protocol:       models.ProtocolTwoPhase,
		SamplesDir:     filepath.Join(cm.basePath, "gist-samples"),
		UpdateManifest: DefaultUpdateManifest,
	}
}

// LoadGlobalConfig reads config.yaml from the base path. Environment
// variables prefixed with SESSION_SHARE_ override file values. If the file
// does not exist, defaults are returned.
func (cm *viperConfigManager) LoadGlobalConfig() (*models.GlobalConfig, error) {
	cfg := cm.defaultGlobalConfig()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)
	v.SetEnvPrefix("SESSION_SHARE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("marker", cfg.Marker)
	v.SetDefault("viewer.base_url", cfg.ViewerBaseURL)
	v.SetDefault("claude.home", cfg.ClaudeHome)
	v.SetDefault("remote.backend", string(cfg.Remote.Backend))
	v.SetDefault("remote.gh_command", cfg.Remote.GHCommand)
	v.SetDefault("remote.api_url", cfg.Remote.APIURL)
	v.SetDefault("remote.token_env", cfg.Remote.TokenEnv)
	v.SetDefault("publish.protocol", string(cfg.Protocol))
	v.SetDefault("index.samples_dir", cfg.SamplesDir)
	v.SetDefault("update.manifest_url", cfg.UpdateManifest)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config.yaml: %w", err)
		}
	}

	cfg.Marker = v.GetString("marker")
	cfg.ViewerBaseURL = v.GetString("viewer.base_url")
	cfg.ClaudeHome = v.GetString("claude.home")
	cfg.Remote.Backend = models.RemoteBackend(v.GetString("remote.backend"))
	cfg.Remote.GHCommand = v.GetString("remote.gh_command")
	cfg.Remote.APIURL = v.GetString("remote.api_url")
	cfg.Remote.TokenEnv = v.GetString("remote.token_env")
	cfg.Protocol = models.PublishProtocol(v.GetString("publish.protocol"))
	cfg.SamplesDir = v.GetString("index.samples_dir")
	cfg.UpdateManifest = v.GetString("update.manifest_url")

	return cfg, nil
}

// ValidateConfig checks the configuration for invalid values and returns an
// error naming every offending key.
func (cm *viperConfigManager) ValidateConfig(cfg *models.GlobalConfig) error {
	return ValidateConfig(cfg)
}

// ValidateConfig is the package-level form of ConfigurationManager.ValidateConfig.
func ValidateConfig(cfg *models.GlobalConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	if strings.TrimSpace(cfg.Marker) == "" {
		errs = append(errs, "marker must not be empty")
	}

	if u, err := url.Parse(cfg.ViewerBaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Sprintf("viewer.base_url %q must be an http(s) URL", cfg.ViewerBaseURL))
	}

	switch cfg.Remote.Backend {
	case models.BackendGH:
		if cfg.Remote.GHCommand == "" {
			errs = append(errs, "remote.gh_command must not be empty")
		}
	case models.BackendAPI:
		if cfg.Remote.APIURL == "" {
			errs = append(errs, "remote.api_url must not be empty")
		}
	default:
		errs = append(errs, fmt.Sprintf("remote.backend %q is invalid, must be one of: gh, api", cfg.Remote.Backend))
	}

	switch cfg.Protocol {
	case models.ProtocolTwoPhase, models.ProtocolSinglePhase:
	default:
		errs = append(errs, fmt.Sprintf("publish.protocol %q is invalid, must be one of: two-phase, single-phase", cfg.Protocol))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
