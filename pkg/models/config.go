package models

// RemoteBackend selects how the remote paste store is reached.
type RemoteBackend string

const (
	// BackendGH drives the gh CLI, reusing its stored credentials.
	BackendGH RemoteBackend = "gh"
	// BackendAPI talks to the REST API directly with a token.
	BackendAPI RemoteBackend = "api"
)

// PublishProtocol selects how a bundle is created and labelled.
type PublishProtocol string

const (
	// ProtocolTwoPhase creates the bundle unlabelled, then relabels it once
	// the bundle ID is known.
	ProtocolTwoPhase PublishProtocol = "two-phase"
	// ProtocolSinglePhase creates the bundle with its final label. Only
	// used for single-file bundles.
	ProtocolSinglePhase PublishProtocol = "single-phase"
)

// RemoteConfig holds settings for the remote paste store.
type RemoteConfig struct {
	Backend   RemoteBackend `yaml:"backend" mapstructure:"backend"`
	GHCommand string        `yaml:"gh_command" mapstructure:"gh_command"`
	APIURL    string        `yaml:"api_url" mapstructure:"api_url"`
	TokenEnv  string        `yaml:"token_env" mapstructure:"token_env"`
}

// GlobalConfig holds system-wide settings read from config.yaml via Viper.
type GlobalConfig struct {
	// Marker is the substring every published label carries. It is the only
	// key the read path uses to recover bundles.
	Marker         string          `yaml:"marker" mapstructure:"marker"`
	ViewerBaseURL  string          `yaml:"viewer_base_url" mapstructure:"viewer_base_url"`
	ClaudeHome     string          `yaml:"claude_home" mapstructure:"claude_home"`
	Remote         RemoteConfig    `yaml:"remote" mapstructure:"remote"`
	Protocol       PublishProtocol `yaml:"protocol" mapstructure:"protocol"`
	SamplesDir     string          `yaml:"samples_dir" mapstructure:"samples_dir"`
	UpdateManifest string          `yaml:"update_manifest" mapstructure:"update_manifest"`
}
