package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/moredip/session-share/internal/hooks"
	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "session-share",
	Short: "Publish and index Claude Code session transcripts",
	Long: `session-share publishes the transcript of an agent session as a labelled
remote bundle that the session viewer can render, and discovers and indexes
previously published bundles.

Bundles are stored as GitHub gists, through the gh CLI or the REST API.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// commandContext returns the command's context, or a background context
// when the command was invoked directly.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// sessionIDFromArgs returns the session id given on the command line, falling
// back to the id exported by the session-start hook.
func sessionIDFromArgs(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if id := os.Getenv(hooks.SessionIDEnv); id != "" {
		return id, nil
	}
	return "", fmt.Errorf("session ID not available: pass it as an argument or install the session-start hook so $%s is set", hooks.SessionIDEnv)
}
