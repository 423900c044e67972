package cli

import (
	"fmt"
	"os"

	"github.com/moredip/session-share/internal/hooks"
	"github.com/spf13/cobra"
)

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Handle Claude Code hook events",
	Long: `Process Claude Code hook events. Each subcommand reads the hook payload
as JSON from stdin.`,
}

var hookSessionStartCmd = &cobra.Command{
	Use:   "session-start",
	Short: "Export the session id for later session-share commands",
	Long: `Read the SessionStart payload from stdin and append
export SESSION_SHARE_SESSION_ID="<id>" to the file named by $CLAUDE_ENV_FILE.

Problems are reported on stderr; the hook never fails the session start.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := hooks.ParseStdin[hooks.SessionStartInput](cmd.InOrStdin())
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "session-share hook: %v\n", err)
			return nil
		}
		if input.SessionID == "" {
			fmt.Fprintln(cmd.ErrOrStderr(), "session-share hook: payload has no session_id")
			return nil
		}
		envFile := os.Getenv("CLAUDE_ENV_FILE")
		if envFile == "" {
			fmt.Fprintln(cmd.ErrOrStderr(), "session-share hook: CLAUDE_ENV_FILE is not set")
			return nil
		}
		if err := hooks.AppendExport(envFile, hooks.SessionIDEnv, input.SessionID); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "session-share hook: %v\n", err)
		}
		return nil
	},
}

func init() {
	hookCmd.AddCommand(hookSessionStartCmd)
	rootCmd.AddCommand(hookCmd)
}
