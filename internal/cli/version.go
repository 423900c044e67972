package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCheck bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long: `Print version information.

With --check, the published plugin manifest is fetched and compared with this
build. Failing to determine either version prints a warning, never an error.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "session-share %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)

		if !versionCheck {
			return nil
		}
		if Updates == nil {
			fmt.Fprintln(cmd.ErrOrStderr(), warnStyle.Render("Warning: update check not configured"))
			return nil
		}
		if msg := Updates.CheckForUpdate(commandContext(cmd), appVersion); msg != "" {
			fmt.Fprintln(out, warnStyle.Render(msg))
		}
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionCheck, "check", false, "Check whether a newer plugin version is published")
	rootCmd.AddCommand(versionCmd)
}
