package cli

import (
	"fmt"

	"github.com/moredip/session-share/internal/core"
	"github.com/moredip/session-share/pkg/models"
	"github.com/spf13/cobra"
)

var publishCmd = &cobra.Command{
	Use:   "publish [session-id]",
	Short: "Publish a session transcript and print its viewer URL",
	Long: `Locate the transcript files of a session, upload them as one bundle and
label the bundle with its viewer URL so that it can be discovered later.

The session id defaults to $SESSION_SHARE_SESSION_ID. Publishing is not
idempotent: every run creates a new bundle.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Locator == nil || Publisher == nil {
			return fmt.Errorf("publisher not initialized")
		}
		sessionID, err := sessionIDFromArgs(args)
		if err != nil {
			return err
		}

		paths, err := Locator.Locate(sessionID)
		if err != nil {
			return fmt.Errorf("locating session %s: %w", sessionID, err)
		}
		if len(paths) == 0 {
			return fmt.Errorf("transcripts not found for session: %s: %w", sessionID, models.ErrNotFound)
		}

		result, err := Publisher.PublishSession(commandContext(cmd), sessionID, paths)
		if pe, ok := core.IsPartialPublish(err); ok {
			fmt.Fprintln(cmd.ErrOrStderr(), warnStyle.Render(fmt.Sprintf(
				"Warning: bundle %s was created at %s but is not labelled and will not be discovered.", pe.BundleID, pe.URL)))
			fmt.Fprintln(cmd.ErrOrStderr(), dimStyle.Render("Run 'session-share published --unlabeled' to list such bundles."))
			return err
		}
		if err != nil {
			return fmt.Errorf("publishing session %s: %w", sessionID, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Session published: %s\n", result.ViewerURL)
		fmt.Fprintln(cmd.OutOrStdout(), dimStyle.Render(fmt.Sprintf("  %d file(s), bundle %s (%s)", result.FileCount, result.BundleID, result.Protocol)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(publishCmd)
}
