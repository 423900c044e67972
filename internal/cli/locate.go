package cli

import (
	"fmt"

	"github.com/moredip/session-share/pkg/models"
	"github.com/spf13/cobra"
)

var locateCmd = &cobra.Command{
	Use:   "locate [session-id]",
	Short: "Print the transcript files recorded for a session",
	Long: `Print the main transcript of a session followed by its attachments
(sub-agent transcripts and other files stored beside it), one path per line.

The session id defaults to $SESSION_SHARE_SESSION_ID.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Locator == nil {
			return fmt.Errorf("transcript locator not initialized")
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

		for _, p := range paths {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(locateCmd)
}
