package cli

import (
	"fmt"

	"github.com/moredip/session-share/pkg/models"
	"github.com/spf13/cobra"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "List published session bundles",
	Long: `List every remote bundle whose label carries the session-share marker, in
the order the store lists them.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Discoverer == nil {
			return fmt.Errorf("bundle discoverer not initialized")
		}

		bundles, err := Discoverer.Discover(commandContext(cmd))
		if err != nil {
			return err
		}
		if len(bundles) == 0 {
			return fmt.Errorf("no published session bundles found (is 'gh auth login' done for the right account?): %w", models.ErrNotFound)
		}

		out := cmd.OutOrStdout()
		for _, b := range bundles {
			fmt.Fprintf(out, "%s  %s\n", b.BundleID, b.Label)
		}
		fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("%d bundle(s)", len(bundles))))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(discoverCmd)
}
