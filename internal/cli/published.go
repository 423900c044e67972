package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var publishedUnlabeled bool

var publishedCmd = &cobra.Command{
	Use:   "published",
	Short: "List bundles recorded in the local publish ledger",
	Long: `List every bundle this machine has created, oldest first.

With --unlabeled, only bundles whose relabel step failed are listed. Those
bundles exist remotely but are invisible to discovery.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Ledger == nil {
			return fmt.Errorf("publish ledger not initialized")
		}

		records, err := Ledger.List(publishedUnlabeled)
		if err != nil {
			return fmt.Errorf("reading publish ledger: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(records) == 0 {
			fmt.Fprintln(out, "No published bundles recorded.")
			return nil
		}

		fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("Published bundles (%d)", len(records))))
		for _, r := range records {
			state := ""
			if !r.Labeled {
				state = " " + warnStyle.Render("[unlabeled]")
			}
			fmt.Fprintf(out, "%s  %s  %s%s\n", r.PublishedAt.Local().Format("2006-01-02 15:04"), r.BundleID, r.ViewerURL, state)
			if r.SessionID != "" {
				fmt.Fprintln(out, dimStyle.Render("  session "+r.SessionID))
			}
		}
		return nil
	},
}

func init() {
	publishedCmd.Flags().BoolVar(&publishedUnlabeled, "unlabeled", false, "Only list bundles whose relabel step failed")
	rootCmd.AddCommand(publishedCmd)
}
