package cli

import (
	"fmt"
	"time"

	"github.com/moredip/session-share/internal/core"
	"github.com/moredip/session-share/pkg/models"
	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Download every published bundle and write an index",
	Long: `Discover published bundles, download each into the samples directory,
analyze its transcripts and write index.json and index.md beside them.

A bundle that fails to download or analyze is reported and skipped; the
index is still written for the rest.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Discoverer == nil || IndexBuilder == nil || Samples == nil {
			return fmt.Errorf("index builder not initialized")
		}
		out := cmd.OutOrStdout()
		ctx := commandContext(cmd)

		fmt.Fprintln(out, "Discovering published session bundles...")
		bundles, err := Discoverer.Discover(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Found %d bundle(s)\n", len(bundles))
		if len(bundles) == 0 {
			return fmt.Errorf("no matching bundles found, make sure 'gh auth login' has been run: %w", models.ErrNotFound)
		}

		index := IndexBuilder.Build(ctx, bundles)

		data, err := core.MarshalIndex(index.Entries)
		if err != nil {
			return fmt.Errorf("encoding index: %w", err)
		}
		md := core.RenderIndexTable(index.Entries, time.Now())
		jsonPath, mdPath, err := Samples.WriteIndex(data, md)
		if err != nil {
			return fmt.Errorf("writing index: %w", err)
		}

		if Events != nil {
			_ = Events.LogEvent(core.EventIndexWritten, map[string]any{
				"entries":  len(index.Entries),
				"failures": len(index.Failures),
				"path":     jsonPath,
			})
		}

		fmt.Fprintf(out, "\nWrote %s\n", jsonPath)
		fmt.Fprintf(out, "Wrote %s\n", mdPath)
		summary := fmt.Sprintf("Indexed %d bundle(s)", len(index.Entries))
		if n := len(index.Failures); n > 0 {
			fmt.Fprintln(out, warnStyle.Render(fmt.Sprintf("%s, %d skipped", summary, n)))
		} else {
			fmt.Fprintln(out, successStyle.Render(summary))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
