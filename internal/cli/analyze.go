package cli

import (
	"encoding/json"
	"fmt"

	"github.com/moredip/session-share/pkg/models"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>...",
	Short: "Summarise local transcript files as JSON",
	Long: `Print, as a JSON array, the analysis of each transcript file: record and
content block counts, tools used, and whether thinking or images appear.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Analyzer == nil {
			return fmt.Errorf("transcript analyzer not initialized")
		}

		results := make([]models.TranscriptAnalysis, 0, len(args))
		for _, path := range args {
			a, err := Analyzer.Analyze(path)
			if err != nil {
				return err
			}
			results = append(results, models.TranscriptAnalysis{Filename: path, SessionAnalysis: *a})
		}

		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("formatting analysis as JSON: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}
