package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	ssmcp "github.com/moredip/session-share/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  "Commands for running the session-share MCP (Model Context Protocol) server.",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the session-share MCP server on stdio",
	Long: `Start the session-share MCP server on stdio transport.

The server exposes these tools: locate_session, publish_session,
discover_bundles, analyze_transcript, get_metrics.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Locator == nil || Publisher == nil || Discoverer == nil || Analyzer == nil {
			return fmt.Errorf("services not initialized")
		}

		srv := ssmcp.NewServer(ssmcp.Services{
			Locator:     Locator,
			Publisher:   Publisher,
			Discoverer:  Discoverer,
			Analyzer:    Analyzer,
			MetricsCalc: MetricsCalc,
		}, appVersion)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("running MCP server: %w", err)
		}

		return nil
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}
