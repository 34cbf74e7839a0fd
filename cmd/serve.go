package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Maxservais/chat/internal/config"
	mcpserver "github.com/Maxservais/chat/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing conference schedule tools for AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		source, gen, err := createScheduleSource(cfg)
		if err != nil {
			return err
		}

		// Set version from the cmd package variable.
		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "confchat MCP server started on stdio (schedule=%s)\n", cfg.Schedule.SourceURL)

		srv := mcpserver.NewServer(source, gen)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
