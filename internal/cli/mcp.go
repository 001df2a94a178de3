package cli

import (
	"github.com/spf13/cobra"

	service "github.com/caffinecoder/skillnav/internal/app"
	"github.com/caffinecoder/skillnav/internal/mcp"
	"github.com/caffinecoder/skillnav/pkg/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run an MCP stdio server exposing the analyzer",
	Long: `Start a Model Context Protocol server on stdin/stdout. It exposes one
tool:

  analyze_skills   Score a career goal from skills and repositories

Register it with an MCP client, for example:
  {"mcpServers":{"skillnav":{"command":"skillnav","args":["mcp"]}}}`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, log, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	analyzer, closeFn, err := service.NewAnalyzer(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeFn(); err != nil {
			log.Warn(ctx, "close analyzer", logger.Error(err))
		}
	}()

	srv := mcp.NewServer(analyzer, mcp.WithVersion(appVersion), mcp.WithLogger(log.Named("mcp")))
	return srv.Run(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
}
