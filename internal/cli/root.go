// Package cli contains the cobra command tree of the skillnav binary.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/caffinecoder/skillnav/internal/config"
	"github.com/caffinecoder/skillnav/internal/output"
	"github.com/caffinecoder/skillnav/pkg/logger"
)

var appVersion = "dev"

// SetVersion sets the version reported by `skillnav version` and the MCP
// server.
func SetVersion(v string) {
	if v == "" {
		return
	}
	appVersion = v
	rootCmd.Version = v
}

var flagNoColor bool

var rootCmd = &cobra.Command{
	Use:   "skillnav",
	Short: "Career readiness scoring from skills and GitHub projects",
	Long: `skillnav scores how ready a profile is for a career goal, from the
skills it lists and the GitHub repositories it owns, and suggests what to
work on next.

The HTTP API is served by the server built from ./cmd; this tool runs the
same analyzer locally, exposes it to MCP clients and load tests a server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		output.SetNoColor(flagNoColor || os.Getenv("NO_COLOR") != "")
	},
}

// Execute runs the command tree and exits non-zero on error.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
}

// loadConfig reads configuration and points logging at stderr so stdout
// stays free for results and the MCP stream.
func loadConfig(ctx context.Context) (*config.Config, logger.Logger, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if err := logger.Init(logger.WithWriter(os.Stderr), logger.WithFormat(cfg.LogFormat)); err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.SetLevelString("warn") //nolint:errcheck // known level
	}
	return cfg, logger.Named("cli"), nil
}
