package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/menu-lens/internal/cli"
	"github.com/fpang/menu-lens/internal/config"
	"github.com/fpang/menu-lens/internal/logging"
	"github.com/fpang/menu-lens/internal/mcpserver"
	"github.com/fpang/menu-lens/internal/metrics"
)

var styleFlag string

var rootCmd = &cobra.Command{
	Use:   "menu-mcp",
	Short: "MCP server for menu photo generation",
	Long: `Menu MCP serves the Model Context Protocol over stdin/stdout so an assistant
can analyze a menu, pick a photo style, and generate or edit dish photos.

Logs go to stderr; stdout is reserved for the protocol.

Examples:
  menu-mcp
  menu-mcp --style social-media`,
	Run: runMain,
}

func init() {
	rootCmd.Flags().StringVarP(&styleFlag, "style", "s", "", "Initial photo style (rustic-dark, bright-modern, social-media)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runMain(cmd *cobra.Command, args []string) {
	initStart := time.Now()
	logging.InitJSON()
	metrics.Disable()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	client := cli.InitGeminiClient(ctx, cfg.APIKey)
	st, err := cli.NewStudio(client, cfg, styleFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	logging.NewStartupLogger("menu-mcp").
		Config("commit", commitHash).
		Config("buildTime", buildTime).
		Config("textModel", cfg.TextModel).
		Config("imageModel", cfg.ImageModel).
		Config("style", string(st.Style().Style)).
		InitDuration(time.Since(initStart)).
		Log()

	server := mcpserver.New(st, commitHash)
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("MCP server stopped")
	}
	st.Wait()
}
