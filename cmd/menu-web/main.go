package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/menu-lens/internal/cli"
	"github.com/fpang/menu-lens/internal/config"
	"github.com/fpang/menu-lens/internal/httpapi"
	"github.com/fpang/menu-lens/internal/logging"
)

// CLI flags
var (
	portFlag       int
	styleFlag      string
	textModelFlag  string
	imageModelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "menu-web",
	Short: "Local API server for menu photo generation",
	Long: `Menu Web starts a local HTTP server that turns pasted menu text into a list
of dishes and generates a food photo for each one. Images can be refined with
text instructions, either one edit at a time or as parallel variations.

Examples:
  menu-web
  menu-web --port 9090
  menu-web --style "Bright/Modern"
  menu-web --image-model gemini-3-pro-image-preview`,
	Run: runMain,
}

func init() {
	rootCmd.Flags().IntVar(&portFlag, "port", 8080, "Port to listen on")
	rootCmd.Flags().StringVarP(&styleFlag, "style", "s", "", "Initial photo style (rustic-dark, bright-modern, social-media)")
	rootCmd.Flags().StringVar(&textModelFlag, "text-model", "", "Gemini model for menu analysis")
	rootCmd.Flags().StringVar(&imageModelFlag, "image-model", "", "Gemini model for image generation and edits")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runMain(cmd *cobra.Command, args []string) {
	initStart := time.Now()
	logging.Init()

	cfg := config.Load()
	if textModelFlag != "" {
		cfg.TextModel = textModelFlag
	}
	if imageModelFlag != "" {
		cfg.ImageModel = imageModelFlag
	}

	ctx := context.Background()
	client := cli.InitGeminiClient(ctx, cfg.APIKey)

	st, err := cli.NewStudio(client, cfg, styleFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", portFlag),
		Handler:      httpapi.NewHandler(st),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logging.NewStartupLogger("menu-web").
		Config("commit", commitHash).
		Config("buildTime", buildTime).
		Config("port", strconv.Itoa(portFlag)).
		Config("textModel", cfg.TextModel).
		Config("imageModel", cfg.ImageModel).
		Config("style", string(st.Style().Style)).
		Config("variations", strconv.Itoa(cfg.Variations)).
		InitDuration(time.Since(initStart)).
		Log()

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info().Msg("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Warn().Err(err).Msg("Shutdown did not complete cleanly")
		}
	}()

	log.Info().Int("port", portFlag).Msg("Starting web server")
	fmt.Printf("\n  Menu Lens API: http://localhost:%d/api/health\n\n", portFlag)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
