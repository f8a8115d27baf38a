package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/menu-lens/internal/cli"
	"github.com/fpang/menu-lens/internal/config"
	"github.com/fpang/menu-lens/internal/dish"
	"github.com/fpang/menu-lens/internal/export"
	"github.com/fpang/menu-lens/internal/fanout"
	"github.com/fpang/menu-lens/internal/logging"
	"github.com/fpang/menu-lens/internal/metrics"
	"github.com/fpang/menu-lens/internal/studio"
)

// maxParallelDishEdits caps how many dishes are edited at once; each edit
// may itself fan out into several variation calls.
const maxParallelDishEdits = 2

// CLI flags
var (
	fileFlag       string
	styleFlag      string
	customFlag     string
	outFlag        string
	editFlag       string
	variationsFlag int
	archiveFlag    string
	zstdFlag       bool
	textModelFlag  string
	imageModelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "menu-cli",
	Short: "Generate food photos for every dish on a menu",
	Long: `Menu CLI reads a restaurant menu, extracts the dishes with Gemini and
generates a food photo for each one. Photos are written to the output
directory as <dish-name>.png.

With --edit, every generated photo is refined with the same instruction.
--variations runs several attempts per dish in parallel and keeps the first
one that succeeds.

Examples:
  menu-cli --file menu.txt
  cat menu.txt | menu-cli -f -
  menu-cli -f menu.txt --style social-media --custom "marble table, natural light"
  menu-cli -f menu.txt --edit "add a sprig of basil" --variations 3
  menu-cli -f menu.txt --archive photos.zip --zstd
  menu-cli  # Interactive mode - opens a file picker`,
	Run: runMain,
}

func init() {
	rootCmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Menu text file (- for stdin)")
	rootCmd.Flags().StringVarP(&styleFlag, "style", "s", "", "Photo style (rustic-dark, bright-modern, social-media)")
	rootCmd.Flags().StringVarP(&customFlag, "custom", "c", "", "Extra style details appended to every prompt")
	rootCmd.Flags().StringVarP(&outFlag, "out", "o", "menu-photos", "Output directory for generated images")
	rootCmd.Flags().StringVarP(&editFlag, "edit", "e", "", "Edit instruction applied to every generated photo")
	rootCmd.Flags().IntVarP(&variationsFlag, "variations", "n", 0, "Parallel edit attempts per dish (0 = configured default, 1 = single edit)")
	rootCmd.Flags().StringVar(&archiveFlag, "archive", "", "Also write all photos to this ZIP file")
	rootCmd.Flags().BoolVar(&zstdFlag, "zstd", false, "Compress archive entries with Zstandard")
	rootCmd.Flags().StringVar(&textModelFlag, "text-model", "", "Gemini model for menu analysis")
	rootCmd.Flags().StringVar(&imageModelFlag, "image-model", "", "Gemini model for image generation and edits")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runMain is the main execution logic called by Cobra.
func runMain(cmd *cobra.Command, args []string) {
	logging.Init()
	metrics.Disable()

	cfg := config.Load()
	if textModelFlag != "" {
		cfg.TextModel = textModelFlag
	}
	if imageModelFlag != "" {
		cfg.ImageModel = imageModelFlag
	}

	path := fileFlag
	if path == "" {
		picked, err := cli.PickMenuFile()
		if errors.Is(err, cli.ErrPickerCanceled) {
			fmt.Println("No menu selected.")
			return
		}
		if err != nil {
			log.Fatal().Err(err).Msg("Use --file to pass the menu instead")
		}
		path = picked
	}
	menuText, err := cli.ReadMenu(path, os.Stdin)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Failed to load menu")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := cli.InitGeminiClient(ctx, cfg.APIKey)
	st, err := cli.NewStudio(client, cfg, styleFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if customFlag != "" {
		if err := st.SetStyle(st.Style().Style, customFlag); err != nil {
			log.Fatal().Err(err).Msg("Failed to set custom style")
		}
	}

	start := time.Now()
	fmt.Println("Analyzing menu...")
	dishes, err := st.AnalyzeMenu(ctx, menuText)
	if err != nil {
		log.Fatal().Err(err).Msg("Menu analysis failed")
	}
	if len(dishes) == 0 {
		fmt.Println("No dishes found on the menu.")
		return
	}

	choice := st.Style()
	fmt.Printf("Found %d dishes. Generating photos (%s)...\n", len(dishes), choice.Style)
	dishes = st.GenerateAll(ctx)

	if editFlag != "" {
		fmt.Printf("Applying edit: %q\n", editFlag)
		editAll(ctx, st, dishes)
		dishes = st.Dishes()
	}

	files, err := export.WriteFiles(outFlag, dishes)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to write images")
	}
	if archiveFlag != "" {
		writeArchive(archiveFlag, dishes)
	}

	fmt.Println()
	cli.WriteSummary(os.Stdout, dishes, files)
	fmt.Printf("\n%d of %d photos written to %s in %s\n",
		len(files), len(dishes), outFlag, cli.FormatDurationShort(time.Since(start)))
}

// editAll refines every dish that has an image with editFlag. Failures are
// logged per dish; the previous image is kept.
func editAll(ctx context.Context, st *studio.Studio, dishes []dish.Dish) {
	var targets []dish.Dish
	for _, d := range dishes {
		if d.HasImage() {
			targets = append(targets, d)
		}
	}
	outcomes := fanout.Settle(ctx, len(targets), maxParallelDishEdits, func(ctx context.Context, i int) (struct{}, error) {
		return struct{}{}, editDish(ctx, st, targets[i])
	})
	for _, o := range outcomes {
		if o.Err != nil {
			log.Warn().Err(o.Err).Str("dish", targets[o.Index].Name).Msg("Edit failed, keeping generated photo")
		}
	}
}

func editDish(ctx context.Context, st *studio.Studio, d dish.Dish) error {
	id, session, err := st.OpenEdit(d.ID)
	if err != nil {
		return err
	}
	defer st.CloseEdit(id)

	if variationsFlag == 1 {
		_, err := session.ApplyEdit(ctx, editFlag)
		return err
	}
	candidates, err := session.GenerateVariations(ctx, editFlag, variationsFlag)
	if err != nil {
		return err
	}
	log.Debug().Str("dish", d.Name).Int("candidates", len(candidates)).Msg("Selecting first variation")
	_, err = session.SelectVariation(0)
	return err
}

func writeArchive(path string, dishes []dish.Dish) {
	f, err := os.Create(path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Failed to create archive")
	}
	n, err := export.WriteArchive(f, dishes, export.Options{Zstd: zstdFlag})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Failed to write archive")
	}
	fmt.Printf("Archive: %s (%d files)\n", path, n)
}
