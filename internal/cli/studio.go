package cli

import (
	"fmt"

	"google.golang.org/genai"

	"github.com/fpang/menu-lens/internal/chat"
	"github.com/fpang/menu-lens/internal/config"
	"github.com/fpang/menu-lens/internal/studio"
	"github.com/fpang/menu-lens/internal/style"
)

// NewStudio wires Gemini adapters into a Studio using cfg. styleName
// overrides cfg.DefaultStyle when non-empty.
func NewStudio(client *genai.Client, cfg config.Config, styleName string) (*studio.Studio, error) {
	studioCfg, err := StudioConfig(cfg, styleName)
	if err != nil {
		return nil, err
	}
	extractor := chat.NewMenuExtractor(client.Models, cfg.TextModel)
	images := chat.NewImageClient(client.Models, cfg.ImageModel)
	return studio.New(extractor, images, studioCfg), nil
}

// StudioConfig maps runtime configuration onto studio settings.
func StudioConfig(cfg config.Config, styleName string) (studio.Config, error) {
	if styleName == "" {
		styleName = cfg.DefaultStyle
	}
	ps := style.Default
	if styleName != "" {
		parsed, err := style.Parse(styleName)
		if err != nil {
			return studio.Config{}, fmt.Errorf("invalid style %q (choose one of %v): %w", styleName, style.Names(), err)
		}
		ps = parsed
	}
	return studio.Config{
		DefaultStyle:          ps,
		Variations:            cfg.Variations,
		MaxParallelVariations: cfg.MaxParallel,
		GenerationTimeout:     cfg.GenerationTimeout,
	}, nil
}
