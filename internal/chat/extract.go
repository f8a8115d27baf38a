package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/fpang/menu-lens/internal/assets"
	"github.com/fpang/menu-lens/internal/intake"
	"github.com/fpang/menu-lens/internal/jsonutil"
	"github.com/fpang/menu-lens/internal/metrics"
)

// menuResponse mirrors the response schema sent with extraction requests.
type menuResponse struct {
	Dishes []intake.Entry `json:"dishes"`
}

var menuSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"dishes": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"name":        {Type: genai.TypeString},
					"description": {Type: genai.TypeString},
				},
			},
		},
	},
}

// MenuExtractor turns pasted menu text into dish entries with a text model.
type MenuExtractor struct {
	models ContentGenerator
	model  string
}

// NewMenuExtractor returns an extractor using model (DefaultTextModel if empty).
func NewMenuExtractor(models ContentGenerator, model string) *MenuExtractor {
	return &MenuExtractor{models: models, model: orDefault(model, DefaultTextModel)}
}

// Extract sends the menu to the model. Transport and API failures are
// returned; an unparseable response yields an empty list.
func (e *MenuExtractor) Extract(ctx context.Context, menuText string) ([]intake.Entry, error) {
	prompt, err := assets.RenderMenuExtractionPrompt(assets.MenuExtractionData{MenuText: menuText})
	if err != nil {
		return nil, fmt.Errorf("failed to render extraction prompt: %w", err)
	}

	log.Debug().
		Str("model", e.model).
		Int("menu_length", len(menuText)).
		Msg("Starting Gemini API call for menu extraction")

	start := time.Now()
	resp, err := e.models.GenerateContent(ctx, e.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   menuSchema,
	})
	elapsed := time.Since(start)

	m := metrics.New(metrics.Namespace).
		Dimension("Operation", "extract").
		Metric("GeminiApiLatencyMs", float64(elapsed.Milliseconds()), metrics.UnitMilliseconds).
		Count("GeminiApiCalls")
	if err != nil {
		m.Count("GeminiApiErrors")
	}
	m.Flush()

	if err != nil {
		log.Error().Err(err).Dur("duration", elapsed).Msg("Menu extraction call failed")
		return nil, fmt.Errorf("failed to extract menu: %w", err)
	}

	text := ""
	if resp != nil {
		text = resp.Text()
	}
	parsed, err := jsonutil.ParseJSON[menuResponse](text)
	if err != nil {
		log.Warn().Err(err).Int("response_length", len(text)).Msg("Failed to parse menu, treating as empty")
		return []intake.Entry{}, nil
	}

	log.Info().
		Int("dishes", len(parsed.Dishes)).
		Dur("duration", elapsed).
		Msg("Menu extraction complete")
	return parsed.Dishes, nil
}
