package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/fpang/menu-lens/internal/assets"
	"github.com/fpang/menu-lens/internal/imagedata"
	"github.com/fpang/menu-lens/internal/metrics"
)

// Sentinel errors for responses that carry no image. Their text is matched
// by the failure classifier, so keep the wording stable.
var (
	ErrNoImageGenerated = errors.New("no image generated")
	ErrEditFailed       = errors.New("failed to edit image")
)

// ImageClient generates and edits dish photos with a Gemini image model.
type ImageClient struct {
	models ContentGenerator
	model  string
}

// NewImageClient returns a client for model (DefaultImageModel if empty).
func NewImageClient(models ContentGenerator, model string) *ImageClient {
	return &ImageClient{models: models, model: orDefault(model, DefaultImageModel)}
}

// Model reports the image model in use.
func (c *ImageClient) Model() string { return c.model }

// Generate produces a new photo from prompt.
func (c *ImageClient) Generate(ctx context.Context, prompt string) (imagedata.Image, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{genai.NewPartFromText(prompt)}, genai.RoleUser),
	}
	resp, err := c.call(ctx, "generate", contents, &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	})
	if err != nil {
		return imagedata.Image{}, err
	}
	return firstImage(resp, ErrNoImageGenerated)
}

// Edit applies instruction to img and returns the edited photo.
func (c *ImageClient) Edit(ctx context.Context, img imagedata.Image, instruction string) (imagedata.Image, error) {
	if img.IsZero() {
		return imagedata.Image{}, imagedata.ErrEmptyImage
	}
	parts := []*genai.Part{
		{InlineData: &genai.Blob{MIMEType: imagedata.PNGMIMEType, Data: img.Data}},
		genai.NewPartFromText(instruction),
	}
	resp, err := c.call(ctx, "edit", []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		&genai.GenerateContentConfig{
			ResponseModalities: []string{"TEXT", "IMAGE"},
			SystemInstruction: &genai.Content{
				Parts: []*genai.Part{{Text: assets.EditSystemPrompt}},
			},
		})
	if err != nil {
		return imagedata.Image{}, err
	}
	return firstImage(resp, ErrEditFailed)
}

func (c *ImageClient) call(ctx context.Context, op string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	log.Debug().Str("model", c.model).Str("operation", op).Msg("Sending request to Gemini image model")

	start := time.Now()
	resp, err := c.models.GenerateContent(ctx, c.model, contents, config)
	elapsed := time.Since(start)

	m := metrics.New(metrics.Namespace).
		Dimension("Operation", op).
		Metric("GeminiApiLatencyMs", float64(elapsed.Milliseconds()), metrics.UnitMilliseconds).
		Count("GeminiApiCalls")
	if err != nil {
		m.Count("GeminiApiErrors")
	}
	m.Flush()

	if err != nil {
		log.Error().Err(err).Str("operation", op).Dur("duration", elapsed).Msg("Gemini image call failed")
		return nil, err
	}
	log.Info().Str("operation", op).Dur("duration", elapsed).Msg("Gemini image call returned")
	return resp, nil
}

// firstImage returns the first inline-data part of the first candidate,
// normalised to PNG. Missing output yields base wrapped with any finish or
// block reason the API reported.
func firstImage(resp *genai.GenerateContentResponse, base error) (imagedata.Image, error) {
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			return imagedata.New(part.InlineData.Data, imagedata.PNGMIMEType)
		}
	}
	if reason := missingImageReason(resp); reason != "" {
		return imagedata.Image{}, fmt.Errorf("%w: %s", base, reason)
	}
	return imagedata.Image{}, base
}

func missingImageReason(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var reasons []string
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" {
		reasons = append(reasons, "prompt blocked ("+string(fb.BlockReason)+")")
	}
	if len(resp.Candidates) > 0 {
		c := resp.Candidates[0]
		if c.FinishReason != "" && c.FinishReason != genai.FinishReasonStop {
			reasons = append(reasons, "finish reason "+string(c.FinishReason))
		}
	}
	return strings.Join(reasons, ", ")
}
