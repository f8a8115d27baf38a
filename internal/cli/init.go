package cli

import (
	"context"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/fpang/menu-lens/internal/auth"
	"github.com/fpang/menu-lens/internal/chat"
)

// InitGeminiClient resolves the API key, creates a client and validates the
// key. Exits fatally on failure.
func InitGeminiClient(ctx context.Context, configuredKey string) *genai.Client {
	apiKey, err := auth.GetAPIKey(configuredKey)
	if err != nil {
		HandleValidationError(err)
	}

	client, err := chat.NewGeminiClient(ctx, apiKey)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create Gemini client")
	}
	log.Info().Msg("connection successful - Gemini client initialized")

	if err := auth.ValidateAPIKey(ctx, client.Models); err != nil {
		HandleValidationError(err)
	}
	log.Info().Msg("API key validation complete - ready for operations")
	return client
}
