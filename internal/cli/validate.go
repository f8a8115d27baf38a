package cli

import (
	"errors"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/fpang/menu-lens/internal/auth"
)

// HandleValidationError logs an API key failure with guidance and exits.
func HandleValidationError(err error) {
	log.Fatal().Err(err).Msg(ValidationGuidance(err))
	os.Exit(1)
}

// ValidationGuidance returns the operator-facing hint for an API key error.
func ValidationGuidance(err error) string {
	var verr *auth.ValidationError
	if !errors.As(err, &verr) {
		return "unexpected error during API key validation"
	}
	switch verr.Type {
	case auth.ErrTypeNoKey:
		return "No API key configured. Set GEMINI_API_KEY or add it to .env"
	case auth.ErrTypeInvalidKey:
		return "Invalid API key. Please check your API key and try again"
	case auth.ErrTypeNetworkError:
		return "Network error. Please check your internet connection"
	case auth.ErrTypeQuotaExceeded:
		return "API quota exceeded. Please try again later or check your usage limits"
	default:
		return "API key validation failed"
	}
}
