// Package auth resolves and validates the Gemini API key.
package auth

import (
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/fpang/menu-lens/internal/config"
)

// GetAPIKey returns configured if set, otherwise GEMINI_API_KEY from the
// environment. A missing key yields a ValidationError of type ErrTypeNoKey.
func GetAPIKey(configured string) (string, error) {
	if key := strings.TrimSpace(configured); key != "" {
		log.Debug().Msg("Using API key from configuration")
		return key, nil
	}
	if key := strings.TrimSpace(os.Getenv(config.EnvAPIKey)); key != "" {
		log.Debug().Msg("Using API key from environment variable")
		return key, nil
	}
	return "", &ValidationError{
		Type:    ErrTypeNoKey,
		Message: "API key not found. Set " + config.EnvAPIKey + " or add it to .env",
	}
}
