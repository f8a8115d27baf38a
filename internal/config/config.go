// Package config resolves runtime settings from an optional .env file and
// the process environment.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/fpang/menu-lens/internal/edit"
)

// Environment variables read by Load.
const (
	EnvAPIKey            = "GEMINI_API_KEY"
	EnvTextModel         = "MENULENS_TEXT_MODEL"
	EnvImageModel        = "MENULENS_IMAGE_MODEL"
	EnvVariations        = "MENULENS_VARIATIONS"
	EnvMaxParallel       = "MENULENS_MAX_PARALLEL_VARIATIONS"
	EnvGenerationTimeout = "MENULENS_GENERATION_TIMEOUT"
	EnvDefaultStyle      = "MENULENS_DEFAULT_STYLE"
	EnvSSMAPIKeyParam    = "MENULENS_SSM_API_KEY_PARAM"
)

// Defaults.
const (
	DefaultTextModel         = "gemini-2.5-flash"
	DefaultImageModel        = "gemini-2.5-flash-image"
	DefaultVariations        = edit.DefaultVariations
	DefaultMaxParallel       = 4
	DefaultGenerationTimeout = 120 * time.Second
	DefaultSSMAPIKeyParam    = "/menu-lens/prod/gemini-api-key"
	MaxVariations            = edit.MaxVariations
)

// Config holds the resolved settings.
type Config struct {
	APIKey            string
	TextModel         string
	ImageModel        string
	Variations        int
	MaxParallel       int
	GenerationTimeout time.Duration
	DefaultStyle      string
	SSMAPIKeyParam    string
}

// Load reads .env files (if present) and then the environment. Variables
// already set in the environment win over .env values.
func Load(envFiles ...string) Config {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				log.Warn().Err(err).Str("file", f).Msg("Failed to load env file")
			}
			continue
		}
		log.Debug().Str("file", f).Msg("Loaded env file")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() Config {
	return Config{
		APIKey:            os.Getenv(EnvAPIKey),
		TextModel:         envOrDefault(EnvTextModel, DefaultTextModel),
		ImageModel:        envOrDefault(EnvImageModel, DefaultImageModel),
		Variations:        clampVariations(envInt(EnvVariations, DefaultVariations)),
		MaxParallel:       clampParallel(envInt(EnvMaxParallel, DefaultMaxParallel)),
		GenerationTimeout: envDuration(EnvGenerationTimeout, DefaultGenerationTimeout),
		DefaultStyle:      os.Getenv(EnvDefaultStyle),
		SSMAPIKeyParam:    envOrDefault(EnvSSMAPIKeyParam, DefaultSSMAPIKeyParam),
	}
}

func envOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("Ignoring non-integer setting")
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Warn().Str("key", key).Str("value", v).Msg("Ignoring invalid duration setting")
		return def
	}
	return d
}

func clampVariations(n int) int {
	switch {
	case n < 1:
		return DefaultVariations
	case n > MaxVariations:
		return MaxVariations
	default:
		return n
	}
}

func clampParallel(n int) int {
	if n < 1 {
		return DefaultMaxParallel
	}
	return min(n, MaxVariations)
}
