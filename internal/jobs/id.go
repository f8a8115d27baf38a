// Package jobs holds identifier and routing helpers shared by the HTTP
// surfaces that address dishes and edit sessions by id.
package jobs

import (
	"crypto/rand"
	"encoding/hex"
	"strings"

	"github.com/rs/zerolog/log"
)

// Identifier prefixes.
const (
	EditPrefix = "edit-"
)

// GenerateID returns prefix followed by 32 random hex characters.
func GenerateID(prefix string) string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		log.Fatal().Err(err).Msgf("Failed to generate random %s id", prefix)
	}
	return prefix + hex.EncodeToString(b)
}

// Normalize adds prefix to id when the caller sent the bare hex form.
func Normalize(id, prefix string) string {
	if prefix == "" || strings.HasPrefix(id, prefix) {
		return id
	}
	return prefix + id
}
