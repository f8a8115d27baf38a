// Package intake turns menu text into dish entities via a text extraction
// collaborator.
package intake

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fpang/menu-lens/internal/dish"
)

// Entry is one dish as returned by the extraction service.
type Entry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Extractor is the text extraction collaborator.
type Extractor interface {
	Extract(ctx context.Context, menuText string) ([]Entry, error)
}

var (
	// ErrEmptyMenu is returned for blank menu text; the extractor is not called.
	ErrEmptyMenu = errors.New("menu text is empty")
	// ErrAnalysisFailed wraps every extractor failure.
	ErrAnalysisFailed = errors.New("failed to analyze menu")
)

// AnalysisFailedMessage is the user-facing text for ErrAnalysisFailed.
const AnalysisFailedMessage = "Failed to analyze menu. Please try again."

// Adapter converts extraction output into Idle dishes with fresh ids.
type Adapter struct {
	extractor Extractor
	newID     func() string
}

// NewAdapter creates an adapter over extractor.
func NewAdapter(extractor Extractor) *Adapter {
	return &Adapter{extractor: extractor, newID: uuid.NewString}
}

// Analyze extracts dishes from menuText. Entries with a blank name are
// dropped; names and descriptions are trimmed. An empty result is not an
// error.
func (a *Adapter) Analyze(ctx context.Context, menuText string) ([]dish.Dish, error) {
	if strings.TrimSpace(menuText) == "" {
		return nil, ErrEmptyMenu
	}

	entries, err := a.extractor.Extract(ctx, menuText)
	if err != nil {
		log.Error().Err(err).Msg("Menu extraction failed")
		return nil, fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}

	dishes := ToDishes(entries, a.newID)
	if dropped := len(entries) - len(dishes); dropped > 0 {
		log.Warn().Int("dropped", dropped).Msg("Dropped menu entries without a name")
	}
	log.Info().Int("dishes", len(dishes)).Msg("Menu analyzed")
	return dishes, nil
}

// ToDishes maps entries to Idle dishes, assigning ids with newID.
func ToDishes(entries []Entry, newID func() string) []dish.Dish {
	out := make([]dish.Dish, 0, len(entries))
	for _, e := range entries {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			continue
		}
		out = append(out, dish.Dish{
			ID:          newID(),
			Name:        name,
			Description: strings.TrimSpace(e.Description),
			Status:      dish.StatusIdle,
		})
	}
	return out
}
