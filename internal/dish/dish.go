// Package dish holds the Dish entity and the in-memory registry the
// orchestrators commit to.
package dish

import (
	"time"

	"github.com/fpang/menu-lens/internal/failure"
	"github.com/fpang/menu-lens/internal/imagedata"
)

// Status is the image generation status of a dish.
type Status string

// Dish generation states.
const (
	StatusIdle       Status = "idle"
	StatusGenerating Status = "generating"
	StatusReady      Status = "ready"
	StatusFailed     Status = "failed"
)

// Dish is an immutable snapshot of one menu entry. The registry replaces
// whole snapshots; it never hands out a pointer into its own state.
type Dish struct {
	ID          string
	Name        string
	Description string

	// Image is nil until the first successful generation. Image bytes are
	// shared between snapshots and must never be modified in place.
	Image  *imagedata.Image
	Status Status

	// ImageStale is set when a regeneration failed after an earlier success:
	// Image still holds the previous result, but it is not the outcome of the
	// latest request.
	ImageStale bool

	// Failure is the classified error of the most recent generation, if it failed.
	Failure *failure.Classification

	UpdatedAt time.Time
}

// HasImage reports whether the dish has a generated image.
func (d Dish) HasImage() bool {
	return d.Image != nil && !d.Image.IsZero()
}

// ErrorMessage returns the user-facing message of the last failure, or "".
func (d Dish) ErrorMessage() string {
	if d.Failure == nil {
		return ""
	}
	return d.Failure.Message
}
