package style

import (
	"fmt"

	"github.com/fpang/menu-lens/internal/assets"
)

// Request is the (dish, style, custom text) triple that fully determines the
// prompt sent to the image model. Identical requests are not deduplicated.
type Request struct {
	DishName        string
	DishDescription string
	Style           PhotoStyle
	Custom          string
}

// Prompt renders the full image-generation prompt for the request.
func (r Request) Prompt() (string, error) {
	description, err := Compose(r.Style, r.Custom)
	if err != nil {
		return "", err
	}
	prompt, err := assets.RenderDishPhotoPrompt(assets.DishPhotoData{
		Name:        r.DishName,
		Description: r.DishDescription,
		Style:       description,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render dish prompt: %w", err)
	}
	return prompt, nil
}
