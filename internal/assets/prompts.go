// Package assets provides embedded prompt templates for the application.
//
// Prompt templates are stored as text files under prompts/ and embedded at
// compile time, so wording changes do not touch Go code.
package assets

import (
	"bytes"
	_ "embed"
	"strings"
	"text/template"
)

// EditSystemPrompt frames the image model as a food photo retoucher for edits.
//
//go:embed prompts/edit-system.txt
var EditSystemPrompt string

//go:embed prompts/menu-extraction.txt
var menuExtractionTemplate string

//go:embed prompts/dish-photo.txt
var dishPhotoTemplate string

var (
	menuExtractionTmpl = template.Must(template.New("menu-extraction").Parse(menuExtractionTemplate))
	dishPhotoTmpl      = template.Must(template.New("dish-photo").Parse(dishPhotoTemplate))
)

// MenuExtractionData is the input to the menu extraction prompt.
type MenuExtractionData struct {
	MenuText string
}

// DishPhotoData is the input to the dish photo prompt. Style is the already
// composed style description (base template plus any custom details).
type DishPhotoData struct {
	Name        string
	Description string
	Style       string
}

// RenderMenuExtractionPrompt builds the text-model prompt for a pasted menu.
func RenderMenuExtractionPrompt(data MenuExtractionData) (string, error) {
	return render(menuExtractionTmpl, data)
}

// RenderDishPhotoPrompt builds the image-model prompt for one dish.
func RenderDishPhotoPrompt(data DishPhotoData) (string, error) {
	data.Description = strings.TrimRight(strings.TrimSpace(data.Description), ".")
	data.Style = strings.TrimRight(data.Style, ".")
	return render(dishPhotoTmpl, data)
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}
