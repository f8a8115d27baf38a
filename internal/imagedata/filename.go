package imagedata

import (
	"strings"
	"unicode"
)

// FileName turns a dish name into the download file name used for its image,
// e.g. "Wagyu Beef Burger" -> "wagyu-beef-burger.png".
func FileName(dishName string) string {
	return Slug(dishName) + ".png"
}

// Slug lower-cases the name and joins whitespace-separated words with hyphens.
// Path separators are dropped so the result is always a single path element.
func Slug(name string) string {
	fields := strings.FieldsFunc(strings.ToLower(name), unicode.IsSpace)
	slug := strings.Join(fields, "-")
	slug = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return -1
		}
		return r
	}, slug)
	slug = strings.Trim(slug, ".-")
	if slug == "" {
		return "dish"
	}
	return slug
}
