// Package style defines the closed set of photo styles and composes the
// style description sent to the image model.
package style

import (
	"fmt"
	"sort"
	"strings"
)

// PhotoStyle is one of the fixed aesthetic presets.
type PhotoStyle string

// Photo styles. The set is closed; templates are bound at process start.
const (
	RusticDark   PhotoStyle = "Rustic/Dark"
	BrightModern PhotoStyle = "Bright/Modern"
	SocialMedia  PhotoStyle = "Social Media"
)

// Default is the style selected before the user picks one.
const Default = RusticDark

var templates = map[PhotoStyle]string{
	RusticDark:   "Professional food photography, rustic style, dark moody lighting, wooden table background, high contrast, rich textures, 85mm lens, shallow depth of field, chiaroscuro.",
	BrightModern: "Professional food photography, bright and airy, modern minimalism, white marble background, soft natural lighting, clean composition, commercial look, high key.",
	SocialMedia:  "Professional food photography, flat lay, top-down view, vibrant colors, social media aesthetic, harsh shadows, pop art style, trendy plating, high saturation.",
}

var slugs = map[string]PhotoStyle{
	"rustic-dark":   RusticDark,
	"bright-modern": BrightModern,
	"social-media":  SocialMedia,
}

// ConfigError reports a style outside the defined set.
type ConfigError struct {
	Style PhotoStyle
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("unknown photo style %q", string(e.Style))
}

// All returns the defined styles in display order.
func All() []PhotoStyle {
	return []PhotoStyle{RusticDark, BrightModern, SocialMedia}
}

// Valid reports whether s is one of the defined styles.
func (s PhotoStyle) Valid() bool {
	_, ok := templates[s]
	return ok
}

// Slug returns the URL/flag-friendly name, e.g. "rustic-dark".
func (s PhotoStyle) Slug() string {
	for slug, st := range slugs {
		if st == s {
			return slug
		}
	}
	return ""
}

// Template returns the fixed base description for the style.
func Template(s PhotoStyle) (string, error) {
	tmpl, ok := templates[s]
	if !ok {
		return "", &ConfigError{Style: s}
	}
	return tmpl, nil
}

// Compose returns the style template followed by the trimmed custom text,
// space-separated. Blank custom text leaves the template unchanged.
func Compose(s PhotoStyle, customText string) (string, error) {
	tmpl, err := Template(s)
	if err != nil {
		return "", err
	}
	if custom := strings.TrimSpace(customText); custom != "" {
		return tmpl + " " + custom, nil
	}
	return tmpl, nil
}

// Parse accepts a canonical style name ("Rustic/Dark") or its slug
// ("rustic-dark"), case-insensitively.
func Parse(name string) (PhotoStyle, error) {
	name = strings.TrimSpace(name)
	for _, s := range All() {
		if strings.EqualFold(string(s), name) {
			return s, nil
		}
	}
	if s, ok := slugs[strings.ToLower(name)]; ok {
		return s, nil
	}
	return "", &ConfigError{Style: PhotoStyle(name)}
}

// Names lists the accepted slugs, for flag help text.
func Names() []string {
	names := make([]string, 0, len(slugs))
	for slug := range slugs {
		names = append(names, slug)
	}
	sort.Strings(names)
	return names
}
