package style

import (
	"strings"
	"sync"
)

// Choice is the global style setting applied to every generation.
type Choice struct {
	Style  PhotoStyle `json:"style"`
	Custom string     `json:"customPrompt"`
}

// Selection holds the current Choice. Safe for concurrent use.
type Selection struct {
	mu     sync.RWMutex
	choice Choice
}

// NewSelection starts with the given style and no custom text.
func NewSelection(s PhotoStyle) *Selection {
	if !s.Valid() {
		s = Default
	}
	return &Selection{choice: Choice{Style: s}}
}

// Current returns a copy of the current choice.
func (sel *Selection) Current() Choice {
	sel.mu.RLock()
	defer sel.mu.RUnlock()
	return sel.choice
}

// Set replaces the current choice. Unknown styles are rejected.
func (sel *Selection) Set(s PhotoStyle, custom string) error {
	if !s.Valid() {
		return &ConfigError{Style: s}
	}
	sel.mu.Lock()
	sel.choice = Choice{Style: s, Custom: strings.TrimSpace(custom)}
	sel.mu.Unlock()
	return nil
}
