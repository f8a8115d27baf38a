// Package failure turns opaque image-model errors into user-facing categories.
//
// The upstream surface exposes no reliable structured codes, so classification
// inspects the lower-cased error text against an ordered list of substring
// patterns. The first matching rule wins; anything else is Unknown.
package failure

import (
	"strings"
)

// Category is a user-facing failure class.
type Category string

// Failure categories, in precedence order.
const (
	Network       Category = "network"
	ContentPolicy Category = "content_policy"
	RateLimit     Category = "rate_limit"
	EmptyResult   Category = "empty_result"
	Unknown       Category = "unknown"
)

// Guidance messages shown to the user for each category.
const (
	NetworkMessage       = "Connection issue. Please check your network and try again."
	ContentPolicyMessage = "Content blocked by safety filters. Try rewording the description."
	RateLimitMessage     = "Usage limit reached. Please try again in a moment."
	EmptyResultMessage   = "The AI couldn't generate an image. Try adjusting the style or details."
	UnknownMessage       = "Generation failed. Try adjusting the custom details or simply retry."
)

// Classification is the result of classifying one failure.
type Classification struct {
	Category Category `json:"category"`
	Message  string   `json:"message"`
}

type rule struct {
	category Category
	message  string
	patterns []string
}

var rules = []rule{
	{Network, NetworkMessage, []string{"xhr error", "fetch failed", "network"}},
	{ContentPolicy, ContentPolicyMessage, []string{"safety", "blocked"}},
	{RateLimit, RateLimitMessage, []string{"429", "quota"}},
	{EmptyResult, EmptyResultMessage, []string{"no image generated"}},
}

// Classify maps an error to exactly one Classification. A nil error is Unknown.
func Classify(err error) Classification {
	if err == nil {
		return Classification{Category: Unknown, Message: UnknownMessage}
	}
	return ClassifyText(err.Error())
}

// ClassifyText classifies a raw failure message.
func ClassifyText(text string) Classification {
	lower := strings.ToLower(text)
	for _, r := range rules {
		for _, p := range r.patterns {
			if strings.Contains(lower, p) {
				return Classification{Category: r.category, Message: r.message}
			}
		}
	}
	return Classification{Category: Unknown, Message: UnknownMessage}
}
