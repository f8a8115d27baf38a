package failure

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifyText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Category
	}{
		{"fetch failed", "Error: fetch failed (network unreachable)", Network},
		{"xhr", "XHR error while contacting service", Network},
		{"network only", "Network timeout", Network},
		{"safety", "Response was blocked due to SAFETY", ContentPolicy},
		{"blocked", "prompt blocked", ContentPolicy},
		{"429", "Error 429, Message: Resource has been exhausted", RateLimit},
		{"quota", "You exceeded your current quota", RateLimit},
		{"empty", "No image generated", EmptyResult},
		{"unknown", "internal server error", Unknown},
		{"empty string", "", Unknown},
		{"network beats 429", "network error: 429 too many requests", Network},
		{"safety beats quota", "blocked: quota", ContentPolicy},
		{"quota beats empty", "no image generated: quota exhausted", RateLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyText(tt.in)
			if got.Category != tt.want {
				t.Errorf("ClassifyText(%q) = %q, want %q", tt.in, got.Category, tt.want)
			}
			if got.Message == "" {
				t.Errorf("ClassifyText(%q) returned empty message", tt.in)
			}
		})
	}
}

func TestClassifyFetchFailedMessage(t *testing.T) {
	got := Classify(errors.New("Error: fetch failed (network unreachable)"))
	want := Classification{Category: Network, Message: NetworkMessage}
	if got != want {
		t.Errorf("Classify() = %+v, want %+v", got, want)
	}
}

func TestClassifyWrappedError(t *testing.T) {
	err := fmt.Errorf("generate dish image: %w", errors.New("no image generated"))
	if got := Classify(err).Category; got != EmptyResult {
		t.Errorf("Classify(wrapped) = %q, want %q", got, EmptyResult)
	}
}

func TestClassifyNil(t *testing.T) {
	if got := Classify(nil).Category; got != Unknown {
		t.Errorf("Classify(nil) = %q, want %q", got, Unknown)
	}
}

func TestClassifyTotal(t *testing.T) {
	valid := map[Category]bool{
		Network: true, ContentPolicy: true, RateLimit: true, EmptyResult: true, Unknown: true,
	}
	inputs := []string{"", "a", "NETWORK", "Safety", "quota 429", "\x00\xff", "no image generated"}
	for _, in := range inputs {
		c := ClassifyText(in)
		if !valid[c.Category] {
			t.Errorf("ClassifyText(%q) returned undefined category %q", in, c.Category)
		}
		if again := ClassifyText(in); again != c {
			t.Errorf("ClassifyText(%q) not deterministic: %+v vs %+v", in, c, again)
		}
	}
}
