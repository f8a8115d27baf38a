package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"google.golang.org/genai"

	"github.com/fpang/menu-lens/internal/imagedata"
	"github.com/fpang/menu-lens/internal/metrics"
)

type fakeModels struct {
	resp     *genai.GenerateContentResponse
	err      error
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.contents = contents
	f.config = config
	return f.resp, f.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      &genai.Content{Role: "model", Parts: []*genai.Part{{Text: text}}},
			FinishReason: genai.FinishReasonStop,
		}},
	}
}

func TestMain(m *testing.M) {
	metrics.Disable()
	m.Run()
}

func TestMenuExtractorParsesDishes(t *testing.T) {
	f := &fakeModels{resp: textResponse(`{"dishes":[{"name":"Tomato Soup","description":"Roasted tomatoes"},{"name":"Tart"}]}`)}
	e := NewMenuExtractor(f, "")

	entries, err := e.Extract(context.Background(), "Tomato Soup - roasted tomatoes\nTart")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(entries) != 2 || entries[0].Name != "Tomato Soup" || entries[1].Description != "" {
		t.Errorf("Extract() = %+v", entries)
	}
	if f.model != DefaultTextModel {
		t.Errorf("model = %q, want %q", f.model, DefaultTextModel)
	}
	if f.config == nil || f.config.ResponseSchema == nil || f.config.ResponseMIMEType != "application/json" {
		t.Error("expected JSON response schema on extraction request")
	}
}

func TestMenuExtractorMalformedResponseIsEmpty(t *testing.T) {
	e := NewMenuExtractor(&fakeModels{resp: textResponse("sorry, I can't read that")}, "")
	entries, err := e.Extract(context.Background(), "menu")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Extract() = %+v, want empty", entries)
	}
}

func TestMenuExtractorPropagatesAPIError(t *testing.T) {
	e := NewMenuExtractor(&fakeModels{err: errors.New("fetch failed")}, "")
	if _, err := e.Extract(context.Background(), "menu"); err == nil {
		t.Fatal("expected error")
	}
}

func TestImageClientGenerateFirstInlinePartWins(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "Here is your dish"},
				{InlineData: &genai.Blob{MIMEType: "image/jpeg", Data: []byte("first")}},
				{InlineData: &genai.Blob{MIMEType: "image/png", Data: []byte("second")}},
			}},
		}},
	}
	f := &fakeModels{resp: resp}
	c := NewImageClient(f, "")

	img, err := c.Generate(context.Background(), "Professional food photography of Tart.")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if string(img.Data) != "first" || img.MIMEType != imagedata.PNGMIMEType {
		t.Errorf("Generate() = %q %q", img.Data, img.MIMEType)
	}
	if f.model != DefaultImageModel {
		t.Errorf("model = %q", f.model)
	}
}

func TestImageClientGenerateNoImage(t *testing.T) {
	resp := textResponse("I cannot draw that")
	resp.Candidates[0].FinishReason = genai.FinishReasonSafety
	c := NewImageClient(&fakeModels{resp: resp}, "")

	_, err := c.Generate(context.Background(), "prompt")
	if !errors.Is(err, ErrNoImageGenerated) {
		t.Fatalf("Generate() error = %v, want ErrNoImageGenerated", err)
	}
	if !strings.Contains(err.Error(), "SAFETY") {
		t.Errorf("error %q should carry the finish reason", err)
	}
}

func TestImageClientEditSendsImageAndInstruction(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{InlineData: &genai.Blob{MIMEType: "image/png", Data: []byte("edited")}},
			}},
		}},
	}
	f := &fakeModels{resp: resp}
	c := NewImageClient(f, ModelGemini3ProImage)

	out, err := c.Edit(context.Background(), imagedata.Image{MIMEType: "image/png", Data: []byte("orig")}, "add basil")
	if err != nil {
		t.Fatalf("Edit() error = %v", err)
	}
	if string(out.Data) != "edited" {
		t.Errorf("Edit() = %q", out.Data)
	}
	if f.model != ModelGemini3ProImage {
		t.Errorf("model = %q", f.model)
	}
	parts := f.contents[0].Parts
	if len(parts) != 2 || string(parts[0].InlineData.Data) != "orig" || parts[1].Text != "add basil" {
		t.Errorf("unexpected request parts: %+v", parts)
	}
	if f.config.SystemInstruction == nil {
		t.Error("expected edit system instruction")
	}
}

func TestImageClientEditEmptyResponse(t *testing.T) {
	c := NewImageClient(&fakeModels{resp: &genai.GenerateContentResponse{}}, "")
	_, err := c.Edit(context.Background(), imagedata.Image{Data: []byte("x")}, "warmer")
	if !errors.Is(err, ErrEditFailed) {
		t.Errorf("Edit() error = %v, want ErrEditFailed", err)
	}
}

func TestImageClientEditRejectsEmptyImage(t *testing.T) {
	f := &fakeModels{}
	c := NewImageClient(f, "")
	if _, err := c.Edit(context.Background(), imagedata.Image{}, "warmer"); !errors.Is(err, imagedata.ErrEmptyImage) {
		t.Errorf("Edit() error = %v", err)
	}
	if f.model != "" {
		t.Error("model must not be called for an empty image")
	}
}

func TestMissingImageReasonBlockedPrompt(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		PromptFeedback: &genai.GenerateContentResponsePromptFeedback{BlockReason: genai.BlockedReasonSafety},
	}
	if got := missingImageReason(resp); !strings.Contains(got, "blocked") {
		t.Errorf("missingImageReason() = %q", got)
	}
}
