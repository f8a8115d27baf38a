// Package mcpserver exposes the studio as Model Context Protocol tools so an
// assistant can analyze a menu and render its dishes.
package mcpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"github.com/fpang/menu-lens/internal/dish"
	"github.com/fpang/menu-lens/internal/edit"
	"github.com/fpang/menu-lens/internal/studio"
	"github.com/fpang/menu-lens/internal/style"
)

// Tools implements the MCP tool handlers over a Studio.
type Tools struct {
	studio *studio.Studio
}

// New builds an MCP server with all tools registered.
func New(s *studio.Studio, version string) *mcp.Server {
	t := &Tools{studio: s}
	server := mcp.NewServer(&mcp.Implementation{Name: "menu-lens", Version: version}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_menu",
		Description: "Extract dishes from pasted restaurant menu text. Replaces the current menu.",
	}, t.AnalyzeMenu)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_dishes",
		Description: "List the dishes of the current menu with their image generation status.",
	}, t.ListDishes)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "set_style",
		Description: "Set the photo style (rustic-dark, bright-modern, social-media) and optional custom details.",
	}, t.SetStyle)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_dish_image",
		Description: "Generate (or regenerate) the photo for one dish and return it.",
	}, t.GenerateDishImage)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "edit_dish_image",
		Description: "Edit a dish photo with a natural-language instruction. With variations > 1, several attempts run in parallel and the first success is kept.",
	}, t.EditDishImage)
	return server
}

// DishSummary is the tool-facing view of a dish.
type DishSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	HasImage    bool   `json:"hasImage"`
	ImageStale  bool   `json:"imageStale,omitempty"`
	Error       string `json:"error,omitempty"`
}

func summarize(d dish.Dish) DishSummary {
	return DishSummary{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Status:      string(d.Status),
		HasImage:    d.HasImage(),
		ImageStale:  d.ImageStale,
		Error:       d.ErrorMessage(),
	}
}

func summarizeAll(dishes []dish.Dish) []DishSummary {
	out := make([]DishSummary, 0, len(dishes))
	for _, d := range dishes {
		out = append(out, summarize(d))
	}
	return out
}

type AnalyzeMenuInput struct {
	Menu string `json:"menu" jsonschema:"the full menu text"`
}

type MenuOutput struct {
	Dishes []DishSummary `json:"dishes"`
	Style  style.Choice  `json:"style"`
}

func (t *Tools) AnalyzeMenu(ctx context.Context, _ *mcp.CallToolRequest, in AnalyzeMenuInput) (*mcp.CallToolResult, MenuOutput, error) {
	dishes, err := t.studio.AnalyzeMenu(ctx, in.Menu)
	if err != nil {
		return nil, MenuOutput{}, err
	}
	return nil, MenuOutput{Dishes: summarizeAll(dishes), Style: t.studio.Style()}, nil
}

type ListDishesInput struct{}

func (t *Tools) ListDishes(_ context.Context, _ *mcp.CallToolRequest, _ ListDishesInput) (*mcp.CallToolResult, MenuOutput, error) {
	return nil, MenuOutput{Dishes: summarizeAll(t.studio.Dishes()), Style: t.studio.Style()}, nil
}

type SetStyleInput struct {
	Style        string `json:"style" jsonschema:"style name or slug"`
	CustomPrompt string `json:"customPrompt,omitempty" jsonschema:"extra style details appended to the style template"`
}

func (t *Tools) SetStyle(_ context.Context, _ *mcp.CallToolRequest, in SetStyleInput) (*mcp.CallToolResult, style.Choice, error) {
	ps, err := style.Parse(in.Style)
	if err != nil {
		return nil, style.Choice{}, err
	}
	if err := t.studio.SetStyle(ps, in.CustomPrompt); err != nil {
		return nil, style.Choice{}, err
	}
	return nil, t.studio.Style(), nil
}

type GenerateInput struct {
	DishID string `json:"dishId" jsonschema:"id from list_dishes"`
}

type DishOutput struct {
	Dish DishSummary `json:"dish"`
}

func (t *Tools) GenerateDishImage(ctx context.Context, _ *mcp.CallToolRequest, in GenerateInput) (*mcp.CallToolResult, DishOutput, error) {
	if err := t.studio.Generate(ctx, in.DishID); err != nil {
		return nil, DishOutput{}, err
	}
	d, ok := t.studio.Dish(in.DishID)
	if !ok {
		return nil, DishOutput{}, studio.ErrDishNotFound
	}
	out := DishOutput{Dish: summarize(d)}
	if d.Failure != nil && !d.HasImage() {
		return nil, out, errors.New(d.Failure.Message)
	}
	return imageResult(d), out, nil
}

type EditInput struct {
	DishID      string `json:"dishId" jsonschema:"id from list_dishes"`
	Instruction string `json:"instruction" jsonschema:"what to change, e.g. 'add a sprig of basil'"`
	Variations  int    `json:"variations,omitempty" jsonschema:"parallel attempts; 1 or omitted applies a single edit"`
}

func (t *Tools) EditDishImage(ctx context.Context, _ *mcp.CallToolRequest, in EditInput) (*mcp.CallToolResult, DishOutput, error) {
	sid, session, err := t.studio.OpenEdit(in.DishID)
	if err != nil {
		return nil, DishOutput{}, err
	}
	defer t.studio.CloseEdit(sid)

	if in.Variations > 1 {
		candidates, err := session.GenerateVariations(ctx, in.Instruction, in.Variations)
		if err != nil {
			return nil, DishOutput{}, editError(session.View().LastError, err)
		}
		if _, err := session.SelectVariation(0); err != nil {
			return nil, DishOutput{}, err
		}
		log.Info().Str("dish", in.DishID).Int("candidates", len(candidates)).Msg("Kept first variation")
	} else if _, err := session.ApplyEdit(ctx, in.Instruction); err != nil {
		return nil, DishOutput{}, editError(session.View().LastError, err)
	}

	d, ok := t.studio.Dish(in.DishID)
	if !ok {
		return nil, DishOutput{}, studio.ErrDishNotFound
	}
	return imageResult(d), DishOutput{Dish: summarize(d)}, nil
}

// editError prefers the session's user-facing message over the raw cause.
func editError(last *edit.LastError, err error) error {
	if last == nil {
		return err
	}
	return fmt.Errorf("%s (%s): %w", last.Message, last.Category, err)
}

func imageResult(d dish.Dish) *mcp.CallToolResult {
	if !d.HasImage() {
		return nil
	}
	text := fmt.Sprintf("Image for %s (%d bytes)", d.Name, len(d.Image.Data))
	if d.ImageStale {
		text += "; regeneration failed, showing the previous image: " + d.ErrorMessage()
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
			&mcp.ImageContent{Data: d.Image.Data, MIMEType: d.Image.MIMEType},
		},
	}
}
