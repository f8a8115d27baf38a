// Package generation drives dish image generation against the image model
// and commits the outcome to the dish registry.
package generation

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/menu-lens/internal/dish"
	"github.com/fpang/menu-lens/internal/failure"
	"github.com/fpang/menu-lens/internal/imagedata"
	"github.com/fpang/menu-lens/internal/metrics"
	"github.com/fpang/menu-lens/internal/style"
)

// Generator is the image generation collaborator.
type Generator interface {
	Generate(ctx context.Context, prompt string) (imagedata.Image, error)
}

// Orchestrator runs generate/regenerate for single dishes. Calls for
// different dishes are independent; two calls for the same dish race and
// the last completion wins.
type Orchestrator struct {
	registry  *dish.Registry
	images    Generator
	selection *style.Selection
	timeout   time.Duration
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithTimeout bounds each image call. Zero means no bound beyond ctx.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.timeout = d }
}

// New creates an orchestrator committing into registry and reading the
// current style from selection.
func New(registry *dish.Registry, images Generator, selection *style.Selection, opts ...Option) *Orchestrator {
	o := &Orchestrator{registry: registry, images: images, selection: selection}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Generate (re)generates the image for dish id. Failures never escape: they
// are classified and stored on the dish. A dish that disappears, or a menu
// replaced while the call is in flight, makes the completion a no-op.
func (o *Orchestrator) Generate(ctx context.Context, id string) {
	snapshot, tok, ok := o.registry.Get(id)
	if !ok {
		log.Debug().Str("dish", id).Msg("Dish not found, skipping generation")
		return
	}
	if !o.registry.Update(tok, func(d *dish.Dish) {
		d.Status = dish.StatusGenerating
		d.Failure = nil
	}) {
		return
	}

	choice := o.selection.Current()
	logger := log.With().Str("dish", id).Str("name", snapshot.Name).Str("style", string(choice.Style)).Logger()
	logger.Info().Msg("Generating dish image")

	start := time.Now()
	img, err := o.run(ctx, style.Request{
		DishName:        snapshot.Name,
		DishDescription: snapshot.Description,
		Style:           choice.Style,
		Custom:          choice.Custom,
	})
	elapsed := time.Since(start)

	m := metrics.New(metrics.Namespace).
		Dimension("Operation", "generate").
		Metric("DishImageLatencyMs", float64(elapsed.Milliseconds()), metrics.UnitMilliseconds)

	if err != nil {
		c := failure.Classify(err)
		m.Dimension("Category", string(c.Category)).Count("DishImageFailed").Flush()
		logger.Warn().Err(err).Str("category", string(c.Category)).Dur("duration", elapsed).Msg("Dish image generation failed")
		o.registry.Update(tok, func(d *dish.Dish) {
			d.Failure = &c
			if d.HasImage() {
				d.Status = dish.StatusReady
				d.ImageStale = true
			} else {
				d.Status = dish.StatusFailed
			}
		})
		return
	}

	m.Count("DishImageGenerated").Flush()
	committed := o.registry.Update(tok, func(d *dish.Dish) {
		d.Image = &img
		d.Status = dish.StatusReady
		d.ImageStale = false
		d.Failure = nil
	})
	logger.Info().
		Bool("committed", committed).
		Int("bytes", len(img.Data)).
		Dur("duration", elapsed).
		Msg("Dish image generated")
}

func (o *Orchestrator) run(ctx context.Context, req style.Request) (imagedata.Image, error) {
	prompt, err := req.Prompt()
	if err != nil {
		return imagedata.Image{}, err
	}
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}
	return o.images.Generate(ctx, prompt)
}
