// Package studio wires the dish registry, style selection and orchestrators
// into the single object every transport (HTTP, Lambda, CLI, MCP) drives.
package studio

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/menu-lens/internal/dish"
	"github.com/fpang/menu-lens/internal/edit"
	"github.com/fpang/menu-lens/internal/fanout"
	"github.com/fpang/menu-lens/internal/generation"
	"github.com/fpang/menu-lens/internal/imagedata"
	"github.com/fpang/menu-lens/internal/intake"
	"github.com/fpang/menu-lens/internal/jobs"
	"github.com/fpang/menu-lens/internal/style"
)

var (
	ErrDishNotFound    = errors.New("dish not found")
	ErrNoImage         = errors.New("dish has no image yet")
	ErrSessionNotFound = errors.New("edit session not found")
	ErrGenerating      = errors.New("style cannot change while images are generating")
	ErrDishGenerating  = errors.New("dish is generating")
)

// ImageService generates and edits dish images.
type ImageService interface {
	generation.Generator
	edit.Editor
}

// Config tunes a Studio.
type Config struct {
	DefaultStyle          style.PhotoStyle
	Variations            int
	MaxParallelVariations int
	GenerationTimeout     time.Duration
}

// Studio is the application core. All methods are safe for concurrent use.
type Studio struct {
	cfg       Config
	registry  *dish.Registry
	selection *style.Selection
	intake    *intake.Adapter
	generator *generation.Orchestrator
	editor    edit.Editor

	mu       sync.Mutex
	sessions map[string]*editEntry

	pending sync.WaitGroup
}

type editEntry struct {
	dishID  string
	session *edit.Session
}

// New creates a Studio.
func New(extractor intake.Extractor, images ImageService, cfg Config) *Studio {
	registry := dish.NewRegistry()
	selection := style.NewSelection(cfg.DefaultStyle)
	return &Studio{
		cfg:       cfg,
		registry:  registry,
		selection: selection,
		intake:    intake.NewAdapter(extractor),
		generator: generation.New(registry, images, selection, generation.WithTimeout(cfg.GenerationTimeout)),
		editor:    images,
		sessions:  make(map[string]*editEntry),
	}
}

// AnalyzeMenu extracts dishes from menuText and replaces the current menu.
// Open edit sessions are closed and in-flight generations for the old menu
// are invalidated. On error the current menu is left as is.
func (s *Studio) AnalyzeMenu(ctx context.Context, menuText string) ([]dish.Dish, error) {
	dishes, err := s.intake.Analyze(ctx, menuText)
	if err != nil {
		return nil, err
	}

	// Sessions and menu swap under one lock so OpenEdit never binds to the
	// outgoing epoch.
	s.mu.Lock()
	stale := s.sessions
	s.sessions = make(map[string]*editEntry)
	epoch := s.registry.ReplaceAll(dishes)
	s.mu.Unlock()
	for _, e := range stale {
		e.session.Close()
	}
	if len(stale) > 0 {
		log.Debug().Int("sessions", len(stale)).Msg("Closed edit sessions for replaced menu")
	}

	log.Info().Uint64("epoch", epoch).Int("dishes", len(dishes)).Msg("Menu replaced")
	return s.registry.List(), nil
}

// Dishes lists the current menu in extraction order.
func (s *Studio) Dishes() []dish.Dish {
	return s.registry.List()
}

// Dish returns one dish snapshot.
func (s *Studio) Dish(id string) (dish.Dish, bool) {
	d, _, ok := s.registry.Get(id)
	return d, ok
}

// Generating reports whether any dish is currently generating.
func (s *Studio) Generating() bool {
	return s.registry.AnyGenerating()
}

// Style returns the current style choice.
func (s *Studio) Style() style.Choice {
	return s.selection.Current()
}

// SetStyle changes the global style. It is refused while any dish is
// generating.
func (s *Studio) SetStyle(ps style.PhotoStyle, custom string) error {
	if s.registry.AnyGenerating() {
		return ErrGenerating
	}
	if err := s.selection.Set(ps, custom); err != nil {
		return err
	}
	log.Info().Str("style", string(ps)).Bool("custom", custom != "").Msg("Style updated")
	return nil
}

// SetImage replaces a dish image with a caller-supplied one, as if it had
// been generated. Refused while the dish is generating.
func (s *Studio) SetImage(dishID string, img imagedata.Image) (dish.Dish, error) {
	if img.IsZero() {
		return dish.Dish{}, imagedata.ErrEmptyImage
	}
	var busy bool
	ok := s.registry.UpdateByID(dishID, func(d *dish.Dish) {
		if d.Status == dish.StatusGenerating {
			busy = true
			return
		}
		d.Image = &img
		d.Status = dish.StatusReady
		d.ImageStale = false
		d.Failure = nil
	})
	switch {
	case !ok:
		return dish.Dish{}, ErrDishNotFound
	case busy:
		return dish.Dish{}, ErrDishGenerating
	}
	log.Info().Str("dish", dishID).Int("bytes", len(img.Data)).Msg("Dish image uploaded")
	d, _ := s.Dish(dishID)
	return d, nil
}

// Generate (re)generates one dish and waits for it. Generation failures are
// recorded on the dish, not returned.
func (s *Studio) Generate(ctx context.Context, dishID string) error {
	if _, ok := s.Dish(dishID); !ok {
		return ErrDishNotFound
	}
	s.generator.Generate(ctx, dishID)
	return nil
}

// GenerateAsync starts generation in the background. The call is detached
// from ctx cancellation so it outlives the request that started it.
func (s *Studio) GenerateAsync(ctx context.Context, dishID string) error {
	if _, ok := s.Dish(dishID); !ok {
		return ErrDishNotFound
	}
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		s.generator.Generate(context.WithoutCancel(ctx), dishID)
	}()
	return nil
}

// GenerateAll generates every dish concurrently and waits for all of them.
func (s *Studio) GenerateAll(ctx context.Context) []dish.Dish {
	dishes := s.registry.List()
	fanout.Settle(ctx, len(dishes), 0, func(ctx context.Context, i int) (struct{}, error) {
		s.generator.Generate(ctx, dishes[i].ID)
		return struct{}{}, nil
	})
	return s.registry.List()
}

// Wait blocks until all GenerateAsync calls have finished.
func (s *Studio) Wait() {
	s.pending.Wait()
}

// OpenEdit starts an edit session on a dish's current image. Commits from
// the session only land while the menu the dish belongs to is current.
func (s *Studio) OpenEdit(dishID string) (string, *edit.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, tok, ok := s.registry.Get(dishID)
	if !ok {
		return "", nil, ErrDishNotFound
	}
	if !d.HasImage() {
		return "", nil, ErrNoImage
	}

	id := jobs.GenerateID(jobs.EditPrefix)
	commit := func(img imagedata.Image) bool {
		return s.registry.Update(tok, func(cur *dish.Dish) {
			cur.Image = &img
			cur.Status = dish.StatusReady
			cur.ImageStale = false
			cur.Failure = nil
		})
	}
	session := edit.NewSession(s.editor, *d.Image, commit, edit.Options{
		Variations:  s.cfg.Variations,
		MaxParallel: s.cfg.MaxParallelVariations,
		Timeout:     s.cfg.GenerationTimeout,
	}).WithLogger(log.With().Str("session", id).Str("dish", dishID).Logger())

	s.sessions[id] = &editEntry{dishID: dishID, session: session}

	log.Info().Str("session", id).Str("dish", dishID).Msg("Edit session opened")
	return id, session, nil
}

// Session looks up an open edit session. The "edit-" prefix is optional.
func (s *Studio) Session(id string) (*edit.Session, string, bool) {
	id = jobs.Normalize(id, jobs.EditPrefix)
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return nil, "", false
	}
	return e.session, e.dishID, true
}

// CloseEdit closes and forgets a session, returning its final image.
func (s *Studio) CloseEdit(id string) (imagedata.Image, error) {
	id = jobs.Normalize(id, jobs.EditPrefix)
	s.mu.Lock()
	e, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return imagedata.Image{}, ErrSessionNotFound
	}
	log.Info().Str("session", id).Msg("Edit session closed")
	return e.session.Close(), nil
}

// OpenSessions returns the number of open edit sessions.
func (s *Studio) OpenSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
