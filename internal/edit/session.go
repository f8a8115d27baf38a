// Package edit implements the interactive edit workflow for one dish image:
// single edits, N-way variation rounds with partial-failure tolerance, and
// manual selection among the successful variants.
package edit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fpang/menu-lens/internal/failure"
	"github.com/fpang/menu-lens/internal/fanout"
	"github.com/fpang/menu-lens/internal/imagedata"
	"github.com/fpang/menu-lens/internal/metrics"
)

// State is the session's workflow state.
type State string

// Session states. Editing and GeneratingVariations are mutually exclusive
// and always return to Idle.
const (
	StateIdle                 State = "idle"
	StateEditing              State = "editing"
	StateGeneratingVariations State = "generating_variations"
	StateClosed               State = "closed"
)

// DefaultVariations is the number of parallel attempts per variation round.
const DefaultVariations = 3

// MaxVariations caps the attempts of one variation round, whatever the
// caller asks for.
const MaxVariations = 8

// User-facing messages. Edit failures are not broken down by category in
// the message; the category is kept on LastError.
const (
	EditFailedMessage       = "Failed to edit image. Please try again."
	VariationsFailedMessage = "Failed to generate variations. Please try again."
)

var (
	ErrEmptyInstruction = errors.New("edit instruction is empty")
	ErrBusy             = errors.New("an edit is already in progress")
	ErrClosed           = errors.New("edit session is closed")
	ErrUnknownCandidate = errors.New("no such variation")
	ErrEditFailed       = errors.New("failed to edit image")
	ErrVariationsFailed = errors.New("all variation attempts failed")
)

// Editor is the image edit collaborator.
type Editor interface {
	Edit(ctx context.Context, img imagedata.Image, instruction string) (imagedata.Image, error)
}

// CommitFunc writes an image back to the owning dish. It reports whether the
// dish accepted it (false when the dish or its menu is gone).
type CommitFunc func(img imagedata.Image) bool

// LastError is the failure of the most recent edit or variation round.
type LastError struct {
	Message  string           `json:"message"`
	Category failure.Category `json:"category"`
}

// Options tunes a session.
type Options struct {
	// Variations is the default attempt count for GenerateVariations.
	Variations int
	// MaxParallel caps concurrent variation attempts; 0 runs all at once.
	MaxParallel int
	// Timeout bounds each editor call; 0 means no bound beyond ctx.
	Timeout time.Duration
}

// View is a point-in-time copy of the session.
type View struct {
	State       State             `json:"state"`
	Base        imagedata.Image   `json:"-"`
	Current     imagedata.Image   `json:"-"`
	Candidates  []imagedata.Image `json:"-"`
	Selected    int               `json:"selected"`
	Instruction string            `json:"instruction"`
	LastError   *LastError        `json:"lastError,omitempty"`
}

// Session is one open edit interaction. Safe for concurrent use; the state
// gate rejects overlapping operations with ErrBusy.
type Session struct {
	mu     sync.Mutex
	editor Editor
	commit CommitFunc
	opts   Options
	logger zerolog.Logger

	state       State
	base        imagedata.Image
	current     imagedata.Image
	candidates  []imagedata.Image
	selected    int
	instruction string
	lastErr     *LastError
}

// NewSession opens a session on base. commit may be nil.
func NewSession(editor Editor, base imagedata.Image, commit CommitFunc, opts Options) *Session {
	if opts.Variations <= 0 {
		opts.Variations = DefaultVariations
	}
	opts.Variations = min(opts.Variations, MaxVariations)
	if commit == nil {
		commit = func(imagedata.Image) bool { return true }
	}
	return &Session{
		editor:   editor,
		commit:   commit,
		opts:     opts,
		logger:   log.Logger,
		state:    StateIdle,
		base:     base,
		current:  base,
		selected: -1,
	}
}

// WithLogger attaches contextual fields (dish id, session id) to the
// session's log lines.
func (s *Session) WithLogger(l zerolog.Logger) *Session {
	s.mu.Lock()
	s.logger = l
	s.mu.Unlock()
	return s
}

// SetInstruction stores the draft instruction without running it.
func (s *Session) SetInstruction(text string) {
	s.mu.Lock()
	s.instruction = text
	s.mu.Unlock()
}

// ApplyEdit edits the current image. On success the result becomes current,
// candidates and the draft instruction are cleared, and the image is
// committed to the dish at once. On failure the current image is unchanged
// and LastError is set.
func (s *Session) ApplyEdit(ctx context.Context, instruction string) (imagedata.Image, error) {
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return imagedata.Image{}, ErrEmptyInstruction
	}
	src, err := s.begin(StateEditing, instruction)
	if err != nil {
		return imagedata.Image{}, err
	}

	start := time.Now()
	img, editErr := s.edit(ctx, src, instruction)
	elapsed := time.Since(start)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		s.logger.Debug().Msg("Dropping edit result for closed session")
		return imagedata.Image{}, ErrClosed
	}
	s.state = StateIdle

	m := metrics.New(metrics.Namespace).
		Dimension("Operation", "edit").
		Metric("EditLatencyMs", float64(elapsed.Milliseconds()), metrics.UnitMilliseconds)
	if editErr != nil {
		c := failure.Classify(editErr)
		s.lastErr = &LastError{Message: EditFailedMessage, Category: c.Category}
		m.Dimension("Category", string(c.Category)).Count("EditFailed").Flush()
		s.logger.Warn().Err(editErr).Str("category", string(c.Category)).Dur("duration", elapsed).Msg("Edit failed")
		return imagedata.Image{}, fmt.Errorf("%w: %w", ErrEditFailed, editErr)
	}
	m.Count("EditApplied").Flush()

	s.current = img
	s.candidates = nil
	s.selected = -1
	s.instruction = ""
	s.commitLocked(img)
	s.logger.Info().Dur("duration", elapsed).Msg("Edit applied")
	return img, nil
}

// GenerateVariations runs count edits of the current image in parallel, all
// with the same instruction. count <= 0 uses the session default. Failed
// attempts are dropped; only an all-failed round is an error. Candidates are
// not committed until one is selected.
func (s *Session) GenerateVariations(ctx context.Context, instruction string, count int) ([]imagedata.Image, error) {
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return nil, ErrEmptyInstruction
	}
	if count <= 0 {
		count = s.opts.Variations
	}
	if count > MaxVariations {
		s.logger.Debug().Int("requested", count).Int("max", MaxVariations).Msg("Capping variation count")
		count = MaxVariations
	}
	src, err := s.begin(StateGeneratingVariations, instruction)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	outcomes := fanout.Settle(ctx, count, s.opts.MaxParallel, func(ctx context.Context, _ int) (imagedata.Image, error) {
		return s.edit(ctx, src, instruction)
	})
	elapsed := time.Since(start)
	succeeded := fanout.Successes(outcomes)
	errs := fanout.Errors(outcomes)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		s.logger.Debug().Msg("Dropping variations for closed session")
		return nil, ErrClosed
	}
	s.state = StateIdle

	metrics.New(metrics.Namespace).
		Dimension("Operation", "variations").
		Metric("VariationsLatencyMs", float64(elapsed.Milliseconds()), metrics.UnitMilliseconds).
		Metric("VariationsRequested", float64(count), metrics.UnitCount).
		Metric("VariationsSucceeded", float64(len(succeeded)), metrics.UnitCount).
		Flush()

	for _, e := range errs {
		s.logger.Debug().Err(e).Msg("Variation attempt failed")
	}

	if len(succeeded) == 0 {
		c := failure.Classify(errors.Join(errs...))
		s.lastErr = &LastError{Message: VariationsFailedMessage, Category: c.Category}
		s.logger.Warn().Int("attempts", count).Str("category", string(c.Category)).Msg("All variation attempts failed")
		return nil, fmt.Errorf("%w: %w", ErrVariationsFailed, errors.Join(errs...))
	}

	s.candidates = succeeded
	s.instruction = ""
	s.logger.Info().
		Int("attempts", count).
		Int("succeeded", len(succeeded)).
		Dur("duration", elapsed).
		Msg("Variations generated")
	return append([]imagedata.Image(nil), succeeded...), nil
}

// SelectVariation makes candidate index the current image and commits it.
// The candidate list is kept so another one can be picked. Reselecting the
// current candidate does nothing.
func (s *Session) SelectVariation(index int) (imagedata.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return imagedata.Image{}, ErrClosed
	}
	if index < 0 || index >= len(s.candidates) {
		return imagedata.Image{}, ErrUnknownCandidate
	}
	img := s.candidates[index]
	if s.selected == index && s.current.Equal(img) {
		return img, nil
	}
	s.current = img
	s.selected = index
	s.commitLocked(img)
	s.logger.Info().Int("index", index).Msg("Variation selected")
	return img, nil
}

// Close ends the session and returns its final image. Completions that
// arrive afterwards are discarded and nothing more is committed.
func (s *Session) Close() imagedata.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateClosed {
		s.state = StateClosed
		s.candidates = nil
		s.logger.Debug().Msg("Edit session closed")
	}
	return s.current
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateClosed
}

// View returns a copy of the session state.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := View{
		State:       s.state,
		Base:        s.base,
		Current:     s.current,
		Candidates:  append([]imagedata.Image(nil), s.candidates...),
		Selected:    s.selected,
		Instruction: s.instruction,
	}
	if s.lastErr != nil {
		e := *s.lastErr
		v.LastError = &e
	}
	return v
}

// begin moves an idle session into next, clearing candidates and the last
// error, and returns the image to edit.
func (s *Session) begin(next State, instruction string) (imagedata.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateClosed:
		return imagedata.Image{}, ErrClosed
	case StateIdle:
	default:
		return imagedata.Image{}, ErrBusy
	}
	s.state = next
	s.candidates = nil
	s.selected = -1
	s.lastErr = nil
	s.instruction = instruction
	return s.current, nil
}

func (s *Session) edit(ctx context.Context, src imagedata.Image, instruction string) (imagedata.Image, error) {
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}
	img, err := s.editor.Edit(ctx, src, instruction)
	if err != nil {
		return imagedata.Image{}, err
	}
	if img.IsZero() {
		return imagedata.Image{}, imagedata.ErrEmptyImage
	}
	return img, nil
}

func (s *Session) commitLocked(img imagedata.Image) {
	if !s.commit(img) {
		s.logger.Warn().Msg("Dish no longer accepts edits, commit dropped")
	}
}
