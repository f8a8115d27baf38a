package dish

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Token identifies a dish within one menu generation. Commits carrying a
// token from an earlier epoch are dropped, so completions that race a
// ReplaceAll never touch the new collection.
type Token struct {
	ID    string
	Epoch uint64
}

// Mutation edits a copy of a dish snapshot. Changes to ID are ignored.
type Mutation func(d *Dish)

// Registry is the ordered, in-memory dish collection. Each dish is stored as
// an immutable snapshot keyed by id; updates swap the snapshot under the
// lock, so readers never observe a partially applied change.
type Registry struct {
	mu    sync.RWMutex
	epoch uint64
	order []string
	byID  map[string]Dish
	now   func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byID: make(map[string]Dish),
		now:  time.Now,
	}
}

// ReplaceAll discards the current collection and installs dishes in the
// given order. It starts a new epoch, invalidating every outstanding Token.
// Dishes with an empty or duplicate id are skipped.
func (r *Registry) ReplaceAll(dishes []Dish) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.epoch++
	r.order = make([]string, 0, len(dishes))
	r.byID = make(map[string]Dish, len(dishes))
	now := r.now()
	for _, d := range dishes {
		if d.ID == "" {
			continue
		}
		if _, dup := r.byID[d.ID]; dup {
			log.Warn().Str("dish", d.ID).Msg("Skipping duplicate dish id")
			continue
		}
		if d.Status == "" {
			d.Status = StatusIdle
		}
		d.UpdatedAt = now
		r.order = append(r.order, d.ID)
		r.byID[d.ID] = d
	}

	log.Debug().
		Uint64("epoch", r.epoch).
		Int("dishes", len(r.order)).
		Msg("Dish registry replaced")
	return r.epoch
}

// Epoch returns the current menu epoch.
func (r *Registry) Epoch() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.epoch
}

// List returns the dishes in extraction order.
func (r *Registry) List() []Dish {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Dish, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// Len returns the number of dishes.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Get returns the dish snapshot and a token for committing against it.
func (r *Registry) Get(id string) (Dish, Token, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byID[id]
	if !ok {
		return Dish{}, Token{}, false
	}
	return d, Token{ID: id, Epoch: r.epoch}, true
}

// AnyGenerating reports whether at least one dish is generating.
func (r *Registry) AnyGenerating() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.byID {
		if d.Status == StatusGenerating {
			return true
		}
	}
	return false
}

// UpdateByID applies mutation to the dish with the given id in the current
// epoch. A missing id is a no-op; the return value reports whether a dish
// was updated.
func (r *Registry) UpdateByID(id string, mutation Mutation) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.applyLocked(id, mutation)
}

// Update applies mutation only if tok still refers to the current epoch and
// the dish still exists. Stale tokens are dropped silently.
func (r *Registry) Update(tok Token, mutation Mutation) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tok.Epoch != r.epoch {
		log.Debug().
			Str("dish", tok.ID).
			Uint64("token_epoch", tok.Epoch).
			Uint64("epoch", r.epoch).
			Msg("Dropping stale dish update")
		return false
	}
	return r.applyLocked(tok.ID, mutation)
}

func (r *Registry) applyLocked(id string, mutation Mutation) bool {
	current, ok := r.byID[id]
	if !ok {
		return false
	}
	next := current
	mutation(&next)
	next.ID = current.ID
	next.UpdatedAt = r.now()
	r.byID[id] = next
	return true
}
