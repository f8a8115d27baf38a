package httpapi

import (
	"github.com/fpang/menu-lens/internal/dish"
	"github.com/fpang/menu-lens/internal/edit"
	"github.com/fpang/menu-lens/internal/failure"
	"github.com/fpang/menu-lens/internal/style"
)

type dishView struct {
	ID           string                  `json:"id"`
	Name         string                  `json:"name"`
	Description  string                  `json:"description"`
	Status       dish.Status             `json:"status"`
	HasImage     bool                    `json:"hasImage"`
	ImageStale   bool                    `json:"imageStale,omitempty"`
	Error        *failure.Classification `json:"error,omitempty"`
	ImageURL     string                  `json:"imageUrl,omitempty"`
	ThumbnailURL string                  `json:"thumbnailUrl,omitempty"`
}

func newDishView(d dish.Dish) dishView {
	v := dishView{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Status:      d.Status,
		HasImage:    d.HasImage(),
		ImageStale:  d.ImageStale,
		Error:       d.Failure,
	}
	if v.HasImage {
		v.ImageURL = dishesPrefix + d.ID + "/image"
		v.ThumbnailURL = dishesPrefix + d.ID + "/thumbnail"
	}
	return v
}

func newDishViews(dishes []dish.Dish) []dishView {
	out := make([]dishView, 0, len(dishes))
	for _, d := range dishes {
		out = append(out, newDishView(d))
	}
	return out
}

type menuView struct {
	Dishes     []dishView   `json:"dishes"`
	Style      style.Choice `json:"style"`
	Generating bool         `json:"generating"`
}

type editView struct {
	ID          string          `json:"id"`
	DishID      string          `json:"dishId"`
	State       edit.State      `json:"state"`
	Current     string          `json:"current"`
	Candidates  []string        `json:"candidates"`
	Selected    int             `json:"selected"`
	Instruction string          `json:"instruction"`
	LastError   *edit.LastError `json:"lastError,omitempty"`
}

func newEditView(id, dishID string, v edit.View) editView {
	out := editView{
		ID:          id,
		DishID:      dishID,
		State:       v.State,
		Current:     v.Current.DataURI(),
		Candidates:  make([]string, 0, len(v.Candidates)),
		Selected:    v.Selected,
		Instruction: v.Instruction,
		LastError:   v.LastError,
	}
	for _, c := range v.Candidates {
		out.Candidates = append(out.Candidates, c.DataURI())
	}
	return out
}
