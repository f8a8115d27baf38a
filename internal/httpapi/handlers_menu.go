package httpapi

import (
	"errors"
	"net/http"

	"github.com/fpang/menu-lens/internal/dish"
	"github.com/fpang/menu-lens/internal/intake"
	"github.com/fpang/menu-lens/internal/studio"
	"github.com/fpang/menu-lens/internal/style"
)

// POST /api/menu/analyze {"menu": "..."}
func (srv *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		Menu string `json:"menu"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	dishes, err := srv.studio.AnalyzeMenu(r.Context(), req.Menu)
	switch {
	case errors.Is(err, intake.ErrEmptyMenu):
		httpError(w, http.StatusBadRequest, "menu text is required")
		return
	case err != nil:
		httpError(w, http.StatusBadGateway, intake.AnalysisFailedMessage, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, srv.menuView(dishes))
}

// GET /api/dishes
func (srv *Server) handleDishes(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	respondJSON(w, http.StatusOK, srv.menuView(srv.studio.Dishes()))
}

// GET /api/style, POST /api/style {"style": "...", "customPrompt": "..."}
func (srv *Server) handleStyle(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	if r.Method == http.MethodGet {
		respondJSON(w, http.StatusOK, srv.styleView())
		return
	}

	var req struct {
		Style  string `json:"style"`
		Custom string `json:"customPrompt"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	ps := srv.studio.Style().Style
	if req.Style != "" {
		parsed, err := style.Parse(req.Style)
		if err != nil {
			httpError(w, http.StatusBadRequest, err.Error())
			return
		}
		ps = parsed
	}
	if err := srv.studio.SetStyle(ps, req.Custom); err != nil {
		if errors.Is(err, studio.ErrGenerating) {
			httpError(w, http.StatusConflict, err.Error())
			return
		}
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, srv.styleView())
}

func (srv *Server) menuView(dishes []dish.Dish) menuView {
	return menuView{
		Dishes:     newDishViews(dishes),
		Style:      srv.studio.Style(),
		Generating: srv.studio.Generating(),
	}
}

type styleOption struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func (srv *Server) styleView() map[string]interface{} {
	options := make([]styleOption, 0, len(style.All()))
	for _, s := range style.All() {
		options = append(options, styleOption{Name: string(s), Slug: s.Slug()})
	}
	return map[string]interface{}{
		"current":    srv.studio.Style(),
		"options":    options,
		"generating": srv.studio.Generating(),
	}
}
