package httpapi

import (
	"errors"
	"net/http"

	"github.com/fpang/menu-lens/internal/edit"
	"github.com/fpang/menu-lens/internal/jobs"
)

// /api/edit/{id}/{action}
func (srv *Server) handleEditRoutes(w http.ResponseWriter, r *http.Request) {
	route, ok := jobs.ParseRoute(r.URL.Path, editPrefix, jobs.EditPrefix)
	if !ok || route.Action == "" {
		httpError(w, http.StatusNotFound, "not found")
		return
	}
	session, dishID, ok := srv.studio.Session(route.ID)
	if !ok {
		httpError(w, http.StatusNotFound, "edit session not found")
		return
	}

	switch route.Action {
	case "state":
		if !requireMethod(w, r, http.MethodGet) {
			return
		}
	case "instruction":
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		var req struct {
			Instruction string `json:"instruction"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		session.SetInstruction(req.Instruction)
	case "apply":
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		var req struct {
			Instruction string `json:"instruction"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		if _, err := session.ApplyEdit(r.Context(), req.Instruction); err != nil && !respondEditError(w, err) {
			return
		}
	case "variations":
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		var req struct {
			Instruction string `json:"instruction"`
			Count       int    `json:"count"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		if _, err := session.GenerateVariations(r.Context(), req.Instruction, req.Count); err != nil && !respondEditError(w, err) {
			return
		}
	case "select":
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		var req struct {
			Index int `json:"index"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		if _, err := session.SelectVariation(req.Index); err != nil && !respondEditError(w, err) {
			return
		}
	case "close":
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		if _, err := srv.studio.CloseEdit(route.ID); err != nil {
			httpError(w, http.StatusNotFound, "edit session not found")
			return
		}
		respondJSON(w, http.StatusOK, newEditView(route.ID, dishID, session.View()))
		return
	default:
		httpError(w, http.StatusNotFound, "not found")
		return
	}

	respondJSON(w, http.StatusOK, newEditView(route.ID, dishID, session.View()))
}

// respondEditError writes the response for an edit operation error. Model
// failures are recorded on the session and reported through the normal
// state view, so it returns true (continue) for those.
func respondEditError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, edit.ErrEmptyInstruction):
		httpError(w, http.StatusBadRequest, "instruction is required")
	case errors.Is(err, edit.ErrBusy):
		httpError(w, http.StatusConflict, err.Error())
	case errors.Is(err, edit.ErrClosed):
		httpError(w, http.StatusGone, err.Error())
	case errors.Is(err, edit.ErrUnknownCandidate):
		httpError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, edit.ErrEditFailed), errors.Is(err, edit.ErrVariationsFailed):
		return true
	default:
		httpError(w, http.StatusInternalServerError, "edit failed", err.Error())
	}
	return false
}
