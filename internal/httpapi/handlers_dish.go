package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/fpang/menu-lens/internal/imagedata"
	"github.com/fpang/menu-lens/internal/jobs"
	"github.com/fpang/menu-lens/internal/studio"
)

const maxThumbnailSize = 2048

// /api/dishes/{id}[/{action}]
func (srv *Server) handleDishRoutes(w http.ResponseWriter, r *http.Request) {
	route, ok := jobs.ParseRoute(r.URL.Path, dishesPrefix, "")
	if !ok {
		httpError(w, http.StatusNotFound, "not found")
		return
	}

	switch route.Action {
	case "":
		if !requireMethod(w, r, http.MethodGet) {
			return
		}
		d, ok := srv.studio.Dish(route.ID)
		if !ok {
			httpError(w, http.StatusNotFound, "dish not found")
			return
		}
		respondJSON(w, http.StatusOK, newDishView(d))
	case "generate":
		srv.handleGenerate(w, r, route.ID)
	case "image":
		srv.handleImage(w, r, route.ID)
	case "thumbnail":
		srv.handleThumbnail(w, r, route.ID)
	case "edit":
		srv.handleOpenEdit(w, r, route.ID)
	default:
		httpError(w, http.StatusNotFound, "not found")
	}
}

// POST /api/dishes/{id}/generate
func (srv *Server) handleGenerate(w http.ResponseWriter, r *http.Request, id string) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if err := srv.studio.GenerateAsync(r.Context(), id); err != nil {
		httpError(w, http.StatusNotFound, "dish not found")
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"id": id, "status": "generating"})
}

// GET /api/dishes/{id}/image downloads the PNG.
// POST /api/dishes/{id}/image {image} replaces it with an uploaded data URI.
func (srv *Server) handleImage(w http.ResponseWriter, r *http.Request, id string) {
	if !requireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	if r.Method == http.MethodPost {
		srv.handleUploadImage(w, r, id)
		return
	}
	d, ok := srv.studio.Dish(id)
	if !ok {
		httpError(w, http.StatusNotFound, "dish not found")
		return
	}
	if !d.HasImage() {
		httpError(w, http.StatusNotFound, "dish has no image yet")
		return
	}
	w.Header().Set("Content-Type", imagedata.PNGMIMEType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", imagedata.FileName(d.Name)))
	w.Header().Set("Cache-Control", "no-store")
	w.Write(d.Image.Data)
}

func (srv *Server) handleUploadImage(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Image string `json:"image"`
	}
	if !decodeJSONLimit(w, r, &req, maxUploadBytes) {
		return
	}
	img, err := imagedata.ParseDataURI(req.Image)
	if err != nil {
		httpError(w, http.StatusBadRequest, "image must be a PNG or JPEG data URI")
		return
	}
	d, err := srv.studio.SetImage(id, img)
	switch {
	case errors.Is(err, studio.ErrDishNotFound):
		httpError(w, http.StatusNotFound, "dish not found")
		return
	case errors.Is(err, studio.ErrDishGenerating):
		httpError(w, http.StatusConflict, "dish is generating")
		return
	case err != nil:
		httpError(w, http.StatusInternalServerError, "failed to store image", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, newDishView(d))
}

// GET /api/dishes/{id}/thumbnail?size=N
func (srv *Server) handleThumbnail(w http.ResponseWriter, r *http.Request, id string) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	size := imagedata.DefaultThumbnailMaxDimension
	if raw := r.URL.Query().Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxThumbnailSize {
			httpError(w, http.StatusBadRequest, "invalid size")
			return
		}
		size = n
	}
	d, ok := srv.studio.Dish(id)
	if !ok || !d.HasImage() {
		httpError(w, http.StatusNotFound, "image not found")
		return
	}
	data, mime, err := imagedata.Thumbnail(*d.Image, size)
	if err != nil {
		log.Warn().Err(err).Str("dish", id).Msg("Failed to generate thumbnail")
		httpError(w, http.StatusInternalServerError, "thumbnail generation failed")
		return
	}
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "no-store")
	w.Write(data)
}

// POST /api/dishes/{id}/edit
func (srv *Server) handleOpenEdit(w http.ResponseWriter, r *http.Request, id string) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	sid, session, err := srv.studio.OpenEdit(id)
	switch {
	case errors.Is(err, studio.ErrDishNotFound):
		httpError(w, http.StatusNotFound, "dish not found")
		return
	case errors.Is(err, studio.ErrNoImage):
		httpError(w, http.StatusConflict, "dish has no image to edit")
		return
	case err != nil:
		httpError(w, http.StatusInternalServerError, "failed to open edit session", err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, newEditView(sid, id, session.View()))
}
