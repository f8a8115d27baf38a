// Package httpapi exposes the studio as a JSON API. The same handler backs
// the local web server and the Lambda function URL.
package httpapi

import (
	"net/http"

	"github.com/fpang/menu-lens/internal/studio"
)

const (
	dishesPrefix = "/api/dishes/"
	editPrefix   = "/api/edit/"
)

// Server routes API requests to a Studio.
type Server struct {
	studio *studio.Studio
}

// NewHandler returns the API handler with logging and CORS middleware.
func NewHandler(s *studio.Studio) http.Handler {
	srv := &Server{studio: s}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", srv.handleHealth)
	mux.HandleFunc("/api/menu/analyze", srv.handleAnalyze)
	mux.HandleFunc("/api/dishes", srv.handleDishes)
	mux.HandleFunc(dishesPrefix, srv.handleDishRoutes)
	mux.HandleFunc("/api/style", srv.handleStyle)
	mux.HandleFunc(editPrefix, srv.handleEditRoutes)
	return withLogging(withCORS(mux))
}

// GET /api/health
func (srv *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "ok",
		"dishes":       len(srv.studio.Dishes()),
		"editSessions": srv.studio.OpenSessions(),
	})
}
