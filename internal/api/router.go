package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/tilog/internal/noteservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *noteservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/notes", h.ListNotes)
	r.Get("/notes/{id}", h.GetNote)
	r.Get("/archive", h.Archive)
	r.Get("/tags", h.ListTags)
	r.Get("/tags/{slug}", h.NotesByTag)
	r.Get("/search", h.Search)
	r.Get("/report", h.Report)
	r.Delete("/cache", h.InvalidateCache)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}
	return r
}
