package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/tilog/internal/apperr"
	"github.com/starford/tilog/internal/noteservice"
	"github.com/starford/tilog/internal/slug"
)

// Handler holds API route handlers.
type Handler struct {
	svc *noteservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *noteservice.Service) *Handler {
	return &Handler{svc: svc}
}

func internalError(w http.ResponseWriter, msg string, err error, attrs ...any) {
	slog.Error(msg, append(attrs, slog.String("error", err.Error()))...)
	writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
}

// ListNotes handles GET /api/notes.
//
//	@Summary		List notes newest first, one page at a time
//	@Tags			notes
//	@Produce		json
//	@Param			page	query		int	false	"Page number, starting at 1"
//	@Success		200		{object}	NoteListResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, errorBody("page must be a positive integer"))
			return
		}
		page = n
	}
	listing, err := h.svc.Page(r.Context(), page)
	if err != nil {
		internalError(w, "list notes failed", err)
		return
	}
	writeJSON(w, http.StatusOK, NoteListResponse{
		Notes:      summariesOf(listing.Items),
		Page:       listing.Number,
		TotalPages: listing.TotalPages,
		Total:      listing.TotalNotes,
	})
}

// GetNote handles GET /api/notes/{id}.
//
//	@Summary		Get a single note by identifier
//	@Tags			notes
//	@Produce		json
//	@Param			id	path		string	true	"Note identifier, any case"
//	@Success		200	{object}	NoteDetail
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	note, err := h.svc.Note(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
			return
		}
		internalError(w, "get note failed", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, detailOf(*note))
}

// Archive handles GET /api/archive.
//
//	@Summary		Every note, newest first, without bodies
//	@Tags			notes
//	@Produce		json
//	@Success		200	{array}	NoteSummary
//	@Security		BearerAuth
//	@Router			/archive [get]
func (h *Handler) Archive(w http.ResponseWriter, r *http.Request) {
	notes, err := h.svc.AllNotes(r.Context())
	if err != nil {
		internalError(w, "archive failed", err)
		return
	}
	writeJSON(w, http.StatusOK, summariesOf(notes))
}

// ListTags handles GET /api/tags.
//
//	@Summary		Tags with note counts, most used first
//	@Tags			tags
//	@Produce		json
//	@Success		200	{array}	TagItem
//	@Security		BearerAuth
//	@Router			/tags [get]
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	counts, err := h.svc.AllTags(r.Context())
	if err != nil {
		internalError(w, "list tags failed", err)
		return
	}
	out := make([]TagItem, 0, len(counts))
	for _, c := range counts {
		out = append(out, tagItem(c.Tag, c.Count))
	}
	writeJSON(w, http.StatusOK, out)
}

// NotesByTag handles GET /api/tags/{slug}.
//
//	@Summary		Notes carrying one tag
//	@Tags			tags
//	@Produce		json
//	@Param			slug	path		string	true	"Tag slug"
//	@Success		200		{object}	TagNotesResponse
//	@Security		BearerAuth
//	@Router			/tags/{slug} [get]
func (h *Handler) NotesByTag(w http.ResponseWriter, r *http.Request) {
	tag := slug.SlugToTag(chi.URLParam(r, "slug"))
	notes, err := h.svc.NotesByTag(r.Context(), tag)
	if err != nil {
		internalError(w, "notes by tag failed", err, slog.String("tag", tag))
		return
	}
	writeJSON(w, http.StatusOK, TagNotesResponse{Tag: tag, Notes: summariesOf(notes)})
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across notes
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		internalError(w, "search failed", err, slog.String("query", q))
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Report handles GET /api/report.
//
//	@Summary		Fetch and parse report of the notes directory
//	@Tags			notes
//	@Produce		json
//	@Success		200	{object}	noteservice.Report
//	@Failure		503	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/report [get]
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	rep, err := h.svc.Report(r.Context())
	if err != nil {
		if errors.Is(err, apperr.ErrDirectoryAccess) {
			writeJSON(w, http.StatusServiceUnavailable, errorBody(err.Error()))
			return
		}
		internalError(w, "report failed", err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// InvalidateCache handles DELETE /api/cache.
//
//	@Summary		Drop cached scan results and resync the search index
//	@Tags			cache
//	@Success		204	"Cache cleared"
//	@Security		BearerAuth
//	@Router			/cache [delete]
func (h *Handler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.InvalidateCache(); err != nil {
		internalError(w, "invalidate cache failed", err)
		return
	}
	if _, err := h.svc.SyncIndex(r.Context()); err != nil {
		internalError(w, "resync index failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
