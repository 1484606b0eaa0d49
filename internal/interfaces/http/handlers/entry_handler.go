package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/quadrantlab/quadrant/internal/application/space"
	"github.com/quadrantlab/quadrant/internal/domain/designspace"
	"github.com/quadrantlab/quadrant/internal/infrastructure/monitoring/logging"
	"github.com/quadrantlab/quadrant/pkg/errors"
)

// EntryHandler serves the catalog endpoints.
type EntryHandler struct {
	service *space.Service
	logger  logging.Logger
}

func NewEntryHandler(service *space.Service, logger logging.Logger) *EntryHandler {
	return &EntryHandler{service: service, logger: logger.Named("entries")}
}

// List handles GET /api/v1/entries.
func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.ListEntries(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// Get handles GET /api/v1/entries/{id}.
func (h *EntryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, h.logger, errors.New(errors.ErrCodeBadRequest, "entry id must be an integer"))
		return
	}

	entry, err := h.service.GetEntry(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

type replaceEntriesRequest struct {
	Entries []designspace.Entry `json:"entries"`
}

type replaceEntriesResponse struct {
	Count int `json:"count"`
}

// Replace handles PUT /api/v1/entries.  The catalog is swapped wholesale; if
// a projection is already published it is re-derived against the new catalog.
func (h *EntryHandler) Replace(w http.ResponseWriter, r *http.Request) {
	var req replaceEntriesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.service.ReplaceEntries(r.Context(), req.Entries); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, replaceEntriesResponse{Count: len(req.Entries)})
}
