package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quadrantlab/quadrant/internal/application/space"
	"github.com/quadrantlab/quadrant/internal/infrastructure/monitoring/logging"
	"github.com/quadrantlab/quadrant/pkg/errors"
	"github.com/quadrantlab/quadrant/pkg/types/common"
)

// PointHandler serves the attraction point CRUD endpoints.
type PointHandler struct {
	service *space.Service
	logger  logging.Logger
}

func NewPointHandler(service *space.Service, logger logging.Logger) *PointHandler {
	return &PointHandler{service: service, logger: logger.Named("points")}
}

// List handles GET /api/v1/points.
func (h *PointHandler) List(w http.ResponseWriter, r *http.Request) {
	points, err := h.service.ListPoints(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}

// Get handles GET /api/v1/points/{id}.
func (h *PointHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pointID(w, r, h.logger)
	if !ok {
		return
	}
	point, err := h.service.GetPoint(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, point)
}

// Create handles POST /api/v1/points.
func (h *PointHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in space.PointInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	point, err := h.service.CreatePoint(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, point)
}

// Update handles PUT /api/v1/points/{id}.
func (h *PointHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pointID(w, r, h.logger)
	if !ok {
		return
	}
	var in space.PointInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	point, err := h.service.UpdatePoint(r.Context(), id, in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, point)
}

// Delete handles DELETE /api/v1/points/{id}.
func (h *PointHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pointID(w, r, h.logger)
	if !ok {
		return
	}
	if err := h.service.DeletePoint(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": string(id)})
}

func pointID(w http.ResponseWriter, r *http.Request, logger logging.Logger) (common.ID, bool) {
	id := common.ID(chi.URLParam(r, "id"))
	if !id.IsValid() {
		writeError(w, logger, errors.New(errors.ErrCodeBadRequest, "point id must be a UUID"))
		return "", false
	}
	return id, true
}
