package handlers

import (
	"net/http"

	"github.com/quadrantlab/quadrant/internal/application/space"
	"github.com/quadrantlab/quadrant/internal/domain/designspace"
	"github.com/quadrantlab/quadrant/internal/infrastructure/monitoring/logging"
)

// SpaceHandler serves the design-space engine endpoints.
type SpaceHandler struct {
	service *space.Service
	logger  logging.Logger
}

func NewSpaceHandler(service *space.Service, logger logging.Logger) *SpaceHandler {
	return &SpaceHandler{service: service, logger: logger.Named("space")}
}

type reloadRequest struct {
	Profile string `json:"profile"`
}

type projectionSummary struct {
	Version uint64                  `json:"version"`
	Profile designspace.AxisProfile `json:"profile"`
	Entries int                     `json:"entries"`
}

// Reload handles POST /api/v1/space/reload.  The catalog is re-fetched and a
// fresh projection derived and published under the requested axis profile.
func (h *SpaceHandler) Reload(w http.ResponseWriter, r *http.Request) {
	var req reloadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	profile, err := designspace.ParseAxisProfile(req.Profile)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	p, err := h.service.Reload(r.Context(), profile)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, projectionSummary{
		Version: p.Version,
		Profile: p.Profile,
		Entries: len(p.Entries),
	})
}

// Projection handles GET /api/v1/space/projection.  It returns the published
// projection snapshot, including per-entry rank-space placements.
func (h *SpaceHandler) Projection(w http.ResponseWriter, r *http.Request) {
	p := h.service.Projection()
	if p == nil {
		writeError(w, h.logger, designspace.ErrNotReady())
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Recommend handles POST /api/v1/space/recommend.
func (h *SpaceHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	var in space.RecommendInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	result, err := h.service.Recommend(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type denormalizeRequest struct {
	Point designspace.NormalizedPoint `json:"point"`
}

// Denormalize handles POST /api/v1/space/denormalize.
func (h *SpaceHandler) Denormalize(w http.ResponseWriter, r *http.Request) {
	var req denormalizeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	coord, err := h.service.Denormalize(r.Context(), req.Point)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, coord)
}

type contourResponse struct {
	Rank int                 `json:"rank"`
	Path []designspace.Point `json:"path"`
}

// Contour handles POST /api/v1/space/contour.
func (h *SpaceHandler) Contour(w http.ResponseWriter, r *http.Request) {
	var in space.ContourInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	path, err := h.service.Contour(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, contourResponse{Rank: in.Rank, Path: path})
}
