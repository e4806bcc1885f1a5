package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/safewalk/safewalk/internal/api/models"
	"github.com/safewalk/safewalk/internal/api/response"
	"github.com/safewalk/safewalk/internal/corridor"
	"github.com/safewalk/safewalk/internal/risk"
	"github.com/safewalk/safewalk/pkg/geo"
)

// CorridorHandler handles the admin corridor endpoints.
type CorridorHandler struct {
	service *corridor.Service
}

// NewCorridorHandler creates a new CorridorHandler.
func NewCorridorHandler(service *corridor.Service) *CorridorHandler {
	return &CorridorHandler{service: service}
}

// ListCorridors handles GET /v1/admin/corridors.
func (h *CorridorHandler) ListCorridors(w http.ResponseWriter, r *http.Request) {
	corridors, err := h.service.ListCorridors(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	items := make([]models.Corridor, 0, len(corridors))
	for _, c := range corridors {
		items = append(items, toAPICorridor(c))
	}

	response.JSON(w, r, http.StatusOK, models.CorridorList{Items: items})
}

// CreateCorridor handles POST /v1/admin/corridors.
func (h *CorridorHandler) CreateCorridor(w http.ResponseWriter, r *http.Request) {
	var req models.CorridorCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid request body", nil)
		return
	}

	created, err := h.service.CreateCorridor(r.Context(), corridor.CreateInput{
		Name:     req.Name,
		Kind:     risk.CorridorKind(req.Kind),
		Polyline: toPolyline(req.Polyline),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.Created(w, r, "/v1/admin/corridors/"+created.ID, toAPICorridor(created))
}

// UpdateCorridor handles PUT /v1/admin/corridors/{corridorId}.
func (h *CorridorHandler) UpdateCorridor(w http.ResponseWriter, r *http.Request) {
	var req models.CorridorUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid request body", nil)
		return
	}

	input := corridor.UpdateInput{
		Name:     req.Name,
		Polyline: toPolyline(req.Polyline),
	}
	if req.Kind != nil {
		kind := risk.CorridorKind(*req.Kind)
		input.Kind = &kind
	}

	updated, err := h.service.UpdateCorridor(r.Context(), chi.URLParam(r, "corridorId"), input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, toAPICorridor(updated))
}

// DeleteCorridor handles DELETE /v1/admin/corridors/{corridorId}.
func (h *CorridorHandler) DeleteCorridor(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCorridor(r.Context(), chi.URLParam(r, "corridorId")); err != nil {
		h.writeError(w, r, err)
		return
	}

	response.NoContent(w, r)
}

// writeError maps corridor service errors onto problem responses.
func (h *CorridorHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *corridor.ValidationError
	switch {
	case errors.As(err, &ve):
		response.BadRequest(w, r, "invalid corridor", toCorridorFieldErrors(ve.Errors))
	case errors.Is(err, corridor.ErrCorridorNotFound):
		response.NotFound(w, r, "corridor not found")
	default:
		response.InternalError(w, r, "failed to process corridor")
	}
}

// toCorridorFieldErrors converts corridor field errors to API field errors.
func toCorridorFieldErrors(errs []corridor.FieldError) []models.FieldError {
	result := make([]models.FieldError, 0, len(errs))
	for _, fe := range errs {
		result = append(result, models.FieldError{Field: fe.Field, Message: fe.Message})
	}
	return result
}

// toAPICorridor converts a domain corridor to an API corridor.
func toAPICorridor(c *corridor.Corridor) models.Corridor {
	points := make([]models.Point, 0, len(c.Polyline))
	for _, p := range c.Polyline {
		points = append(points, models.Point{Lat: p.Lat, Lng: p.Lng})
	}

	return models.Corridor{
		ID:           c.ID,
		Name:         c.Name,
		Kind:         string(c.Kind),
		Polyline:     points,
		LengthMeters: c.LengthMeters(),
		CreatedAt:    models.Timestamp(c.CreatedAt),
		UpdatedAt:    models.Timestamp(c.UpdatedAt),
	}
}

// toPolyline converts API points to domain coordinates. An empty slice
// maps to nil so update requests can omit the polyline.
func toPolyline(points []models.Point) []geo.LatLng {
	if len(points) == 0 {
		return nil
	}
	result := make([]geo.LatLng, 0, len(points))
	for _, p := range points {
		result = append(result, geo.LatLng{Lat: p.Lat, Lng: p.Lng})
	}
	return result
}
