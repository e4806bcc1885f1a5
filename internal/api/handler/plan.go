package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/safewalk/safewalk/internal/api/models"
	"github.com/safewalk/safewalk/internal/api/response"
	"github.com/safewalk/safewalk/internal/planner"
	"github.com/safewalk/safewalk/internal/risk"
	"github.com/safewalk/safewalk/internal/routing"
	"github.com/safewalk/safewalk/pkg/geo"
)

// ZoneSource supplies the danger-zone snapshot for a planning request.
type ZoneSource interface {
	ActiveZones(ctx context.Context) ([]risk.DangerZone, error)
}

// CorridorSource supplies the corridor snapshot for a planning request.
type CorridorSource interface {
	Snapshot(ctx context.Context) ([]risk.CorridorSegment, error)
}

// RoutePlanner plans safety-ranked routes.
type RoutePlanner interface {
	Plan(ctx context.Context, req planner.PlanRequest) (*risk.RoutePlanResult, error)
}

// PlanHandler handles route planning requests.
type PlanHandler struct {
	planner   RoutePlanner
	zones     ZoneSource
	corridors CorridorSource
	logger    zerolog.Logger
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(p RoutePlanner, zones ZoneSource, corridors CorridorSource, logger zerolog.Logger) *PlanHandler {
	return &PlanHandler{
		planner:   p,
		zones:     zones,
		corridors: corridors,
		logger:    logger,
	}
}

// PlanRoutes handles POST /v1/routes:plan.
func (h *PlanHandler) PlanRoutes(w http.ResponseWriter, r *http.Request) {
	var req models.PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid request body", nil)
		return
	}

	if fieldErrors := validatePlanRequest(&req); len(fieldErrors) > 0 {
		response.BadRequest(w, r, "invalid planning request", fieldErrors)
		return
	}

	alternatives := 3
	if req.Alternatives != nil {
		alternatives = *req.Alternatives
		if alternatives > models.MaxPlanAlternatives {
			alternatives = models.MaxPlanAlternatives
		}
	}

	ctx := r.Context()

	// A broken hazard or corridor store degrades planning to raw-geometry
	// ranking rather than failing the request.
	zones, err := h.zones.ActiveZones(ctx)
	if err != nil {
		h.logger.Warn().Err(err).Msg("danger-zone snapshot unavailable, planning without zones")
		zones = nil
	}

	corridors, err := h.corridors.Snapshot(ctx)
	if err != nil {
		h.logger.Warn().Err(err).Msg("corridor snapshot unavailable, planning without corridors")
		corridors = nil
	}

	result, err := h.planner.Plan(ctx, planner.PlanRequest{
		Start:        geo.LatLng{Lat: req.Start.Lat, Lng: req.Start.Lng},
		End:          geo.LatLng{Lat: req.End.Lat, Lng: req.End.Lng},
		Alternatives: alternatives,
		Zones:        zones,
		Corridors:    corridors,
	})
	if err != nil {
		h.writePlanError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, result)
}

// writePlanError maps routing failures onto problem responses.
func (h *PlanHandler) writePlanError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, routing.ErrInvalidCoordinates):
		response.BadRequest(w, r, "the routing source rejected the coordinates", nil)
	case errors.Is(err, routing.ErrRateLimited), errors.Is(err, routing.ErrSourceUnavailable):
		h.logger.Error().Err(err).Msg("routing source failure during planning")
		response.ServiceUnavailable(w, r, "the routing source is temporarily unavailable")
	default:
		h.logger.Error().Err(err).Msg("unexpected planning failure")
		response.InternalError(w, r, "failed to plan routes")
	}
}

// validatePlanRequest checks coordinate ranges and the alternatives count.
func validatePlanRequest(req *models.PlanRequest) []models.FieldError {
	var errs []models.FieldError

	errs = append(errs, validatePoint(req.Start, "start")...)
	errs = append(errs, validatePoint(req.End, "end")...)

	if req.Alternatives != nil && *req.Alternatives < 1 {
		errs = append(errs, models.FieldError{Field: "alternatives", Message: "must be at least 1"})
	}

	return errs
}

// validatePoint checks WGS84 ranges for one request point.
func validatePoint(p models.Point, prefix string) []models.FieldError {
	var errs []models.FieldError

	if p.Lat < -90 || p.Lat > 90 {
		errs = append(errs, models.FieldError{
			Field:   prefix + ".lat",
			Message: "must be between -90 and 90",
		})
	}
	if p.Lng < -180 || p.Lng > 180 {
		errs = append(errs, models.FieldError{
			Field:   prefix + ".lng",
			Message: "must be between -180 and 180",
		})
	}

	return errs
}
