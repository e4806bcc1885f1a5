package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/safewalk/safewalk/internal/api/models"
	"github.com/safewalk/safewalk/internal/api/response"
	"github.com/safewalk/safewalk/internal/hazard"
	"github.com/safewalk/safewalk/pkg/geo"
)

// HazardHandler handles hazard report endpoints.
type HazardHandler struct {
	service *hazard.Service
}

// NewHazardHandler creates a new HazardHandler.
func NewHazardHandler(service *hazard.Service) *HazardHandler {
	return &HazardHandler{service: service}
}

// CreateReport handles POST /v1/hazards.
func (h *HazardHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	var req models.HazardCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid request body", nil)
		return
	}

	report, err := h.service.CreateReport(r.Context(), hazard.CreateInput{
		Point:         geo.LatLng{Lat: req.Point.Lat, Lng: req.Point.Lng},
		Category:      req.Category,
		Severity:      req.Severity,
		PriorityScore: req.PriorityScore,
		Description:   req.Description,
		ReporterRef:   req.ReporterRef,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.Created(w, r, "/v1/hazards/"+report.ID, toAPIReport(report))
}

// ListReports handles GET /v1/hazards.
func (h *HazardHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	opts := hazard.ListOptions{
		Status: hazard.Status(r.URL.Query().Get("status")),
		Cursor: r.URL.Query().Get("cursor"),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			response.BadRequest(w, r, "limit must be a positive integer", nil)
			return
		}
		opts.Limit = limit
	}

	result, err := h.service.ListReports(r.Context(), opts)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	items := make([]models.HazardReport, 0, len(result.Items))
	for _, report := range result.Items {
		items = append(items, toAPIReport(report))
	}

	var nextCursor *string
	if result.NextCursor != "" {
		nextCursor = &result.NextCursor
	}

	response.JSON(w, r, http.StatusOK, models.PagedHazardReports{
		Items: items,
		Meta: models.PagedResponseMeta{
			Limit:      limit,
			NextCursor: nextCursor,
		},
	})
}

// GetReport handles GET /v1/hazards/{hazardId}.
func (h *HazardHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.GetReport(r.Context(), chi.URLParam(r, "hazardId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, toAPIReport(report))
}

// ResolveReport handles POST /v1/hazards/{hazardId}:resolve.
func (h *HazardHandler) ResolveReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.ResolveReport(r.Context(), chi.URLParam(r, "hazardId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, toAPIReport(report))
}

// writeError maps hazard service errors onto problem responses.
func (h *HazardHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *hazard.ValidationError
	switch {
	case errors.As(err, &ve):
		response.BadRequest(w, r, "invalid hazard report", toAPIFieldErrors(ve.Errors))
	case errors.Is(err, hazard.ErrReportNotFound):
		response.NotFound(w, r, "hazard report not found")
	default:
		response.InternalError(w, r, "failed to process hazard report")
	}
}

// toAPIReport converts a domain report to an API report.
func toAPIReport(report *hazard.Report) models.HazardReport {
	result := models.HazardReport{
		ID:            report.ID,
		Point:         models.Point{Lat: report.Point.Lat, Lng: report.Point.Lng},
		Category:      report.Category,
		Severity:      report.Severity,
		PriorityScore: report.PriorityScore,
		Description:   report.Description,
		Status:        string(report.Status),
		CreatedAt:     models.Timestamp(report.CreatedAt),
		UpdatedAt:     models.Timestamp(report.UpdatedAt),
	}
	if report.ResolvedAt != nil {
		ts := models.Timestamp(*report.ResolvedAt)
		result.ResolvedAt = &ts
	}
	return result
}

// toAPIFieldErrors converts hazard field errors to API field errors.
func toAPIFieldErrors(errs []hazard.FieldError) []models.FieldError {
	result := make([]models.FieldError, 0, len(errs))
	for _, fe := range errs {
		result = append(result, models.FieldError{Field: fe.Field, Message: fe.Message})
	}
	return result
}
