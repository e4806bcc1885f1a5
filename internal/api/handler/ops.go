// Package handler provides HTTP handlers for the SafeWalk API.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/safewalk/safewalk/internal/api/models"
	"github.com/safewalk/safewalk/internal/api/response"
	"github.com/safewalk/safewalk/internal/provider/resilience"
)

// ReadyCheck verifies a hard dependency, typically a database ping.
type ReadyCheck func(ctx context.Context) error

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version    string
	buildTime  string
	registry   *resilience.Registry
	readyCheck ReadyCheck
}

// NewOpsHandler creates a new OpsHandler. registry and readyCheck are
// optional.
func NewOpsHandler(version, buildTime string, registry *resilience.Registry, readyCheck ReadyCheck) *OpsHandler {
	return &OpsHandler{
		version:    version,
		buildTime:  buildTime,
		registry:   registry,
		readyCheck: readyCheck,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}

	if h.readyCheck != nil {
		if err := h.readyCheck(r.Context()); err != nil {
			health.Status = models.HealthStatusFail
			health.Details = map[string]interface{}{"error": err.Error()}
			response.JSON(w, r, http.StatusServiceUnavailable, health)
			return
		}
	}

	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status - provider circuit health.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	now := models.Timestamp(time.Now())

	status := models.SystemStatus{
		Status:    models.HealthStatusOK,
		Time:      now,
		Providers: []models.ProviderStatus{},
	}

	if h.registry != nil {
		for _, health := range h.registry.GetAllHealth() {
			status.Providers = append(status.Providers, toProviderStatus(health))
		}
	}

	for _, p := range status.Providers {
		if p.Status != models.HealthStatusOK {
			status.Status = models.HealthStatusDegraded
			break
		}
	}

	response.JSON(w, r, http.StatusOK, status)
}

// toProviderStatus maps registry health onto the API model.
func toProviderStatus(health *resilience.ProviderHealth) models.ProviderStatus {
	status := models.ProviderStatus{
		Provider:     health.Name,
		Status:       models.HealthStatusOK,
		CircuitState: health.CircuitState.String(),
	}

	switch {
	case health.IsUnhealthy():
		status.Status = models.HealthStatusFail
	case health.IsDegraded():
		status.Status = models.HealthStatusDegraded
	}

	if health.LastSuccessAt != nil {
		ts := models.Timestamp(*health.LastSuccessAt)
		status.LastSuccessAt = &ts
	}
	if health.LastFailureAt != nil {
		ts := models.Timestamp(*health.LastFailureAt)
		status.LastFailureAt = &ts
	}
	if health.LastError != "" {
		msg := health.LastError
		status.Message = &msg
	}

	return status
}
