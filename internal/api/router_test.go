package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safewalk/safewalk/internal/api"
	"github.com/safewalk/safewalk/internal/api/models"
	"github.com/safewalk/safewalk/internal/corridor"
	"github.com/safewalk/safewalk/internal/hazard"
	"github.com/safewalk/safewalk/internal/planner"
	"github.com/safewalk/safewalk/internal/provider/resilience"
	"github.com/safewalk/safewalk/internal/risk"
	"github.com/safewalk/safewalk/internal/routing"
	"github.com/safewalk/safewalk/pkg/geo"
)

// stubFetcher returns canned route alternatives for planner tests.
type stubFetcher struct {
	resp *routing.AlternativesResponse
	err  error
}

func (f *stubFetcher) GetAlternatives(_ context.Context, _ routing.AlternativesRequest) (*routing.AlternativesResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *stubFetcher) ProviderName() string { return "stub" }

// straightRoute builds a north-south route at the given longitude.
func straightRoute(lng float64, points int, distance float64) routing.Route {
	coords := make([]geo.LatLng, 0, points)
	for i := 0; i < points; i++ {
		coords = append(coords, geo.LatLng{Lat: 52.37 + float64(i)*0.002, Lng: lng})
	}
	return routing.Route{
		Coordinates:     coords,
		DistanceMeters:  distance,
		DurationSeconds: distance / 1.4,
	}
}

func defaultStubFetcher() *stubFetcher {
	return &stubFetcher{
		resp: &routing.AlternativesResponse{
			Routes: []routing.Route{
				straightRoute(4.89, 5, 900),
				straightRoute(4.91, 5, 1100),
			},
			Provider:  "stub",
			FetchedAt: time.Now(),
		},
	}
}

func newTestRouter(fetcher planner.RouteFetcher) http.Handler {
	logger := zerolog.New(io.Discard)

	hazardService := hazard.NewService(hazard.ServiceConfig{
		Repository: hazard.NewInMemoryRepository(),
		Logger:     logger,
	})
	corridorService := corridor.NewService(corridor.ServiceConfig{
		Repository: corridor.NewInMemoryRepository(),
		Logger:     logger,
	})
	plannerService := planner.NewService(planner.ServiceConfig{
		Routes: fetcher,
		Logger: logger,
	})

	return api.NewRouter(api.RouterConfig{
		Version:         "test",
		BuildTime:       "2024-01-01T00:00:00Z",
		Logger:          logger,
		Planner:         plannerService,
		HazardService:   hazardService,
		CorridorService: corridorService,
		Registry:        resilience.NewRegistry(),
		ReadyCheck:      func(ctx context.Context) error { return nil },
	})
}

func postJSON(t *testing.T, router http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRouter_HealthCheck(t *testing.T) {
	router := newTestRouter(defaultStubFetcher())

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	var health models.Health
	err := json.Unmarshal(w.Body.Bytes(), &health)
	require.NoError(t, err)

	assert.Equal(t, models.HealthStatusOK, health.Status)
}

func TestRouter_ReadinessCheck(t *testing.T) {
	router := newTestRouter(defaultStubFetcher())

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/ready", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var health models.Health
	err := json.Unmarshal(w.Body.Bytes(), &health)
	require.NoError(t, err)

	assert.Equal(t, models.HealthStatusOK, health.Status)
}

func TestRouter_SystemStatus(t *testing.T) {
	router := newTestRouter(defaultStubFetcher())

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/status", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var status models.SystemStatus
	err := json.Unmarshal(w.Body.Bytes(), &status)
	require.NoError(t, err)

	assert.Equal(t, models.HealthStatusOK, status.Status)
	assert.Empty(t, status.Providers)
}

func TestRouter_PlanRoutes(t *testing.T) {
	router := newTestRouter(defaultStubFetcher())

	w := postJSON(t, router, "/v1/routes:plan", models.PlanRequest{
		Start: models.Point{Lat: 52.37, Lng: 4.89},
		End:   models.Point{Lat: 52.378, Lng: 4.89},
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var result risk.RoutePlanResult
	err := json.Unmarshal(w.Body.Bytes(), &result)
	require.NoError(t, err)

	require.Len(t, result.Routes, 2)
	assert.Equal(t, risk.RecommendationSafest, result.Routes[0].Recommendation)
	assert.Equal(t, 52.37, result.StartPoint.Lat)
}

func TestRouter_PlanRoutes_InvalidCoordinates(t *testing.T) {
	router := newTestRouter(defaultStubFetcher())

	w := postJSON(t, router, "/v1/routes:plan", models.PlanRequest{
		Start: models.Point{Lat: 99, Lng: 4.89},
		End:   models.Point{Lat: 52.378, Lng: 4.89},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

	var problem models.Problem
	err := json.Unmarshal(w.Body.Bytes(), &problem)
	require.NoError(t, err)

	assert.Equal(t, models.ProblemTypeValidation, problem.Type)
	require.NotEmpty(t, problem.Errors)
	assert.Equal(t, "start.lat", problem.Errors[0].Field)
}

func TestRouter_PlanRoutes_NoRouteFound(t *testing.T) {
	router := newTestRouter(&stubFetcher{err: routing.ErrNoRouteFound})

	w := postJSON(t, router, "/v1/routes:plan", models.PlanRequest{
		Start: models.Point{Lat: 52.37, Lng: 4.89},
		End:   models.Point{Lat: 52.378, Lng: 4.89},
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var result risk.RoutePlanResult
	err := json.Unmarshal(w.Body.Bytes(), &result)
	require.NoError(t, err)

	assert.NotNil(t, result.Routes)
	assert.Empty(t, result.Routes)
}

func TestRouter_PlanRoutes_SourceUnavailable(t *testing.T) {
	router := newTestRouter(&stubFetcher{err: routing.ErrSourceUnavailable})

	w := postJSON(t, router, "/v1/routes:plan", models.PlanRequest{
		Start: models.Point{Lat: 52.37, Lng: 4.89},
		End:   models.Point{Lat: 52.378, Lng: 4.89},
	})

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var problem models.Problem
	err := json.Unmarshal(w.Body.Bytes(), &problem)
	require.NoError(t, err)

	assert.Equal(t, models.ProblemTypeUnavailable, problem.Type)
}

func TestRouter_CreateHazard(t *testing.T) {
	router := newTestRouter(defaultStubFetcher())

	w := postJSON(t, router, "/v1/hazards", models.HazardCreateRequest{
		Point:    models.Point{Lat: 52.371, Lng: 4.893},
		Category: "poor_lighting",
		Severity: 3,
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NotEmpty(t, w.Header().Get("Location"))

	var report models.HazardReport
	err := json.Unmarshal(w.Body.Bytes(), &report)
	require.NoError(t, err)

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, "active", report.Status)
	assert.Equal(t, "poor_lighting", report.Category)
}

func TestRouter_CreateHazard_Validation(t *testing.T) {
	router := newTestRouter(defaultStubFetcher())

	w := postJSON(t, router, "/v1/hazards", models.HazardCreateRequest{
		Point:    models.Point{Lat: 52.371, Lng: 4.893},
		Category: "poor_lighting",
		Severity: 9,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var problem models.Problem
	err := json.Unmarshal(w.Body.Bytes(), &problem)
	require.NoError(t, err)

	assert.Equal(t, models.ProblemTypeValidation, problem.Type)
	require.NotEmpty(t, problem.Errors)
	assert.Equal(t, "severity", problem.Errors[0].Field)
}

func TestRouter_HazardLifecycle(t *testing.T) {
	router := newTestRouter(defaultStubFetcher())

	w := postJSON(t, router, "/v1/hazards", models.HazardCreateRequest{
		Point:    models.Point{Lat: 52.371, Lng: 4.893},
		Category: "theft",
		Severity: 4,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.HazardReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	req := httptest.NewRequest(http.MethodGet, "/v1/hazards/"+created.ID, http.NoBody)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/v1/hazards/"+created.ID+":resolve", http.NoBody)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resolved models.HazardReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resolved))
	assert.Equal(t, "resolved", resolved.Status)
	require.NotNil(t, resolved.ResolvedAt)

	req = httptest.NewRequest(http.MethodGet, "/v1/hazards", http.NoBody)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var page models.PagedHazardReports
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, created.ID, page.Items[0].ID)
}

func TestRouter_GetHazard_NotFound(t *testing.T) {
	router := newTestRouter(defaultStubFetcher())

	req := httptest.NewRequest(http.MethodGet, "/v1/hazards/haz_missing", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var problem models.Problem
	err := json.Unmarshal(w.Body.Bytes(), &problem)
	require.NoError(t, err)

	assert.Equal(t, models.ProblemTypeNotFound, problem.Type)
}

func TestRouter_CorridorLifecycle(t *testing.T) {
	router := newTestRouter(defaultStubFetcher())

	w := postJSON(t, router, "/v1/admin/corridors", models.CorridorCreateRequest{
		Name: "Station underpass",
		Kind: "unsafe",
		Polyline: []models.Point{
			{Lat: 52.37, Lng: 4.89},
			{Lat: 52.372, Lng: 4.892},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotEmpty(t, w.Header().Get("Location"))

	var created models.Corridor
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Greater(t, created.LengthMeters, 0.0)

	name := "Station underpass (north)"
	raw, err := json.Marshal(models.CorridorUpdateRequest{Name: &name})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/v1/admin/corridors/"+created.ID, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var updated models.Corridor
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, name, updated.Name)

	req = httptest.NewRequest(http.MethodGet, "/v1/admin/corridors", http.NoBody)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var list models.CorridorList
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Items, 1)

	req = httptest.NewRequest(http.MethodDelete, "/v1/admin/corridors/"+created.ID, http.NoBody)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	req = httptest.NewRequest(http.MethodDelete, "/v1/admin/corridors/"+created.ID, http.NoBody)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_CreateCorridor_Validation(t *testing.T) {
	router := newTestRouter(defaultStubFetcher())

	w := postJSON(t, router, "/v1/admin/corridors", models.CorridorCreateRequest{
		Name: "Too short",
		Kind: "unsafe",
		Polyline: []models.Point{
			{Lat: 52.37, Lng: 4.89},
		},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var problem models.Problem
	err := json.Unmarshal(w.Body.Bytes(), &problem)
	require.NoError(t, err)

	assert.Equal(t, models.ProblemTypeValidation, problem.Type)
	require.NotEmpty(t, problem.Errors)
	assert.Equal(t, "polyline", problem.Errors[0].Field)
}

func TestRouter_HazardsInfluencePlanning(t *testing.T) {
	router := newTestRouter(defaultStubFetcher())

	// Drop a severe hazard on the shorter route so the detour wins.
	w := postJSON(t, router, "/v1/hazards", models.HazardCreateRequest{
		Point:    models.Point{Lat: 52.374, Lng: 4.89},
		Category: "assault",
		Severity: 5,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, router, "/v1/routes:plan", models.PlanRequest{
		Start: models.Point{Lat: 52.37, Lng: 4.89},
		End:   models.Point{Lat: 52.378, Lng: 4.89},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var result risk.RoutePlanResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Len(t, result.Routes, 2)

	// The clean 1100m route outranks the 900m route through the hazard.
	safest := result.Routes[0]
	assert.Equal(t, risk.RecommendationSafest, safest.Recommendation)
	assert.Equal(t, 1100.0, safest.Geometry.DistanceMeters)
	assert.Equal(t, 0, safest.DangerZonesCount)
	// The hazard sits on a shared vertex, proximate to both adjoining
	// segments, so it counts once per segment.
	assert.Equal(t, 2, result.Routes[1].DangerZonesCount)
}

func TestRouter_UnknownRoute(t *testing.T) {
	router := newTestRouter(defaultStubFetcher())

	req := httptest.NewRequest(http.MethodGet, "/v1/unknown", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
