// Package planner orchestrates a planning request: fetch route alternatives,
// score each against the danger-zone and corridor snapshots, rank, and label.
package planner

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/safewalk/safewalk/internal/risk"
	"github.com/safewalk/safewalk/internal/routing"
	"github.com/safewalk/safewalk/pkg/geo"
)

// RouteFetcher supplies candidate walking routes.
type RouteFetcher interface {
	GetAlternatives(ctx context.Context, req routing.AlternativesRequest) (*routing.AlternativesResponse, error)
	ProviderName() string
}

// ServiceConfig holds configuration for the planner service.
type ServiceConfig struct {
	Routes RouteFetcher
	Scorer *risk.Scorer
	Ranker *risk.Ranker
	Logger zerolog.Logger
}

// Service plans safety-ranked walking routes.
type Service struct {
	routes RouteFetcher
	scorer *risk.Scorer
	ranker *risk.Ranker
	logger zerolog.Logger
}

// NewService creates a planner service.
func NewService(cfg ServiceConfig) *Service {
	scorer := cfg.Scorer
	if scorer == nil {
		scorer = risk.NewScorer(risk.DefaultScorerConfig())
	}

	ranker := cfg.Ranker
	if ranker == nil {
		ranker = risk.NewRanker()
	}

	return &Service{
		routes: cfg.Routes,
		scorer: scorer,
		ranker: ranker,
		logger: cfg.Logger,
	}
}

// PlanRequest describes one planning request.
type PlanRequest struct {
	Start        geo.LatLng
	End          geo.LatLng
	Alternatives int

	// Zones and Corridors are the scoring snapshots current at request
	// time.
	Zones     []risk.DangerZone
	Corridors []risk.CorridorSegment
}

// Plan fetches route alternatives and returns them scored, ranked and
// labeled. When the source finds no route between the points the result
// carries an empty route list and no error.
func (s *Service) Plan(ctx context.Context, req PlanRequest) (*risk.RoutePlanResult, error) {
	resp, err := s.routes.GetAlternatives(ctx, routing.AlternativesRequest{
		Start:        req.Start,
		End:          req.End,
		Alternatives: req.Alternatives,
	})
	if err != nil {
		if errors.Is(err, routing.ErrNoRouteFound) {
			s.logger.Info().
				Float64("start_lat", req.Start.Lat).
				Float64("start_lng", req.Start.Lng).
				Float64("end_lat", req.End.Lat).
				Float64("end_lng", req.End.Lng).
				Msg("no walking route between points")
			return &risk.RoutePlanResult{
				Routes:     []risk.ScoredRoute{},
				StartPoint: req.Start,
				EndPoint:   req.End,
			}, nil
		}
		return nil, err
	}

	// Each candidate is scored independently; results land at their input
	// index so source order survives the join.
	scored := make([]risk.ScoredRoute, len(resp.Routes))
	var wg sync.WaitGroup
	for i, route := range resp.Routes {
		wg.Add(1)
		go func(i int, route routing.Route) {
			defer wg.Done()
			scored[i] = s.scorer.Score(risk.RouteGeometry{
				Coordinates:     route.Coordinates,
				DistanceMeters:  route.DistanceMeters,
				DurationSeconds: route.DurationSeconds,
			}, req.Zones, req.Corridors)
		}(i, route)
	}
	wg.Wait()

	ranked := s.ranker.Rank(scored)

	s.logger.Debug().
		Int("route_count", len(ranked)).
		Int("zone_count", len(req.Zones)).
		Int("corridor_count", len(req.Corridors)).
		Str("provider", s.routes.ProviderName()).
		Msg("planned route alternatives")

	return &risk.RoutePlanResult{
		Routes:     ranked,
		StartPoint: req.Start,
		EndPoint:   req.End,
	}, nil
}
