package risk

import (
	"math"
	"os"
	"strconv"

	"github.com/safewalk/safewalk/pkg/geo"
)

// ScorerConfig holds the proximity thresholds and danger weights used when
// scoring a route.
type ScorerConfig struct {
	// SignalProximityMeters is the maximum distance at which a danger zone
	// contributes to a segment. Crowd signals are self-reported and noisy,
	// so this radius is deliberately wide. Default: 150.
	SignalProximityMeters float64

	// CorridorProximityMeters is the maximum distance at which a corridor
	// affects a segment. Corridors are manually drawn and positionally
	// precise, so this radius is tighter than the signal radius. Default: 50.
	CorridorProximityMeters float64

	// HighRiskThreshold is the per-segment danger at which the segment is
	// marked high-risk. Default: 10.
	HighRiskThreshold float64

	// UnsafeCorridorPenalty is the fixed danger added when a segment runs
	// near an unsafe corridor. Default: 20.
	UnsafeCorridorPenalty float64

	// SafeCorridorBonus is the fixed danger subtracted when a segment runs
	// near a safe corridor. Default: 5.
	SafeCorridorBonus float64
}

// DefaultScorerConfig returns the default scoring thresholds.
func DefaultScorerConfig() ScorerConfig {
	return ScorerConfig{
		SignalProximityMeters:   150,
		CorridorProximityMeters: 50,
		HighRiskThreshold:       10,
		UnsafeCorridorPenalty:   20,
		SafeCorridorBonus:       5,
	}
}

// ScorerConfigFromEnv returns the default config with any RISK_* environment
// overrides applied.
func ScorerConfigFromEnv() ScorerConfig {
	cfg := DefaultScorerConfig()
	overrideFloat(&cfg.SignalProximityMeters, "RISK_SIGNAL_PROXIMITY_METERS")
	overrideFloat(&cfg.CorridorProximityMeters, "RISK_CORRIDOR_PROXIMITY_METERS")
	overrideFloat(&cfg.HighRiskThreshold, "RISK_HIGH_RISK_THRESHOLD")
	overrideFloat(&cfg.UnsafeCorridorPenalty, "RISK_UNSAFE_CORRIDOR_PENALTY")
	overrideFloat(&cfg.SafeCorridorBonus, "RISK_SAFE_CORRIDOR_BONUS")
	return cfg
}

func overrideFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			*dst = f
		}
	}
}

// Scorer computes a ScoredRoute for one candidate geometry against the
// current danger zone and corridor sets. Scoring is pure and deterministic:
// identical inputs always produce an identical ScoredRoute.
type Scorer struct {
	config ScorerConfig
}

// NewScorer creates a Scorer, filling zero config fields with defaults.
func NewScorer(cfg ScorerConfig) *Scorer {
	def := DefaultScorerConfig()
	if cfg.SignalProximityMeters <= 0 {
		cfg.SignalProximityMeters = def.SignalProximityMeters
	}
	if cfg.CorridorProximityMeters <= 0 {
		cfg.CorridorProximityMeters = def.CorridorProximityMeters
	}
	if cfg.HighRiskThreshold <= 0 {
		cfg.HighRiskThreshold = def.HighRiskThreshold
	}
	if cfg.UnsafeCorridorPenalty <= 0 {
		cfg.UnsafeCorridorPenalty = def.UnsafeCorridorPenalty
	}
	if cfg.SafeCorridorBonus <= 0 {
		cfg.SafeCorridorBonus = def.SafeCorridorBonus
	}
	return &Scorer{config: cfg}
}

// Config returns the scorer's effective configuration.
func (s *Scorer) Config() ScorerConfig {
	return s.config
}

// Score evaluates one route geometry in a single pass over its consecutive
// coordinate pairs. The returned route always carries RecommendationNone;
// labels are assigned later by the Ranker.
//
// A geometry with fewer than 2 coordinates has no segments to evaluate and
// scores as zero danger with SafetyScore equal to its distance. A degenerate
// candidate must not abort an otherwise valid planning request.
func (s *Scorer) Score(geom RouteGeometry, zones []DangerZone, corridors []CorridorSegment) ScoredRoute {
	scored := ScoredRoute{
		Geometry:         geom,
		HighRiskSegments: []SegmentRange{},
		Recommendation:   RecommendationNone,
	}

	if len(geom.Coordinates) < 2 {
		scored.SafetyScore = math.Round(geom.DistanceMeters)
		return scored
	}

	var totalDanger float64

	for i := 0; i < len(geom.Coordinates)-1; i++ {
		segStart := geom.Coordinates[i]
		segEnd := geom.Coordinates[i+1]

		var segmentDanger float64

		for _, zone := range zones {
			d := geo.PointToSegmentDistance(zone.Point, segStart, segEnd)
			if d <= s.config.SignalProximityMeters {
				segmentDanger += zone.PriorityScore
				scored.DangerZonesCount++
			}
		}

		for _, corridor := range corridors {
			// Corridors with fewer than 2 points have no defined distance.
			if len(corridor.Polyline) < 2 {
				continue
			}
			d := geo.PointToPolylineDistance(segStart, corridor.Polyline)
			if d > s.config.CorridorProximityMeters {
				continue
			}
			switch corridor.Kind {
			case CorridorUnsafe:
				segmentDanger += s.config.UnsafeCorridorPenalty
				scored.DangerZonesCount++
			case CorridorSafe:
				segmentDanger -= s.config.SafeCorridorBonus
			}
		}

		if segmentDanger > 0 {
			totalDanger += segmentDanger
			if segmentDanger >= s.config.HighRiskThreshold {
				scored.HighRiskSegments = extendOrOpen(scored.HighRiskSegments, i)
			}
		}
	}

	// Safe-corridor bonuses are local: they must not make an overall risky
	// route appear net-beneficial.
	if totalDanger < 0 {
		totalDanger = 0
	}

	scored.DangerScore = math.Round(totalDanger*10) / 10
	scored.SafetyScore = math.Round(geom.DistanceMeters / (1 + totalDanger))
	return scored
}

// extendOrOpen folds segment index i into the high-risk runs: if the last
// run ends exactly at this segment's start it is extended, otherwise a new
// one-segment run is opened. Runs built this way are sorted, disjoint, and
// never adjacent, with no separate merge pass.
func extendOrOpen(runs []SegmentRange, i int) []SegmentRange {
	if n := len(runs); n > 0 && runs[n-1].End == i {
		runs[n-1].End = i + 1
		return runs
	}
	return append(runs, SegmentRange{Start: i, End: i + 1})
}
