// Package risk implements the route risk scoring and ranking engine. It
// fuses crowd-reported danger zones and administrator-curated corridors into
// a per-route danger score, detects contiguous high-risk segment runs, and
// ranks route alternatives by a distance-normalized safety score.
package risk

import (
	"github.com/safewalk/safewalk/pkg/geo"
)

// Recommendation labels a scored route within one planning result.
type Recommendation string

const (
	// RecommendationNone marks a route with no label.
	RecommendationNone Recommendation = "none"
	// RecommendationSafest marks the route with the highest safety score.
	RecommendationSafest Recommendation = "safest"
	// RecommendationFastest marks the globally shortest route when it is
	// not already the safest.
	RecommendationFastest Recommendation = "fastest"
	// RecommendationBalanced is reserved for the external advisory overlay
	// and is never assigned by this engine.
	RecommendationBalanced Recommendation = "balanced"
)

// CorridorKind distinguishes administrator-curated corridor polylines.
type CorridorKind string

const (
	// CorridorSafe is a known-good path; proximity to it reduces danger.
	CorridorSafe CorridorKind = "safe"
	// CorridorUnsafe is a known-bad path; proximity to it adds danger.
	CorridorUnsafe CorridorKind = "unsafe"
)

// RouteGeometry is one candidate route as produced by the routing source.
// It may legitimately carry fewer than 2 coordinates.
type RouteGeometry struct {
	Coordinates     []geo.LatLng `json:"coordinates"`
	DistanceMeters  float64      `json:"distanceMeters"`
	DurationSeconds float64      `json:"durationSeconds"`
}

// DangerZone is a point hazard derived from a crowd report. Zones are built
// fresh from currently visible reports on every planning request; the engine
// never owns or persists them.
type DangerZone struct {
	Point         geo.LatLng `json:"point"`
	Severity      int        `json:"severity"`
	PriorityScore float64    `json:"priorityScore"`
	Category      string     `json:"category"`
}

// CorridorSegment is an administrator-drawn polyline labeled safe or unsafe.
// Read-only reference data owned by the administrative store.
type CorridorSegment struct {
	Kind     CorridorKind `json:"kind"`
	Polyline []geo.LatLng `json:"polyline"`
}

// SegmentRange is an inclusive coordinate index range [Start, End] covering
// one maximal run of consecutive high-risk route segments. The segment
// between coordinates i and i+1 is covered by {Start: i, End: i+1}.
type SegmentRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// ScoredRoute is the scoring result for one candidate route. Derived and
// ephemeral: recomputed on every planning request, never cached.
type ScoredRoute struct {
	Geometry RouteGeometry `json:"geometry"`

	// DangerScore is the accumulated route danger, clamped to >= 0 and
	// rounded to one decimal.
	DangerScore float64 `json:"dangerScore"`

	// SafetyScore is DistanceMeters / (1 + danger), rounded to the nearest
	// integer. Higher is better.
	SafetyScore float64 `json:"safetyScore"`

	// DangerZonesCount is the number of danger signals (zone proximities
	// plus unsafe-corridor proximities) that contributed to the score.
	DangerZonesCount int `json:"dangerZonesCount"`

	// HighRiskSegments are sorted, pairwise disjoint, non-adjacent runs of
	// segments whose individual danger reached the high-risk threshold.
	HighRiskSegments []SegmentRange `json:"highRiskSegments"`

	Recommendation Recommendation `json:"recommendation"`
}

// RoutePlanResult is the outcome of one planning request: all scored
// candidates sorted by safety score descending.
type RoutePlanResult struct {
	Routes     []ScoredRoute `json:"routes"`
	StartPoint geo.LatLng    `json:"startPoint"`
	EndPoint   geo.LatLng    `json:"endPoint"`
}
