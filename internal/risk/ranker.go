package risk

import (
	"sort"
)

// Ranker orders scored routes and assigns recommendation labels for one
// planning request.
type Ranker struct{}

// NewRanker creates a Ranker.
func NewRanker() *Ranker {
	return &Ranker{}
}

// Rank returns the routes sorted descending by safety score, with ties
// broken ascending by danger zone count and then ascending by distance.
// The top route is labeled safest. The globally shortest route (first
// occurrence in input order on exact distance ties, as delivered by the
// routing source) is labeled fastest unless it is already the safest.
// Every other route carries RecommendationNone; balanced is never assigned
// here. The input slice is not modified.
func (r *Ranker) Rank(routes []ScoredRoute) []ScoredRoute {
	if len(routes) == 0 {
		return []ScoredRoute{}
	}

	fastestIdx := 0
	for i, rt := range routes {
		if rt.Geometry.DistanceMeters < routes[fastestIdx].Geometry.DistanceMeters {
			fastestIdx = i
		}
	}

	order := make([]int, len(routes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ra, rb := routes[order[a]], routes[order[b]]
		if ra.SafetyScore != rb.SafetyScore {
			return ra.SafetyScore > rb.SafetyScore
		}
		if ra.DangerZonesCount != rb.DangerZonesCount {
			return ra.DangerZonesCount < rb.DangerZonesCount
		}
		return ra.Geometry.DistanceMeters < rb.Geometry.DistanceMeters
	})

	ranked := make([]ScoredRoute, len(routes))
	for pos, idx := range order {
		route := routes[idx]
		switch {
		case pos == 0:
			route.Recommendation = RecommendationSafest
		case idx == fastestIdx:
			route.Recommendation = RecommendationFastest
		default:
			route.Recommendation = RecommendationNone
		}
		ranked[pos] = route
	}
	return ranked
}
