// Package geo provides pure coordinate geometry used by the route risk
// scorer: point-to-segment and point-to-polyline distances over short,
// pedestrian-scale distances.
package geo

import (
	"math"
)

const earthRadiusMeters = 6371000

// LatLng represents a geographic point in WGS84 degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// HaversineDistance returns the great-circle distance between two points
// in meters.
func HaversineDistance(a, b LatLng) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	sinDLat := math.Sin(dLat / 2)
	sinDLng := math.Sin(dLng / 2)

	h := sinDLat*sinDLat + math.Cos(lat1)*math.Cos(lat2)*sinDLng*sinDLng
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}

// PointToSegmentDistance returns the distance in meters from point to the
// segment between segStart and segEnd.
//
// The segment is projected onto a local equirectangular plane, with the
// longitude axis scaled by cos(latitude) at the segment midpoint to correct
// for meridian convergence. The midpoint scale makes the projection
// independent of endpoint order, so the distance is invariant under
// swapping segStart and segEnd. The projection parameter is clamped to
// [0,1], so the result is the distance to the segment itself, never to the
// infinite line through it. Valid at the sub-kilometer segment lengths
// typical of pedestrian routes.
func PointToSegmentDistance(point, segStart, segEnd LatLng) float64 {
	// Degenerate segment: both endpoints coincide.
	if segStart == segEnd {
		return HaversineDistance(point, segStart)
	}

	latScale := math.Cos((segStart.Lat + segEnd.Lat) / 2 * math.Pi / 180)

	// Local planar coordinates in degrees, relative to the segment start.
	px := (point.Lng - segStart.Lng) * latScale
	py := point.Lat - segStart.Lat
	ex := (segEnd.Lng - segStart.Lng) * latScale
	ey := segEnd.Lat - segStart.Lat

	segLenSq := ex*ex + ey*ey
	t := (px*ex + py*ey) / segLenSq
	t = math.Max(0, math.Min(1, t))

	nearest := LatLng{
		Lat: segStart.Lat + t*(segEnd.Lat-segStart.Lat),
		Lng: segStart.Lng + t*(segEnd.Lng-segStart.Lng),
	}
	return HaversineDistance(point, nearest)
}

// PointToPolylineDistance returns the minimum PointToSegmentDistance from
// point to any segment of the polyline.
//
// A polyline with fewer than 2 points has no segments and therefore no
// defined distance; callers must skip such polylines before calling. This
// function panics on them rather than silently answering 0 or +Inf.
func PointToPolylineDistance(point LatLng, polyline []LatLng) float64 {
	if len(polyline) < 2 {
		panic("geo: polyline must have at least 2 points")
	}

	minDist := math.Inf(1)
	for i := 1; i < len(polyline); i++ {
		d := PointToSegmentDistance(point, polyline[i-1], polyline[i])
		if d < minDist {
			minDist = d
		}
	}
	return minDist
}
