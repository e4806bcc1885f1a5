package openrouteservice

// orsRequest is the ORS directions API request body.
type orsRequest struct {
	Coordinates       [][]float64            `json:"coordinates"`
	AlternativeRoutes *alternativeRoutesOpts `json:"alternative_routes,omitempty"`
	Geometry          bool                   `json:"geometry"`
	Units             string                 `json:"units"`
}

// alternativeRoutesOpts configures alternative route generation.
type alternativeRoutesOpts struct {
	TargetCount int `json:"target_count"`
}

// orsResponse is the ORS directions API response.
type orsResponse struct {
	Routes []orsRoute `json:"routes"`
	BBox   []float64  `json:"bbox,omitempty"`
}

// orsRoute is a single route in the ORS response. Geometry is an encoded
// polyline at precision 5.
type orsRoute struct {
	Summary  routeSummary `json:"summary"`
	Geometry string       `json:"geometry"`
	BBox     []float64    `json:"bbox,omitempty"`
}

// routeSummary carries the route totals in meters and seconds.
type routeSummary struct {
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
}

// orsErrorResponse is an error payload from ORS.
type orsErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ORS error codes used for error mapping.
const (
	orsErrorCodeNotFound     = 2009 // route not found
	orsErrorCodeInvalidParam = 2003 // invalid parameter
)
