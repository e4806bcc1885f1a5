package models

// PlanRequest is the request body for POST /v1/routes:plan.
type PlanRequest struct {
	Start Point `json:"start"`
	End   Point `json:"end"`

	// Alternatives is the number of candidate routes to request from the
	// routing source (optional, defaults to 3, capped at 6).
	Alternatives *int `json:"alternatives,omitempty"`
}

// MaxPlanAlternatives caps the candidate count per planning request.
const MaxPlanAlternatives = 6
