package models

// CorridorCreateRequest is the request body for POST /v1/admin/corridors.
type CorridorCreateRequest struct {
	Name     string  `json:"name"`
	Kind     string  `json:"kind"`
	Polyline []Point `json:"polyline"`
}

// CorridorUpdateRequest is the request body for PUT /v1/admin/corridors/{id}.
// Nil fields are left unchanged.
type CorridorUpdateRequest struct {
	Name     *string `json:"name,omitempty"`
	Kind     *string `json:"kind,omitempty"`
	Polyline []Point `json:"polyline,omitempty"`
}

// Corridor is a curated corridor as returned by the API.
type Corridor struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Kind         string    `json:"kind"`
	Polyline     []Point   `json:"polyline"`
	LengthMeters float64   `json:"lengthMeters"`
	CreatedAt    Timestamp `json:"createdAt"`
	UpdatedAt    Timestamp `json:"updatedAt"`
}

// CorridorList is the response body for GET /v1/admin/corridors.
type CorridorList struct {
	Items []Corridor `json:"items"`
}
