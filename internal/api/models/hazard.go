package models

// HazardCreateRequest is the request body for POST /v1/hazards.
type HazardCreateRequest struct {
	Point         Point    `json:"point"`
	Category      string   `json:"category"`
	Severity      int      `json:"severity"`
	PriorityScore *float64 `json:"priorityScore,omitempty"`
	Description   string   `json:"description,omitempty"`
	ReporterRef   *string  `json:"reporterRef,omitempty"`
}

// HazardReport is a hazard report as returned by the API.
type HazardReport struct {
	ID            string     `json:"id"`
	Point         Point      `json:"point"`
	Category      string     `json:"category"`
	Severity      int        `json:"severity"`
	PriorityScore *float64   `json:"priorityScore,omitempty"`
	Description   string     `json:"description,omitempty"`
	Status        string     `json:"status"`
	CreatedAt     Timestamp  `json:"createdAt"`
	UpdatedAt     Timestamp  `json:"updatedAt"`
	ResolvedAt    *Timestamp `json:"resolvedAt,omitempty"`
}

// PagedHazardReports is a page of hazard reports.
type PagedHazardReports struct {
	Items []HazardReport    `json:"items"`
	Meta  PagedResponseMeta `json:"meta"`
}
