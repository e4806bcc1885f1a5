package hazard

import "context"

// ListOptions contains options for listing hazard reports.
type ListOptions struct {
	// Status filters by report status. Empty means all statuses.
	Status Status
	Limit  int
	Cursor string
}

// ListResult contains the results of listing hazard reports.
type ListResult struct {
	Items      []*Report
	NextCursor string
}

// Repository defines the interface for hazard report persistence.
type Repository interface {
	// Get retrieves a report by ID. Returns ErrReportNotFound if missing.
	Get(ctx context.Context, id string) (*Report, error)

	// ListActive retrieves all active reports, newest first.
	ListActive(ctx context.Context) ([]*Report, error)

	// List retrieves reports with filtering and pagination.
	List(ctx context.Context, opts ListOptions) (*ListResult, error)

	// Create inserts a new report.
	Create(ctx context.Context, report *Report) error

	// Update updates an existing report. Returns ErrReportNotFound if
	// missing.
	Update(ctx context.Context, report *Report) error
}
