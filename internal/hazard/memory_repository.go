package hazard

import (
	"context"
	"sort"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use PostgresRepository.
type InMemoryRepository struct {
	mu      sync.RWMutex
	reports map[string]*Report
}

// NewInMemoryRepository creates a new in-memory hazard repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		reports: make(map[string]*Report),
	}
}

// Get retrieves a report by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	report, ok := r.reports[id]
	if !ok {
		return nil, ErrReportNotFound
	}

	// Return a copy
	cpy := *report
	return &cpy, nil
}

// ListActive retrieves all active reports, newest first.
func (r *InMemoryRepository) ListActive(_ context.Context) ([]*Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var reports []*Report
	for _, report := range r.reports {
		if report.Status == StatusActive {
			cpy := *report
			reports = append(reports, &cpy)
		}
	}

	sortNewestFirst(reports)
	return reports, nil
}

// List retrieves reports with filtering and pagination.
func (r *InMemoryRepository) List(_ context.Context, opts ListOptions) (*ListResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var reports []*Report
	for _, report := range r.reports {
		if opts.Status != "" && report.Status != opts.Status {
			continue
		}
		cpy := *report
		reports = append(reports, &cpy)
	}

	sortNewestFirst(reports)

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	result := &ListResult{
		Items: reports,
	}

	if len(reports) > limit {
		result.Items = reports[:limit]
		result.NextCursor = reports[limit-1].ID
	}

	return result, nil
}

// Create inserts a new report.
func (r *InMemoryRepository) Create(_ context.Context, report *Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := *report
	r.reports[report.ID] = &cpy
	return nil
}

// Update updates an existing report.
func (r *InMemoryRepository) Update(_ context.Context, report *Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.reports[report.ID]; !ok {
		return ErrReportNotFound
	}

	cpy := *report
	r.reports[report.ID] = &cpy
	return nil
}

func sortNewestFirst(reports []*Report) {
	sort.Slice(reports, func(i, j int) bool {
		if reports[i].CreatedAt.Equal(reports[j].CreatedAt) {
			return reports[i].ID < reports[j].ID
		}
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
