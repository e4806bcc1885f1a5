package hazard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/safewalk/safewalk/internal/risk"
	"github.com/safewalk/safewalk/pkg/geo"
)

// Validation constants.
const (
	MaxDescriptionLength = 500
	MinSeverity          = 1
	MaxSeverity          = 5
)

// ServiceConfig holds configuration for the hazard service.
type ServiceConfig struct {
	Repository Repository
	Logger     zerolog.Logger

	// SnapshotTTL is how long the danger-zone snapshot stays cached
	// (default: 30 seconds).
	SnapshotTTL time.Duration

	// MinZoneSeverity is the minimum severity for a report to feed the
	// danger-zone snapshot (default: 2).
	MinZoneSeverity int

	// ZoneCategories are the categories that feed the snapshot
	// (default: SafetyRelevantCategories).
	ZoneCategories []string
}

// Service provides hazard report intake and the danger-zone snapshot.
type Service struct {
	repo            Repository
	logger          zerolog.Logger
	snapshotTTL     time.Duration
	minZoneSeverity int
	zoneCategories  map[string]bool

	mu             sync.RWMutex
	snapshot       []risk.DangerZone
	snapshotExpiry time.Time
}

// NewService creates a new hazard service.
func NewService(cfg ServiceConfig) *Service {
	snapshotTTL := cfg.SnapshotTTL
	if snapshotTTL == 0 {
		snapshotTTL = 30 * time.Second
	}

	minZoneSeverity := cfg.MinZoneSeverity
	if minZoneSeverity == 0 {
		minZoneSeverity = 2
	}

	categories := cfg.ZoneCategories
	if categories == nil {
		categories = SafetyRelevantCategories()
	}
	zoneCategories := make(map[string]bool, len(categories))
	for _, c := range categories {
		zoneCategories[c] = true
	}

	return &Service{
		repo:            cfg.Repository,
		logger:          cfg.Logger,
		snapshotTTL:     snapshotTTL,
		minZoneSeverity: minZoneSeverity,
		zoneCategories:  zoneCategories,
	}
}

// CreateInput is the intake payload for a new hazard report.
type CreateInput struct {
	Point         geo.LatLng
	Category      string
	Severity      int
	PriorityScore *float64
	Description   string
	ReporterRef   *string
}

// CreateReport validates and stores a new hazard report.
func (s *Service) CreateReport(ctx context.Context, input CreateInput) (*Report, error) {
	if fieldErrors := validateCreateInput(input); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	now := time.Now()
	report := &Report{
		ID:            "haz_" + uuid.New().String()[:22],
		Point:         input.Point,
		Category:      input.Category,
		Severity:      input.Severity,
		PriorityScore: input.PriorityScore,
		Description:   input.Description,
		ReporterRef:   input.ReporterRef,
		Status:        StatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, report); err != nil {
		return nil, err
	}

	s.invalidateSnapshot()

	s.logger.Info().
		Str("report_id", report.ID).
		Str("category", report.Category).
		Int("severity", report.Severity).
		Msg("hazard report created")

	return report, nil
}

// GetReport retrieves a report by ID.
func (s *Service) GetReport(ctx context.Context, id string) (*Report, error) {
	return s.repo.Get(ctx, id)
}

// ListReports retrieves reports with filtering and pagination.
func (s *Service) ListReports(ctx context.Context, opts ListOptions) (*ListResult, error) {
	return s.repo.List(ctx, opts)
}

// ResolveReport marks a report resolved. Resolving an already resolved
// report is a no-op.
func (s *Service) ResolveReport(ctx context.Context, id string) (*Report, error) {
	report, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if report.Status == StatusResolved {
		return report, nil
	}

	now := time.Now()
	report.Status = StatusResolved
	report.ResolvedAt = &now
	report.UpdatedAt = now

	if err := s.repo.Update(ctx, report); err != nil {
		return nil, err
	}

	s.invalidateSnapshot()

	s.logger.Info().
		Str("report_id", report.ID).
		Msg("hazard report resolved")

	return report, nil
}

// ActiveZones returns the danger-zone snapshot built from active reports
// in safety-relevant categories at or above the minimum severity. The
// snapshot is cached briefly since it is rebuilt on every planning request.
func (s *Service) ActiveZones(ctx context.Context) ([]risk.DangerZone, error) {
	s.mu.RLock()
	if s.snapshot != nil && time.Now().Before(s.snapshotExpiry) {
		zones := s.snapshot
		s.mu.RUnlock()
		return zones, nil
	}
	s.mu.RUnlock()

	reports, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	zones := make([]risk.DangerZone, 0, len(reports))
	for _, report := range reports {
		if !s.zoneCategories[report.Category] {
			continue
		}
		if report.Severity < s.minZoneSeverity {
			continue
		}

		priority := float64(report.Severity) * 2
		if report.PriorityScore != nil {
			priority = *report.PriorityScore
		}

		zones = append(zones, risk.DangerZone{
			Point:         report.Point,
			Severity:      report.Severity,
			PriorityScore: priority,
			Category:      report.Category,
		})
	}

	s.mu.Lock()
	s.snapshot = zones
	s.snapshotExpiry = time.Now().Add(s.snapshotTTL)
	s.mu.Unlock()

	s.logger.Debug().
		Int("report_count", len(reports)).
		Int("zone_count", len(zones)).
		Msg("rebuilt danger-zone snapshot")

	return zones, nil
}

// invalidateSnapshot drops the cached danger-zone snapshot.
func (s *Service) invalidateSnapshot() {
	s.mu.Lock()
	s.snapshot = nil
	s.snapshotExpiry = time.Time{}
	s.mu.Unlock()
}

// validateCreateInput validates the hazard report intake payload.
func validateCreateInput(input CreateInput) []FieldError {
	var errs []FieldError

	if input.Point.Lat < -90 || input.Point.Lat > 90 {
		errs = append(errs, FieldError{Field: "point.lat", Message: "must be between -90 and 90"})
	}
	if input.Point.Lng < -180 || input.Point.Lng > 180 {
		errs = append(errs, FieldError{Field: "point.lng", Message: "must be between -180 and 180"})
	}

	if input.Category == "" {
		errs = append(errs, FieldError{Field: "category", Message: "is required"})
	} else if !IsKnownCategory(input.Category) {
		errs = append(errs, FieldError{Field: "category", Message: "is not a known category"})
	}

	if input.Severity < MinSeverity || input.Severity > MaxSeverity {
		errs = append(errs, FieldError{Field: "severity", Message: "must be between 1 and 5"})
	}

	if input.PriorityScore != nil && *input.PriorityScore < 0 {
		errs = append(errs, FieldError{Field: "priorityScore", Message: "must not be negative"})
	}

	if len(input.Description) > MaxDescriptionLength {
		errs = append(errs, FieldError{Field: "description", Message: "must be at most 500 characters"})
	}

	return errs
}

// FieldError describes a single invalid field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError represents validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
