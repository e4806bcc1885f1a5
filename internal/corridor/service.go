package corridor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/safewalk/safewalk/internal/risk"
	"github.com/safewalk/safewalk/pkg/geo"
	"github.com/safewalk/safewalk/pkg/polyline"
)

// Validation constants.
const (
	MaxNameLength     = 80
	MinPolylinePoints = 2
	MaxPolylinePoints = 500
)

// ServiceConfig holds configuration for the corridor service.
type ServiceConfig struct {
	Repository Repository
	Logger     zerolog.Logger

	// SnapshotTTL is how long the corridor snapshot stays cached
	// (default: 1 minute). Corridors are admin reference data and change
	// rarely.
	SnapshotTTL time.Duration
}

// Service provides corridor administration and the scoring snapshot.
type Service struct {
	repo        Repository
	logger      zerolog.Logger
	snapshotTTL time.Duration

	mu             sync.RWMutex
	snapshot       []risk.CorridorSegment
	snapshotExpiry time.Time
}

// NewService creates a new corridor service.
func NewService(cfg ServiceConfig) *Service {
	snapshotTTL := cfg.SnapshotTTL
	if snapshotTTL == 0 {
		snapshotTTL = 1 * time.Minute
	}

	return &Service{
		repo:        cfg.Repository,
		logger:      cfg.Logger,
		snapshotTTL: snapshotTTL,
	}
}

// CreateInput is the admin payload for a new corridor.
type CreateInput struct {
	Name     string
	Kind     risk.CorridorKind
	Polyline []geo.LatLng
}

// UpdateInput is the admin payload for updating a corridor. Nil fields are
// left unchanged.
type UpdateInput struct {
	Name     *string
	Kind     *risk.CorridorKind
	Polyline []geo.LatLng
}

// CreateCorridor validates and stores a new corridor.
func (s *Service) CreateCorridor(ctx context.Context, input CreateInput) (*Corridor, error) {
	var errs []FieldError
	errs = append(errs, validateName(input.Name)...)
	errs = append(errs, validateKind(input.Kind)...)
	errs = append(errs, validatePolyline(input.Polyline)...)
	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	now := time.Now()
	corridor := &Corridor{
		ID:        "cor_" + uuid.New().String()[:22],
		Name:      input.Name,
		Kind:      input.Kind,
		Polyline:  input.Polyline,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, corridor); err != nil {
		return nil, err
	}

	s.invalidateSnapshot()

	s.logger.Info().
		Str("corridor_id", corridor.ID).
		Str("kind", string(corridor.Kind)).
		Int("point_count", len(corridor.Polyline)).
		Msg("corridor created")

	return corridor, nil
}

// GetCorridor retrieves a corridor by ID.
func (s *Service) GetCorridor(ctx context.Context, id string) (*Corridor, error) {
	return s.repo.Get(ctx, id)
}

// ListCorridors retrieves all corridors, oldest first.
func (s *Service) ListCorridors(ctx context.Context) ([]*Corridor, error) {
	return s.repo.List(ctx)
}

// UpdateCorridor applies a partial update to an existing corridor.
func (s *Service) UpdateCorridor(ctx context.Context, id string, input UpdateInput) (*Corridor, error) {
	corridor, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var errs []FieldError
	if input.Name != nil {
		errs = append(errs, validateName(*input.Name)...)
	}
	if input.Kind != nil {
		errs = append(errs, validateKind(*input.Kind)...)
	}
	if input.Polyline != nil {
		errs = append(errs, validatePolyline(input.Polyline)...)
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	if input.Name != nil {
		corridor.Name = *input.Name
	}
	if input.Kind != nil {
		corridor.Kind = *input.Kind
	}
	if input.Polyline != nil {
		corridor.Polyline = input.Polyline
	}
	corridor.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, corridor); err != nil {
		return nil, err
	}

	s.invalidateSnapshot()

	return corridor, nil
}

// DeleteCorridor deletes a corridor by ID.
func (s *Service) DeleteCorridor(ctx context.Context, id string) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateSnapshot()
	return nil
}

// LengthMeters returns the total corridor path length.
func (c *Corridor) LengthMeters() float64 {
	return polyline.Length(c.Polyline)
}

// Snapshot returns all corridors as scoring segments. The snapshot is
// cached briefly since it is rebuilt on every planning request.
func (s *Service) Snapshot(ctx context.Context) ([]risk.CorridorSegment, error) {
	s.mu.RLock()
	if s.snapshot != nil && time.Now().Before(s.snapshotExpiry) {
		segments := s.snapshot
		s.mu.RUnlock()
		return segments, nil
	}
	s.mu.RUnlock()

	corridors, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	segments := make([]risk.CorridorSegment, 0, len(corridors))
	for _, c := range corridors {
		segments = append(segments, risk.CorridorSegment{
			Kind:     c.Kind,
			Polyline: c.Polyline,
		})
	}

	s.mu.Lock()
	s.snapshot = segments
	s.snapshotExpiry = time.Now().Add(s.snapshotTTL)
	s.mu.Unlock()

	return segments, nil
}

// invalidateSnapshot drops the cached corridor snapshot.
func (s *Service) invalidateSnapshot() {
	s.mu.Lock()
	s.snapshot = nil
	s.snapshotExpiry = time.Time{}
	s.mu.Unlock()
}

func validateName(name string) []FieldError {
	if name == "" {
		return []FieldError{{Field: "name", Message: "is required"}}
	}
	if len(name) > MaxNameLength {
		return []FieldError{{Field: "name", Message: "must be at most 80 characters"}}
	}
	return nil
}

func validateKind(kind risk.CorridorKind) []FieldError {
	if kind != risk.CorridorSafe && kind != risk.CorridorUnsafe {
		return []FieldError{{Field: "kind", Message: "must be \"safe\" or \"unsafe\""}}
	}
	return nil
}

func validatePolyline(points []geo.LatLng) []FieldError {
	if len(points) < MinPolylinePoints {
		return []FieldError{{Field: "polyline", Message: "must have at least 2 points"}}
	}
	if len(points) > MaxPolylinePoints {
		return []FieldError{{Field: "polyline", Message: "must have at most 500 points"}}
	}
	for _, p := range points {
		if p.Lat < -90 || p.Lat > 90 || p.Lng < -180 || p.Lng > 180 {
			return []FieldError{{Field: "polyline", Message: "contains out-of-range coordinates"}}
		}
	}
	return nil
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
