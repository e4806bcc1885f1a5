package corridor

import (
	"context"
	"sort"
	"sync"

	"github.com/safewalk/safewalk/pkg/geo"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use PostgresRepository.
type InMemoryRepository struct {
	mu        sync.RWMutex
	corridors map[string]*Corridor
}

// NewInMemoryRepository creates a new in-memory corridor repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		corridors: make(map[string]*Corridor),
	}
}

// Get retrieves a corridor by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Corridor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.corridors[id]
	if !ok {
		return nil, ErrCorridorNotFound
	}

	return copyCorridor(c), nil
}

// List retrieves all corridors, oldest first.
func (r *InMemoryRepository) List(_ context.Context) ([]*Corridor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	corridors := make([]*Corridor, 0, len(r.corridors))
	for _, c := range r.corridors {
		corridors = append(corridors, copyCorridor(c))
	}

	sort.Slice(corridors, func(i, j int) bool {
		if corridors[i].CreatedAt.Equal(corridors[j].CreatedAt) {
			return corridors[i].ID < corridors[j].ID
		}
		return corridors[i].CreatedAt.Before(corridors[j].CreatedAt)
	})

	return corridors, nil
}

// Create inserts a new corridor.
func (r *InMemoryRepository) Create(_ context.Context, c *Corridor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.corridors[c.ID] = copyCorridor(c)
	return nil
}

// Update updates an existing corridor.
func (r *InMemoryRepository) Update(_ context.Context, c *Corridor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.corridors[c.ID]; !ok {
		return ErrCorridorNotFound
	}

	r.corridors[c.ID] = copyCorridor(c)
	return nil
}

// Delete deletes a corridor by ID.
func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.corridors, id)
	return nil
}

// copyCorridor deep-copies a corridor, including its polyline.
func copyCorridor(c *Corridor) *Corridor {
	cpy := *c
	cpy.Polyline = append([]geo.LatLng(nil), c.Polyline...)
	return &cpy
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
