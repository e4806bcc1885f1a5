package corridor

import "context"

// Repository defines the interface for corridor persistence.
type Repository interface {
	// Get retrieves a corridor by ID. Returns ErrCorridorNotFound if
	// missing.
	Get(ctx context.Context, id string) (*Corridor, error)

	// List retrieves all corridors, oldest first.
	List(ctx context.Context) ([]*Corridor, error)

	// Create inserts a new corridor.
	Create(ctx context.Context, corridor *Corridor) error

	// Update updates an existing corridor. Returns ErrCorridorNotFound if
	// missing.
	Update(ctx context.Context, corridor *Corridor) error

	// Delete deletes a corridor by ID.
	Delete(ctx context.Context, id string) error
}
