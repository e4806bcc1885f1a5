package corridor

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/safewalk/safewalk/pkg/polyline"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
// Polylines are stored in encoded form (precision 5).
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL corridor repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Get retrieves a corridor by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Corridor, error) {
	query := `
		SELECT id, name, kind, polyline, created_at, updated_at
		FROM corridors
		WHERE id = $1
	`

	var corridor Corridor
	var encoded string
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&corridor.ID,
		&corridor.Name,
		&corridor.Kind,
		&encoded,
		&corridor.CreatedAt,
		&corridor.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCorridorNotFound
		}
		return nil, err
	}

	corridor.Polyline = polyline.Decode(encoded)
	return &corridor, nil
}

// List retrieves all corridors, oldest first.
func (r *PostgresRepository) List(ctx context.Context) ([]*Corridor, error) {
	query := `
		SELECT id, name, kind, polyline, created_at, updated_at
		FROM corridors
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var corridors []*Corridor
	for rows.Next() {
		var corridor Corridor
		var encoded string
		err := rows.Scan(
			&corridor.ID,
			&corridor.Name,
			&corridor.Kind,
			&encoded,
			&corridor.CreatedAt,
			&corridor.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		corridor.Polyline = polyline.Decode(encoded)
		corridors = append(corridors, &corridor)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return corridors, nil
}

// Create inserts a new corridor.
func (r *PostgresRepository) Create(ctx context.Context, corridor *Corridor) error {
	query := `
		INSERT INTO corridors (id, name, kind, polyline, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		corridor.ID,
		corridor.Name,
		corridor.Kind,
		polyline.Encode(corridor.Polyline),
		corridor.CreatedAt,
		corridor.UpdatedAt,
	)
	return err
}

// Update updates an existing corridor.
func (r *PostgresRepository) Update(ctx context.Context, corridor *Corridor) error {
	query := `
		UPDATE corridors SET
			name = $2,
			kind = $3,
			polyline = $4,
			updated_at = $5
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		corridor.ID,
		corridor.Name,
		corridor.Kind,
		polyline.Encode(corridor.Polyline),
		corridor.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrCorridorNotFound
	}

	return nil
}

// Delete deletes a corridor by ID.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM corridors WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
