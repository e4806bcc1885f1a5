// Package corridor manages administrator-curated safe and unsafe corridor
// polylines used for route scoring.
package corridor

import (
	"errors"
	"time"

	"github.com/safewalk/safewalk/internal/risk"
	"github.com/safewalk/safewalk/pkg/geo"
)

// Repository errors.
var (
	ErrCorridorNotFound = errors.New("corridor not found")
)

// Corridor is a curated path annotation. Safe corridors reduce nearby
// segment danger, unsafe corridors add to it.
type Corridor struct {
	ID        string
	Name      string
	Kind      risk.CorridorKind
	Polyline  []geo.LatLng // at least 2 points, enforced at write time
	CreatedAt time.Time
	UpdatedAt time.Time
}
