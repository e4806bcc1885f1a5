// Package hazard manages crowd-reported hazards and derives the danger-zone
// snapshot used for route scoring.
package hazard

import (
	"errors"
	"time"

	"github.com/safewalk/safewalk/pkg/geo"
)

// Repository errors.
var (
	ErrReportNotFound = errors.New("hazard report not found")
)

// Status is the lifecycle state of a hazard report.
type Status string

// Report statuses.
const (
	StatusActive   Status = "active"
	StatusResolved Status = "resolved"
)

// Known report categories.
const (
	CategoryPoorLighting   = "poor_lighting"
	CategoryHarassment     = "harassment"
	CategoryTheft          = "theft"
	CategoryAssault        = "assault"
	CategoryUnsafeCrossing = "unsafe_crossing"
	CategoryStrayAnimals   = "stray_animals"
	CategoryOther          = "other"
)

// knownCategories is the set of categories accepted at intake.
var knownCategories = map[string]bool{
	CategoryPoorLighting:   true,
	CategoryHarassment:     true,
	CategoryTheft:          true,
	CategoryAssault:        true,
	CategoryUnsafeCrossing: true,
	CategoryStrayAnimals:   true,
	CategoryOther:          true,
}

// SafetyRelevantCategories are the categories that feed the danger-zone
// snapshot. "other" reports are kept for the intake flow but carry no
// routing signal.
func SafetyRelevantCategories() []string {
	return []string{
		CategoryPoorLighting,
		CategoryHarassment,
		CategoryTheft,
		CategoryAssault,
		CategoryUnsafeCrossing,
		CategoryStrayAnimals,
	}
}

// IsKnownCategory reports whether a category is accepted at intake.
func IsKnownCategory(category string) bool {
	return knownCategories[category]
}

// Report is a crowd-reported hazard at a point.
type Report struct {
	ID       string
	Point    geo.LatLng
	Category string
	Severity int // 1 (minor) to 5 (severe)

	// PriorityScore is the routing weight of this report. When nil the
	// scoring weight defaults to Severity * 2.
	PriorityScore *float64

	Description string
	ReporterRef *string
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ResolvedAt  *time.Time
}
