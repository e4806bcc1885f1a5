// Package routing abstracts the external walking-route source that produces
// candidate geometries for risk scoring.
package routing

import (
	"context"
	"errors"
	"time"

	"github.com/safewalk/safewalk/pkg/geo"
)

// Sentinel errors for routing operations.
var (
	// ErrSourceUnavailable indicates a transport or protocol failure, a
	// malformed response, or an open circuit breaker. There is nothing to
	// score, so callers surface this as a hard failure.
	ErrSourceUnavailable = errors.New("routing source unavailable")
	// ErrNoRouteFound indicates the source responded but no walking route
	// exists between the given points. A normal outcome, not a failure.
	ErrNoRouteFound = errors.New("no route found between the given points")
	// ErrRateLimited indicates the source's API quota has been exceeded.
	ErrRateLimited = errors.New("routing source rate limit exceeded")
	// ErrInvalidCoordinates indicates coordinates outside WGS84 ranges.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

// Provider is a source of walking-route alternatives.
type Provider interface {
	// GetAlternatives retrieves up to req.Alternatives candidate walking
	// routes between start and end.
	GetAlternatives(ctx context.Context, req AlternativesRequest) (*AlternativesResponse, error)
	// Name returns the provider identifier for logging and health tracking.
	Name() string
}

// AlternativesRequest asks the routing source for candidate routes.
type AlternativesRequest struct {
	Start        geo.LatLng
	End          geo.LatLng
	Alternatives int // number of candidates requested (default: 3)
}

// AlternativesResponse carries the candidate routes in source order.
// The order is significant: distance ties downstream are broken by it.
type AlternativesResponse struct {
	Routes    []Route
	Provider  string
	FetchedAt time.Time
}

// Route is one candidate with its geometry already decoded.
type Route struct {
	Coordinates     []geo.LatLng
	DistanceMeters  float64
	DurationSeconds float64
}

// Error carries provider-level detail alongside a sentinel cause.
type Error struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether the failure is transient.
func (e *Error) IsRetryable() bool {
	return errors.Is(e.Err, ErrSourceUnavailable) || errors.Is(e.Err, ErrRateLimited)
}
