package routing

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/safewalk/safewalk/pkg/geo"
)

// ServiceConfig holds configuration for the routing service.
type ServiceConfig struct {
	// Provider is the walking-route source.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger

	// CacheTTL is how long fetched alternatives stay fresh (default: 2 minutes).
	CacheTTL time.Duration

	// CacheGridSize quantizes endpoints into grid cells in degrees
	// (default: 0.0005, ~55m). Requests whose endpoints land in the same
	// cells share cached alternatives.
	CacheGridSize float64

	// StaleIfErrorTTL allows serving stale alternatives when the source is
	// down (default: 10 minutes).
	StaleIfErrorTTL time.Duration

	// CleanupInterval is how often expired entries are swept (default: 5 minutes).
	CleanupInterval time.Duration

	// Metrics records cache effectiveness and provider request outcomes
	// (optional).
	Metrics CacheMetrics
}

// CacheMetrics records cache and request metrics for the routing source.
type CacheMetrics interface {
	RecordCacheHit(provider, operation string)
	RecordCacheMiss(provider, operation string)
	RecordRequest(provider, operation string, duration time.Duration, err error)
}

const metricsOperation = "get_alternatives"

// Service fronts a routing Provider with validation and a short-lived
// response cache.
type Service struct {
	provider        Provider
	logger          zerolog.Logger
	cacheTTL        time.Duration
	cacheGridSize   float64
	staleIfErrorTTL time.Duration
	cleanupInterval time.Duration
	metrics         CacheMetrics

	mu          sync.RWMutex
	cache       map[string]*cachedAlternatives
	lastCleanup time.Time
}

type cachedAlternatives struct {
	response  *AlternativesResponse
	fetchedAt time.Time
	expiresAt time.Time
}

// NewService creates a routing service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 2 * time.Minute
	}

	cacheGridSize := cfg.CacheGridSize
	if cacheGridSize == 0 {
		cacheGridSize = 0.0005
	}

	staleIfErrorTTL := cfg.StaleIfErrorTTL
	if staleIfErrorTTL == 0 {
		staleIfErrorTTL = 10 * time.Minute
	}

	cleanupInterval := cfg.CleanupInterval
	if cleanupInterval == 0 {
		cleanupInterval = 5 * time.Minute
	}

	return &Service{
		provider:        cfg.Provider,
		logger:          cfg.Logger,
		cacheTTL:        cacheTTL,
		cacheGridSize:   cacheGridSize,
		staleIfErrorTTL: staleIfErrorTTL,
		cleanupInterval: cleanupInterval,
		metrics:         cfg.Metrics,
		cache:           make(map[string]*cachedAlternatives),
	}
}

// GetAlternatives returns candidate walking routes between two points,
// served from cache when fresh.
func (s *Service) GetAlternatives(ctx context.Context, req AlternativesRequest) (*AlternativesResponse, error) {
	if err := validateCoordinates(req.Start); err != nil {
		return nil, &Error{
			Provider: s.provider.Name(),
			Code:     "INVALID_START",
			Message:  "invalid start coordinates",
			Err:      ErrInvalidCoordinates,
		}
	}
	if err := validateCoordinates(req.End); err != nil {
		return nil, &Error{
			Provider: s.provider.Name(),
			Code:     "INVALID_END",
			Message:  "invalid end coordinates",
			Err:      ErrInvalidCoordinates,
		}
	}

	if req.Alternatives <= 0 {
		req.Alternatives = 3
	}

	cacheKey := s.cacheKey(req)

	s.mu.RLock()
	if cached, ok := s.cache[cacheKey]; ok && time.Now().Before(cached.expiresAt) {
		s.mu.RUnlock()
		if s.metrics != nil {
			s.metrics.RecordCacheHit(s.provider.Name(), metricsOperation)
		}
		s.logger.Debug().
			Str("cache_key", cacheKey).
			Msg("cache hit for route alternatives")
		return cached.response, nil
	}
	s.mu.RUnlock()

	if s.metrics != nil {
		s.metrics.RecordCacheMiss(s.provider.Name(), metricsOperation)
	}

	return s.fetchAlternatives(ctx, req, cacheKey)
}

// fetchAlternatives fetches from the provider and updates the cache.
func (s *Service) fetchAlternatives(ctx context.Context, req AlternativesRequest, cacheKey string) (*AlternativesResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check under the write lock to prevent a thundering herd.
	if cached, ok := s.cache[cacheKey]; ok && time.Now().Before(cached.expiresAt) {
		return cached.response, nil
	}

	s.logger.Debug().
		Float64("start_lat", req.Start.Lat).
		Float64("start_lng", req.Start.Lng).
		Float64("end_lat", req.End.Lat).
		Float64("end_lng", req.End.Lng).
		Int("alternatives", req.Alternatives).
		Str("provider", s.provider.Name()).
		Msg("fetching route alternatives from source")

	fetchStart := time.Now()
	resp, err := s.provider.GetAlternatives(ctx, req)
	if s.metrics != nil {
		s.metrics.RecordRequest(s.provider.Name(), metricsOperation, time.Since(fetchStart), err)
	}
	if err != nil {
		s.logger.Error().Err(err).
			Float64("start_lat", req.Start.Lat).
			Float64("start_lng", req.Start.Lng).
			Float64("end_lat", req.End.Lat).
			Float64("end_lng", req.End.Lng).
			Msg("failed to fetch route alternatives")

		// Stale-if-error: a slightly old set of candidates beats a failed
		// planning request.
		if cached, ok := s.cache[cacheKey]; ok {
			if time.Now().Before(cached.fetchedAt.Add(s.staleIfErrorTTL)) {
				s.logger.Warn().
					Time("fetched_at", cached.fetchedAt).
					Str("cache_key", cacheKey).
					Msg("serving stale route alternatives due to source error")
				return cached.response, nil
			}
		}

		return nil, err
	}

	now := time.Now()
	s.cache[cacheKey] = &cachedAlternatives{
		response:  resp,
		fetchedAt: now,
		expiresAt: now.Add(s.cacheTTL),
	}

	s.logger.Debug().
		Str("cache_key", cacheKey).
		Int("route_count", len(resp.Routes)).
		Msg("cached route alternatives")

	s.cleanupIfNeeded()

	return resp, nil
}

// cacheKey quantizes both endpoints onto the cache grid. Cells are keyed by
// integer index; rounding to the nearest cell keeps coordinates sitting on
// a cell boundary from flipping cells over float noise.
// Format: {alternatives}:{cellStartLat},{cellStartLng}:{cellEndLat},{cellEndLng}.
func (s *Service) cacheKey(req AlternativesRequest) string {
	cellStartLat := int64(math.Round(req.Start.Lat / s.cacheGridSize))
	cellStartLng := int64(math.Round(req.Start.Lng / s.cacheGridSize))
	cellEndLat := int64(math.Round(req.End.Lat / s.cacheGridSize))
	cellEndLng := int64(math.Round(req.End.Lng / s.cacheGridSize))

	return fmt.Sprintf("%d:%d,%d:%d,%d",
		req.Alternatives,
		cellStartLat, cellStartLng,
		cellEndLat, cellEndLng,
	)
}

// cleanupIfNeeded sweeps entries past the stale-if-error window. Caller must
// hold the write lock.
func (s *Service) cleanupIfNeeded() {
	now := time.Now()
	if now.Sub(s.lastCleanup) < s.cleanupInterval {
		return
	}

	s.lastCleanup = now
	expired := 0

	for key, cached := range s.cache {
		if now.After(cached.fetchedAt.Add(s.staleIfErrorTTL)) {
			delete(s.cache, key)
			expired++
		}
	}

	if expired > 0 {
		s.logger.Debug().
			Int("expired_entries", expired).
			Msg("cleaned up expired routing cache entries")
	}
}

// InvalidateCache clears all cached alternatives.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]*cachedAlternatives)
}

// ProviderName returns the name of the underlying provider.
func (s *Service) ProviderName() string {
	return s.provider.Name()
}

// validateCoordinates checks WGS84 ranges.
func validateCoordinates(c geo.LatLng) error {
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("latitude %f out of range [-90, 90]", c.Lat)
	}
	if c.Lng < -180 || c.Lng > 180 {
		return fmt.Errorf("longitude %f out of range [-180, 180]", c.Lng)
	}
	return nil
}
