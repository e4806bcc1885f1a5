// Package openrouteservice provides the OpenRouteService walking-directions
// client used as the routing source.
package openrouteservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/safewalk/safewalk/internal/provider/resilience"
	"github.com/safewalk/safewalk/internal/routing"
	"github.com/safewalk/safewalk/pkg/polyline"
)

const (
	// ProviderName identifies this routing source.
	ProviderName = "openrouteservice"

	// DefaultBaseURL is the OpenRouteService API base URL.
	DefaultBaseURL = "https://api.openrouteservice.org"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 10 * time.Second

	// profile is the ORS routing profile; this system plans walking
	// routes only.
	profile = "foot-walking"
)

// HTTPDoer executes HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the ORS client.
type ClientConfig struct {
	// APIKey is the ORS API key (required).
	APIKey string

	// BaseURL overrides the API base URL (optional).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional). If nil, a resilient
	// client with breaker and retry defaults is used.
	HTTPClient HTTPDoer

	// Timeout is the request timeout (optional, defaults to 10s).
	Timeout time.Duration

	// Registry tracks provider health (optional).
	Registry *resilience.Registry

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an OpenRouteService directions client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates an ORS client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(ProviderName)
		clientCfg.Timeout = timeout
		if cfg.Registry != nil {
			clientCfg.Registry = cfg.Registry
		}
		httpClient = resilience.NewClient(clientCfg)
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// GetAlternatives retrieves candidate walking routes between two points.
func (c *Client) GetAlternatives(ctx context.Context, req routing.AlternativesRequest) (*routing.AlternativesResponse, error) {
	alternatives := req.Alternatives
	if alternatives <= 0 {
		alternatives = 3
	}

	orsReq := orsRequest{
		// ORS uses [lng, lat] order (GeoJSON).
		Coordinates: [][]float64{
			{req.Start.Lng, req.Start.Lat},
			{req.End.Lng, req.End.Lat},
		},
		Geometry: true,
		Units:    "m",
	}
	if alternatives > 1 {
		orsReq.AlternativeRoutes = &alternativeRoutesOpts{
			TargetCount: alternatives,
		}
	}

	body, err := json.Marshal(orsReq)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/v2/directions/%s", c.baseURL, profile)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", c.apiKey)
	httpReq.Header.Set("Accept", "application/json, application/geo+json")

	c.logger.Debug().
		Float64("start_lat", req.Start.Lat).
		Float64("start_lng", req.Start.Lng).
		Float64("end_lat", req.End.Lat).
		Float64("end_lng", req.End.Lng).
		Int("alternatives", alternatives).
		Msg("requesting walking directions from ORS")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "REQUEST_FAILED",
			Message:  "failed to reach routing source",
			Err:      routing.ErrSourceUnavailable,
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "READ_FAILED",
			Message:  "failed to read routing source response",
			Err:      routing.ErrSourceUnavailable,
		}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.mapErrorResponse(resp.StatusCode, respBody)
	}

	var orsResp orsResponse
	if err := json.Unmarshal(respBody, &orsResp); err != nil {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "MALFORMED_RESPONSE",
			Message:  "routing source returned an unparsable response",
			Err:      routing.ErrSourceUnavailable,
		}
	}

	result := c.toAlternativesResponse(&orsResp)

	c.logger.Debug().
		Int("route_count", len(result.Routes)).
		Msg("received walking directions from ORS")

	return result, nil
}

// mapErrorResponse maps ORS error responses onto the routing sentinels.
func (c *Client) mapErrorResponse(statusCode int, body []byte) error {
	var orsErr orsErrorResponse
	if err := json.Unmarshal(body, &orsErr); err != nil {
		return &routing.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("HTTP_%d", statusCode),
			Message:  fmt.Sprintf("routing source returned status %d", statusCode),
			Err:      routing.ErrSourceUnavailable,
		}
	}

	switch statusCode {
	case http.StatusTooManyRequests:
		return &routing.Error{
			Provider: ProviderName,
			Code:     "RATE_LIMIT",
			Message:  "routing source rate limit exceeded",
			Err:      routing.ErrRateLimited,
		}
	case http.StatusForbidden:
		return &routing.Error{
			Provider: ProviderName,
			Code:     "FORBIDDEN",
			Message:  "routing source access denied - check API key configuration",
			Err:      routing.ErrSourceUnavailable,
		}
	case http.StatusNotFound:
		return &routing.Error{
			Provider: ProviderName,
			Code:     "NO_ROUTE",
			Message:  "no walking route found between the given points",
			Err:      routing.ErrNoRouteFound,
		}
	case http.StatusBadRequest:
		if orsErr.Error.Code == orsErrorCodeNotFound {
			return &routing.Error{
				Provider: ProviderName,
				Code:     "NO_ROUTE",
				Message:  orsErr.Error.Message,
				Err:      routing.ErrNoRouteFound,
			}
		}
		if orsErr.Error.Code == orsErrorCodeInvalidParam {
			return &routing.Error{
				Provider: ProviderName,
				Code:     "INVALID_COORDINATES",
				Message:  orsErr.Error.Message,
				Err:      routing.ErrInvalidCoordinates,
			}
		}
		return &routing.Error{
			Provider: ProviderName,
			Code:     "BAD_REQUEST",
			Message:  orsErr.Error.Message,
			Err:      routing.ErrInvalidCoordinates,
		}
	default:
		if statusCode >= 500 {
			return &routing.Error{
				Provider: ProviderName,
				Code:     fmt.Sprintf("SERVER_%d", statusCode),
				Message:  "routing source is temporarily unavailable",
				Err:      routing.ErrSourceUnavailable,
			}
		}
		return &routing.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("HTTP_%d", statusCode),
			Message:  orsErr.Error.Message,
			Err:      routing.ErrSourceUnavailable,
		}
	}
}

// toAlternativesResponse decodes each ORS route's polyline into coordinates.
func (c *Client) toAlternativesResponse(resp *orsResponse) *routing.AlternativesResponse {
	routes := make([]routing.Route, 0, len(resp.Routes))

	for i := range resp.Routes {
		orsRoute := &resp.Routes[i]
		routes = append(routes, routing.Route{
			Coordinates:     polyline.Decode(orsRoute.Geometry),
			DistanceMeters:  orsRoute.Summary.Distance,
			DurationSeconds: orsRoute.Summary.Duration,
		})
	}

	return &routing.AlternativesResponse{
		Routes:    routes,
		Provider:  ProviderName,
		FetchedAt: time.Now(),
	}
}
