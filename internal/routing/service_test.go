package routing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safewalk/safewalk/pkg/geo"
)

type mockProvider struct {
	response *AlternativesResponse
	err      error
	calls    int
}

func (m *mockProvider) GetAlternatives(_ context.Context, _ AlternativesRequest) (*AlternativesResponse, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func (m *mockProvider) Name() string { return "mock" }

func testResponse() *AlternativesResponse {
	return &AlternativesResponse{
		Routes: []Route{
			{
				Coordinates: []geo.LatLng{
					{Lat: 52.370, Lng: 4.890},
					{Lat: 52.372, Lng: 4.892},
				},
				DistanceMeters:  310,
				DurationSeconds: 240,
			},
		},
		Provider:  "mock",
		FetchedAt: time.Now(),
	}
}

func testRequest() AlternativesRequest {
	return AlternativesRequest{
		Start: geo.LatLng{Lat: 52.370, Lng: 4.890},
		End:   geo.LatLng{Lat: 52.372, Lng: 4.892},
	}
}

func newTestService(p Provider) *Service {
	return NewService(ServiceConfig{
		Provider: p,
		Logger:   zerolog.Nop(),
	})
}

func TestService_GetAlternatives(t *testing.T) {
	provider := &mockProvider{response: testResponse()}
	svc := newTestService(provider)

	resp, err := svc.GetAlternatives(context.Background(), testRequest())
	require.NoError(t, err)
	require.Len(t, resp.Routes, 1)
	assert.Equal(t, 310.0, resp.Routes[0].DistanceMeters)
	assert.Equal(t, 1, provider.calls)
}

func TestService_GetAlternatives_CacheHit(t *testing.T) {
	provider := &mockProvider{response: testResponse()}
	svc := newTestService(provider)

	_, err := svc.GetAlternatives(context.Background(), testRequest())
	require.NoError(t, err)

	// Second call within the TTL comes from cache.
	_, err = svc.GetAlternatives(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, 1, provider.calls)
}

func TestService_GetAlternatives_GridSharing(t *testing.T) {
	provider := &mockProvider{response: testResponse()}
	svc := newTestService(provider)

	req := testRequest()
	_, err := svc.GetAlternatives(context.Background(), req)
	require.NoError(t, err)

	// Endpoints nudged within the same ~55m grid cells share the entry.
	nearby := req
	nearby.Start.Lat += 0.0001
	nearby.End.Lng += 0.0001
	_, err = svc.GetAlternatives(context.Background(), nearby)
	require.NoError(t, err)
	assert.Equal(t, 1, provider.calls)

	// A materially different start is a separate entry.
	far := req
	far.Start.Lat += 0.01
	_, err = svc.GetAlternatives(context.Background(), far)
	require.NoError(t, err)
	assert.Equal(t, 2, provider.calls)
}

func TestService_GetAlternatives_AlternativesAffectKey(t *testing.T) {
	provider := &mockProvider{response: testResponse()}
	svc := newTestService(provider)

	req := testRequest()
	req.Alternatives = 2
	_, err := svc.GetAlternatives(context.Background(), req)
	require.NoError(t, err)

	req.Alternatives = 3
	_, err = svc.GetAlternatives(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, provider.calls)
}

func TestService_GetAlternatives_InvalidCoordinates(t *testing.T) {
	provider := &mockProvider{response: testResponse()}
	svc := newTestService(provider)

	tests := []struct {
		name  string
		start geo.LatLng
		end   geo.LatLng
	}{
		{"latitude too high", geo.LatLng{Lat: 91, Lng: 4.89}, geo.LatLng{Lat: 52.37, Lng: 4.89}},
		{"latitude too low", geo.LatLng{Lat: -91, Lng: 4.89}, geo.LatLng{Lat: 52.37, Lng: 4.89}},
		{"longitude too high", geo.LatLng{Lat: 52.37, Lng: 181}, geo.LatLng{Lat: 52.37, Lng: 4.89}},
		{"end out of range", geo.LatLng{Lat: 52.37, Lng: 4.89}, geo.LatLng{Lat: 52.37, Lng: -181}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.GetAlternatives(context.Background(), AlternativesRequest{Start: tt.start, End: tt.end})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidCoordinates))
		})
	}

	assert.Equal(t, 0, provider.calls)
}

func TestService_GetAlternatives_StaleIfError(t *testing.T) {
	provider := &mockProvider{response: testResponse()}
	svc := NewService(ServiceConfig{
		Provider: provider,
		Logger:   zerolog.Nop(),
		CacheTTL: time.Nanosecond,
	})

	req := testRequest()
	_, err := svc.GetAlternatives(context.Background(), req)
	require.NoError(t, err)

	time.Sleep(time.Millisecond)

	// Entry is expired and the source is now failing, so the stale copy
	// is served instead of the error.
	provider.err = &Error{Provider: "mock", Code: "REQUEST_FAILED", Message: "boom", Err: ErrSourceUnavailable}
	resp, err := svc.GetAlternatives(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, resp.Routes, 1)
	assert.Equal(t, 2, provider.calls)
}

func TestService_GetAlternatives_ErrorWithoutCache(t *testing.T) {
	provider := &mockProvider{err: &Error{Provider: "mock", Code: "REQUEST_FAILED", Message: "boom", Err: ErrSourceUnavailable}}
	svc := newTestService(provider)

	_, err := svc.GetAlternatives(context.Background(), testRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSourceUnavailable))
}

func TestService_InvalidateCache(t *testing.T) {
	provider := &mockProvider{response: testResponse()}
	svc := newTestService(provider)

	_, err := svc.GetAlternatives(context.Background(), testRequest())
	require.NoError(t, err)

	svc.InvalidateCache()

	_, err = svc.GetAlternatives(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, 2, provider.calls)
}

func TestService_ProviderName(t *testing.T) {
	svc := newTestService(&mockProvider{})
	assert.Equal(t, "mock", svc.ProviderName())
}

func TestError_IsRetryable(t *testing.T) {
	retryable := &Error{Err: ErrSourceUnavailable}
	assert.True(t, retryable.IsRetryable())

	rateLimited := &Error{Err: ErrRateLimited}
	assert.True(t, rateLimited.IsRetryable())

	notFound := &Error{Err: ErrNoRouteFound}
	assert.False(t, notFound.IsRetryable())
}
