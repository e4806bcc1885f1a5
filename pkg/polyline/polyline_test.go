package polyline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safewalk/safewalk/pkg/geo"
	"github.com/safewalk/safewalk/pkg/polyline"
)

// Reference example from the polyline algorithm documentation.
const googleExample = "_p~iF~ps|U_ulLnnqC_mqNvxq`@"

func TestDecode_GoogleReference(t *testing.T) {
	coords := polyline.Decode(googleExample)

	require.Len(t, coords, 3)
	assert.InDelta(t, 38.5, coords[0].Lat, 1e-5)
	assert.InDelta(t, -120.2, coords[0].Lng, 1e-5)
	assert.InDelta(t, 40.7, coords[1].Lat, 1e-5)
	assert.InDelta(t, -120.95, coords[1].Lng, 1e-5)
	assert.InDelta(t, 43.252, coords[2].Lat, 1e-5)
	assert.InDelta(t, -126.453, coords[2].Lng, 1e-5)
}

func TestDecode_Empty(t *testing.T) {
	assert.Nil(t, polyline.Decode(""))
}

func TestEncode_RoundTrip(t *testing.T) {
	original := []geo.LatLng{
		{Lat: 52.37019, Lng: 4.89021},
		{Lat: 52.37125, Lng: 4.89311},
		{Lat: 52.37288, Lng: 4.89554},
	}

	decoded := polyline.Decode(polyline.Encode(original))

	require.Len(t, decoded, len(original))
	for i := range original {
		assert.InDelta(t, original[i].Lat, decoded[i].Lat, 1e-5)
		assert.InDelta(t, original[i].Lng, decoded[i].Lng, 1e-5)
	}
}

func TestEncode_Empty(t *testing.T) {
	assert.Equal(t, "", polyline.Encode(nil))
}

func TestLength(t *testing.T) {
	coords := []geo.LatLng{
		{Lat: 52.370, Lng: 4.890},
		{Lat: 52.372, Lng: 4.890},
		{Lat: 52.372, Lng: 4.893},
	}

	length := polyline.Length(coords)

	// ~222m north plus ~204m east.
	assert.InDelta(t, 426, length, 15)
}

func TestLength_Degenerate(t *testing.T) {
	assert.Zero(t, polyline.Length(nil))
	assert.Zero(t, polyline.Length([]geo.LatLng{{Lat: 1, Lng: 1}}))
}
