// Package polyline implements Google's encoded polyline algorithm
// (precision 5), the geometry format returned by the routing source.
package polyline

import (
	"math"

	"github.com/safewalk/safewalk/pkg/geo"
)

// Decode decodes an encoded polyline string into coordinates.
// Returns nil for an empty string.
func Decode(encoded string) []geo.LatLng {
	if encoded == "" {
		return nil
	}

	var coords []geo.LatLng
	index := 0
	lat := 0
	lng := 0

	for index < len(encoded) {
		latDelta, next := decodeValue(encoded, index)
		index = next
		lat += latDelta

		lngDelta, next := decodeValue(encoded, index)
		index = next
		lng += lngDelta

		coords = append(coords, geo.LatLng{
			Lat: float64(lat) / 1e5,
			Lng: float64(lng) / 1e5,
		})
	}

	return coords
}

// decodeValue decodes one zigzag-encoded delta starting at index.
// Returns the delta and the index of the next value.
func decodeValue(encoded string, index int) (int, int) {
	shift := 0
	result := 0

	for index < len(encoded) {
		b := int(encoded[index]) - 63
		index++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}

	if result&1 != 0 {
		return ^(result >> 1), index
	}
	return result >> 1, index
}

// Encode encodes coordinates into a polyline string at precision 5.
func Encode(coords []geo.LatLng) string {
	if len(coords) == 0 {
		return ""
	}

	encoded := make([]byte, 0, len(coords)*4)
	prevLat := 0
	prevLng := 0

	for _, c := range coords {
		lat := int(math.Round(c.Lat * 1e5))
		lng := int(math.Round(c.Lng * 1e5))

		encoded = encodeValue(encoded, lat-prevLat)
		encoded = encodeValue(encoded, lng-prevLng)

		prevLat = lat
		prevLng = lng
	}

	return string(encoded)
}

func encodeValue(buf []byte, value int) []byte {
	if value < 0 {
		value = ^(value << 1)
	} else {
		value <<= 1
	}

	for value >= 0x20 {
		buf = append(buf, byte((value&0x1f)|0x20)+63)
		value >>= 5
	}
	buf = append(buf, byte(value)+63)

	return buf
}

// Length returns the total length of the polyline in meters.
// A polyline with fewer than 2 points has length 0.
func Length(coords []geo.LatLng) float64 {
	if len(coords) < 2 {
		return 0
	}

	var total float64
	for i := 1; i < len(coords); i++ {
		total += geo.HaversineDistance(coords[i-1], coords[i])
	}
	return total
}
