package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceMeters_IdenticalPoints(t *testing.T) {
	pts := [][2]float64{
		{0, 0},
		{-23.5505, -46.6333},
		{89.9, 179.9},
	}
	for _, p := range pts {
		assert.Less(t, DistanceMeters(p[0], p[1], p[0], p[1]), 0.001)
	}
}

func TestDistanceMeters_OneDegreeLatitude(t *testing.T) {
	// One degree of latitude is ~111.2 km everywhere on the sphere.
	d := DistanceMeters(-23.0, -46.6333, -24.0, -46.6333)
	assert.GreaterOrEqual(t, d, 110000.0)
	assert.LessOrEqual(t, d, 112000.0)
}

func TestDistanceMeters_SubMeter(t *testing.T) {
	// ~0.11 m apart along latitude.
	d := DistanceMeters(-23.5505, -46.6333, -23.550501, -46.6333)
	assert.Greater(t, d, 0.05)
	assert.Less(t, d, 0.5)
}

func TestDistanceMeters_Symmetric(t *testing.T) {
	a := DistanceMeters(-23.5505, -46.6333, -22.9068, -43.1729)
	b := DistanceMeters(-22.9068, -43.1729, -23.5505, -46.6333)
	assert.InDelta(t, a, b, 1e-9)
}

func TestDistanceMeters_AgreesWithLawOfCosines(t *testing.T) {
	// São Paulo to Rio de Janeiro, ~360 km.
	lat1, lon1 := -23.5505, -46.6333
	lat2, lon2 := -22.9068, -43.1729

	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180
	sloc := math.Acos(math.Sin(phi1)*math.Sin(phi2)+math.Cos(phi1)*math.Cos(phi2)*math.Cos(dLambda)) * earthRadiusMeters

	assert.InDelta(t, sloc, DistanceMeters(lat1, lon1, lat2, lon2), 1.0)
}
