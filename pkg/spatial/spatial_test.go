package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1F47E/kmlorm/pkg/models"
)

var (
	baltimore = models.Coordinate{Longitude: -76.6, Latitude: 39.3}
	dc        = models.Coordinate{Longitude: -77.0, Latitude: 38.9}
	nyc       = models.Coordinate{Longitude: -74.0060, Latitude: 40.7128}
	london    = models.Coordinate{Longitude: -0.1276, Latitude: 51.5074}
)

func TestDistance(t *testing.T) {
	testCases := []struct {
		name     string
		a, b     models.Coordinate
		expected float64
		delta    float64
	}{
		{"same point", nyc, nyc, 0, 1e-9},
		{"baltimore to dc", baltimore, dc, 56, 2},
		{"nyc to london", nyc, london, 5570, 15},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, Distance(tc.a, tc.b), tc.delta)
			assert.InDelta(t, Distance(tc.a, tc.b), Distance(tc.b, tc.a), 1e-9)
		})
	}
}

func TestDistanceIn(t *testing.T) {
	km := Distance(nyc, london)
	assert.InDelta(t, km*1000, DistanceIn(nyc, london, Meters), 1e-6)
	assert.InDelta(t, km*0.621371, DistanceIn(nyc, london, Miles), 1e-6)

	u, err := ParseUnit("nmi")
	require.NoError(t, err)
	assert.Equal(t, NauticalMiles, u)

	_, err = ParseUnit("furlongs")
	assert.Error(t, err)
}

func TestStrategiesAgree(t *testing.T) {
	strategies := map[string]Strategy{
		"haversine":       Haversine{},
		"vincenty":        Vincenty{},
		"equirectangular": Equirectangular{},
		"adaptive":        Adaptive{HighAccuracy: true},
	}
	for name, s := range strategies {
		t.Run(name, func(t *testing.T) {
			assert.InDelta(t, 56, s.Distance(baltimore, dc), 2)
		})
	}

	// Vincenty on the ellipsoid stays within half a percent of haversine.
	v := Vincenty{}.Distance(nyc, london)
	h := Haversine{}.Distance(nyc, london)
	assert.InEpsilon(t, h, v, 0.005)
}

func TestHaversineUsesMeanRadius(t *testing.T) {
	tests := []struct {
		name string
		a, b models.Coordinate
		want float64
	}{
		{"one degree of longitude at the equator", models.Coordinate{}, models.Coordinate{Longitude: 1}, 111.195},
		{"new york to london", nyc, london, 5570.2},
		{"same point", dc, dc, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Haversine{}.Distance(tt.a, tt.b), 0.1)
		})
	}
}

func TestBearing(t *testing.T) {
	north := models.Coordinate{Longitude: 0, Latitude: 1}
	east := models.Coordinate{Longitude: 1, Latitude: 0}
	west := models.Coordinate{Longitude: -1, Latitude: 0}
	origin := models.Coordinate{}

	assert.InDelta(t, 0, Bearing(origin, north), 1e-6)
	assert.InDelta(t, 90, Bearing(origin, east), 1e-6)
	assert.InDelta(t, 270, Bearing(origin, west), 1e-6)
}

func TestMidpointAndInterpolate(t *testing.T) {
	a := models.Coordinate{Longitude: 0, Latitude: 0}
	b := models.Coordinate{Longitude: 10, Latitude: 0}

	mid := Midpoint(a, b)
	assert.InDelta(t, 5, mid.Longitude, 1e-6)
	assert.InDelta(t, 0, mid.Latitude, 1e-6)

	half, err := Interpolate(a, b, 0.5)
	require.NoError(t, err)
	assert.InDelta(t, mid.Longitude, half.Longitude, 1e-6)

	quarter, err := Interpolate(a, b, 0.25)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, quarter.Longitude, 1e-6)

	start, err := Interpolate(a, b, 0)
	require.NoError(t, err)
	assert.Equal(t, a, start)

	_, err = Interpolate(a, b, 1.5)
	assert.Error(t, err)
}

func TestBoundingBox(t *testing.T) {
	_, ok := BoundingBox(nil)
	assert.False(t, ok)

	b, ok := BoundingBox([]models.Coordinate{
		{Longitude: -1, Latitude: -1},
		{Longitude: 1, Latitude: 1},
		{Longitude: 0, Latitude: 2},
	})
	require.True(t, ok)
	assert.Equal(t, -1.0, b.Min.Lon())
	assert.Equal(t, -1.0, b.Min.Lat())
	assert.Equal(t, 1.0, b.Max.Lon())
	assert.Equal(t, 2.0, b.Max.Lat())
}

func TestDistancesToMany(t *testing.T) {
	dcPoint := &models.Point{Coordinates: dc}
	noCoords := models.NewPlacemark("no geometry", nil)

	out := DistancesToMany(baltimore, []models.Element{dcPoint, noCoords}, Kilometers)
	require.Len(t, out, 2)
	require.NotNil(t, out[0])
	assert.InDelta(t, 56, *out[0], 2)
	assert.Nil(t, out[1])
}

func TestPointAt(t *testing.T) {
	dest := PointAt(baltimore, Bearing(baltimore, dc), Distance(baltimore, dc))
	assert.InDelta(t, dc.Longitude, dest.Longitude, 0.05)
	assert.InDelta(t, dc.Latitude, dest.Latitude, 0.05)
}
