package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"

	"github.com/1F47E/kmlorm/pkg/kmlerr"
)

const (
	MinLongitude = -180.0
	MaxLongitude = 180.0
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
)

// Coordinate is a validated WGS84 position. Use NewCoordinate or one of the
// parse helpers; the zero value is (0,0,0), which is valid.
type Coordinate struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
	Altitude  float64 `json:"altitude"`
}

// NewCoordinate validates and builds a coordinate.
func NewCoordinate(lon, lat, alt float64) (Coordinate, error) {
	if err := ValidateLonLat(lon, lat); err != nil {
		return Coordinate{}, err
	}
	if math.IsNaN(alt) || math.IsInf(alt, 0) {
		return Coordinate{}, &kmlerr.InvalidCoordinates{
			Message:     "altitude must be a finite number",
			Field:       "altitude",
			Coordinates: alt,
		}
	}
	return Coordinate{Longitude: lon, Latitude: lat, Altitude: alt}, nil
}

// ValidateLonLat checks that lon and lat are finite and inside WGS84 ranges.
func ValidateLonLat(lon, lat float64) error {
	if math.IsNaN(lon) || lon < MinLongitude || lon > MaxLongitude {
		return &kmlerr.InvalidCoordinates{
			Message:     "invalid longitude, must be between -180 and 180",
			Field:       "longitude",
			Coordinates: lon,
		}
	}
	if math.IsNaN(lat) || lat < MinLatitude || lat > MaxLatitude {
		return &kmlerr.InvalidCoordinates{
			Message:     "invalid latitude, must be between -90 and 90",
			Field:       "latitude",
			Coordinates: lat,
		}
	}
	return nil
}

// CoordinateFromSlice builds a coordinate from (lon, lat[, alt]).
func CoordinateFromSlice(values []float64) (Coordinate, error) {
	switch len(values) {
	case 2:
		return NewCoordinate(values[0], values[1], 0)
	case 3:
		return NewCoordinate(values[0], values[1], values[2])
	}
	return Coordinate{}, &kmlerr.InvalidCoordinates{
		Message:     "expected (longitude, latitude[, altitude])",
		Coordinates: values,
	}
}

// ParseCoordinate parses the KML tuple form "lon,lat[,alt]".
func ParseCoordinate(s string) (Coordinate, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	values := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Coordinate{}, &kmlerr.InvalidCoordinates{
				Message:     fmt.Sprintf("could not parse %q as lon,lat[,alt]", s),
				Coordinates: s,
			}
		}
		values = append(values, v)
	}
	return CoordinateFromSlice(values)
}

// Round returns the coordinate rounded to the given number of decimals.
// A non-positive precision returns c unchanged.
func (c Coordinate) Round(precision int) Coordinate {
	if precision <= 0 {
		return c
	}
	scale := math.Pow(10, float64(precision))
	round := func(v float64) float64 { return math.Round(v*scale) / scale }
	return Coordinate{
		Longitude: round(c.Longitude),
		Latitude:  round(c.Latitude),
		Altitude:  round(c.Altitude),
	}
}

// Orb returns the coordinate as an orb point (lon, lat).
func (c Coordinate) Orb() orb.Point {
	return orb.Point{c.Longitude, c.Latitude}
}

func (c Coordinate) String() string {
	return strconv.FormatFloat(c.Longitude, 'f', -1, 64) + "," +
		strconv.FormatFloat(c.Latitude, 'f', -1, 64) + "," +
		strconv.FormatFloat(c.Altitude, 'f', -1, 64)
}

func lineString(coords []Coordinate) orb.LineString {
	ls := make(orb.LineString, len(coords))
	for i, c := range coords {
		ls[i] = c.Orb()
	}
	return ls
}
