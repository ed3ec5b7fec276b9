// Package spatial provides great-circle calculations over model coordinates:
// distance, bearing, midpoint, interpolation and bounding boxes.
//
// All functions are pure. Distances are in kilometers unless a Unit is given.
package spatial

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/1F47E/kmlorm/pkg/models"
)

const (
	// EarthRadiusMeanKm is the IUGG mean Earth radius.
	EarthRadiusMeanKm = 6371.0088

	degToRad = math.Pi / 180.0
	radToDeg = 180.0 / math.Pi
)

// Unit is a distance unit expressed as units per kilometer.
type Unit float64

const (
	Meters        Unit = 1000.0
	Kilometers    Unit = 1.0
	Miles         Unit = 0.621371
	NauticalMiles Unit = 0.539957
	Feet          Unit = 3280.84
	Yards         Unit = 1093.61
)

var unitNames = map[string]Unit{
	"m": Meters, "meters": Meters,
	"km": Kilometers, "kilometers": Kilometers,
	"mi": Miles, "miles": Miles,
	"nmi": NauticalMiles, "nautical_miles": NauticalMiles,
	"ft": Feet, "feet": Feet,
	"yd": Yards, "yards": Yards,
}

// ParseUnit maps a unit name ("km", "miles", ...) to a Unit.
func ParseUnit(name string) (Unit, error) {
	if u, ok := unitNames[name]; ok {
		return u, nil
	}
	return 0, fmt.Errorf("unknown distance unit %q", name)
}

// FromKm converts kilometers to u.
func (u Unit) FromKm(km float64) float64 { return km * float64(u) }

// Distance returns the great-circle distance in kilometers using the
// default strategy.
func Distance(a, b models.Coordinate) float64 {
	return Haversine{}.Distance(a, b)
}

// DistanceIn returns the great-circle distance expressed in unit.
func DistanceIn(a, b models.Coordinate, unit Unit) float64 {
	return unit.FromKm(Distance(a, b))
}

// Bearing returns the initial bearing from a to b in degrees, in [0, 360).
func Bearing(a, b models.Coordinate) float64 {
	deg := geo.Bearing(a.Orb(), b.Orb())
	return math.Mod(deg+360, 360)
}

// Midpoint returns the great-circle midpoint of a and b.
func Midpoint(a, b models.Coordinate) models.Coordinate {
	mid := geo.Midpoint(a.Orb(), b.Orb())
	return fromOrb(mid)
}

// Interpolate returns the point at fraction f (0..1) along the great circle
// from a to b.
func Interpolate(a, b models.Coordinate, f float64) (models.Coordinate, error) {
	if f < 0 || f > 1 || math.IsNaN(f) {
		return models.Coordinate{}, fmt.Errorf("fraction must be between 0 and 1, got %v", f)
	}
	switch f {
	case 0:
		return a, nil
	case 1:
		return b, nil
	}

	lat1, lon1 := a.Latitude*degToRad, a.Longitude*degToRad
	lat2, lon2 := b.Latitude*degToRad, b.Longitude*degToRad

	d := 2 * math.Asin(math.Sqrt(
		math.Pow(math.Sin((lat1-lat2)/2), 2)+
			math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin((lon1-lon2)/2), 2)))
	if d == 0 {
		return a, nil
	}

	wa := math.Sin((1-f)*d) / math.Sin(d)
	wb := math.Sin(f*d) / math.Sin(d)

	x := wa*math.Cos(lat1)*math.Cos(lon1) + wb*math.Cos(lat2)*math.Cos(lon2)
	y := wa*math.Cos(lat1)*math.Sin(lon1) + wb*math.Cos(lat2)*math.Sin(lon2)
	z := wa*math.Sin(lat1) + wb*math.Sin(lat2)

	lat := math.Atan2(z, math.Sqrt(x*x+y*y)) * radToDeg
	lon := math.Atan2(y, x) * radToDeg
	return models.Coordinate{Longitude: lon, Latitude: lat}, nil
}

// DistancesToMany returns the distance in unit from origin to each target.
// Targets without a coordinate yield nil.
func DistancesToMany(origin models.Coordinate, targets []models.Element, unit Unit) []*float64 {
	out := make([]*float64, len(targets))
	for i, t := range targets {
		c, ok := models.Location(t)
		if !ok {
			continue
		}
		d := DistanceIn(origin, c, unit)
		out[i] = &d
	}
	return out
}

// BoundingBox returns the minimum bounding rectangle of the coordinates.
// ok is false when coords is empty.
func BoundingBox(coords []models.Coordinate) (b orb.Bound, ok bool) {
	if len(coords) == 0 {
		return orb.Bound{}, false
	}
	b = coords[0].Orb().Bound()
	for _, c := range coords[1:] {
		b = b.Extend(c.Orb())
	}
	return b, true
}

// PointAt returns the coordinate reached from origin after travelling
// distanceKm along bearing degrees.
func PointAt(origin models.Coordinate, bearing, distanceKm float64) models.Coordinate {
	return fromOrb(geo.PointAtBearingAndDistance(origin.Orb(), bearing, distanceKm*1000))
}

func fromOrb(p orb.Point) models.Coordinate {
	return models.Coordinate{Longitude: p.Lon(), Latitude: p.Lat()}
}
