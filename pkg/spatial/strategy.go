package spatial

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/1F47E/kmlorm/pkg/models"
)

// Strategy computes the distance between two coordinates in kilometers.
type Strategy interface {
	Distance(a, b models.Coordinate) float64
}

// StrategyFunc adapts a plain function to Strategy.
type StrategyFunc func(a, b models.Coordinate) float64

func (f StrategyFunc) Distance(a, b models.Coordinate) float64 { return f(a, b) }

// Haversine treats the Earth as a sphere of mean radius. Accurate to about
// 0.5% for most distances.
type Haversine struct{}

// orb's haversine uses the equatorial radius; rescale to the mean radius.
func (Haversine) Distance(a, b models.Coordinate) float64 {
	return geo.DistanceHaversine(a.Orb(), b.Orb()) / orb.EarthRadius * EarthRadiusMeanKm
}

// Equirectangular is a flat projection approximation, fast and good for
// short distances.
type Equirectangular struct{}

func (Equirectangular) Distance(a, b models.Coordinate) float64 {
	return geo.Distance(a.Orb(), b.Orb()) / 1000
}

// WGS84 ellipsoid parameters.
const (
	wgs84A = 6378137.0
	wgs84B = 6356752.314245
	wgs84F = 1 / 298.257223563
)

// Vincenty uses the inverse Vincenty formula on the WGS84 ellipsoid. It falls
// back to Haversine when the iteration does not converge (nearly antipodal
// points).
type Vincenty struct {
	MaxIterations int
	Tolerance     float64
}

func (v Vincenty) Distance(a, b models.Coordinate) float64 {
	maxIter := v.MaxIterations
	if maxIter <= 0 {
		maxIter = 100
	}
	tol := v.Tolerance
	if tol <= 0 {
		tol = 1e-12
	}

	if a.Latitude == b.Latitude && a.Longitude == b.Longitude {
		return 0
	}

	L := (b.Longitude - a.Longitude) * degToRad
	U1 := math.Atan((1 - wgs84F) * math.Tan(a.Latitude*degToRad))
	U2 := math.Atan((1 - wgs84F) * math.Tan(b.Latitude*degToRad))
	sinU1, cosU1 := math.Sin(U1), math.Cos(U1)
	sinU2, cosU2 := math.Sin(U2), math.Cos(U2)

	lambda := L
	var sinSigma, cosSigma, sigma, cosSqAlpha, cos2SigmaM float64
	converged := false
	for i := 0; i < maxIter; i++ {
		sinLambda, cosLambda := math.Sin(lambda), math.Cos(lambda)
		sinSigma = math.Sqrt(math.Pow(cosU2*sinLambda, 2) +
			math.Pow(cosU1*sinU2-sinU1*cosU2*cosLambda, 2))
		if sinSigma == 0 {
			return 0
		}
		cosSigma = sinU1*sinU2 + cosU1*cosU2*cosLambda
		sigma = math.Atan2(sinSigma, cosSigma)
		sinAlpha := cosU1 * cosU2 * sinLambda / sinSigma
		cosSqAlpha = 1 - sinAlpha*sinAlpha
		if cosSqAlpha != 0 {
			cos2SigmaM = cosSigma - 2*sinU1*sinU2/cosSqAlpha
		} else {
			cos2SigmaM = 0 // equatorial line
		}
		C := wgs84F / 16 * cosSqAlpha * (4 + wgs84F*(4-3*cosSqAlpha))
		prev := lambda
		lambda = L + (1-C)*wgs84F*sinAlpha*
			(sigma+C*sinSigma*(cos2SigmaM+C*cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)))
		if math.Abs(lambda-prev) < tol {
			converged = true
			break
		}
	}
	if !converged {
		return Haversine{}.Distance(a, b)
	}

	uSq := cosSqAlpha * (wgs84A*wgs84A - wgs84B*wgs84B) / (wgs84B * wgs84B)
	A := 1 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
	B := uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))
	deltaSigma := B * sinSigma * (cos2SigmaM + B/4*(cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)-
		B/6*cos2SigmaM*(-3+4*sinSigma*sinSigma)*(-3+4*cos2SigmaM*cos2SigmaM)))

	return wgs84B * A * (sigma - deltaSigma) / 1000
}

// Adaptive picks Equirectangular under 50 km, Haversine up to 10,000 km, and
// Vincenty beyond that when HighAccuracy is set.
type Adaptive struct {
	HighAccuracy bool
}

func (s Adaptive) Distance(a, b models.Coordinate) float64 {
	approx := Equirectangular{}.Distance(a, b)
	switch {
	case approx < 50:
		return approx
	case approx < 10000 || !s.HighAccuracy:
		return Haversine{}.Distance(a, b)
	default:
		return Vincenty{}.Distance(a, b)
	}
}
