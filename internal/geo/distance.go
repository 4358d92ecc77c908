// Package geo computes geodesic distances on the WGS84 ellipsoid.
package geo

import (
	"fmt"
	"math"

	"github.com/tidwall/geodesic"
)

const metersPerMile = 1609.344

// Point is a latitude/longitude pair in degrees
type Point struct {
	Lat float64 `yaml:"lat"`
	Lon float64 `yaml:"lon"`
}

// Validate checks that the point lies within coordinate bounds
func (p Point) Validate() error {
	if math.IsNaN(p.Lat) || p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", p.Lat)
	}
	if math.IsNaN(p.Lon) || p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", p.Lon)
	}
	return nil
}

func (p Point) String() string {
	return fmt.Sprintf("%.6f, %.6f", p.Lat, p.Lon)
}

// Distance holds a distance in both units, each rounded to 2 decimals
type Distance struct {
	Kilometers float64
	Miles      float64
}

// Between returns the ellipsoidal distance from a to b
func Between(a, b Point) Distance {
	var meters float64
	geodesic.WGS84.Inverse(a.Lat, a.Lon, b.Lat, b.Lon, &meters, nil, nil)
	return Distance{
		Kilometers: Round2(meters / 1000),
		Miles:      Round2(meters / metersPerMile),
	}
}

// Round2 rounds x to two decimal places
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}
