package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	armidale = Point{Lat: -30.500557, Lon: 151.5973595}
	tamworth = Point{Lat: -31.0929782, Lon: 150.9235611}
	quirindi = Point{Lat: -31.4994214, Lon: 150.5558575}
)

func TestBetween_Symmetric(t *testing.T) {
	pairs := [][2]Point{
		{armidale, tamworth},
		{tamworth, quirindi},
		{{Lat: 51.5, Lon: -0.12}, {Lat: 40.71, Lon: -74.0}},
		{{Lat: 0, Lon: 179.5}, {Lat: 0, Lon: -179.5}},
	}
	for _, p := range pairs {
		assert.Equal(t, Between(p[0], p[1]), Between(p[1], p[0]))
	}
}

func TestBetween_SamePointIsZero(t *testing.T) {
	for _, p := range []Point{armidale, tamworth, {}} {
		assert.Equal(t, Distance{}, Between(p, p))
	}
}

func TestBetween_KnownDistance(t *testing.T) {
	d := Between(armidale, tamworth)
	// roughly 91 km between the two towns
	assert.InDelta(t, 91, d.Kilometers, 2)
	assert.InDelta(t, d.Kilometers/1.609344, d.Miles, 0.01)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 22.22, Round2(22.2222))
	assert.Equal(t, 1.01, Round2(1.005000001))
	assert.Equal(t, 0.0, Round2(0.001))
}

func TestPoint_Validate(t *testing.T) {
	assert.NoError(t, armidale.Validate())
	assert.Error(t, Point{Lat: 91}.Validate())
	assert.Error(t, Point{Lon: -181}.Validate())
}
