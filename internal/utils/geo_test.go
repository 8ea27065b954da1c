package utils

import (
	"testing"

	"sharebite/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceKm(t *testing.T) {
	// Bengaluru MG Road to Indiranagar, roughly 3.7 km.
	a := models.NewPoint(12.9756, 77.6066)
	b := models.NewPoint(12.9784, 77.6408)

	assert.InDelta(t, 3.7, DistanceKm(a, b), 0.2)
	assert.Zero(t, DistanceKm(a, a))
}

func TestParsePoint(t *testing.T) {
	p := ParsePoint("12.97", " 77.59 ")
	require.NotNil(t, p)
	assert.Equal(t, []float64{77.59, 12.97}, p.Coordinates)

	p = ParsePoint("0", "0")
	require.NotNil(t, p, "the origin is a real coordinate when given explicitly")

	for _, tc := range [][2]string{
		{"", "77.5"},
		{"12.9", ""},
		{"abc", "77.5"},
		{"NaN", "77.5"},
		{"12.9", "Inf"},
		{"91", "10"},
		{"10", "-181"},
	} {
		assert.Nil(t, ParsePoint(tc[0], tc[1]), tc)
	}
}
