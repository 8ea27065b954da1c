package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRole(t *testing.T) {
	cases := []struct {
		in   string
		want UserRole
		ok   bool
	}{
		{"donor", RoleDonor, true},
		{" Receiver ", RoleReceiver, true},
		{"ADMIN", RoleAdmin, true},
		{"volunteer", RoleAdmin, true},
		{"", "", false},
		{"moderator", "", false},
	}

	for _, tc := range cases {
		got, ok := NormalizeRole(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestLocationAccessors(t *testing.T) {
	loc := NewPoint(50.45, 30.52)
	assert.Equal(t, "Point", loc.Type)
	assert.Equal(t, []float64{30.52, 50.45}, loc.Coordinates)
	assert.Equal(t, 50.45, loc.Lat())
	assert.Equal(t, 30.52, loc.Lng())

	var missing *Location
	assert.Zero(t, missing.Lat())
	assert.Zero(t, missing.Lng())
}
