package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Location is a GeoJSON point. Coordinates are stored as [lng, lat] so the
// 2dsphere index can use them directly.
type Location struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
}

// NewPoint builds a GeoJSON point from latitude and longitude.
func NewPoint(lat, lng float64) *Location {
	return &Location{
		Type:        "Point",
		Coordinates: []float64{lng, lat},
	}
}

func (l *Location) Lat() float64 {
	if l == nil || len(l.Coordinates) != 2 {
		return 0
	}
	return l.Coordinates[1]
}

func (l *Location) Lng() float64 {
	if l == nil || len(l.Coordinates) != 2 {
		return 0
	}
	return l.Coordinates[0]
}

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         UserRole           `bson:"role" json:"role"`

	// Профиль
	Phone        string `bson:"phone" json:"phone"`
	Address      string `bson:"address" json:"address"`
	City         string `bson:"city" json:"city"`
	Pincode      string `bson:"pincode" json:"pincode"`
	LocationName string `bson:"location_name" json:"locationName"`

	// Nil when the user registered without coordinates; such users never
	// show up in proximity queries.
	Location *Location `bson:"location,omitempty" json:"location,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// NearbyUser is a proximity query hit.
type NearbyUser struct {
	ID       primitive.ObjectID `bson:"_id"`
	Location *Location          `bson:"location"`
}
