package model

import "time"

// Position is the most recent reported location of a friend
type Position struct {
	Email       string
	Name        string // friend's full name when the position was written
	Location    Point
	LastUpdated time.Time
}

// NearbyPosition is a Position matched by a proximity search
type NearbyPosition struct {
	Position
	Distance float64 // meters from the search center
}

// PositionInput carries reported coordinates, bounded by MaxLongitude and MaxLatitude
type PositionInput struct {
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
	Latitude  float64 `json:"latitude" validate:"gte=-85.05112878,lte=85.05112878"`
}

// Point returns the input as a Point
func (p PositionInput) Point() Point {
	return Point{Longitude: p.Longitude, Latitude: p.Latitude}
}
