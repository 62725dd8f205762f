package response

import (
	"time"

	"github.com/mcoot/friendfinder/internal/model"
)

// Profile represents a friend in API responses. There is no password field.
type Profile struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// ProfileFromModel converts a model.Profile
func ProfileFromModel(p *model.Profile) Profile {
	return Profile{
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
	}
}

// FriendName is the list view of a friend
type FriendName struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// FriendNamesFromModel projects friends to names only
func FriendNamesFromModel(friends []*model.Friend) []FriendName {
	names := make([]FriendName, len(friends))
	for i, f := range friends {
		names[i] = FriendName{FirstName: f.FirstName, LastName: f.LastName}
	}
	return names
}

// CreatedResponse is returned by register
type CreatedResponse struct {
	ID string `json:"id"`
}

// ModifiedResponse is returned by edits
type ModifiedResponse struct {
	ModifiedCount int `json:"modifiedCount"`
}

// DeletedResponse is returned by delete
type DeletedResponse struct {
	Deleted bool `json:"deleted"`
}

// LoginResponse carries the bearer token issued at login
type LoginResponse struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	Token string `json:"token"`
}

// Position represents a position in API responses
type Position struct {
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Longitude   float64   `json:"longitude"`
	Latitude    float64   `json:"latitude"`
	LastUpdated time.Time `json:"lastUpdated"`
	InGameArea  bool      `json:"inGameArea"`
}

// PositionFromModel converts a model.Position
func PositionFromModel(p *model.Position, inGameArea bool) Position {
	return Position{
		Email:       p.Email,
		Name:        p.Name,
		Longitude:   p.Location.Longitude,
		Latitude:    p.Location.Latitude,
		LastUpdated: p.LastUpdated,
		InGameArea:  inGameArea,
	}
}

// NearbyPosition is a search hit
type NearbyPosition struct {
	Email     string  `json:"email"`
	Name      string  `json:"name"`
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
	Distance  float64 `json:"distance"`
}

// NearbyFromModel converts search hits
func NearbyFromModel(nearby []model.NearbyPosition) []NearbyPosition {
	result := make([]NearbyPosition, len(nearby))
	for i, n := range nearby {
		result[i] = NearbyPosition{
			Email:     n.Email,
			Name:      n.Name,
			Longitude: n.Location.Longitude,
			Latitude:  n.Location.Latitude,
			Distance:  n.Distance,
		}
	}
	return result
}

// GeoJSONPolygon is the GeoJSON rendering of the game area
type GeoJSONPolygon struct {
	Type        string        `json:"type"`
	Coordinates [][][]float64 `json:"coordinates"`
}

// GeoJSONFromPolygon renders a polygon as a single-ring GeoJSON Polygon
func GeoJSONFromPolygon(p model.Polygon) GeoJSONPolygon {
	ring := make([][]float64, len(p.Ring))
	for i, pt := range p.Ring {
		ring[i] = []float64{pt.Longitude, pt.Latitude}
	}
	return GeoJSONPolygon{Type: "Polygon", Coordinates: [][][]float64{ring}}
}

// HealthResponse is returned by the health check
type HealthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}
