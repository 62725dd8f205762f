package positions

import (
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/gjson"

	"github.com/mcoot/friendfinder/internal/model"
)

// ErrInvalidGameArea is returned when a game area document is not a usable polygon
var ErrInvalidGameArea = errors.New("invalid game area")

// DefaultGameArea is the built-in play area covering central Copenhagen
func DefaultGameArea() model.Polygon {
	return model.Polygon{Ring: []model.Point{
		{Longitude: 12.4950, Latitude: 55.6400},
		{Longitude: 12.6500, Latitude: 55.6400},
		{Longitude: 12.6500, Latitude: 55.7200},
		{Longitude: 12.4950, Latitude: 55.7200},
		{Longitude: 12.4950, Latitude: 55.6400},
	}}
}

// LoadGameArea reads a GeoJSON file holding a Polygon geometry, a Feature or a
// FeatureCollection whose first feature is a Polygon. Only the outer ring is used.
func LoadGameArea(path string) (model.Polygon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Polygon{}, fmt.Errorf("read game area: %w", err)
	}
	return ParseGameArea(data)
}

// ParseGameArea parses a GeoJSON document into a polygon
func ParseGameArea(data []byte) (model.Polygon, error) {
	if !gjson.ValidBytes(data) {
		return model.Polygon{}, fmt.Errorf("%w: not valid JSON", ErrInvalidGameArea)
	}

	geometry := gjson.ParseBytes(data)
	switch geometry.Get("type").String() {
	case "FeatureCollection":
		geometry = geometry.Get("features.0.geometry")
	case "Feature":
		geometry = geometry.Get("geometry")
	}

	if t := geometry.Get("type").String(); t != "Polygon" {
		return model.Polygon{}, fmt.Errorf("%w: geometry type %q, want Polygon", ErrInvalidGameArea, t)
	}

	var ring []model.Point
	var bad bool
	geometry.Get("coordinates.0").ForEach(func(_, vertex gjson.Result) bool {
		coords := vertex.Array()
		if len(coords) < 2 {
			bad = true
			return false
		}
		ring = append(ring, model.Point{Longitude: coords[0].Float(), Latitude: coords[1].Float()})
		return true
	})
	if bad {
		return model.Polygon{}, fmt.Errorf("%w: vertex without longitude and latitude", ErrInvalidGameArea)
	}

	polygon := model.Polygon{Ring: ring}
	if !polygon.Closed() {
		return model.Polygon{}, fmt.Errorf("%w: ring must have at least 4 vertices and end where it starts", ErrInvalidGameArea)
	}
	return polygon, nil
}
