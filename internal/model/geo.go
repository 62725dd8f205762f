package model

import "math"

// EarthRadius is the sphere radius in meters used for every distance.
// It matches the radius Redis uses for its GEO commands.
const EarthRadius = 6372797.560856

// Bounds of coordinates representable in the geo index.
// PositionInput's validate tags carry the same literals.
const (
	MaxLongitude = 180.0
	MaxLatitude  = 85.05112878
)

// Point is a WGS-84 longitude/latitude pair
type Point struct {
	Longitude float64
	Latitude  float64
}

// Distance returns the great-circle distance between two points in meters
func Distance(a, b Point) float64 {
	lat1 := degToRad(a.Latitude)
	lat2 := degToRad(b.Latitude)
	dLat := lat2 - lat1
	dLon := degToRad(b.Longitude - a.Longitude)

	h := math.Pow(math.Sin(dLat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dLon/2), 2)
	return 2 * EarthRadius * math.Asin(math.Min(1, math.Sqrt(h)))
}

func degToRad(d float64) float64 {
	return d * math.Pi / 180
}

func radToDeg(r float64) float64 {
	return r * 180 / math.Pi
}

// boxMargin pads the box so rounding never drops a point sitting on the radius
const boxMargin = 1e-7

// Box is a latitude/longitude range in degrees
type Box struct {
	MinLatitude, MaxLatitude   float64
	MinLongitude, MaxLongitude float64
}

// BoundingBox returns a box holding every point within distance meters of center.
// The longitude range widens to the whole globe when the circle reaches a pole
// or crosses the antimeridian.
func BoundingBox(center Point, distance float64) Box {
	r := distance / EarthRadius
	dLat := radToDeg(r) + boxMargin

	box := Box{
		MinLatitude:  math.Max(center.Latitude-dLat, -MaxLatitude),
		MaxLatitude:  math.Min(center.Latitude+dLat, MaxLatitude),
		MinLongitude: -MaxLongitude,
		MaxLongitude: MaxLongitude,
	}
	if center.Latitude+dLat >= 90 || center.Latitude-dLat <= -90 {
		return box
	}

	x := math.Sin(r) / math.Cos(degToRad(center.Latitude))
	if x >= 1 {
		return box
	}
	dLon := radToDeg(math.Asin(x)) + boxMargin
	if center.Longitude-dLon < -MaxLongitude || center.Longitude+dLon > MaxLongitude {
		return box
	}
	box.MinLongitude = center.Longitude - dLon
	box.MaxLongitude = center.Longitude + dLon
	return box
}

// Polygon is a closed ring of vertices; the last vertex repeats the first
type Polygon struct {
	Ring []Point
}

// Contains reports whether p lies inside the polygon (even-odd rule).
// Points on an edge may land on either side.
func (pg Polygon) Contains(p Point) bool {
	inside := false
	n := len(pg.Ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := pg.Ring[i], pg.Ring[j]
		if (a.Latitude > p.Latitude) != (b.Latitude > p.Latitude) {
			x := (b.Longitude-a.Longitude)*(p.Latitude-a.Latitude)/(b.Latitude-a.Latitude) + a.Longitude
			if p.Longitude < x {
				inside = !inside
			}
		}
	}
	return inside
}

// Closed reports whether the ring has at least four vertices and ends where it starts
func (pg Polygon) Closed() bool {
	n := len(pg.Ring)
	return n >= 4 && pg.Ring[0] == pg.Ring[n-1]
}
