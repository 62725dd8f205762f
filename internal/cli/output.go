package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Profile:
		o.printProfile(v)
	case []FriendName:
		o.printFriendNames(v)
	case LoginResult:
		o.printLoginResult(v)
	case CreatedResult:
		fmt.Fprintf(o.w, "Registered: %s\n", v.ID)
	case ModifiedResult:
		fmt.Fprintf(o.w, "Modified: %d\n", v.ModifiedCount)
	case DeletedResult:
		fmt.Fprintf(o.w, "Deleted: %t\n", v.Deleted)
	case Position:
		o.printPosition(v)
	case []Position:
		for _, p := range v {
			o.printPosition(p)
		}
	case []NearbyPosition:
		o.printNearby(v)
	case GameArea:
		o.printGameArea(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Profile response type (matches API)
type Profile struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// FriendName response type
type FriendName struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// LoginResult response type
type LoginResult struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	Token string `json:"token"`
}

// CreatedResult response type
type CreatedResult struct {
	ID string `json:"id"`
}

// ModifiedResult response type
type ModifiedResult struct {
	ModifiedCount int `json:"modifiedCount"`
}

// DeletedResult response type
type DeletedResult struct {
	Deleted bool `json:"deleted"`
}

// Position response type
type Position struct {
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Longitude   float64   `json:"longitude"`
	Latitude    float64   `json:"latitude"`
	LastUpdated time.Time `json:"lastUpdated"`
	InGameArea  bool      `json:"inGameArea"`
}

// NearbyPosition response type
type NearbyPosition struct {
	Email     string  `json:"email"`
	Name      string  `json:"name"`
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
	Distance  float64 `json:"distance"`
}

// GameArea response type (GeoJSON Polygon)
type GameArea struct {
	Type        string        `json:"type"`
	Coordinates [][][]float64 `json:"coordinates"`
}

// HealthResult response type
type HealthResult struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}

func (o *Output) printProfile(p Profile) {
	fmt.Fprintf(o.w, "Friend: %s %s\n", p.FirstName, p.LastName)
	fmt.Fprintf(o.w, "Email: %s\n", p.Email)
}

func (o *Output) printFriendNames(names []FriendName) {
	fmt.Fprintf(o.w, "Friends (%d):\n", len(names))
	for _, n := range names {
		fmt.Fprintf(o.w, "  - %s %s\n", n.FirstName, n.LastName)
	}
}

func (o *Output) printLoginResult(l LoginResult) {
	fmt.Fprintf(o.w, "Logged in: %s (%s)\n", l.Email, l.Role)
	fmt.Fprintf(o.w, "Token: %s\n", l.Token)
}

func (o *Output) printPosition(p Position) {
	area := "outside game area"
	if p.InGameArea {
		area = "in game area"
	}
	fmt.Fprintf(o.w, "%s (%s): %.6f, %.6f, %s, updated %s\n",
		p.Name, p.Email, p.Longitude, p.Latitude, area, p.LastUpdated.Format(time.RFC3339))
}

func (o *Output) printNearby(nearby []NearbyPosition) {
	if len(nearby) == 0 {
		fmt.Fprintln(o.w, "No friends nearby")
		return
	}
	for _, n := range nearby {
		fmt.Fprintf(o.w, "%8.0f m  %s (%s)\n", n.Distance, n.Name, n.Email)
	}
}

func (o *Output) printGameArea(a GameArea) {
	fmt.Fprintf(o.w, "Game area (%s):\n", a.Type)
	if len(a.Coordinates) == 0 {
		return
	}
	for _, vertex := range a.Coordinates[0] {
		if len(vertex) >= 2 {
			fmt.Fprintf(o.w, "  %.6f, %.6f\n", vertex[0], vertex[1])
		}
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Fprintf(o.w, "Status: %s\n", h.Status)
	if h.Storage != "" {
		fmt.Fprintf(o.w, "Storage: %s\n", h.Storage)
	}
}
