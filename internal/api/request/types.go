package request

import "github.com/mcoot/friendfinder/internal/model"

// FriendRequest is the request body for registering or editing a friend
type FriendRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Password  string `json:"password"`
	Email     string `json:"email"`
}

// Input converts the request to service input
func (r FriendRequest) Input() model.FriendInput {
	return model.FriendInput{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Password:  r.Password,
		Email:     r.Email,
	}
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PositionRequest is the request body for reporting a position
type PositionRequest struct {
	Longitude *float64 `json:"longitude"`
	Latitude  *float64 `json:"latitude"`
}
