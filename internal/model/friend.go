package model

import "time"

// FriendID is the opaque identifier assigned to a friend at registration
type FriendID string

// Role controls which operations a friend may perform on others
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Friend is a registered identity
type Friend struct {
	ID           FriendID
	Email        string // unique, lowercase
	FirstName    string
	LastName     string
	PasswordHash string // bcrypt hash, never leaves the service layer
	Role         Role
	CreatedAt    time.Time
	LastModified time.Time
}

// FullName is the display name snapshot stored on positions
func (f *Friend) FullName() string {
	return f.FirstName + " " + f.LastName
}

// Profile projects a Friend to the fields any caller may see
func (f *Friend) Profile() *Profile {
	return &Profile{
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Email:     f.Email,
	}
}

// Profile is the public projection of a Friend
type Profile struct {
	FirstName string
	LastName  string
	Email     string
}

// FriendInput carries the caller-supplied fields for register and edit
type FriendInput struct {
	FirstName string `json:"firstName" validate:"required,min=2,max=40"`
	LastName  string `json:"lastName" validate:"required,min=2,max=50"`
	Password  string `json:"password" validate:"required,min=4,max=30"`
	Email     string `json:"email" validate:"required,email"`
}

// FriendUpdate is the full replacement written by an edit
type FriendUpdate struct {
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	LastModified time.Time
}
