package storage

import (
	"context"

	"github.com/mcoot/friendfinder/internal/model"
)

// Backend names accepted by configuration
const (
	TypeMemory   = "memory"
	TypeRedis    = "redis"
	TypePostgres = "postgres"
)

// Storage defines the interface for data persistence
type Storage interface {
	// Friend operations
	CreateFriend(ctx context.Context, friend *model.Friend) error
	// UpdateFriend replaces the friend stored under email and reports how many records changed (0 or 1)
	UpdateFriend(ctx context.Context, email string, update model.FriendUpdate) (int, error)
	DeleteFriend(ctx context.Context, email string) (bool, error)
	GetFriendByEmail(ctx context.Context, email string) (*model.Friend, error)
	GetFriendByID(ctx context.Context, id model.FriendID) (*model.Friend, error)
	ListFriends(ctx context.Context) ([]*model.Friend, error)

	// Position operations
	UpsertPosition(ctx context.Context, position *model.Position) error
	GetPosition(ctx context.Context, email string) (*model.Position, error)
	DeletePosition(ctx context.Context, email string) error
	ListPositions(ctx context.Context) ([]*model.Position, error)
	// FindNearby returns positions within maxDistance meters of center, nearest first,
	// skipping the position stored under exclude
	FindNearby(ctx context.Context, center model.Point, maxDistance float64, exclude string) ([]model.NearbyPosition, error)
}
