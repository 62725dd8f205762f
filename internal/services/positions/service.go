package positions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/friendfinder/internal/dependencies/clock"
	"github.com/mcoot/friendfinder/internal/model"
	"github.com/mcoot/friendfinder/internal/services/friends"
	"github.com/mcoot/friendfinder/internal/services/validation"
	"github.com/mcoot/friendfinder/internal/storage"
)

// Service records friend positions and answers proximity queries
type Service struct {
	storage  storage.Storage
	clock    clock.Clock
	logger   *slog.Logger
	gameArea model.Polygon
}

// New creates a new positions Service bounded by gameArea
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger, gameArea model.Polygon) *Service {
	return &Service{
		storage:  storage,
		clock:    clock,
		logger:   logger.With(slog.String("component", "positions-service")),
		gameArea: gameArea,
	}
}

// UpsertPosition stores the location of the friend registered under email,
// replacing any earlier position
func (s *Service) UpsertPosition(ctx context.Context, email string, longitude, latitude float64) (*model.Position, error) {
	input := model.PositionInput{Longitude: longitude, Latitude: latitude}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	email = friends.NormalizeEmail(email)
	friend, err := s.storage.GetFriendByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrFriendNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("positions: get friend: %w", err)
	}

	position := &model.Position{
		Email:       friend.Email,
		Name:        friend.FullName(),
		Location:    input.Point(),
		LastUpdated: s.clock.Now(),
	}
	if err := s.storage.UpsertPosition(ctx, position); err != nil {
		return nil, fmt.Errorf("positions: upsert: %w", err)
	}

	s.logger.Debug("position updated",
		slog.String("email", position.Email),
		slog.Float64("longitude", longitude),
		slog.Float64("latitude", latitude),
	)
	return position, nil
}

// FindNearby checks the requester in at the given point, then returns every other
// position within maxDistance meters, nearest first
func (s *Service) FindNearby(ctx context.Context, email string, longitude, latitude, maxDistance float64) ([]model.NearbyPosition, error) {
	if !(maxDistance > 0) {
		return nil, model.NewValidationError("distance", "distance must be greater than 0")
	}

	requester, err := s.UpsertPosition(ctx, email, longitude, latitude)
	if err != nil {
		return nil, err
	}

	nearby, err := s.storage.FindNearby(ctx, requester.Location, maxDistance, requester.Email)
	if err != nil {
		return nil, fmt.Errorf("positions: find nearby: %w", err)
	}
	return nearby, nil
}

// GetPosition returns the position stored under email
func (s *Service) GetPosition(ctx context.Context, email string) (*model.Position, error) {
	position, err := s.storage.GetPosition(ctx, friends.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, model.ErrPositionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("positions: get: %w", err)
	}
	return position, nil
}

// ListAllPositions returns every stored position
func (s *Service) ListAllPositions(ctx context.Context) ([]*model.Position, error) {
	positions, err := s.storage.ListPositions(ctx)
	if err != nil {
		return nil, fmt.Errorf("positions: list: %w", err)
	}
	return positions, nil
}

// GameArea returns a copy of the play area polygon
func (s *Service) GameArea() model.Polygon {
	return model.Polygon{Ring: append([]model.Point(nil), s.gameArea.Ring...)}
}

// InGameArea reports whether p lies inside the play area
func (s *Service) InGameArea(p model.Point) bool {
	return s.gameArea.Contains(p)
}
