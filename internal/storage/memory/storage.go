package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mcoot/friendfinder/internal/model"
	"github.com/mcoot/friendfinder/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	friends    map[model.FriendID]*model.Friend
	emailIndex map[string]model.FriendID
	positions  map[string]*model.Position
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		friends:    make(map[model.FriendID]*model.Friend),
		emailIndex: make(map[string]model.FriendID),
		positions:  make(map[string]*model.Position),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Friend operations

func (s *Storage) CreateFriend(ctx context.Context, friend *model.Friend) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.emailIndex[friend.Email]; taken {
		return model.ErrEmailExists
	}
	stored := *friend
	s.friends[friend.ID] = &stored
	s.emailIndex[friend.Email] = friend.ID
	return nil
}

func (s *Storage) UpdateFriend(ctx context.Context, email string, update model.FriendUpdate) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.emailIndex[email]
	if !ok {
		return 0, nil
	}
	if update.Email != email {
		if _, taken := s.emailIndex[update.Email]; taken {
			return 0, model.ErrEmailExists
		}
		delete(s.emailIndex, email)
		s.emailIndex[update.Email] = id
	}

	friend := s.friends[id]
	friend.Email = update.Email
	friend.FirstName = update.FirstName
	friend.LastName = update.LastName
	friend.PasswordHash = update.PasswordHash
	friend.LastModified = update.LastModified
	return 1, nil
}

func (s *Storage) DeleteFriend(ctx context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.emailIndex[email]
	if !ok {
		return false, nil
	}
	delete(s.emailIndex, email)
	delete(s.friends, id)
	return true, nil
}

func (s *Storage) GetFriendByEmail(ctx context.Context, email string) (*model.Friend, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emailIndex[email]
	if !ok {
		return nil, model.ErrFriendNotFound
	}
	return s.copyFriend(id)
}

func (s *Storage) GetFriendByID(ctx context.Context, id model.FriendID) (*model.Friend, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyFriend(id)
}

// copyFriend must be called with the lock held
func (s *Storage) copyFriend(id model.FriendID) (*model.Friend, error) {
	friend, ok := s.friends[id]
	if !ok {
		return nil, model.ErrFriendNotFound
	}
	c := *friend
	return &c, nil
}

func (s *Storage) ListFriends(ctx context.Context) ([]*model.Friend, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	friends := make([]*model.Friend, 0, len(s.friends))
	for _, f := range s.friends {
		c := *f
		friends = append(friends, &c)
	}
	sort.Slice(friends, func(i, j int) bool {
		return friends[i].Email < friends[j].Email
	})
	return friends, nil
}

// Position operations

func (s *Storage) UpsertPosition(ctx context.Context, position *model.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *position
	s.positions[position.Email] = &stored
	return nil
}

func (s *Storage) GetPosition(ctx context.Context, email string) (*model.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	position, ok := s.positions[email]
	if !ok {
		return nil, model.ErrPositionNotFound
	}
	c := *position
	return &c, nil
}

func (s *Storage) DeletePosition(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.positions, email)
	return nil
}

func (s *Storage) ListPositions(ctx context.Context) ([]*model.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	positions := make([]*model.Position, 0, len(s.positions))
	for _, p := range s.positions {
		c := *p
		positions = append(positions, &c)
	}
	sort.Slice(positions, func(i, j int) bool {
		return positions[i].Email < positions[j].Email
	})
	return positions, nil
}

func (s *Storage) FindNearby(ctx context.Context, center model.Point, maxDistance float64, exclude string) ([]model.NearbyPosition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var nearby []model.NearbyPosition
	for email, p := range s.positions {
		if exclude != "" && email == exclude {
			continue
		}
		d := model.Distance(center, p.Location)
		if d > maxDistance {
			continue
		}
		nearby = append(nearby, model.NearbyPosition{Position: *p, Distance: d})
	}
	sort.Slice(nearby, func(i, j int) bool {
		if nearby[i].Distance != nearby[j].Distance {
			return nearby[i].Distance < nearby[j].Distance
		}
		return nearby[i].Email < nearby[j].Email
	})
	return nearby, nil
}
