package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/friendfinder/internal/model"
	"github.com/mcoot/friendfinder/internal/storage"
)

// maxTxRetries bounds optimistic transaction retries under contention
const maxTxRetries = 50

// ErrTooMuchContention is returned when a watched transaction keeps losing races
var ErrTooMuchContention = errors.New("redis: transaction retries exhausted")

// Storage is a Redis-backed implementation of the storage interface.
// Positions live twice: as a JSON record and as a member of a GEO sorted set.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ping checks the connection, used by the health endpoint
func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Friend operations

func (s *Storage) CreateFriend(ctx context.Context, friend *model.Friend) error {
	data, err := json.Marshal(friend)
	if err != nil {
		return err
	}

	// The email index doubles as the uniqueness constraint
	claimed, err := s.client.SetNX(ctx, emailIndexKey(friend.Email), string(friend.ID), 0).Result()
	if err != nil {
		return err
	}
	if !claimed {
		return model.ErrEmailExists
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, friendKey(friend.ID), data, 0)
	pipe.SAdd(ctx, friendsSetKey(), string(friend.ID))
	if _, err := pipe.Exec(ctx); err != nil {
		if delErr := s.client.Del(ctx, emailIndexKey(friend.Email)).Err(); delErr != nil {
			return errors.Join(err, fmt.Errorf("release email index: %w", delErr))
		}
		return err
	}
	return nil
}

// UpdateFriend runs under WATCH on both email index entries and the record,
// retrying when a concurrent writer touches any of them
func (s *Storage) UpdateFriend(ctx context.Context, email string, update model.FriendUpdate) (int, error) {
	for attempt := 0; attempt < maxTxRetries; attempt++ {
		n, err := s.updateFriend(ctx, email, update)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return n, err
	}
	return 0, ErrTooMuchContention
}

func (s *Storage) updateFriend(ctx context.Context, email string, update model.FriendUpdate) (int, error) {
	emailChanged := update.Email != email
	watched := []string{emailIndexKey(email)}
	if emailChanged {
		watched = append(watched, emailIndexKey(update.Email))
	}

	n := 0
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		id, err := tx.Get(ctx, emailIndexKey(email)).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return nil
			}
			return err
		}
		if err := tx.Watch(ctx, friendKey(model.FriendID(id))).Err(); err != nil {
			return err
		}

		data, err := tx.Get(ctx, friendKey(model.FriendID(id))).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return nil
			}
			return err
		}
		var friend model.Friend
		if err := json.Unmarshal(data, &friend); err != nil {
			return err
		}

		if emailChanged {
			taken, err := tx.Exists(ctx, emailIndexKey(update.Email)).Result()
			if err != nil {
				return err
			}
			if taken > 0 {
				return model.ErrEmailExists
			}
		}

		friend.Email = update.Email
		friend.FirstName = update.FirstName
		friend.LastName = update.LastName
		friend.PasswordHash = update.PasswordHash
		friend.LastModified = update.LastModified

		data, err = json.Marshal(&friend)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, friendKey(friend.ID), data, 0)
			if emailChanged {
				pipe.Set(ctx, emailIndexKey(update.Email), string(friend.ID), 0)
				pipe.Del(ctx, emailIndexKey(email))
			}
			return nil
		})
		if err != nil {
			return err
		}
		n = 1
		return nil
	}, watched...)
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Storage) DeleteFriend(ctx context.Context, email string) (bool, error) {
	id, err := s.client.GetDel(ctx, emailIndexKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, friendKey(model.FriendID(id)))
	pipe.SRem(ctx, friendsSetKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Storage) GetFriendByEmail(ctx context.Context, email string) (*model.Friend, error) {
	// Look up friend ID from email index
	id, err := s.client.Get(ctx, emailIndexKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrFriendNotFound
		}
		return nil, err
	}

	return s.GetFriendByID(ctx, model.FriendID(id))
}

func (s *Storage) GetFriendByID(ctx context.Context, id model.FriendID) (*model.Friend, error) {
	data, err := s.client.Get(ctx, friendKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrFriendNotFound
		}
		return nil, err
	}

	var friend model.Friend
	if err := json.Unmarshal(data, &friend); err != nil {
		return nil, err
	}
	return &friend, nil
}

func (s *Storage) ListFriends(ctx context.Context) ([]*model.Friend, error) {
	ids, err := s.client.SMembers(ctx, friendsSetKey()).Result()
	if err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return []*model.Friend{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = friendKey(model.FriendID(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	friends := make([]*model.Friend, 0, len(values))
	for _, val := range values {
		str, ok := val.(string)
		if !ok {
			continue // Deleted between SMEMBERS and MGET
		}
		var friend model.Friend
		if err := json.Unmarshal([]byte(str), &friend); err != nil {
			return nil, err
		}
		friends = append(friends, &friend)
	}

	sort.Slice(friends, func(i, j int) bool {
		return friends[i].Email < friends[j].Email
	})
	return friends, nil
}

// Position operations

func (s *Storage) UpsertPosition(ctx context.Context, position *model.Position) error {
	data, err := json.Marshal(position)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, positionKey(position.Email), data, 0)
	pipe.GeoAdd(ctx, positionsGeoKey(), &redis.GeoLocation{
		Name:      position.Email,
		Longitude: position.Location.Longitude,
		Latitude:  position.Location.Latitude,
	})
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetPosition(ctx context.Context, email string) (*model.Position, error) {
	data, err := s.client.Get(ctx, positionKey(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPositionNotFound
		}
		return nil, err
	}

	var position model.Position
	if err := json.Unmarshal(data, &position); err != nil {
		return nil, err
	}
	return &position, nil
}

func (s *Storage) DeletePosition(ctx context.Context, email string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, positionKey(email))
	pipe.ZRem(ctx, positionsGeoKey(), email)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) ListPositions(ctx context.Context) ([]*model.Position, error) {
	emails, err := s.client.ZRange(ctx, positionsGeoKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	positions, err := s.loadPositions(ctx, emails)
	if err != nil {
		return nil, err
	}

	result := make([]*model.Position, 0, len(positions))
	for _, p := range positions {
		if p != nil {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Email < result[j].Email
	})
	return result, nil
}

func (s *Storage) FindNearby(ctx context.Context, center model.Point, maxDistance float64, exclude string) ([]model.NearbyPosition, error) {
	matches, err := s.client.GeoRadius(ctx, positionsGeoKey(), center.Longitude, center.Latitude, &redis.GeoRadiusQuery{
		Radius:   maxDistance,
		Unit:     "m",
		WithDist: true,
		Sort:     "ASC",
	}).Result()
	if err != nil {
		return nil, err
	}

	emails := make([]string, 0, len(matches))
	distances := make([]float64, 0, len(matches))
	for _, m := range matches {
		if exclude != "" && m.Name == exclude {
			continue
		}
		emails = append(emails, m.Name)
		distances = append(distances, m.Dist)
	}

	positions, err := s.loadPositions(ctx, emails)
	if err != nil {
		return nil, err
	}

	nearby := make([]model.NearbyPosition, 0, len(positions))
	for i, p := range positions {
		if p == nil {
			continue
		}
		nearby = append(nearby, model.NearbyPosition{Position: *p, Distance: distances[i]})
	}
	return nearby, nil
}

// loadPositions fetches position records for emails in order; missing records are nil
func (s *Storage) loadPositions(ctx context.Context, emails []string) ([]*model.Position, error) {
	if len(emails) == 0 {
		return nil, nil
	}

	keys := make([]string, len(emails))
	for i, email := range emails {
		keys[i] = positionKey(email)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	positions := make([]*model.Position, len(values))
	for i, val := range values {
		str, ok := val.(string)
		if !ok {
			continue
		}
		var p model.Position
		if err := json.Unmarshal([]byte(str), &p); err != nil {
			return nil, err
		}
		positions[i] = &p
	}
	return positions, nil
}
