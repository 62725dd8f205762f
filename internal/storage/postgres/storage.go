// Package postgres implements the storage interface on PostgreSQL via pgx.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mcoot/friendfinder/internal/model"
	"github.com/mcoot/friendfinder/internal/storage"
)

//go:embed schema.sql
var schemaSQL string

const uniqueViolation = "23505"

// Storage is a PostgreSQL-backed implementation of the storage interface
type Storage struct {
	pool *pgxpool.Pool
}

// New connects to databaseURL, verifies the connection and applies the schema
func New(ctx context.Context, databaseURL string) (*Storage, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("postgres: empty connection string")
	}

	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	s := NewWithPool(pool)
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// NewWithPool wraps an existing pool without touching the schema
func NewWithPool(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool}
}

// Migrate creates the tables and indexes if they do not exist
func (s *Storage) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("postgres: apply schema: %w", err)
	}
	return nil
}

// Close releases the pool
func (s *Storage) Close() error {
	s.pool.Close()
	return nil
}

// Ping checks the connection, used by the health endpoint
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// Friend operations

const friendColumns = `id, email, first_name, last_name, password_hash, role, created_at, last_modified`

func (s *Storage) CreateFriend(ctx context.Context, friend *model.Friend) error {
	const insertSQL = `
		INSERT INTO friends (` + friendColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (email) DO NOTHING
	`

	tag, err := s.pool.Exec(ctx, insertSQL,
		string(friend.ID), friend.Email, friend.FirstName, friend.LastName,
		friend.PasswordHash, string(friend.Role), friend.CreatedAt, friend.LastModified)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrEmailExists
		}
		return fmt.Errorf("postgres: create friend: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrEmailExists
	}
	return nil
}

func (s *Storage) UpdateFriend(ctx context.Context, email string, update model.FriendUpdate) (int, error) {
	const updateSQL = `
		UPDATE friends
		SET email = $2, first_name = $3, last_name = $4, password_hash = $5, last_modified = $6
		WHERE email = $1
	`

	tag, err := s.pool.Exec(ctx, updateSQL,
		email, update.Email, update.FirstName, update.LastName, update.PasswordHash, update.LastModified)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, model.ErrEmailExists
		}
		return 0, fmt.Errorf("postgres: update friend: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *Storage) DeleteFriend(ctx context.Context, email string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM friends WHERE email = $1`, email)
	if err != nil {
		return false, fmt.Errorf("postgres: delete friend: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Storage) GetFriendByEmail(ctx context.Context, email string) (*model.Friend, error) {
	const selectSQL = `SELECT ` + friendColumns + ` FROM friends WHERE email = $1`

	friend, err := scanFriend(s.pool.QueryRow(ctx, selectSQL, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrFriendNotFound
		}
		return nil, fmt.Errorf("postgres: get friend by email: %w", err)
	}
	return friend, nil
}

func (s *Storage) GetFriendByID(ctx context.Context, id model.FriendID) (*model.Friend, error) {
	const selectSQL = `SELECT ` + friendColumns + ` FROM friends WHERE id = $1`

	friend, err := scanFriend(s.pool.QueryRow(ctx, selectSQL, string(id)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrFriendNotFound
		}
		return nil, fmt.Errorf("postgres: get friend by id: %w", err)
	}
	return friend, nil
}

func (s *Storage) ListFriends(ctx context.Context) ([]*model.Friend, error) {
	const selectSQL = `SELECT ` + friendColumns + ` FROM friends ORDER BY email`

	rows, err := s.pool.Query(ctx, selectSQL)
	if err != nil {
		return nil, fmt.Errorf("postgres: list friends: %w", err)
	}
	defer rows.Close()

	friends := []*model.Friend{}
	for rows.Next() {
		friend, err := scanFriend(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan friend: %w", err)
		}
		friends = append(friends, friend)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list friends: %w", err)
	}
	return friends, nil
}

func scanFriend(row pgx.Row) (*model.Friend, error) {
	var (
		friend model.Friend
		id     string
		role   string
	)
	err := row.Scan(
		&id,
		&friend.Email,
		&friend.FirstName,
		&friend.LastName,
		&friend.PasswordHash,
		&role,
		&friend.CreatedAt,
		&friend.LastModified,
	)
	if err != nil {
		return nil, err
	}
	friend.ID = model.FriendID(id)
	friend.Role = model.Role(role)
	return &friend, nil
}

// Position operations

const positionColumns = `email, name, longitude, latitude, last_updated`

func (s *Storage) UpsertPosition(ctx context.Context, position *model.Position) error {
	const upsertSQL = `
		INSERT INTO positions (` + positionColumns + `)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO UPDATE
		SET name = EXCLUDED.name,
		    longitude = EXCLUDED.longitude,
		    latitude = EXCLUDED.latitude,
		    last_updated = EXCLUDED.last_updated
	`

	_, err := s.pool.Exec(ctx, upsertSQL,
		position.Email, position.Name, position.Location.Longitude, position.Location.Latitude, position.LastUpdated)
	if err != nil {
		return fmt.Errorf("postgres: upsert position: %w", err)
	}
	return nil
}

func (s *Storage) GetPosition(ctx context.Context, email string) (*model.Position, error) {
	const selectSQL = `SELECT ` + positionColumns + ` FROM positions WHERE email = $1`

	var p model.Position
	err := s.pool.QueryRow(ctx, selectSQL, email).Scan(
		&p.Email, &p.Name, &p.Location.Longitude, &p.Location.Latitude, &p.LastUpdated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrPositionNotFound
		}
		return nil, fmt.Errorf("postgres: get position: %w", err)
	}
	return &p, nil
}

func (s *Storage) DeletePosition(ctx context.Context, email string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM positions WHERE email = $1`, email); err != nil {
		return fmt.Errorf("postgres: delete position: %w", err)
	}
	return nil
}

func (s *Storage) ListPositions(ctx context.Context) ([]*model.Position, error) {
	const selectSQL = `SELECT ` + positionColumns + ` FROM positions ORDER BY email`

	rows, err := s.pool.Query(ctx, selectSQL)
	if err != nil {
		return nil, fmt.Errorf("postgres: list positions: %w", err)
	}
	defer rows.Close()

	positions := []*model.Position{}
	for rows.Next() {
		var p model.Position
		if err := rows.Scan(&p.Email, &p.Name, &p.Location.Longitude, &p.Location.Latitude, &p.LastUpdated); err != nil {
			return nil, fmt.Errorf("postgres: scan position: %w", err)
		}
		positions = append(positions, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list positions: %w", err)
	}
	return positions, nil
}

// FindNearby narrows candidates with a bounding box on the coordinate index, then
// computes the haversine distance in SQL on the same sphere as model.Distance
func (s *Storage) FindNearby(ctx context.Context, center model.Point, maxDistance float64, exclude string) ([]model.NearbyPosition, error) {
	const nearbySQL = `
		SELECT ` + positionColumns + `, distance FROM (
			SELECT ` + positionColumns + `,
				2 * $3::float8 * asin(least(1, sqrt(
					power(sin(radians(latitude - $2::float8) / 2), 2) +
					cos(radians($2::float8)) * cos(radians(latitude)) *
					power(sin(radians(longitude - $1::float8) / 2), 2)
				))) AS distance
			FROM positions
			WHERE email <> $4
				AND latitude BETWEEN $6 AND $7
				AND longitude BETWEEN $8 AND $9
		) p
		WHERE distance <= $5
		ORDER BY distance, email
	`

	box := model.BoundingBox(center, maxDistance)
	rows, err := s.pool.Query(ctx, nearbySQL,
		center.Longitude, center.Latitude, model.EarthRadius, exclude, maxDistance,
		box.MinLatitude, box.MaxLatitude, box.MinLongitude, box.MaxLongitude)
	if err != nil {
		return nil, fmt.Errorf("postgres: find nearby: %w", err)
	}
	defer rows.Close()

	nearby := []model.NearbyPosition{}
	for rows.Next() {
		var n model.NearbyPosition
		if err := rows.Scan(&n.Email, &n.Name, &n.Location.Longitude, &n.Location.Latitude, &n.LastUpdated, &n.Distance); err != nil {
			return nil, fmt.Errorf("postgres: scan nearby: %w", err)
		}
		nearby = append(nearby, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: find nearby: %w", err)
	}
	return nearby, nil
}
