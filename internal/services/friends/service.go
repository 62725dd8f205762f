package friends

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/friendfinder/internal/dependencies/clock"
	"github.com/mcoot/friendfinder/internal/dependencies/ids"
	"github.com/mcoot/friendfinder/internal/model"
	"github.com/mcoot/friendfinder/internal/services/validation"
	"github.com/mcoot/friendfinder/internal/storage"
)

// Service manages friend identities and their credentials
type Service struct {
	storage    storage.Storage
	clock      clock.Clock
	ids        ids.Generator
	logger     *slog.Logger
	bcryptCost int
}

// Config holds configuration for the friends service
type Config struct {
	BcryptCost int
}

// DefaultConfig returns default friends configuration
func DefaultConfig() Config {
	return Config{
		BcryptCost: bcrypt.DefaultCost,
	}
}

// New creates a new friends Service
func New(storage storage.Storage, clock clock.Clock, ids ids.Generator, logger *slog.Logger, cfg Config) *Service {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = DefaultConfig().BcryptCost
	}
	return &Service{
		storage:    storage,
		clock:      clock,
		ids:        ids,
		logger:     logger.With(slog.String("component", "friends-service")),
		bcryptCost: cfg.BcryptCost,
	}
}

// NormalizeEmail is the canonical form emails are stored and looked up under
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register validates and stores a new friend with role user
func (s *Service) Register(ctx context.Context, input model.FriendInput) (model.FriendID, error) {
	friend, err := s.newFriend(input, model.RoleUser)
	if err != nil {
		return "", err
	}

	if err := s.storage.CreateFriend(ctx, friend); err != nil {
		if errors.Is(err, model.ErrEmailExists) {
			return "", err
		}
		return "", fmt.Errorf("friends: create: %w", err)
	}

	s.logger.Info("friend registered",
		slog.String("friend_id", string(friend.ID)),
		slog.String("email", friend.Email),
	)
	return friend.ID, nil
}

// EnsureAdmin creates an admin account unless the email is already registered
func (s *Service) EnsureAdmin(ctx context.Context, input model.FriendInput) error {
	friend, err := s.newFriend(input, model.RoleAdmin)
	if err != nil {
		return err
	}

	if err := s.storage.CreateFriend(ctx, friend); err != nil {
		if errors.Is(err, model.ErrEmailExists) {
			s.logger.Debug("admin already present", slog.String("email", friend.Email))
			return nil
		}
		return fmt.Errorf("friends: create admin: %w", err)
	}

	s.logger.Info("admin created", slog.String("email", friend.Email))
	return nil
}

func (s *Service) newFriend(input model.FriendInput, role model.Role) (*model.Friend, error) {
	input.Email = NormalizeEmail(input.Email)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	hash, err := s.hash(input.Password)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	return &model.Friend{
		ID:           model.FriendID(s.ids.NewID()),
		Email:        input.Email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		LastModified: now,
	}, nil
}

// Edit replaces the names, email and password of the friend stored under targetEmail.
// It returns the number of records modified; 0 means no such friend.
func (s *Service) Edit(ctx context.Context, targetEmail string, input model.FriendInput) (int, error) {
	targetEmail = NormalizeEmail(targetEmail)
	input.Email = NormalizeEmail(input.Email)
	if err := validation.Struct(input); err != nil {
		return 0, err
	}

	current, err := s.storage.GetFriendByEmail(ctx, targetEmail)
	if err != nil {
		if errors.Is(err, model.ErrFriendNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("friends: get: %w", err)
	}

	// An unchanged password keeps its hash so issued tokens stay valid
	hash := current.PasswordHash
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(input.Password)) != nil {
		hash, err = s.hash(input.Password)
		if err != nil {
			return 0, err
		}
	}

	n, err := s.storage.UpdateFriend(ctx, targetEmail, model.FriendUpdate{
		Email:        input.Email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PasswordHash: hash,
		LastModified: s.clock.Now(),
	})
	if err != nil {
		if errors.Is(err, model.ErrEmailExists) {
			return 0, err
		}
		return 0, fmt.Errorf("friends: update: %w", err)
	}

	if n > 0 && input.Email != targetEmail {
		// The old position would otherwise point at an email nobody owns
		if err := s.storage.DeletePosition(ctx, targetEmail); err != nil {
			return n, fmt.Errorf("friends: purge position: %w", err)
		}
		s.logger.Info("friend email changed",
			slog.String("old_email", targetEmail),
			slog.String("new_email", input.Email),
		)
	}
	return n, nil
}

// Delete removes the friend and its position. It reports whether a friend existed.
func (s *Service) Delete(ctx context.Context, email string) (bool, error) {
	email = NormalizeEmail(email)

	deleted, err := s.storage.DeleteFriend(ctx, email)
	if err != nil {
		return false, fmt.Errorf("friends: delete: %w", err)
	}
	if !deleted {
		return false, nil
	}

	if err := s.storage.DeletePosition(ctx, email); err != nil {
		return true, fmt.Errorf("friends: purge position: %w", err)
	}

	s.logger.Info("friend deleted", slog.String("email", email))
	return true, nil
}

// List returns every friend ordered by email
func (s *Service) List(ctx context.Context) ([]*model.Friend, error) {
	friends, err := s.storage.ListFriends(ctx)
	if err != nil {
		return nil, fmt.Errorf("friends: list: %w", err)
	}
	return friends, nil
}

// Get returns the full record for email, for use inside the service layer
func (s *Service) Get(ctx context.Context, email string) (*model.Friend, error) {
	friend, err := s.storage.GetFriendByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, model.ErrFriendNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("friends: get: %w", err)
	}
	return friend, nil
}

// GetByEmail returns the public profile stored under email
func (s *Service) GetByEmail(ctx context.Context, email string) (*model.Profile, error) {
	friend, err := s.Get(ctx, email)
	if err != nil {
		return nil, err
	}
	return friend.Profile(), nil
}

// Lookup returns the full record of the friend with the given ID
func (s *Service) Lookup(ctx context.Context, id model.FriendID) (*model.Friend, error) {
	friend, err := s.storage.GetFriendByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrFriendNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("friends: get by id: %w", err)
	}
	return friend, nil
}

// GetByID returns the public profile of the friend with the given ID
func (s *Service) GetByID(ctx context.Context, id model.FriendID) (*model.Profile, error) {
	friend, err := s.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	return friend.Profile(), nil
}

// VerifyCredentials returns the friend when password matches the stored hash.
// A mismatch or unknown email is (nil, false, nil); err is only set on store failures.
func (s *Service) VerifyCredentials(ctx context.Context, email, password string) (*model.Friend, bool, error) {
	friend, err := s.storage.GetFriendByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, model.ErrFriendNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("friends: verify credentials: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(friend.PasswordHash), []byte(password)); err != nil {
		return nil, false, nil
	}
	return friend, true, nil
}

func (s *Service) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("friends: hash password: %w", err)
	}
	return string(hash), nil
}
