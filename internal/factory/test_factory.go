package factory

import (
	"context"
	"io"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/friendfinder/internal/dependencies/mocks"
	"github.com/mcoot/friendfinder/internal/model"
	"github.com/mcoot/friendfinder/internal/services/friends"
	"github.com/mcoot/friendfinder/internal/storage/memory"
)

// TestTokenSecret signs tokens issued by a TestApp
var TestTokenSecret = []byte("test-secret")

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
	MockIDs   *mocks.MockIDs
	Memory    *memory.Storage
}

// NewTestApp creates an App configured for testing with mocked dependencies,
// in-memory storage and the cheapest bcrypt cost
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockIDs := mocks.NewMockIDs()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	app, err := newWithDependencies(store, mockClock, mockIDs, Config{
		FriendsConfig: friends.Config{BcryptCost: bcrypt.MinCost},
		TokenSecret:   TestTokenSecret,
	}, logger)
	if err != nil {
		panic(err)
	}

	return &TestApp{
		App:       app,
		MockClock: mockClock,
		MockIDs:   mockIDs,
		Memory:    store,
	}
}

// SeedAdmin creates an admin account with the given credentials
func (t *TestApp) SeedAdmin(ctx context.Context, email, password string) error {
	return t.Friends.EnsureAdmin(ctx, model.FriendInput{
		FirstName: "Admin",
		LastName:  "Account",
		Password:  password,
		Email:     email,
	})
}
