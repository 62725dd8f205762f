package factory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/friendfinder/internal/model"
	"github.com/mcoot/friendfinder/internal/services/access"
	"github.com/mcoot/friendfinder/internal/storage"
	redisstorage "github.com/mcoot/friendfinder/internal/storage/redis"
	"github.com/mcoot/friendfinder/internal/testutil"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

func jan() model.FriendInput {
	return model.FriendInput{FirstName: "Jan", LastName: "Olsen", Password: "secret", Email: "jan@b.dk"}
}

// Test: register, conflict, failed edit, admin delete
func (s *IntegrationSuite) TestJanOlsenFlow() {
	_, err := s.app.Friends.Register(s.ctx, jan())
	s.Require().NoError(err)

	_, err = s.app.Friends.Register(s.ctx, jan())
	s.ErrorIs(err, model.ErrEmailExists)

	weak := jan()
	weak.Password = "se"
	_, err = s.app.Friends.Edit(s.ctx, "jan@b.dk", weak)
	var verr *model.ValidationError
	s.Require().True(errors.As(err, &verr))
	s.Contains(verr.Message, "at least 4")

	// Original password still works
	_, ok, err := s.app.Friends.VerifyCredentials(s.ctx, "jan@b.dk", "secret")
	s.Require().NoError(err)
	s.True(ok)

	s.Require().NoError(s.app.SeedAdmin(s.ctx, "admin@b.dk", "adminpw"))
	ctx := access.WithPrincipal(s.ctx, &access.Principal{Email: "admin@b.dk", Role: model.RoleAdmin})
	_, err = access.Authorize(ctx, access.DeleteFriend)
	s.Require().NoError(err)

	deleted, err := s.app.Friends.Delete(ctx, "jan@b.dk")
	s.Require().NoError(err)
	s.True(deleted)

	deleted, err = s.app.Friends.Delete(ctx, "jan@b.dk")
	s.Require().NoError(err)
	s.False(deleted)
}

// Test: two friends 5 km apart
func (s *IntegrationSuite) TestFiveKilometersApart() {
	_, err := s.app.Friends.Register(s.ctx, jan())
	s.Require().NoError(err)
	other := model.FriendInput{FirstName: "Ole", LastName: "Hansen", Password: "secret", Email: "ole@b.dk"}
	_, err = s.app.Friends.Register(s.ctx, other)
	s.Require().NoError(err)

	_, err = s.app.Positions.UpsertPosition(s.ctx, "ole@b.dk", 12.5683, 55.6761+5000/111226.29)
	s.Require().NoError(err)

	nearby, err := s.app.Positions.FindNearby(s.ctx, "jan@b.dk", 12.5683, 55.6761, 10000)
	s.Require().NoError(err)
	s.Require().Len(nearby, 1)
	s.Equal("ole@b.dk", nearby[0].Email)
	s.Equal("Ole Hansen", nearby[0].Name)

	nearby, err = s.app.Positions.FindNearby(s.ctx, "jan@b.dk", 12.5683, 55.6761, 1000)
	s.Require().NoError(err)
	s.Empty(nearby)

	// The requester was checked in and shows up for admins
	all, err := s.app.Positions.ListAllPositions(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 2)
}

func (s *IntegrationSuite) TestDeletePurgesPosition() {
	_, err := s.app.Friends.Register(s.ctx, jan())
	s.Require().NoError(err)
	_, err = s.app.Positions.UpsertPosition(s.ctx, "jan@b.dk", 12.5683, 55.6761)
	s.Require().NoError(err)

	_, err = s.app.Friends.Delete(s.ctx, "jan@b.dk")
	s.Require().NoError(err)

	_, err = s.app.Positions.GetPosition(s.ctx, "jan@b.dk")
	s.ErrorIs(err, model.ErrPositionNotFound)
}

func (s *IntegrationSuite) TestTokenExpiresWithClock() {
	_, err := s.app.Friends.Register(s.ctx, jan())
	s.Require().NoError(err)

	_, token, err := s.app.Authenticator.Login(s.ctx, "jan@b.dk", "secret")
	s.Require().NoError(err)

	principal, err := s.app.Authenticator.Authenticate(s.ctx, "Bearer "+token)
	s.Require().NoError(err)
	s.Equal("jan@b.dk", principal.Email)

	s.app.MockClock.Advance(DefaultTokenTTL + time.Minute)
	_, err = s.app.Authenticator.Authenticate(s.ctx, "Bearer "+token)
	s.ErrorIs(err, model.ErrUnauthorized)
}

func (s *IntegrationSuite) TestQueuedIDs() {
	s.app.MockIDs.Queue("friend-a")

	id, err := s.app.Friends.Register(s.ctx, jan())
	s.Require().NoError(err)
	s.Equal(model.FriendID("friend-a"), id)

	profile, err := s.app.Friends.GetByID(s.ctx, id)
	s.Require().NoError(err)
	s.Equal("jan@b.dk", profile.Email)
}

func TestNewDefaultsToMemory(t *testing.T) {
	app, err := New(context.Background(), Config{Logger: testutil.NopLogger()})
	require.NoError(t, err)
	defer app.Close()

	assert.Equal(t, storage.TypeMemory, app.StorageType)
	assert.NotNil(t, app.Router())
}

func TestNewSeedsAdmin(t *testing.T) {
	ctx := context.Background()
	app, err := New(ctx, Config{
		Admin: &model.FriendInput{FirstName: "Ada", LastName: "Admin", Password: "secret", Email: "Admin@B.dk"},
	})
	require.NoError(t, err)

	friend, ok, err := app.Friends.VerifyCredentials(ctx, "admin@b.dk", "secret")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, model.RoleAdmin, friend.Role)
}

func TestNewRejectsInvalidAdmin(t *testing.T) {
	_, err := New(context.Background(), Config{
		Admin: &model.FriendInput{FirstName: "Ada", LastName: "Admin", Password: "x", Email: "admin@b.dk"},
	})
	assert.Error(t, err)
}

func TestNewWithRedis(t *testing.T) {
	mini := miniredis.RunT(t)
	redisCfg := redisstorage.DefaultConfig()
	redisCfg.URL = "redis://" + mini.Addr()

	ctx := context.Background()
	app, err := New(ctx, Config{StorageType: storage.TypeRedis, RedisConfig: &redisCfg})
	require.NoError(t, err)
	defer app.Close()

	assert.Equal(t, storage.TypeRedis, app.StorageType)
	_, err = app.Friends.Register(ctx, jan())
	require.NoError(t, err)
	// friend record, email index and friends set
	assert.Len(t, mini.Keys(), 3)
}

func TestNewConfigErrors(t *testing.T) {
	ctx := context.Background()

	_, err := New(ctx, Config{StorageType: "mongo"})
	assert.Error(t, err)

	_, err = New(ctx, Config{StorageType: storage.TypeRedis})
	assert.Error(t, err)

	_, err = New(ctx, Config{StorageType: storage.TypePostgres})
	assert.Error(t, err)
}
