package friends

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/friendfinder/internal/dependencies/mocks"
	"github.com/mcoot/friendfinder/internal/model"
	"github.com/mcoot/friendfinder/internal/storage/memory"
	"github.com/mcoot/friendfinder/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	ids     *mocks.MockIDs
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

var start = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(start)
	s.ids = mocks.NewMockIDs()
	s.service = New(s.storage, s.clock, s.ids, testutil.NopLogger(), Config{BcryptCost: bcrypt.MinCost})
	s.ctx = context.Background()
}

func peter() model.FriendInput {
	return model.FriendInput{
		FirstName: "Peter",
		LastName:  "Pan",
		Password:  "secret",
		Email:     "pp@b.dk",
	}
}

func (s *ServiceSuite) register(input model.FriendInput) model.FriendID {
	id, err := s.service.Register(s.ctx, input)
	s.Require().NoError(err)
	return id
}

func (s *ServiceSuite) requireValidationError(err error, field string) {
	var verr *model.ValidationError
	s.Require().True(errors.As(err, &verr), "expected ValidationError, got %v", err)
	s.Equal(field, verr.Field)
}

// Register tests

func (s *ServiceSuite) TestRegisterSucceeds() {
	s.ids.Queue("friend-1")

	id, err := s.service.Register(s.ctx, peter())
	s.Require().NoError(err)
	s.Equal(model.FriendID("friend-1"), id)

	stored, err := s.storage.GetFriendByEmail(s.ctx, "pp@b.dk")
	s.Require().NoError(err)
	s.Equal(id, stored.ID)
	s.Equal(model.RoleUser, stored.Role)
	s.Equal(start, stored.CreatedAt)
	s.NotEqual("secret", stored.PasswordHash)
	s.NoError(bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret")))
}

func (s *ServiceSuite) TestRegisterNormalizesEmail() {
	in := peter()
	in.Email = "  PP@B.dk "
	s.register(in)

	profile, err := s.service.GetByEmail(s.ctx, "pp@b.dk")
	s.Require().NoError(err)
	s.Equal("pp@b.dk", profile.Email)
}

func (s *ServiceSuite) TestRegisterDuplicateEmailKeepsFirst() {
	first := s.register(peter())

	dup := peter()
	dup.FirstName = "Paul"
	_, err := s.service.Register(s.ctx, dup)
	s.ErrorIs(err, model.ErrEmailExists)

	stored, err := s.storage.GetFriendByEmail(s.ctx, "pp@b.dk")
	s.Require().NoError(err)
	s.Equal(first, stored.ID)
	s.Equal("Peter", stored.FirstName)
}

func (s *ServiceSuite) TestRegisterRejectsShortPassword() {
	in := peter()
	in.Password = "abc"

	_, err := s.service.Register(s.ctx, in)
	s.requireValidationError(err, "password")

	all, err := s.service.List(s.ctx)
	s.Require().NoError(err)
	s.Empty(all)
}

func (s *ServiceSuite) TestRegisterRejectsInvalidEmail() {
	in := peter()
	in.Email = "pp-at-b.dk"

	_, err := s.service.Register(s.ctx, in)
	s.requireValidationError(err, "email")
}

// Edit tests

func (s *ServiceSuite) TestEditUpdatesRecord() {
	id := s.register(peter())
	s.clock.Advance(time.Hour)

	in := peter()
	in.FirstName = "Petra"
	in.Password = "newsecret"
	n, err := s.service.Edit(s.ctx, "pp@b.dk", in)
	s.Require().NoError(err)
	s.Equal(1, n)

	stored, err := s.storage.GetFriendByEmail(s.ctx, "pp@b.dk")
	s.Require().NoError(err)
	s.Equal(id, stored.ID)
	s.Equal("Petra", stored.FirstName)
	s.Equal(start.Add(time.Hour), stored.LastModified)
	s.Equal(start, stored.CreatedAt)

	_, ok, err := s.service.VerifyCredentials(s.ctx, "pp@b.dk", "newsecret")
	s.Require().NoError(err)
	s.True(ok)
}

func (s *ServiceSuite) TestEditPasswordHashFollowsPassword() {
	s.register(peter())
	before, err := s.storage.GetFriendByEmail(s.ctx, "pp@b.dk")
	s.Require().NoError(err)

	in := peter()
	in.LastName = "Panda"
	_, err = s.service.Edit(s.ctx, "pp@b.dk", in)
	s.Require().NoError(err)

	same, err := s.storage.GetFriendByEmail(s.ctx, "pp@b.dk")
	s.Require().NoError(err)
	s.Equal(before.PasswordHash, same.PasswordHash)
	s.Equal("Panda", same.LastName)

	in.Password = "newsecret"
	_, err = s.service.Edit(s.ctx, "pp@b.dk", in)
	s.Require().NoError(err)

	changed, err := s.storage.GetFriendByEmail(s.ctx, "pp@b.dk")
	s.Require().NoError(err)
	s.NotEqual(before.PasswordHash, changed.PasswordHash)
}

func (s *ServiceSuite) TestEditShortPasswordLeavesRecordUnchanged() {
	s.register(peter())

	in := peter()
	in.FirstName = "Petra"
	in.Password = "abc"
	n, err := s.service.Edit(s.ctx, "pp@b.dk", in)
	s.requireValidationError(err, "password")
	s.Equal(0, n)

	stored, err := s.storage.GetFriendByEmail(s.ctx, "pp@b.dk")
	s.Require().NoError(err)
	s.Equal("Peter", stored.FirstName)
	s.Equal(start, stored.LastModified)
}

func (s *ServiceSuite) TestEditUnknownFriendReturnsZero() {
	n, err := s.service.Edit(s.ctx, "nobody@b.dk", peter())
	s.Require().NoError(err)
	s.Equal(0, n)
}

func (s *ServiceSuite) TestEditEmailChangePurgesOldPosition() {
	s.register(peter())
	s.Require().NoError(s.storage.UpsertPosition(s.ctx, &model.Position{Email: "pp@b.dk", Name: "Peter Pan"}))

	in := peter()
	in.Email = "peter@b.dk"
	n, err := s.service.Edit(s.ctx, "pp@b.dk", in)
	s.Require().NoError(err)
	s.Equal(1, n)

	_, err = s.storage.GetPosition(s.ctx, "pp@b.dk")
	s.ErrorIs(err, model.ErrPositionNotFound)

	_, err = s.service.GetByEmail(s.ctx, "pp@b.dk")
	s.ErrorIs(err, model.ErrFriendNotFound)
	_, err = s.service.GetByEmail(s.ctx, "peter@b.dk")
	s.NoError(err)
}

func (s *ServiceSuite) TestEditToTakenEmailFails() {
	s.register(peter())
	other := peter()
	other.Email = "dd@b.dk"
	s.register(other)

	in := peter()
	in.Email = "dd@b.dk"
	_, err := s.service.Edit(s.ctx, "pp@b.dk", in)
	s.ErrorIs(err, model.ErrEmailExists)
}

// Delete tests

func (s *ServiceSuite) TestDeleteRemovesFriendAndPosition() {
	s.register(peter())
	s.Require().NoError(s.storage.UpsertPosition(s.ctx, &model.Position{Email: "pp@b.dk"}))

	deleted, err := s.service.Delete(s.ctx, "pp@b.dk")
	s.Require().NoError(err)
	s.True(deleted)

	_, err = s.service.GetByEmail(s.ctx, "pp@b.dk")
	s.ErrorIs(err, model.ErrFriendNotFound)
	_, err = s.storage.GetPosition(s.ctx, "pp@b.dk")
	s.ErrorIs(err, model.ErrPositionNotFound)
}

func (s *ServiceSuite) TestDeleteUnknownReturnsFalse() {
	s.register(peter())

	deleted, err := s.service.Delete(s.ctx, "nobody@b.dk")
	s.Require().NoError(err)
	s.False(deleted)

	all, err := s.service.List(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 1)
}

// Lookup tests

func (s *ServiceSuite) TestListOrderedByEmail() {
	s.register(peter())
	other := peter()
	other.Email = "aa@b.dk"
	s.register(other)

	all, err := s.service.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal("aa@b.dk", all[0].Email)
	s.Equal("pp@b.dk", all[1].Email)
}

func (s *ServiceSuite) TestGetByEmailReturnsProfile() {
	s.register(peter())

	profile, err := s.service.GetByEmail(s.ctx, "PP@b.dk")
	s.Require().NoError(err)
	s.Equal(&model.Profile{FirstName: "Peter", LastName: "Pan", Email: "pp@b.dk"}, profile)
}

func (s *ServiceSuite) TestGetByEmailNotFound() {
	_, err := s.service.GetByEmail(s.ctx, "nobody@b.dk")
	s.ErrorIs(err, model.ErrFriendNotFound)
}

func (s *ServiceSuite) TestGetByID() {
	id := s.register(peter())

	profile, err := s.service.GetByID(s.ctx, id)
	s.Require().NoError(err)
	s.Equal("pp@b.dk", profile.Email)

	_, err = s.service.GetByID(s.ctx, "missing")
	s.ErrorIs(err, model.ErrFriendNotFound)
}

func (s *ServiceSuite) TestLookupReturnsFullRecord() {
	id := s.register(peter())

	friend, err := s.service.Lookup(s.ctx, id)
	s.Require().NoError(err)
	s.Equal("pp@b.dk", friend.Email)
	s.NotEmpty(friend.PasswordHash)

	_, err = s.service.Lookup(s.ctx, "missing")
	s.ErrorIs(err, model.ErrFriendNotFound)
}

// VerifyCredentials tests

func (s *ServiceSuite) TestVerifyCredentialsMatch() {
	s.register(peter())

	friend, ok, err := s.service.VerifyCredentials(s.ctx, "pp@b.dk", "secret")
	s.Require().NoError(err)
	s.True(ok)
	s.Equal("pp@b.dk", friend.Email)
}

func (s *ServiceSuite) TestVerifyCredentialsMismatch() {
	s.register(peter())

	friend, ok, err := s.service.VerifyCredentials(s.ctx, "pp@b.dk", "wrong")
	s.Require().NoError(err)
	s.False(ok)
	s.Nil(friend)
}

func (s *ServiceSuite) TestVerifyCredentialsUnknownEmail() {
	friend, ok, err := s.service.VerifyCredentials(s.ctx, "nobody@b.dk", "secret")
	s.Require().NoError(err)
	s.False(ok)
	s.Nil(friend)
}

func (s *ServiceSuite) TestVerifyCredentialsStoreFailure() {
	failing := &failingStorage{Storage: s.storage, err: errors.New("connection refused")}
	svc := New(failing, s.clock, s.ids, testutil.NopLogger(), Config{BcryptCost: bcrypt.MinCost})

	_, ok, err := svc.VerifyCredentials(s.ctx, "pp@b.dk", "secret")
	s.Error(err)
	s.ErrorIs(err, failing.err)
	s.False(ok)
}

// EnsureAdmin tests

func (s *ServiceSuite) TestEnsureAdminCreatesAdmin() {
	in := peter()
	in.Email = "admin@a.dk"
	s.Require().NoError(s.service.EnsureAdmin(s.ctx, in))

	stored, err := s.storage.GetFriendByEmail(s.ctx, "admin@a.dk")
	s.Require().NoError(err)
	s.Equal(model.RoleAdmin, stored.Role)
}

func (s *ServiceSuite) TestEnsureAdminIsIdempotent() {
	in := peter()
	in.Email = "admin@a.dk"
	s.Require().NoError(s.service.EnsureAdmin(s.ctx, in))

	in.FirstName = "Changed"
	s.Require().NoError(s.service.EnsureAdmin(s.ctx, in))

	all, err := s.service.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 1)
	s.Equal("Peter", all[0].FirstName)
}

// failingStorage fails every friend lookup by email
type failingStorage struct {
	*memory.Storage
	err error
}

func (f *failingStorage) GetFriendByEmail(ctx context.Context, email string) (*model.Friend, error) {
	return nil, f.err
}

func (s *ServiceSuite) TestJanOlsenScenario() {
	jan := model.FriendInput{FirstName: "Jan", LastName: "Olsen", Email: "jan@b.dk", Password: "secret"}

	_, err := s.service.Register(s.ctx, jan)
	s.Require().NoError(err)

	_, err = s.service.Register(s.ctx, jan)
	s.ErrorIs(err, model.ErrEmailExists)

	jan.Password = "se"
	_, err = s.service.Edit(s.ctx, "jan@b.dk", jan)
	var verr *model.ValidationError
	s.Require().True(errors.As(err, &verr))
	s.Contains(verr.Message, "at least 4")

	deleted, err := s.service.Delete(s.ctx, "jan@b.dk")
	s.Require().NoError(err)
	s.True(deleted)

	deleted, err = s.service.Delete(s.ctx, "jan@b.dk")
	s.Require().NoError(err)
	s.False(deleted)
}
