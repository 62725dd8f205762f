// Package storagetest holds the behavioural contract every storage backend must satisfy.
package storagetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/friendfinder/internal/model"
	"github.com/mcoot/friendfinder/internal/storage"
)

// Suite runs the storage contract. Embedding suites set Store and Ctx in SetupTest.
type Suite struct {
	suite.Suite
	Store storage.Storage
	Ctx   context.Context
}

var baseTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// center is Copenhagen city hall; north(m) is roughly m meters due north of it
var center = model.Point{Longitude: 12.5683, Latitude: 55.6761}

func north(meters float64) model.Point {
	return model.Point{
		Longitude: center.Longitude,
		Latitude:  center.Latitude + meters/111226.29,
	}
}

func (s *Suite) newFriend(id, email, first, last string) *model.Friend {
	return &model.Friend{
		ID:           model.FriendID(id),
		Email:        email,
		FirstName:    first,
		LastName:     last,
		PasswordHash: "hash-" + id,
		Role:         model.RoleUser,
		CreatedAt:    baseTime,
		LastModified: baseTime,
	}
}

func (s *Suite) mustCreate(f *model.Friend) {
	s.Require().NoError(s.Store.CreateFriend(s.Ctx, f))
}

func (s *Suite) mustPosition(email string, p model.Point) {
	s.Require().NoError(s.Store.UpsertPosition(s.Ctx, &model.Position{
		Email:       email,
		Name:        "Name " + email,
		Location:    p,
		LastUpdated: baseTime,
	}))
}

// Friend tests

func (s *Suite) TestCreateAndGetFriendByEmail() {
	s.mustCreate(s.newFriend("f-1", "pp@b.dk", "Peter", "Pan"))

	got, err := s.Store.GetFriendByEmail(s.Ctx, "pp@b.dk")
	s.Require().NoError(err)
	s.Equal(model.FriendID("f-1"), got.ID)
	s.Equal("Peter", got.FirstName)
	s.Equal("Pan", got.LastName)
	s.Equal("hash-f-1", got.PasswordHash)
	s.Equal(model.RoleUser, got.Role)
	s.True(baseTime.Equal(got.CreatedAt))
}

func (s *Suite) TestGetFriendByID() {
	s.mustCreate(s.newFriend("f-1", "pp@b.dk", "Peter", "Pan"))

	got, err := s.Store.GetFriendByID(s.Ctx, "f-1")
	s.Require().NoError(err)
	s.Equal("pp@b.dk", got.Email)
}

func (s *Suite) TestGetFriendNotFound() {
	_, err := s.Store.GetFriendByEmail(s.Ctx, "nobody@b.dk")
	s.ErrorIs(err, model.ErrFriendNotFound)

	_, err = s.Store.GetFriendByID(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrFriendNotFound)
}

func (s *Suite) TestCreateFriendDuplicateEmail() {
	s.mustCreate(s.newFriend("f-1", "pp@b.dk", "Peter", "Pan"))

	err := s.Store.CreateFriend(s.Ctx, s.newFriend("f-2", "pp@b.dk", "Other", "Person"))
	s.ErrorIs(err, model.ErrEmailExists)

	got, err := s.Store.GetFriendByEmail(s.Ctx, "pp@b.dk")
	s.Require().NoError(err)
	s.Equal(model.FriendID("f-1"), got.ID)
	s.Equal("Peter", got.FirstName)

	all, err := s.Store.ListFriends(s.Ctx)
	s.Require().NoError(err)
	s.Len(all, 1)
}

func (s *Suite) TestUpdateFriend() {
	s.mustCreate(s.newFriend("f-1", "pp@b.dk", "Peter", "Pan"))
	later := baseTime.Add(time.Hour)

	n, err := s.Store.UpdateFriend(s.Ctx, "pp@b.dk", model.FriendUpdate{
		Email:        "pp@b.dk",
		FirstName:    "Petra",
		LastName:     "Panda",
		PasswordHash: "new-hash",
		LastModified: later,
	})
	s.Require().NoError(err)
	s.Equal(1, n)

	got, err := s.Store.GetFriendByEmail(s.Ctx, "pp@b.dk")
	s.Require().NoError(err)
	s.Equal("Petra", got.FirstName)
	s.Equal("Panda", got.LastName)
	s.Equal("new-hash", got.PasswordHash)
	s.Equal(model.RoleUser, got.Role)
	s.True(later.Equal(got.LastModified))
	s.True(baseTime.Equal(got.CreatedAt))
}

func (s *Suite) TestUpdateFriendUnknownEmail() {
	n, err := s.Store.UpdateFriend(s.Ctx, "nobody@b.dk", model.FriendUpdate{Email: "nobody@b.dk"})
	s.Require().NoError(err)
	s.Equal(0, n)
}

func (s *Suite) TestUpdateFriendChangesEmail() {
	s.mustCreate(s.newFriend("f-1", "pp@b.dk", "Peter", "Pan"))

	n, err := s.Store.UpdateFriend(s.Ctx, "pp@b.dk", model.FriendUpdate{
		Email:        "peter@b.dk",
		FirstName:    "Peter",
		LastName:     "Pan",
		PasswordHash: "hash",
		LastModified: baseTime,
	})
	s.Require().NoError(err)
	s.Equal(1, n)

	_, err = s.Store.GetFriendByEmail(s.Ctx, "pp@b.dk")
	s.ErrorIs(err, model.ErrFriendNotFound)

	got, err := s.Store.GetFriendByEmail(s.Ctx, "peter@b.dk")
	s.Require().NoError(err)
	s.Equal(model.FriendID("f-1"), got.ID)

	// the old email is free again
	s.mustCreate(s.newFriend("f-2", "pp@b.dk", "Paul", "Pan"))
}

func (s *Suite) TestUpdateFriendToTakenEmail() {
	s.mustCreate(s.newFriend("f-1", "pp@b.dk", "Peter", "Pan"))
	s.mustCreate(s.newFriend("f-2", "dd@b.dk", "Donald", "Duck"))

	_, err := s.Store.UpdateFriend(s.Ctx, "pp@b.dk", model.FriendUpdate{
		Email:        "dd@b.dk",
		FirstName:    "Peter",
		LastName:     "Pan",
		PasswordHash: "hash",
	})
	s.ErrorIs(err, model.ErrEmailExists)

	got, err := s.Store.GetFriendByEmail(s.Ctx, "dd@b.dk")
	s.Require().NoError(err)
	s.Equal(model.FriendID("f-2"), got.ID)

	got, err = s.Store.GetFriendByEmail(s.Ctx, "pp@b.dk")
	s.Require().NoError(err)
	s.Equal(model.FriendID("f-1"), got.ID)
}

func (s *Suite) TestConcurrentCreateSameEmail() {
	const workers = 10

	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.Store.CreateFriend(s.Ctx, s.newFriend(fmt.Sprintf("f-%d", i), "pp@b.dk", "Peter", "Pan"))
		}(i)
	}
	wg.Wait()

	created, duplicates := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			created++
		case errors.Is(err, model.ErrEmailExists):
			duplicates++
		default:
			s.Failf("unexpected error", "%v", err)
		}
	}
	s.Equal(1, created)
	s.Equal(workers-1, duplicates)

	all, err := s.Store.ListFriends(s.Ctx)
	s.Require().NoError(err)
	s.Len(all, 1)
}

func (s *Suite) TestConcurrentEmailChangesLeaveOneOwner() {
	for i := 0; i < 20; i++ {
		old := fmt.Sprintf("old%d@b.dk", i)
		targets := []string{fmt.Sprintf("a%d@b.dk", i), fmt.Sprintf("b%d@b.dk", i)}
		s.mustCreate(s.newFriend(fmt.Sprintf("f-%d", i), old, "Peter", "Pan"))

		counts := make([]int, len(targets))
		errs := make([]error, len(targets))
		var wg sync.WaitGroup
		for j, target := range targets {
			wg.Add(1)
			go func(j int, target string) {
				defer wg.Done()
				counts[j], errs[j] = s.Store.UpdateFriend(s.Ctx, old, model.FriendUpdate{
					Email:        target,
					FirstName:    "Peter",
					LastName:     "Pan",
					PasswordHash: "hash",
					LastModified: baseTime,
				})
			}(j, target)
		}
		wg.Wait()

		s.Require().NoError(errs[0])
		s.Require().NoError(errs[1])
		s.Equal(1, counts[0]+counts[1], "exactly one rename applies")

		winner, loser := targets[0], targets[1]
		if counts[1] == 1 {
			winner, loser = loser, winner
		}

		got, err := s.Store.GetFriendByEmail(s.Ctx, winner)
		s.Require().NoError(err)
		s.Equal(winner, got.Email)

		_, err = s.Store.GetFriendByEmail(s.Ctx, loser)
		s.ErrorIs(err, model.ErrFriendNotFound)
		_, err = s.Store.GetFriendByEmail(s.Ctx, old)
		s.ErrorIs(err, model.ErrFriendNotFound)

		// neither the losing nor the released email is left claimed
		s.mustCreate(s.newFriend(fmt.Sprintf("loser-%d", i), loser, "Other", "Person"))
		s.mustCreate(s.newFriend(fmt.Sprintf("old-%d", i), old, "Other", "Person"))
	}
}

func (s *Suite) TestDeleteFriend() {
	s.mustCreate(s.newFriend("f-1", "pp@b.dk", "Peter", "Pan"))
	s.mustCreate(s.newFriend("f-2", "dd@b.dk", "Donald", "Duck"))

	deleted, err := s.Store.DeleteFriend(s.Ctx, "pp@b.dk")
	s.Require().NoError(err)
	s.True(deleted)

	_, err = s.Store.GetFriendByEmail(s.Ctx, "pp@b.dk")
	s.ErrorIs(err, model.ErrFriendNotFound)
	_, err = s.Store.GetFriendByID(s.Ctx, "f-1")
	s.ErrorIs(err, model.ErrFriendNotFound)

	deleted, err = s.Store.DeleteFriend(s.Ctx, "pp@b.dk")
	s.Require().NoError(err)
	s.False(deleted)

	all, err := s.Store.ListFriends(s.Ctx)
	s.Require().NoError(err)
	s.Len(all, 1)
}

func (s *Suite) TestListFriendsOrderedByEmail() {
	s.mustCreate(s.newFriend("f-1", "pp@b.dk", "Peter", "Pan"))
	s.mustCreate(s.newFriend("f-2", "dd@b.dk", "Donald", "Duck"))
	s.mustCreate(s.newFriend("f-3", "aa@a.dk", "Ad", "Admin"))

	all, err := s.Store.ListFriends(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal("aa@a.dk", all[0].Email)
	s.Equal("dd@b.dk", all[1].Email)
	s.Equal("pp@b.dk", all[2].Email)
}

func (s *Suite) TestListFriendsEmpty() {
	all, err := s.Store.ListFriends(s.Ctx)
	s.Require().NoError(err)
	s.Empty(all)
}

// Position tests

func (s *Suite) TestUpsertAndGetPosition() {
	s.mustPosition("pp@b.dk", center)

	got, err := s.Store.GetPosition(s.Ctx, "pp@b.dk")
	s.Require().NoError(err)
	s.Equal("pp@b.dk", got.Email)
	s.Equal("Name pp@b.dk", got.Name)
	s.InDelta(center.Longitude, got.Location.Longitude, 1e-9)
	s.InDelta(center.Latitude, got.Location.Latitude, 1e-9)
	s.True(baseTime.Equal(got.LastUpdated))
}

func (s *Suite) TestUpsertPositionReplaces() {
	s.mustPosition("pp@b.dk", center)
	moved := north(2000)
	later := baseTime.Add(time.Minute)

	err := s.Store.UpsertPosition(s.Ctx, &model.Position{
		Email:       "pp@b.dk",
		Name:        "Peter Pan",
		Location:    moved,
		LastUpdated: later,
	})
	s.Require().NoError(err)

	got, err := s.Store.GetPosition(s.Ctx, "pp@b.dk")
	s.Require().NoError(err)
	s.Equal("Peter Pan", got.Name)
	s.InDelta(moved.Latitude, got.Location.Latitude, 1e-9)
	s.True(later.Equal(got.LastUpdated))

	all, err := s.Store.ListPositions(s.Ctx)
	s.Require().NoError(err)
	s.Len(all, 1)
}

func (s *Suite) TestGetPositionNotFound() {
	_, err := s.Store.GetPosition(s.Ctx, "nobody@b.dk")
	s.ErrorIs(err, model.ErrPositionNotFound)
}

func (s *Suite) TestDeletePosition() {
	s.mustPosition("pp@b.dk", center)
	s.mustPosition("dd@b.dk", north(500))

	s.Require().NoError(s.Store.DeletePosition(s.Ctx, "pp@b.dk"))

	_, err := s.Store.GetPosition(s.Ctx, "pp@b.dk")
	s.ErrorIs(err, model.ErrPositionNotFound)

	nearby, err := s.Store.FindNearby(s.Ctx, center, 10000, "")
	s.Require().NoError(err)
	s.Require().Len(nearby, 1)
	s.Equal("dd@b.dk", nearby[0].Email)

	// deleting again is a no-op
	s.NoError(s.Store.DeletePosition(s.Ctx, "pp@b.dk"))
}

func (s *Suite) TestListPositions() {
	s.mustPosition("pp@b.dk", center)
	s.mustPosition("dd@b.dk", north(500))

	all, err := s.Store.ListPositions(s.Ctx)
	s.Require().NoError(err)
	s.Len(all, 2)

	emails := []string{all[0].Email, all[1].Email}
	s.ElementsMatch([]string{"pp@b.dk", "dd@b.dk"}, emails)
}

func (s *Suite) TestFindNearbyOrdersAndBounds() {
	s.mustPosition("me@b.dk", center)
	s.mustPosition("far@b.dk", north(5000))
	s.mustPosition("mid@b.dk", north(3000))
	s.mustPosition("near@b.dk", north(1000))

	nearby, err := s.Store.FindNearby(s.Ctx, center, 4000, "me@b.dk")
	s.Require().NoError(err)
	s.Require().Len(nearby, 2)

	s.Equal("near@b.dk", nearby[0].Email)
	s.Equal("mid@b.dk", nearby[1].Email)
	s.InDelta(1000, nearby[0].Distance, 5)
	s.InDelta(3000, nearby[1].Distance, 5)
	s.Equal("Name near@b.dk", nearby[0].Name)

	for _, p := range nearby {
		s.LessOrEqual(p.Distance, 4000.0)
	}
}

func (s *Suite) TestFindNearbyExcludesOnlyTheGivenEmail() {
	s.mustPosition("me@b.dk", center)
	s.mustPosition("near@b.dk", north(1000))

	nearby, err := s.Store.FindNearby(s.Ctx, center, 2000, "")
	s.Require().NoError(err)
	s.Require().Len(nearby, 2)
	s.Equal("me@b.dk", nearby[0].Email)
	s.InDelta(0, nearby[0].Distance, 1)
}

func (s *Suite) TestFindNearbyNoMatches() {
	s.mustPosition("far@b.dk", north(5000))

	nearby, err := s.Store.FindNearby(s.Ctx, center, 1000, "")
	s.Require().NoError(err)
	s.Empty(nearby)
}
