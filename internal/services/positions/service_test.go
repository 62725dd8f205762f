package positions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/friendfinder/internal/dependencies/mocks"
	"github.com/mcoot/friendfinder/internal/model"
	"github.com/mcoot/friendfinder/internal/storage/memory"
	"github.com/mcoot/friendfinder/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

var start = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// cityHall lies inside the default game area
var cityHall = model.Point{Longitude: 12.5683, Latitude: 55.6761}

// metersNorth of cityHall, about 111.2 km per degree of latitude
func metersNorth(m float64) model.Point {
	return model.Point{Longitude: cityHall.Longitude, Latitude: cityHall.Latitude + m/111226.29}
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(start)
	s.service = New(s.storage, s.clock, testutil.NopLogger(), DefaultGameArea())
	s.ctx = context.Background()

	s.addFriend("f-1", "pp@b.dk", "Peter", "Pan")
	s.addFriend("f-2", "dd@b.dk", "Donald", "Duck")
	s.addFriend("f-3", "jo@b.dk", "Jan", "Olsen")
}

func (s *ServiceSuite) addFriend(id, email, first, last string) {
	s.Require().NoError(s.storage.CreateFriend(s.ctx, &model.Friend{
		ID:        model.FriendID(id),
		Email:     email,
		FirstName: first,
		LastName:  last,
		Role:      model.RoleUser,
	}))
}

func (s *ServiceSuite) report(email string, p model.Point) *model.Position {
	position, err := s.service.UpsertPosition(s.ctx, email, p.Longitude, p.Latitude)
	s.Require().NoError(err)
	return position
}

// UpsertPosition tests

func (s *ServiceSuite) TestUpsertPositionStoresNameSnapshot() {
	position := s.report("pp@b.dk", cityHall)

	s.Equal("pp@b.dk", position.Email)
	s.Equal("Peter Pan", position.Name)
	s.Equal(cityHall, position.Location)
	s.Equal(start, position.LastUpdated)

	stored, err := s.service.GetPosition(s.ctx, "pp@b.dk")
	s.Require().NoError(err)
	s.Equal(position, stored)
}

func (s *ServiceSuite) TestUpsertPositionReplacesPrevious() {
	s.report("pp@b.dk", cityHall)
	s.clock.Advance(time.Minute)
	moved := metersNorth(200)
	s.report("PP@b.dk", moved)

	all, err := s.service.ListAllPositions(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 1)
	s.Equal(moved, all[0].Location)
	s.Equal(start.Add(time.Minute), all[0].LastUpdated)
}

func (s *ServiceSuite) TestUpsertPositionUnknownFriend() {
	_, err := s.service.UpsertPosition(s.ctx, "nobody@b.dk", cityHall.Longitude, cityHall.Latitude)
	s.ErrorIs(err, model.ErrFriendNotFound)

	all, err := s.service.ListAllPositions(s.ctx)
	s.Require().NoError(err)
	s.Empty(all)
}

func (s *ServiceSuite) TestUpsertPositionRejectsOutOfRangeCoordinates() {
	_, err := s.service.UpsertPosition(s.ctx, "pp@b.dk", 181, 0)
	var verr *model.ValidationError
	s.Require().True(errors.As(err, &verr))
	s.Equal("longitude", verr.Field)

	_, err = s.service.UpsertPosition(s.ctx, "pp@b.dk", 0, 89)
	s.Require().True(errors.As(err, &verr))
	s.Equal("latitude", verr.Field)
}

func (s *ServiceSuite) TestUpsertPositionOutsideGameAreaIsAllowed() {
	aarhus := model.Point{Longitude: 10.2039, Latitude: 56.1629}
	position := s.report("pp@b.dk", aarhus)

	s.False(s.service.InGameArea(position.Location))
}

// FindNearby tests

func (s *ServiceSuite) TestFindNearbyExcludesSelfAndOrdersByDistance() {
	s.report("dd@b.dk", metersNorth(3000))
	s.report("jo@b.dk", metersNorth(1000))

	nearby, err := s.service.FindNearby(s.ctx, "pp@b.dk", cityHall.Longitude, cityHall.Latitude, 5000)
	s.Require().NoError(err)
	s.Require().Len(nearby, 2)
	s.Equal("jo@b.dk", nearby[0].Email)
	s.Equal("Jan Olsen", nearby[0].Name)
	s.Equal("dd@b.dk", nearby[1].Email)
	s.LessOrEqual(nearby[0].Distance, nearby[1].Distance)
	for _, p := range nearby {
		s.LessOrEqual(p.Distance, 5000.0)
		s.NotEqual("pp@b.dk", p.Email)
	}
}

func (s *ServiceSuite) TestFindNearbyChecksInRequester() {
	_, err := s.service.FindNearby(s.ctx, "pp@b.dk", cityHall.Longitude, cityHall.Latitude, 1000)
	s.Require().NoError(err)

	position, err := s.service.GetPosition(s.ctx, "pp@b.dk")
	s.Require().NoError(err)
	s.Equal(cityHall, position.Location)

	all, err := s.service.ListAllPositions(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 1)
}

func (s *ServiceSuite) TestFindNearbyFiveKilometersApart() {
	s.report("dd@b.dk", metersNorth(5000))

	nearby, err := s.service.FindNearby(s.ctx, "pp@b.dk", cityHall.Longitude, cityHall.Latitude, 10000)
	s.Require().NoError(err)
	s.Require().Len(nearby, 1)
	s.Equal("dd@b.dk", nearby[0].Email)
	s.InDelta(5000, nearby[0].Distance, 5)

	nearby, err = s.service.FindNearby(s.ctx, "pp@b.dk", cityHall.Longitude, cityHall.Latitude, 1000)
	s.Require().NoError(err)
	s.Empty(nearby)
}

func (s *ServiceSuite) TestFindNearbyRejectsNonPositiveDistance() {
	for _, d := range []float64{0, -10} {
		_, err := s.service.FindNearby(s.ctx, "pp@b.dk", cityHall.Longitude, cityHall.Latitude, d)
		var verr *model.ValidationError
		s.Require().True(errors.As(err, &verr))
		s.Equal("distance", verr.Field)
	}

	_, err := s.service.GetPosition(s.ctx, "pp@b.dk")
	s.ErrorIs(err, model.ErrPositionNotFound)
}

func (s *ServiceSuite) TestFindNearbyUnknownRequester() {
	_, err := s.service.FindNearby(s.ctx, "nobody@b.dk", cityHall.Longitude, cityHall.Latitude, 1000)
	s.ErrorIs(err, model.ErrFriendNotFound)
}

// Lookup tests

func (s *ServiceSuite) TestGetPositionNotFound() {
	_, err := s.service.GetPosition(s.ctx, "pp@b.dk")
	s.ErrorIs(err, model.ErrPositionNotFound)
}

func (s *ServiceSuite) TestGameArea() {
	area := s.service.GameArea()
	s.True(area.Closed())
	s.True(s.service.InGameArea(cityHall))

	// callers get their own copy
	area.Ring[0] = model.Point{}
	s.Equal(DefaultGameArea(), s.service.GameArea())
}
