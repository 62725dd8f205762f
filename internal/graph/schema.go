package graph

import (
	"log/slog"

	"github.com/graphql-go/graphql"

	"github.com/mcoot/friendfinder/internal/api/response"
	"github.com/mcoot/friendfinder/internal/model"
	"github.com/mcoot/friendfinder/internal/services/access"
	"github.com/mcoot/friendfinder/internal/services/friends"
	"github.com/mcoot/friendfinder/internal/services/positions"
)

type resolver struct {
	friends   *friends.Service
	positions *positions.Service
	logger    *slog.Logger
}

type resolveFn func(p graphql.ResolveParams, principal *access.Principal) (any, error)

// NewSchema builds the query and mutation schema. Every field is authorized
// against its access.Operation before its resolver runs.
func NewSchema(friendService *friends.Service, positionService *positions.Service, logger *slog.Logger) (graphql.Schema, error) {
	r := &resolver{
		friends:   friendService,
		positions: positionService,
		logger:    logger.With(slog.String("component", "graphql")),
	}

	emailArg := graphql.FieldConfigArgument{
		"email": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
	}
	friendInputArg := &graphql.ArgumentConfig{Type: graphql.NewNonNull(friendInputType)}
	positionInputArg := &graphql.ArgumentConfig{Type: graphql.NewNonNull(positionInputType)}

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"getAllFriends": &graphql.Field{
				Type:    graphql.NewList(friendType),
				Resolve: r.guard(access.GetAllFriends, r.getAllFriends),
			},
			"getFriend": &graphql.Field{
				Type:        friendType,
				Description: "The authenticated friend",
				Resolve:     r.guard(access.GetFriend, r.getFriend),
			},
			"getFriendByEmail": &graphql.Field{
				Type:    friendType,
				Args:    emailArg,
				Resolve: r.guard(access.GetFriendByEmail, r.getFriendByEmail),
			},
			"getFriendById": &graphql.Field{
				Type: friendType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: r.guard(access.GetFriendByID, r.getFriendByID),
			},
			"getGameArea": &graphql.Field{
				Type:    gameAreaType,
				Resolve: r.guard(access.GetGameArea, r.getGameArea),
			},
			"getAllPositions": &graphql.Field{
				Type:    graphql.NewList(positionType),
				Resolve: r.guard(access.GetAllPositions, r.getAllPositions),
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createFriend": &graphql.Field{
				Type:        graphql.ID,
				Description: "Registers a friend with role user and returns its ID",
				Args:        graphql.FieldConfigArgument{"input": friendInputArg},
				Resolve:     r.guard(access.CreateFriend, r.createFriend),
			},
			"editFriend": &graphql.Field{
				Type:        graphql.Int,
				Description: "Edits the authenticated friend and returns the modified count",
				Args:        graphql.FieldConfigArgument{"input": friendInputArg},
				Resolve:     r.guard(access.EditFriend, r.editFriend),
			},
			"adminEditFriend": &graphql.Field{
				Type: graphql.Int,
				Args: graphql.FieldConfigArgument{
					"email": emailArg["email"],
					"input": friendInputArg,
				},
				Resolve: r.guard(access.AdminEditFriend, r.adminEditFriend),
			},
			"deleteFriend": &graphql.Field{
				Type:    graphql.Boolean,
				Args:    emailArg,
				Resolve: r.guard(access.DeleteFriend, r.deleteFriend),
			},
			"addPosition": &graphql.Field{
				Type:    positionType,
				Args:    graphql.FieldConfigArgument{"input": positionInputArg},
				Resolve: r.guard(access.AddPosition, r.addPosition),
			},
			"nearbyFriends": &graphql.Field{
				Type:        graphql.NewList(nearbyFriendType),
				Description: "Checks the caller in at input, then lists friends within distance meters",
				Args: graphql.FieldConfigArgument{
					"input":    positionInputArg,
					"distance": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: r.guard(access.NearbyFriends, r.nearbyFriends),
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    query,
		Mutation: mutation,
	})
}

func (r *resolver) guard(op access.Operation, fn resolveFn) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		principal, err := access.Authorize(p.Context, op)
		if err != nil {
			return nil, toError(r.logger, op, err)
		}
		result, err := fn(p, principal)
		if err != nil {
			return nil, toError(r.logger, op, err)
		}
		return result, nil
	}
}

func (r *resolver) getAllFriends(p graphql.ResolveParams, _ *access.Principal) (any, error) {
	all, err := r.friends.List(p.Context)
	if err != nil {
		return nil, err
	}
	result := make([]response.Profile, len(all))
	for i, f := range all {
		result[i] = response.ProfileFromModel(f.Profile())
	}
	return result, nil
}

func (r *resolver) getFriend(p graphql.ResolveParams, principal *access.Principal) (any, error) {
	return r.profile(r.friends.GetByEmail(p.Context, principal.Email))
}

func (r *resolver) getFriendByEmail(p graphql.ResolveParams, _ *access.Principal) (any, error) {
	email, _ := p.Args["email"].(string)
	return r.profile(r.friends.GetByEmail(p.Context, email))
}

func (r *resolver) getFriendByID(p graphql.ResolveParams, _ *access.Principal) (any, error) {
	id, _ := p.Args["id"].(string)
	return r.profile(r.friends.GetByID(p.Context, model.FriendID(id)))
}

func (r *resolver) profile(profile *model.Profile, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return response.ProfileFromModel(profile), nil
}

func (r *resolver) getGameArea(_ graphql.ResolveParams, _ *access.Principal) (any, error) {
	return response.GeoJSONFromPolygon(r.positions.GameArea()), nil
}

func (r *resolver) getAllPositions(p graphql.ResolveParams, _ *access.Principal) (any, error) {
	all, err := r.positions.ListAllPositions(p.Context)
	if err != nil {
		return nil, err
	}
	result := make([]response.Position, len(all))
	for i, pos := range all {
		result[i] = response.PositionFromModel(pos, r.positions.InGameArea(pos.Location))
	}
	return result, nil
}

func (r *resolver) createFriend(p graphql.ResolveParams, _ *access.Principal) (any, error) {
	id, err := r.friends.Register(p.Context, friendInput(p.Args["input"]))
	if err != nil {
		return nil, err
	}
	return string(id), nil
}

func (r *resolver) editFriend(p graphql.ResolveParams, principal *access.Principal) (any, error) {
	return r.friends.Edit(p.Context, principal.Email, friendInput(p.Args["input"]))
}

func (r *resolver) adminEditFriend(p graphql.ResolveParams, _ *access.Principal) (any, error) {
	email, _ := p.Args["email"].(string)
	return r.friends.Edit(p.Context, email, friendInput(p.Args["input"]))
}

func (r *resolver) deleteFriend(p graphql.ResolveParams, _ *access.Principal) (any, error) {
	email, _ := p.Args["email"].(string)
	return r.friends.Delete(p.Context, email)
}

func (r *resolver) addPosition(p graphql.ResolveParams, principal *access.Principal) (any, error) {
	lon, lat := positionInput(p.Args["input"])
	position, err := r.positions.UpsertPosition(p.Context, principal.Email, lon, lat)
	if err != nil {
		return nil, err
	}
	return response.PositionFromModel(position, r.positions.InGameArea(position.Location)), nil
}

func (r *resolver) nearbyFriends(p graphql.ResolveParams, principal *access.Principal) (any, error) {
	lon, lat := positionInput(p.Args["input"])
	distance, _ := p.Args["distance"].(float64)
	nearby, err := r.positions.FindNearby(p.Context, principal.Email, lon, lat, distance)
	if err != nil {
		return nil, err
	}
	return response.NearbyFromModel(nearby), nil
}

func friendInput(arg any) model.FriendInput {
	m, _ := arg.(map[string]any)
	str := func(key string) string {
		s, _ := m[key].(string)
		return s
	}
	return model.FriendInput{
		FirstName: str("firstName"),
		LastName:  str("lastName"),
		Password:  str("password"),
		Email:     str("email"),
	}
}

func positionInput(arg any) (float64, float64) {
	m, _ := arg.(map[string]any)
	lon, _ := m["longitude"].(float64)
	lat, _ := m["latitude"].(float64)
	return lon, lat
}
