package access

import (
	"context"

	"github.com/mcoot/friendfinder/internal/model"
)

// Policy is the minimum standing a caller needs to run an operation
type Policy int

const (
	Anonymous Policy = iota
	Authenticated
	Admin
)

func (p Policy) String() string {
	switch p {
	case Anonymous:
		return "anonymous"
	case Authenticated:
		return "authenticated"
	case Admin:
		return "admin"
	default:
		return "unknown"
	}
}

// Operation describes one externally reachable operation and who may call it.
// REST routes and GraphQL fields share these descriptors.
type Operation struct {
	Name   string
	Policy Policy
}

// Operations
var (
	CreateFriend     = Operation{Name: "createFriend", Policy: Anonymous}
	Login            = Operation{Name: "login", Policy: Anonymous}
	GetAllFriends    = Operation{Name: "getAllFriends", Policy: Authenticated}
	GetFriend        = Operation{Name: "getFriend", Policy: Authenticated}
	EditFriend       = Operation{Name: "editFriend", Policy: Authenticated}
	GetFriendByEmail = Operation{Name: "getFriendByEmail", Policy: Admin}
	GetFriendByID    = Operation{Name: "getFriendById", Policy: Admin}
	AdminEditFriend  = Operation{Name: "adminEditFriend", Policy: Admin}
	DeleteFriend     = Operation{Name: "deleteFriend", Policy: Admin}
	AddPosition      = Operation{Name: "addPosition", Policy: Authenticated}
	NearbyFriends    = Operation{Name: "nearbyFriends", Policy: Authenticated}
	GetGameArea      = Operation{Name: "getGameArea", Policy: Anonymous}
	GetAllPositions  = Operation{Name: "getAllPositions", Policy: Admin}
	GetPosition      = Operation{Name: "getPosition", Policy: Admin}
	Introspect       = Operation{Name: "introspect", Policy: Authenticated}
)

// Allows reports whether p may run op. A nil principal is anonymous.
func (op Operation) Allows(p *Principal) bool {
	switch op.Policy {
	case Anonymous:
		return true
	case Authenticated:
		return p != nil
	case Admin:
		return p.IsAdmin()
	default:
		return false
	}
}

// Authorize checks op against the principal in ctx. Wrong role and no
// credentials fail identically with model.ErrUnauthorized.
func Authorize(ctx context.Context, op Operation) (*Principal, error) {
	p := PrincipalFrom(ctx)
	if !op.Allows(p) {
		return nil, model.ErrUnauthorized
	}
	return p, nil
}
