package access

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/friendfinder/internal/model"
)

func TestOperationAllows(t *testing.T) {
	user := &Principal{Email: "pp@b.dk", Role: model.RoleUser}
	admin := &Principal{Email: "admin@a.dk", Role: model.RoleAdmin}

	tests := []struct {
		op        Operation
		anonymous bool
		user      bool
		admin     bool
	}{
		{CreateFriend, true, true, true},
		{GetGameArea, true, true, true},
		{GetAllFriends, false, true, true},
		{EditFriend, false, true, true},
		{NearbyFriends, false, true, true},
		{GetFriendByEmail, false, false, true},
		{DeleteFriend, false, false, true},
		{GetAllPositions, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.op.Name, func(t *testing.T) {
			assert.Equal(t, tt.anonymous, tt.op.Allows(nil))
			assert.Equal(t, tt.user, tt.op.Allows(user))
			assert.Equal(t, tt.admin, tt.op.Allows(admin))
		})
	}
}

func TestAuthorizeUsesContextPrincipal(t *testing.T) {
	ctx := context.Background()

	_, err := Authorize(ctx, GetAllFriends)
	assert.ErrorIs(t, err, model.ErrUnauthorized)

	p, err := Authorize(ctx, GetGameArea)
	require.NoError(t, err)
	assert.Nil(t, p)

	user := &Principal{Email: "pp@b.dk", Role: model.RoleUser}
	ctx = WithPrincipal(ctx, user)

	p, err = Authorize(ctx, GetAllFriends)
	require.NoError(t, err)
	assert.Equal(t, user, p)

	_, err = Authorize(ctx, DeleteFriend)
	assert.ErrorIs(t, err, model.ErrUnauthorized)
}

func TestPolicyString(t *testing.T) {
	assert.Equal(t, "anonymous", Anonymous.String())
	assert.Equal(t, "admin", Admin.String())
	assert.Equal(t, "unknown", Policy(42).String())
}
