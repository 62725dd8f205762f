package redis

import (
	"fmt"

	"github.com/mcoot/friendfinder/internal/model"
)

// Key prefix for all friend finder data
const keyPrefix = "ff"

// friendKey returns the Redis key for a Friend record
func friendKey(id model.FriendID) string {
	return fmt.Sprintf("%s:friend:%s", keyPrefix, id)
}

// emailIndexKey returns the Redis key for the email -> friend_id index
func emailIndexKey(email string) string {
	return fmt.Sprintf("%s:idx:email:%s", keyPrefix, email)
}

// friendsSetKey returns the Redis key for the SET of all friend IDs
func friendsSetKey() string {
	return fmt.Sprintf("%s:friends", keyPrefix)
}

// positionKey returns the Redis key for a Position record
func positionKey(email string) string {
	return fmt.Sprintf("%s:position:%s", keyPrefix, email)
}

// positionsGeoKey returns the Redis key for the geo index of all positions, keyed by email
func positionsGeoKey() string {
	return fmt.Sprintf("%s:positions:geo", keyPrefix)
}
