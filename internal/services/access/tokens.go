package access

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mcoot/friendfinder/internal/dependencies/clock"
	"github.com/mcoot/friendfinder/internal/model"
)

const tokenIssuer = "friendfinder"

// ErrInvalidToken is returned for tokens that are malformed, forged or expired
var ErrInvalidToken = errors.New("invalid token")

type tokenClaims struct {
	Role       string `json:"role"`
	Credential string `json:"cred"`
	jwt.RegisteredClaims
}

// Claims is what a verified token asserts about its holder
type Claims struct {
	FriendID model.FriendID
	Role     model.Role
	// Credential is the fingerprint of the password hash the token was issued against
	Credential string
}

// CredentialFingerprint identifies a password hash without exposing it.
// A new hash means a new fingerprint, so tokens issued earlier stop matching.
func CredentialFingerprint(passwordHash string) string {
	sum := sha256.Sum256([]byte(passwordHash))
	return hex.EncodeToString(sum[:8])
}

// Tokens issues and verifies HS256 bearer tokens bound to a friend ID
type Tokens struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

// NewTokens creates a token issuer signing with secret
func NewTokens(secret []byte, ttl time.Duration, clock clock.Clock) *Tokens {
	return &Tokens{
		secret: secret,
		ttl:    ttl,
		clock:  clock,
	}
}

// Issue signs a token for friend and returns it with its expiry
func (t *Tokens) Issue(friend *model.Friend) (string, time.Time, error) {
	now := t.clock.Now()
	expires := now.Add(t.ttl)

	claims := &tokenClaims{
		Role:       string(friend.Role),
		Credential: CredentialFingerprint(friend.PasswordHash),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   string(friend.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

// Parse verifies the signature and expiry of token and returns its claims
func (t *Tokens) Parse(token string) (*Claims, error) {
	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.clock.Now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" || claims.Credential == "" {
		return nil, ErrInvalidToken
	}
	return &Claims{
		FriendID:   model.FriendID(claims.Subject),
		Role:       model.Role(claims.Role),
		Credential: claims.Credential,
	}, nil
}
