package access

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/mcoot/friendfinder/internal/model"
)

// Credentials is the part of the friends service the authenticator needs
type Credentials interface {
	VerifyCredentials(ctx context.Context, email, password string) (*model.Friend, bool, error)
	Lookup(ctx context.Context, id model.FriendID) (*model.Friend, error)
}

// Authenticator resolves an Authorization header to a principal
type Authenticator struct {
	credentials Credentials
	tokens      *Tokens
}

// NewAuthenticator creates an Authenticator
func NewAuthenticator(credentials Credentials, tokens *Tokens) *Authenticator {
	return &Authenticator{
		credentials: credentials,
		tokens:      tokens,
	}
}

// Authenticate resolves header. An empty header is anonymous (nil, nil).
// Rejected credentials return model.ErrUnauthorized; other errors are store failures.
func (a *Authenticator) Authenticate(ctx context.Context, header string) (*Principal, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil, nil
	}

	scheme, value, _ := strings.Cut(header, " ")
	value = strings.TrimSpace(value)
	switch strings.ToLower(scheme) {
	case "basic":
		return a.basic(ctx, value)
	case "bearer":
		return a.bearer(ctx, value)
	default:
		return nil, model.ErrUnauthorized
	}
}

func (a *Authenticator) basic(ctx context.Context, encoded string) (*Principal, error) {
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, model.ErrUnauthorized
	}
	email, password, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return nil, model.ErrUnauthorized
	}

	friend, ok, err := a.credentials.VerifyCredentials(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if !ok {
		return nil, model.ErrUnauthorized
	}
	return &Principal{Email: friend.Email, Role: friend.Role}, nil
}

func (a *Authenticator) bearer(ctx context.Context, token string) (*Principal, error) {
	claims, err := a.tokens.Parse(token)
	if err != nil {
		return nil, model.ErrUnauthorized
	}

	// The stored record wins over the claims: deletes, role changes and
	// password changes all take effect before the token expires
	friend, err := a.credentials.Lookup(ctx, claims.FriendID)
	if err != nil {
		if errors.Is(err, model.ErrFriendNotFound) {
			return nil, model.ErrUnauthorized
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	current := CredentialFingerprint(friend.PasswordHash)
	if subtle.ConstantTimeCompare([]byte(current), []byte(claims.Credential)) != 1 {
		return nil, model.ErrUnauthorized
	}
	return &Principal{Email: friend.Email, Role: friend.Role}, nil
}

// Login verifies email and password and issues a bearer token
func (a *Authenticator) Login(ctx context.Context, email, password string) (*Principal, string, error) {
	friend, ok, err := a.credentials.VerifyCredentials(ctx, email, password)
	if err != nil {
		return nil, "", fmt.Errorf("login: %w", err)
	}
	if !ok {
		return nil, "", model.ErrUnauthorized
	}

	token, _, err := a.tokens.Issue(friend)
	if err != nil {
		return nil, "", err
	}
	return &Principal{Email: friend.Email, Role: friend.Role}, token, nil
}
