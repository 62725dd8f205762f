package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mcoot/friendfinder/internal/api/apierr"
	"github.com/mcoot/friendfinder/internal/model"
	"github.com/mcoot/friendfinder/internal/services/access"
)

// Authenticator resolves an Authorization header to a principal
type Authenticator interface {
	Authenticate(ctx context.Context, header string) (*access.Principal, error)
}

// Authenticate resolves the Authorization header on every request.
// No header continues anonymously; a rejected credential short-circuits with 401.
func Authenticate(authn Authenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := authn.Authenticate(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				if !errors.Is(err, model.ErrUnauthorized) {
					logger.Error("authentication failed",
						slog.String("path", r.URL.Path),
						slog.String("error", err.Error()),
					)
				}
				apierr.WriteError(w, err)
				return
			}

			if principal != nil {
				r = r.WithContext(access.WithPrincipal(r.Context(), principal))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Require rejects requests whose principal does not satisfy op's policy
func Require(op access.Operation) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := access.Authorize(r.Context(), op); err != nil {
				apierr.WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// MustGetPrincipal returns the authenticated principal or panics
func MustGetPrincipal(ctx context.Context) *access.Principal {
	p := access.PrincipalFrom(ctx)
	if p == nil {
		panic("no principal in context - Require middleware not applied?")
	}
	return p
}
