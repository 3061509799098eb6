package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"github.com/sakif/devblog/internal/apperror"
	"github.com/sakif/devblog/internal/model"
)

// CookieName is the HttpOnly cookie the access token is stored in after login.
const CookieName = "token"

// contextKey is an unexported type used for context keys in this package.
// Only this package can create a key of this type, so no other package can
// read or overwrite the identity by accident.
type contextKey string

const identityKey contextKey = "identity"

var errNoToken = errors.New("auth: no access token")

// RequireAuth is a middleware that enforces authentication on protected routes.
//
// It looks for the access token in the Authorization header first
// ("Bearer <jwt>", for API clients) and falls back to the "token" cookie (for
// browsers after OAuth login). A valid token puts the caller's Identity in
// the request context. A missing or invalid one ends the request with 401 and
// the usual error body.
//
// Chi applies middlewares in a chain: req → M1 → M2 → Handler → M2 → M1 → resp
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := extractIdentity(r, tokens)
			if err != nil {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, apperror.Unauthenticated("valid authentication required").Body())
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id model.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext retrieves the authenticated caller from the request context.
//
// Returns (Identity{}, false) if the request is anonymous.
func IdentityFromContext(ctx context.Context) (model.Identity, bool) {
	id, ok := ctx.Value(identityKey).(model.Identity)
	return id, ok && id.Email != ""
}

// extractIdentity finds the access token on the request and validates it.
func extractIdentity(r *http.Request, tokens *TokenService) (model.Identity, error) {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			return model.Identity{}, errNoToken
		}
		return tokens.Validate(strings.TrimSpace(token))
	}

	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return model.Identity{}, errNoToken
	}
	return tokens.Validate(cookie.Value)
}
