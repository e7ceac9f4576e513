package auth

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/igaue-takahiko/food-delivery-app/internal/apperr"
	"github.com/igaue-takahiko/food-delivery-app/internal/model"
)

// Identity is the caller resolved from the bearer token.
type Identity struct {
	AccountID string
	Role      model.Role
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// ErrorWriter renders an application error; the handler package supplies it.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// Authenticate rejects requests without a valid bearer token.
func (m *Manager) Authenticate(onError ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || strings.TrimSpace(token) == "" {
				onError(w, r, apperr.Unauthorized("Not authenticated."))
				return
			}

			claims, err := m.Parse(strings.TrimSpace(token))
			if err != nil {
				onError(w, r, apperr.Unauthorized("Not authenticated."))
				return
			}

			ctx := WithIdentity(r.Context(), Identity{AccountID: claims.AccountID, Role: claims.Role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole must run after Authenticate.
func RequireRole(onError ErrorWriter, roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := FromContext(r.Context())
			if !ok {
				onError(w, r, apperr.Unauthorized("Not authenticated."))
				return
			}
			if !slices.Contains(roles, id.Role) {
				onError(w, r, apperr.Forbidden("Forbidden access."))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
