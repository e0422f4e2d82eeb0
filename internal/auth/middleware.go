package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/simpliv/notepads/internal/ledger"
	"github.com/simpliv/notepads/internal/obs"
)

type contextKey string

const userKey contextKey = "user"

// UserResolver turns a verified identity into a user record, creating and
// seeding the account on first login.
type UserResolver interface {
	EnsureUser(ctx context.Context, providerID, name, photoURL string) (*ledger.User, error)
}

// Middleware authenticates requests with a bearer token.
type Middleware struct {
	verifier Verifier
	resolver UserResolver
}

// NewMiddleware creates auth middleware over the given verifier and resolver.
func NewMiddleware(verifier Verifier, resolver UserResolver) *Middleware {
	return &Middleware{verifier: verifier, resolver: resolver}
}

// RequireAuth rejects requests without a valid bearer token and stores the
// resolved user in the request context.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			http.Error(w, "Unauthorized: missing bearer token", http.StatusUnauthorized)
			return
		}

		ident, err := m.verifier.Verify(r.Context(), token)
		if err != nil {
			http.Error(w, "Unauthorized: invalid token", http.StatusUnauthorized)
			return
		}

		user, err := m.resolver.EnsureUser(r.Context(), ident.Subject, ident.Name, ident.PhotoURL)
		if err != nil {
			obs.From(r.Context()).Error("resolve_user_failed", "error", err.Error())
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		ctx := context.WithValue(r.Context(), userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}

// UserFromContext returns the authenticated user, or nil.
func UserFromContext(ctx context.Context) *ledger.User {
	user, _ := ctx.Value(userKey).(*ledger.User)
	return user
}

// UserID returns the authenticated user's id, or "".
func UserID(ctx context.Context) string {
	if user := UserFromContext(ctx); user != nil {
		return user.ID
	}
	return ""
}
