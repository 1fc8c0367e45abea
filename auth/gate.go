package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

type contextKey string

const identityKey contextKey = "identity"

// Gate is the middleware guard placed in front of protected route groups.
// It holds no state beyond its collaborators: each request is an independent
// verify-or-reject decision.
type Gate struct {
	authenticator *Authenticator
	log           *slog.Logger
}

func NewGate(authenticator *Authenticator, log *slog.Logger) *Gate {
	return &Gate{authenticator: authenticator, log: log}
}

// Require wraps a handler group. On a valid credential the resolved Identity
// is attached to the request context and the call proceeds; on any failure
// the response is 401 and the wrapped handler is never invoked.
func (g *Gate) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		credential := BearerFromRequest(r)
		if credential == "" {
			g.reject(w)
			return
		}

		identity, err := g.authenticator.Verify(credential)
		if err != nil {
			g.log.Debug("credential rejected", "error", err)
			g.reject(w)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

func (g *Gate) reject(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "Unauthorized"})
}

// BearerFromRequest extracts the credential from the Authorization header,
// falling back to the "token" query parameter for clients (browsers opening
// websockets) that cannot set headers.
func BearerFromRequest(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

// WithIdentity returns a context carrying the resolved caller identity.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext retrieves the identity injected by the Gate.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok
}
