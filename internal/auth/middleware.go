package auth

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/arrendix/protecciones/internal/response"
)

type contextKey string

const userKey contextKey = "user"

// WithUser stores u on ctx.
func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFromContext returns the user set by Authenticate.
func UserFromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(userKey).(User)
	return u, ok
}

func extractToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

// Authenticate rejects requests without a valid bearer token.
func Authenticate(v Verifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := v.Verify(extractToken(r))
			if !res.Success {
				logger.Debug("authentication failed", zap.String("path", r.URL.Path), zap.String("reason", res.Error))
				response.Error(w, http.StatusUnauthorized, res.Error)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), res.User)))
		})
	}
}

// Require guards a route with a fixed capability.
func Require(c Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := UserFromContext(r.Context())
			if !ok {
				response.Error(w, http.StatusUnauthorized, "not authenticated")
				return
			}
			if d := Authorize(u.Role, c); !d.Allowed {
				response.Error(w, http.StatusForbidden, d.Reason)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
