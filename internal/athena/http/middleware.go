package http

import (
	"context"
	"net/http"

	"github.com/athena-forum/athena/internal/athena/domain"
	"github.com/athena-forum/athena/internal/athena/session"
	"github.com/athena-forum/athena/pkg/httpx"
)

// SessionAuth requires an authenticated session cookie and injects the
// user's tag and role into the request context.
func SessionAuth(sessions *session.Manager) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, err := sessions.Get(r)
			if err != nil || data.User == nil {
				httpx.WriteError(w, http.StatusUnauthorized, "Please sign in.")
				return
			}

			ctx := context.WithValue(r.Context(), httpx.CtxKeyUserTag, data.User.FullTag)
			ctx = context.WithValue(ctx, httpx.CtxKeyUserRole, data.User.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects non-admin sessions. Must run inside SessionAuth.
func RequireAdmin() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := httpx.UserRoleFromCtx(r.Context())
			if !ok || role != domain.RoleAdmin {
				httpx.WriteError(w, http.StatusForbidden, "Admin access required.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
