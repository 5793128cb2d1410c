package handlers

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"restaurant-floor/internal/common/auth"
	"restaurant-floor/internal/domain"
	"restaurant-floor/internal/microservices/floor/service"
)

type ctxKey struct{}

// withUser admits requests carrying a valid session for a user that still
// exists in the document. The role is read from the document, not the
// session, so role changes apply at once. queryToken also accepts ?token=
// for websocket clients that cannot set headers.
func withUser(svc service.FloorServiceInterface, sessions *auth.Sessions, queryToken bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok && queryToken {
				token = r.URL.Query().Get("token")
			}
			if token == "" {
				writeProblem(w, http.StatusUnauthorized, "unauthorized", "bearer session is required")
				return
			}
			claims, err := sessions.Verify(token)
			if err != nil {
				writeProblem(w, http.StatusUnauthorized, "unauthorized", "session is invalid or expired")
				return
			}
			u, err := svc.User(claims.UserID)
			if err != nil {
				writeProblem(w, http.StatusUnauthorized, "unauthorized", "unknown user "+claims.UserID)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, u)))
		})
	}
}

func currentUser(r *http.Request) domain.User {
	u, _ := r.Context().Value(ctxKey{}).(domain.User)
	return u
}

// allow wraps h so only the listed roles reach it. Admins pass everywhere.
func allow(h http.HandlerFunc, roles ...domain.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := currentUser(r)
		if u.Role != domain.RoleAdmin && !slices.Contains(roles, u.Role) {
			writeProblem(w, http.StatusForbidden, "forbidden", "role "+string(u.Role)+" may not do this")
			return
		}
		h(w, r)
	}
}
