package middleware

import (
	"net/http"

	sessauth "github.com/univcore/sessauth"
)

// RequireRole layers a role check on top of [Guard]: the wrapped handler is
// only reachable by principals holding one of the given roles. An empty role
// list denies everything.
func RequireRole(store *sessauth.Store, roles ...sessauth.Role) func(http.Handler) http.Handler {
	allowed := make(map[sessauth.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next http.Handler) http.Handler {
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user == nil || !allowed[user.Role] {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
		return Guard(store)(inner)
	}
}
