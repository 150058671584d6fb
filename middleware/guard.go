package middleware

import (
	"context"
	"net/http"

	sessauth "github.com/univcore/sessauth"
)

type userContextKey struct{}

// UserFromContext returns the principal attached by [Guard], if any.
func UserFromContext(ctx context.Context) (*sessauth.User, bool) {
	user, ok := ctx.Value(userContextKey{}).(*sessauth.User)
	return user, ok
}

// Guard protects a handler chain behind a session store: 401 without an
// authenticated session, 403 when the request path is outside the
// principal's grants. The request path is matched with the same prefix rules
// the store applies to navigation.
func Guard(store *sessauth.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if store == nil || !store.Authenticated() {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			if !store.CanAccessPath(r.Context(), r.URL.Path) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			// A forced logout can land between the access check and here; a
			// vanished principal must not be injected as a typed nil.
			user := store.CurrentUser()
			if user == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), userContextKey{}, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
