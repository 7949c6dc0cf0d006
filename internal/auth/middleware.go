package auth

import (
	"context"
	"net/http"

	"github.com/silenci4/flask-template-blog/internal/flash"
	"github.com/silenci4/flask-template-blog/internal/model"
	"github.com/silenci4/flask-template-blog/internal/repository"
)

// contextKey is unexported so only this package can place or read the
// identity in a request context.
type contextKey string

const userKey contextKey = "user"

// WithUser resolves the session cookie into a *model.User and stores it in
// the request context. It never blocks a request: an anonymous visitor, a
// garbage token, or a deleted account all just mean "no current user".
//
// Every route sits behind this middleware, so handlers and the stricter
// guards below can read the identity without touching cookies themselves.
func WithUser(sessions *SessionService, users repository.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user := resolveUser(r, sessions, users); user != nil {
				r = r.WithContext(context.WithValue(r.Context(), userKey, user))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireUser blocks anonymous access: the visitor is flashed a notice and
// redirected to the login page. Used for routes that only make sense with
// an account, such as logout.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserFromContext(r.Context()); !ok {
			flash.Set(w, "You need to log in first.")
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin guards the post-authoring routes. The checks run in order,
// authentication first, then role, and both failures end the request with
// 403 before the wrapped handler executes. An anonymous caller must never
// reach the role check.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		if !user.IsAdmin() {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserFromContext returns the authenticated user for this request, or
// (nil, false) when the request is anonymous.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userKey).(*model.User)
	return user, ok && user != nil
}

func resolveUser(r *http.Request, sessions *SessionService, users repository.UserRepository) *model.User {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return nil
	}

	userID, err := sessions.Validate(cookie.Value)
	if err != nil {
		return nil
	}

	user, err := users.GetUserByID(r.Context(), userID)
	if err != nil {
		return nil
	}
	return user
}
