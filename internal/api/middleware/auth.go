package middleware

import (
	"context"
	"net/http"
	"net/url"

	"contactdesk/internal/api/session"
)

type contextKey string

const UserIDCtxKey contextKey = "userID"

// RequireLogin guards authenticated-only routes. Anonymous callers are sent
// to the login page with the requested path preserved so a successful login
// can return them.
func RequireLogin(sm *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := sm.UserID(r)
			if !ok {
				sm.Flash(w, r, session.FlashWarning, "Please log in to continue.")
				http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.Path), http.StatusSeeOther)
				return
			}

			sm.Touch(w, r) // activity extends the idle window
			ctx := context.WithValue(r.Context(), UserIDCtxKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// VerifyCSRF rejects state-changing form submissions whose csrf_token field
// does not match the session's token. Runs before any handler logic; safe
// methods pass through.
func VerifyCSRF(sm *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isSafeMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			if !sm.ValidateCSRF(r, r.PostFormValue("csrf_token")) {
				http.Error(w, "Forbidden - invalid or missing CSRF token", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetUserIDFromContext returns the authenticated user id set by RequireLogin.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDCtxKey).(int64)
	return userID, ok
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}
