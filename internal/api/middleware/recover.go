package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	"contactdesk/internal/api/view"
)

// Recoverer turns a handler panic into the generic 500 page. The panic detail
// is logged server-side only; open transactions were already rolled back by
// the services' deferred rollbacks.
func Recoverer(v *view.View) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					log.Printf("panic handling %s %s: %v\n%s", r.Method, r.URL.Path, rec, debug.Stack())
					v.ServerError(w)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
