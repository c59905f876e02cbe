package server

import (
	"net/http"
	"strings"

	"github.com/playperu/eastertrail/internal/adminauth"
)

const adminLoginPath = "/admin/login"

// adminAPIMiddleware rejects API calls without a valid admin cookie.
func adminAPIMiddleware(gate *adminauth.Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !gate.Allowed(r) {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// adminPageMiddleware sends signed-out visitors of /admin pages to the
// login page. The login page itself is always reachable.
func adminPageMiddleware(gate *adminauth.Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := strings.TrimSuffix(r.URL.Path, "/")
			if path == adminLoginPath || gate.Allowed(r) {
				next.ServeHTTP(w, r)
				return
			}
			http.Redirect(w, r, adminLoginPath, http.StatusFound)
		})
	}
}
