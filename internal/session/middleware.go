package session

import (
	"net/http"
)

// CookieName is the session cookie read by Middleware.
const CookieName = "jwt"

// Middleware applies the gate to every request, redirecting with 302 Found
// when the gate refuses the path.
func Middleware(g *Gate, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var token string
		if ck, err := r.Cookie(CookieName); err == nil {
			token = ck.Value
		}

		d := g.Decide(r.Context(), r.URL.Path, token)
		if !d.Allow {
			http.Redirect(w, r, d.Redirect, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}
