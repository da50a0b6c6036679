package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// Credentials is the single shared login. Username may be either Email or
// User; an empty User only admits Email.
type Credentials struct {
	Email    string
	User     string
	Password string
}

func (c Credentials) usernameMatches(name string) bool {
	ok := subtle.ConstantTimeCompare([]byte(strings.ToLower(name)), []byte(strings.ToLower(c.Email))) == 1
	if c.User != "" && subtle.ConstantTimeCompare([]byte(name), []byte(c.User)) == 1 {
		ok = true
	}
	return ok
}

// BasicAuth rejects requests that do not carry the configured credentials.
func BasicAuth(creds Credentials) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if !ok || !creds.usernameMatches(user) ||
				subtle.ConstantTimeCompare([]byte(pass), []byte(creds.Password)) != 1 {
				w.Header().Set("WWW-Authenticate", `Basic realm="folio", charset="UTF-8"`)
				httpError(w, http.StatusUnauthorized, "Not authorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
