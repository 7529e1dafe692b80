package middleware

import (
	"net/http"

	"github.com/mmeshcher/debtdesk/internal/guard"
)

// RequireSession пропускает запрос только при действующей сессии.
// Иначе перенаправляет на экран входа с исходным адресом в returnUrl.
func RequireSession(a guard.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := guard.Protected(a, r.URL.RequestURI())
			if !d.Allow {
				http.Redirect(w, r, d.Redirect, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GuestOnly пропускает на экраны входа и регистрации только без действующей сессии.
func GuestOnly(a guard.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := guard.Guest(a)
			if !d.Allow {
				http.Redirect(w, r, d.Redirect, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
