package server

import (
	"net/http"
	"strings"

	"github.com/Its-donkey/loginform/internal/auth"
)

const sessionCookieName = "loginform_session"

// sessionFromRequest returns the live session named by the request cookie.
func (s *server) sessionFromRequest(r *http.Request) (auth.Token, bool) {
	if r == nil {
		return auth.Token{}, false
	}
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return auth.Token{}, false
	}
	value := strings.TrimSpace(cookie.Value)
	if value == "" {
		return auth.Token{}, false
	}
	return s.sessions.Validate(value)
}

func (s *server) setSession(w http.ResponseWriter, r *http.Request, token auth.Token) {
	secure := r != nil && (r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https"))
	cookie := &http.Cookie{
		Name:     sessionCookieName,
		Value:    token.Value,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
		Path:     "/",
	}
	if !token.ExpiresAt.IsZero() {
		cookie.Expires = token.ExpiresAt
	}
	http.SetCookie(w, cookie)
}

func (s *server) clearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
