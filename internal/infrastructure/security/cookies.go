package security

import (
	"net/http"
	"time"
)

const RefreshCookieName = "refresh_token"

// SetRefreshToken writes the refresh token as an HttpOnly cookie. Over
// HTTPS the __Host- prefix pins it to this origin.
func SetRefreshToken(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	name := RefreshCookieName
	if secure {
		name = "__Host-" + RefreshCookieName
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure, // prod=true, dev=false
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
	})
}

func ClearRefreshToken(w http.ResponseWriter, secure bool) {
	name := RefreshCookieName
	if secure {
		name = "__Host-" + RefreshCookieName
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// ReadRefreshToken prefers the secure-prefixed cookie and falls back to
// the plain name for local non-HTTPS development.
func ReadRefreshToken(r *http.Request) (string, error) {
	if c, err := r.Cookie("__Host-" + RefreshCookieName); err == nil {
		return c.Value, nil
	}
	c, err := r.Cookie(RefreshCookieName)
	if err != nil {
		return "", err
	}
	return c.Value, nil
}
