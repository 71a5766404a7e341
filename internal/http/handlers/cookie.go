package handlers

import (
	"net/http"
	"time"

	"github.com/houseoftheai/server/internal/auth"
	"github.com/houseoftheai/server/internal/middleware"
)

// setSessionCookie delivers the session token as an HttpOnly cookie. In
// production the frontend is hosted cross-site, so the cookie must be Secure
// with SameSite=None; elsewhere Strict keeps it first-party only.
func setSessionCookie(w http.ResponseWriter, token string, production bool) {
	sameSite := http.SameSiteStrictMode
	if production {
		sameSite = http.SameSiteNoneMode
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.SessionTTL / time.Second),
		HttpOnly: true,
		Secure:   production,
		SameSite: sameSite,
	})
}

// clearSessionCookie expires the cookie immediately. The token itself stays
// cryptographically valid until its expiry; logout is purely client-side.
func clearSessionCookie(w http.ResponseWriter, production bool) {
	sameSite := http.SameSiteStrictMode
	if production {
		sameSite = http.SameSiteNoneMode
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   production,
		SameSite: sameSite,
	})
}
