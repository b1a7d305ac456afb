package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/server/services"
)

type cookieSettings struct {
	secure     bool
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func (c cookieSettings) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// setSessionCookies stores both tokens of pair as HttpOnly cookies that
// expire together with the tokens.
func (c cookieSettings) setSessionCookies(w http.ResponseWriter, pair *services.TokenPair) {
	http.SetCookie(w, c.cookie(common.AccessTokenCookieName, pair.AccessToken, int(c.accessTTL.Seconds())))
	http.SetCookie(w, c.cookie(common.RefreshTokenCookieName, pair.RefreshToken, int(c.refreshTTL.Seconds())))
}

func (c cookieSettings) clearSessionCookies(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie(common.AccessTokenCookieName, "", -1))
	http.SetCookie(w, c.cookie(common.RefreshTokenCookieName, "", -1))
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
