package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
)

type ctxKey string

const identityKey ctxKey = "identity"

// IdentityFromContext returns the identity the gate attached to the request.
func IdentityFromContext(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(identityKey).(models.Identity)
	return id, ok
}

// accessToken looks in the accessToken cookie first and falls back to an
// "Authorization: Bearer" header.
func accessToken(r *http.Request) string {
	if v := cookieValue(r, common.AccessTokenCookieName); v != "" {
		return v
	}

	scheme, token, ok := strings.Cut(r.Header.Get(common.AuthorizationHeaderName), " ")
	if !ok || !strings.EqualFold(scheme, common.BearerScheme) {
		return ""
	}
	return strings.TrimSpace(token)
}

// gate rejects requests without a valid access token and attaches the
// caller's identity to the rest.
func (s *HTTPServer) gate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := s.sessions.Authenticate(r.Context(), accessToken(r))
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		if info := requestInfoFrom(r.Context()); info != nil {
			info.userID = id.ID
		}

		ctx := context.WithValue(r.Context(), identityKey, *id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
