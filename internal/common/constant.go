package common

// Cookie and header names shared by the HTTP transport and its tests.
const (
	AccessTokenCookieName  = "accessToken"
	RefreshTokenCookieName = "refreshToken"

	AuthorizationHeaderName = "Authorization"
	BearerScheme            = "Bearer"
)
