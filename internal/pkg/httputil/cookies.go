package httputil

// Cookie names used for browser-based authentication.
const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
	CSRFTokenCookie    = "csrf_token"
)

// CSRFTokenHeader carries the CSRF token on state-changing requests.
const CSRFTokenHeader = "X-CSRF-Token"
