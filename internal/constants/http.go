package constants

// HTTP header names
const (
	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "Authorization"
	HeaderUserAgent     = "User-Agent"
	HeaderXRequestID    = "X-Request-ID"
)

// Bearer token scheme for the Authorization header
const AuthSchemeBearer = "Bearer"
