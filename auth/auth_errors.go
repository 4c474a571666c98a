package auth

import "github.com/noauthlabs/noauth-server/internal/autherr"

// Classified failures raised by the token engine. The descriptions are
// part of the response payload and deliberately do not distinguish which
// of the presented credentials was wrong.
var (
	ErrInvalidClientCredentials = autherr.Unauthorized("Invalid client credentials")
	ErrInvalidUserCredentials   = autherr.Unauthorized("Invalid user credentials")
	ErrInvalidAccessToken       = autherr.Unauthorized("Invalid access_token")
	ErrInvalidTokens            = autherr.Unauthorized("Invalid tokens")
	ErrMissingScope             = autherr.Forbidden("Required scope missing")
	ErrInvalidProviderToken     = autherr.BadRequest("Invalid token")
	ErrUnsupportedGrant         = autherr.NotFound("Not found", "Unsupported grant type")
)
