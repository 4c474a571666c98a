package sessions

import (
	"context"
	"time"

	"github.com/noauthlabs/noauth-server/scopes"
)

// Repo is the store contract for session rows. Access and refresh tokens
// are unique keys; the store must provide atomic find-and-remove so that
// concurrent rotations of the same refresh token have exactly one winner.
// Find methods return (nil, nil) when no row matches.
type Repo interface {
	Insert(ctx context.Context, session *Session) (*Session, error)
	// FindByAccessToken matches an unexpired session only; an expired row
	// is treated as absent and is not removed (lazy expiry).
	FindByAccessToken(ctx context.Context, accessToken string, now time.Time) (*Session, error)
	// FindAndRemoveByRefreshToken atomically removes and returns the
	// session matching refreshToken whose access and refresh expiries
	// are each either unset or still in the future. The first caller
	// wins; later callers see (nil, nil).
	FindAndRemoveByRefreshToken(ctx context.Context, refreshToken string, now time.Time) (*Session, error)
	// DeleteByAccessToken is idempotent; deleting an unknown token is not
	// an error.
	DeleteByAccessToken(ctx context.Context, accessToken string) error
	DeleteByRefreshToken(ctx context.Context, refreshToken string) error
	// FindByUUID returns every session bound to the given user.
	FindByUUID(ctx context.Context, uuid int64) ([]*Session, error)
	// UpdateScopes rewrites the scope snapshot of the session matching
	// the access token.
	UpdateScopes(ctx context.Context, accessToken string, refs []scopes.Ref) error
}
