package auth

import (
	"context"

	"github.com/noauthlabs/noauth-server/scopes"
	"github.com/noauthlabs/noauth-server/sessions"
	"github.com/pkg/errors"
)

// Authorize is the sole access-control check exposed to
// protected-resource consumers. It fails 401 when the bearer token has
// no live session and 403 when the session holds none of the required
// scopes (any-of semantics - one match is enough). No side effects
// beyond the lookup.
func (s *Service) Authorize(ctx context.Context, requiredScopes []string, accessToken string) error {
	session, err := s.LookupByAccessToken(ctx, accessToken)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrInvalidAccessToken
	}

	held, err := scopes.IDs(ctx, s.repos.Scopes, session.Scopes)
	if err != nil {
		return errors.Wrap(err, "[Authorize] resolving session scopes")
	}
	if !scopes.HasAny(held, requiredScopes) {
		return ErrMissingScope
	}
	return nil
}

// TokenInfo is the introspection path: it returns the full session
// payload (uuid and scope ids included) for a live bearer token.
func (s *Service) TokenInfo(ctx context.Context, accessToken string) (*sessions.TokenResponse, error) {
	session, err := s.LookupByAccessToken(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrInvalidAccessToken
	}

	scopeIDs, err := scopes.IDs(ctx, s.repos.Scopes, session.Scopes)
	if err != nil {
		return nil, errors.Wrap(err, "[TokenInfo] resolving session scopes")
	}
	return session.FullResponse(s.nowTime(), scopeIDs), nil
}
