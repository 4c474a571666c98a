package auth

import (
	"context"

	"github.com/noauthlabs/noauth-server/clients"
	"github.com/noauthlabs/noauth-server/scopes"
	"github.com/noauthlabs/noauth-server/sessions"
	"github.com/noauthlabs/noauth-server/users"
	"github.com/pkg/errors"
)

// sessionScopes computes the scope set for a new session. Client-only
// sessions get exactly the client's client_credentials scopes. For a
// user-bound session, only user scopes also present in the client's
// user_credentials allow-list are eligible (an intersection), then
// unioned with the client's own client_credentials scopes. The
// intersection is a security boundary: a client is never handed a scope
// it was not configured to request, even if the user holds it.
func sessionScopes(user *users.User, client *clients.Client) []scopes.Ref {
	if user == nil {
		return scopes.Merge(client.Scopes.ClientCredentials, nil)
	}
	eligible := scopes.Intersect(user.Scopes, client.Scopes.UserCredentials)
	return scopes.Merge(client.Scopes.ClientCredentials, eligible)
}

// Issue creates and persists a new session for the given principal.
// user may be nil for client-only grants. Refresh tokens are issued only
// when the client has refreshing enabled.
func (s *Service) Issue(ctx context.Context, user *users.User, client *clients.Client, grant sessions.Grant) (*sessions.Session, error) {
	accessToken, err := s.generateToken()
	if err != nil {
		return nil, errors.Wrap(err, "[Issue] generating access token")
	}

	session := &sessions.Session{
		AccessToken:      accessToken,
		ATExpirationTime: s.nowTime().Add(s.accessTokenTTL),
		Scopes:           sessionScopes(user, client),
		IssuedBy:         client.ID,
		Grant:            grant,
	}
	if user != nil {
		uuid := user.UUID
		session.UUID = &uuid
	}
	if client.HasRefreshingToken {
		refreshToken, err := s.generateToken()
		if err != nil {
			return nil, errors.Wrap(err, "[Issue] generating refresh token")
		}
		session.RefreshToken = refreshToken
		if s.refreshTokenTTL > 0 {
			session.RTExpirationTime = s.nowTime().Add(s.refreshTokenTTL)
		}
	}

	persisted, err := s.repos.Sessions.Insert(ctx, session)
	if err != nil {
		return nil, errors.Wrap(err, "[Issue] Sessions.Insert")
	}
	return persisted, nil
}

// LookupByAccessToken returns the unexpired session behind a bearer
// token, or nil when absent or expired. Expired rows are not removed
// here (lazy expiry).
func (s *Service) LookupByAccessToken(ctx context.Context, accessToken string) (*sessions.Session, error) {
	if accessToken == "" {
		return nil, nil
	}
	session, err := s.repos.Sessions.FindByAccessToken(ctx, accessToken, s.nowTime())
	if err != nil {
		return nil, errors.Wrap(err, "[LookupByAccessToken] Sessions.FindByAccessToken")
	}
	return session, nil
}

// Rotate consumes a refresh token and replaces its session with a fresh
// one. Refresh tokens are single-use: the old row is atomically removed,
// so a concurrent rotation has exactly one winner and the loser fails
// 401. The replacement's scopes are recomputed from the current client
// and user state rather than copied forward, so a scope change between
// issue and rotation is picked up.
func (s *Service) Rotate(ctx context.Context, accessToken, refreshToken string) (*sessions.Session, error) {
	if refreshToken == "" {
		return nil, ErrInvalidTokens
	}

	old, err := s.repos.Sessions.FindAndRemoveByRefreshToken(ctx, refreshToken, s.nowTime())
	if err != nil {
		return nil, errors.Wrap(err, "[Rotate] Sessions.FindAndRemoveByRefreshToken")
	}
	if old == nil {
		// Best-effort cleanup of stale rows matching the presented
		// tokens before rejecting.
		_ = s.repos.Sessions.DeleteByAccessToken(ctx, accessToken)
		_ = s.repos.Sessions.DeleteByRefreshToken(ctx, refreshToken)
		return nil, ErrInvalidTokens
	}

	client, err := s.repos.Clients.FindByID(ctx, old.IssuedBy)
	if err != nil {
		return nil, errors.Wrap(err, "[Rotate] Clients.FindByID")
	}
	if client == nil {
		return nil, ErrInvalidTokens
	}

	var user *users.User
	if old.UUID != nil {
		user, err = s.repos.Users.FindByUUID(ctx, client.ProjectID, *old.UUID)
		if err != nil {
			return nil, errors.Wrap(err, "[Rotate] Users.FindByUUID")
		}
		if user == nil {
			return nil, ErrInvalidTokens
		}
	}

	return s.Issue(ctx, user, client, old.Grant)
}

// Revoke deletes the session behind an access token. Idempotent:
// revoking an unknown or already-revoked token is not an error.
func (s *Service) Revoke(ctx context.Context, accessToken string) error {
	if err := s.repos.Sessions.DeleteByAccessToken(ctx, accessToken); err != nil {
		return errors.Wrap(err, "[Revoke] Sessions.DeleteByAccessToken")
	}
	return nil
}

// ResyncScopesForUser eagerly rewrites the scope snapshot of every live
// session of a user after the user's scope set changed, so clients see
// the change without re-authenticating. Each session's new snapshot is
// the merge of the issuing client's client_credentials scopes with the
// user's new scope refs. Idempotent for a given scope set.
func (s *Service) ResyncScopesForUser(ctx context.Context, uuid int64, newScopeRefs []scopes.Ref) error {
	userSessions, err := s.repos.Sessions.FindByUUID(ctx, uuid)
	if err != nil {
		return errors.Wrap(err, "[ResyncScopesForUser] Sessions.FindByUUID")
	}

	for _, session := range userSessions {
		client, err := s.repos.Clients.FindByID(ctx, session.IssuedBy)
		if err != nil {
			return errors.Wrap(err, "[ResyncScopesForUser] Clients.FindByID")
		}
		if client == nil {
			continue
		}
		merged := scopes.Merge(client.Scopes.ClientCredentials, newScopeRefs)
		if err := s.repos.Sessions.UpdateScopes(ctx, session.AccessToken, merged); err != nil {
			return errors.Wrap(err, "[ResyncScopesForUser] Sessions.UpdateScopes")
		}
	}
	return nil
}
