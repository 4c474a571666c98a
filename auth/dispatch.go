package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/noauthlabs/noauth-server/internal/autherr"
	"github.com/noauthlabs/noauth-server/providers"
	"github.com/noauthlabs/noauth-server/scopes"
	"github.com/noauthlabs/noauth-server/sessions"
	"github.com/noauthlabs/noauth-server/users"
	"github.com/pkg/errors"
)

// HandleToken dispatches a normalized grant request. POST requests are
// routed by grant_type (case-insensitive); DELETE revokes the bearer
// token regardless of body. A nil response with nil error means the
// request succeeded with an empty payload (revocation). Unknown grant
// types and methods are a no-match, reported as not found.
func (s *Service) HandleToken(ctx context.Context, req *Request) (*sessions.TokenResponse, error) {
	switch strings.ToUpper(req.Method) {
	case http.MethodPost:
		return s.dispatchGrant(ctx, req)
	case http.MethodDelete:
		if err := s.Revoke(ctx, req.Authorization.Bearer); err != nil {
			return nil, err
		}
		return nil, nil
	default:
		return nil, ErrUnsupportedGrant
	}
}

func (s *Service) dispatchGrant(ctx context.Context, req *Request) (*sessions.TokenResponse, error) {
	grantType := strings.ToLower(req.Body.GrantType)

	switch grantType {
	case string(sessions.GrantClientCredentials):
		return s.clientCredentialsGrant(ctx, req)
	case string(sessions.GrantUserCredentials):
		return s.userCredentialsGrant(ctx, req)
	case string(sessions.GrantRefreshToken):
		return s.refreshTokenGrant(ctx, req)
	}

	// Every configured federated provider gets a "<provider>_token"
	// grant.
	if providerName, ok := strings.CutSuffix(grantType, "_token"); ok {
		if _, registered := s.providers[providerName]; registered {
			return s.federatedGrant(ctx, req, providerName)
		}
	}
	return nil, ErrUnsupportedGrant
}

func (s *Service) clientCredentialsGrant(ctx context.Context, req *Request) (*sessions.TokenResponse, error) {
	client, err := s.VerifyClient(ctx, req.Authorization.Basic)
	if err != nil {
		return nil, err
	}
	session, err := s.Issue(ctx, nil, client, sessions.GrantClientCredentials)
	if err != nil {
		return nil, err
	}
	return session.BasicResponse(s.nowTime()), nil
}

func (s *Service) userCredentialsGrant(ctx context.Context, req *Request) (*sessions.TokenResponse, error) {
	client, err := s.VerifyClient(ctx, req.Authorization.Basic)
	if err != nil {
		return nil, err
	}
	user, err := s.VerifyUserPassword(ctx, req.Body.Login, req.Body.Password, client.ProjectID)
	if err != nil {
		return nil, err
	}
	session, err := s.Issue(ctx, user, client, sessions.GrantUserCredentials)
	if err != nil {
		return nil, err
	}
	return session.BasicResponse(s.nowTime()), nil
}

func (s *Service) refreshTokenGrant(ctx context.Context, req *Request) (*sessions.TokenResponse, error) {
	session, err := s.Rotate(ctx, req.Authorization.Bearer, req.Body.RefreshToken)
	if err != nil {
		return nil, err
	}
	return session.BasicResponse(s.nowTime()), nil
}

// federatedGrant authenticates the client, exchanges the federated
// credential for a profile, and issues a user-bound session. A profile
// never seen before creates a new user under the client's project with
// the project's default registration scopes. Matching is strictly by the
// provider's stable subject id, never by name or email.
func (s *Service) federatedGrant(ctx context.Context, req *Request, providerName string) (*sessions.TokenResponse, error) {
	client, err := s.VerifyClient(ctx, req.Authorization.Basic)
	if err != nil {
		return nil, err
	}

	token := req.Body.AccessToken
	if token == "" {
		token = req.Body.IDToken
	}
	profile, err := s.VerifyFederated(ctx, providerName, token)
	if err != nil {
		return nil, err
	}

	user, err := s.repos.Users.FindBySocialSubject(ctx, client.ProjectID, providerName, profile.SubjectID)
	if err != nil {
		return nil, errors.Wrap(err, "[federatedGrant] Users.FindBySocialSubject")
	}
	if user == nil {
		user, err = s.registerFederatedUser(ctx, client.ProjectID, profile)
		if err != nil {
			return nil, err
		}
	}

	session, err := s.Issue(ctx, user, client, sessions.FederatedGrant(providerName))
	if err != nil {
		return nil, err
	}
	return session.BasicResponse(s.nowTime()), nil
}

func (s *Service) registerFederatedUser(ctx context.Context, projectID string, profile *providers.Profile) (*users.User, error) {
	project, err := s.repos.Projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, errors.Wrap(err, "[registerFederatedUser] Projects.FindByID")
	}
	if project == nil {
		return nil, autherr.NotFound("Project not found", "Project with project_id "+projectID+" was not found")
	}

	refs, err := scopes.Resolve(ctx, s.repos.Scopes, project.DefaultRegistrationScopes)
	if err != nil {
		return nil, errors.Wrap(err, "[registerFederatedUser] resolving default registration scopes")
	}

	user := &users.User{
		ProjectID: projectID,
		Scopes:    refs,
		Social: map[string]*users.SocialProfile{
			profile.Provider: {
				SubjectID: profile.SubjectID,
				Name:      profile.Name,
				Email:     profile.Email,
				Raw:       profile.Raw,
			},
		},
	}

	created, err := s.repos.Users.Insert(ctx, user)
	if err != nil {
		return nil, errors.Wrap(err, "[registerFederatedUser] Users.Insert")
	}
	return created, nil
}
