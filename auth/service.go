package auth

import (
	"context"
	"time"

	"github.com/noauthlabs/noauth-server/clients"
	"github.com/noauthlabs/noauth-server/internal/autherr"
	"github.com/noauthlabs/noauth-server/internal/crypto"
	"github.com/noauthlabs/noauth-server/projects"
	"github.com/noauthlabs/noauth-server/providers"
	"github.com/noauthlabs/noauth-server/scopes"
	"github.com/noauthlabs/noauth-server/sessions"
	"github.com/noauthlabs/noauth-server/users"
	"github.com/pkg/errors"
)

const defaultAccessTokenTTL = 1 * time.Hour

// Repos holds all store contracts the token engine depends on.
type Repos struct {
	Projects projects.Repo
	Clients  clients.Repo
	Users    users.Repo
	Scopes   scopes.Catalog
	Sessions sessions.Repo
}

// Service is the token/session issuance-and-validation engine: it
// verifies credentials, negotiates scopes, and owns the session
// lifecycle. It keeps no mutable state of its own beyond its
// dependencies; every call is a bounded sequence of store operations.
type Service struct {
	repos           Repos
	providers       map[string]providers.Provider
	nowTime         func() time.Time            // injectable for testing
	generateToken   func() (string, error)      // injectable for testing
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration // zero means refresh tokens never expire on their own
	providerTimeout time.Duration
}

type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// WithTokenGenerator overrides the opaque token generator (primarily for
// testing).
func WithTokenGenerator(generate func() (string, error)) ServiceOption {
	return func(s *Service) {
		s.generateToken = generate
	}
}

func WithAccessTokenTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		s.accessTokenTTL = ttl
	}
}

func WithRefreshTokenTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		s.refreshTokenTTL = ttl
	}
}

// WithProvider registers a federated identity provider; the dispatcher
// exposes it as the "<name>_token" grant.
func WithProvider(provider providers.Provider) ServiceOption {
	return func(s *Service) {
		s.providers[provider.Name()] = provider
	}
}

// WithProviderTimeout bounds every external identity-provider call.
func WithProviderTimeout(timeout time.Duration) ServiceOption {
	return func(s *Service) {
		s.providerTimeout = timeout
	}
}

// NewService initializes the engine with its store contracts. Optional
// configuration is provided via options.
func NewService(repos Repos, options ...ServiceOption) (*Service, error) {
	if repos.Projects == nil {
		return nil, errors.New("[NewService] Projects repo is required")
	}
	if repos.Clients == nil {
		return nil, errors.New("[NewService] Clients repo is required")
	}
	if repos.Users == nil {
		return nil, errors.New("[NewService] Users repo is required")
	}
	if repos.Scopes == nil {
		return nil, errors.New("[NewService] Scopes catalog is required")
	}
	if repos.Sessions == nil {
		return nil, errors.New("[NewService] Sessions repo is required")
	}

	service := &Service{
		repos:          repos,
		providers:      make(map[string]providers.Provider),
		nowTime:        time.Now,
		generateToken:  crypto.GenerateToken,
		accessTokenTTL: defaultAccessTokenTTL,
	}

	for _, opt := range options {
		opt(service)
	}

	return service, nil
}

// VerifyClient authenticates a client by its basic-auth credentials.
// Missing or empty credentials always fail; there is no anonymous path.
func (s *Service) VerifyClient(ctx context.Context, basic *BasicCredentials) (*clients.Client, error) {
	if basic == nil || basic.ClientID == "" || basic.ClientSecret == "" {
		return nil, ErrInvalidClientCredentials
	}
	client, err := s.repos.Clients.FindByCredentials(ctx, basic.ClientID, basic.ClientSecret)
	if err != nil {
		return nil, errors.Wrap(err, "[VerifyClient] Clients.FindByCredentials")
	}
	if client == nil {
		return nil, ErrInvalidClientCredentials
	}
	return client, nil
}

// VerifyUserPassword authenticates a user within a project. The password
// is hashed with the deterministic login-salted digest and matched by
// equality in the store.
func (s *Service) VerifyUserPassword(ctx context.Context, login, password, projectID string) (*users.User, error) {
	if login == "" || password == "" {
		return nil, ErrInvalidUserCredentials
	}
	passwordHash := crypto.CreatePasswordHash(login, password)
	user, err := s.repos.Users.FindByLoginPassword(ctx, projectID, login, passwordHash)
	if err != nil {
		return nil, errors.Wrap(err, "[VerifyUserPassword] Users.FindByLoginPassword")
	}
	if user == nil {
		return nil, ErrInvalidUserCredentials
	}
	return user, nil
}

// VerifyFederated exchanges a federated credential for a normalized
// profile. A provider-side 400-class rejection maps to a 400 "invalid
// token" failure; any other provider fault is the generic 500.
func (s *Service) VerifyFederated(ctx context.Context, providerName, token string) (*providers.Profile, error) {
	provider, ok := s.providers[providerName]
	if !ok {
		return nil, ErrUnsupportedGrant
	}
	if token == "" {
		return nil, ErrInvalidProviderToken
	}

	if s.providerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.providerTimeout)
		defer cancel()
	}

	profile, err := provider.FetchProfile(ctx, token)
	if err != nil {
		var providerErr *providers.Error
		if errors.As(err, &providerErr) && providerErr.IsClientError() {
			return nil, ErrInvalidProviderToken
		}
		return nil, autherr.InternalServerError()
	}
	return profile, nil
}
