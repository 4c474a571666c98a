package google

import (
	"context"
	"net/http"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/noauthlabs/noauth-server/providers"
	"github.com/pkg/errors"
)

const (
	providerName = "google"
	issuerURL    = "https://accounts.google.com"
)

// Provider verifies Google id_tokens through OIDC discovery and turns
// their claims into a normalized profile. The discovery document is
// fetched lazily on first use and cached.
type Provider struct {
	clientID string
	issuer   string

	mu       sync.Mutex
	verifier *oidc.IDTokenVerifier
}

type Option func(*Provider)

// WithIssuer overrides the OIDC issuer (for tests against a fake IdP).
func WithIssuer(issuer string) Option {
	return func(p *Provider) {
		p.issuer = issuer
	}
}

// New builds a Google provider. clientID is the audience expected in
// verified id_tokens.
func New(clientID string, options ...Option) *Provider {
	p := &Provider{clientID: clientID, issuer: issuerURL}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *Provider) Name() string {
	return providerName
}

// FetchProfile verifies the raw id_token and extracts the subject
// claims. A token that fails verification is a 400-class rejection.
func (p *Provider) FetchProfile(ctx context.Context, rawIDToken string) (*providers.Profile, error) {
	verifier, err := p.getVerifier(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "[google.FetchProfile] oidc discovery")
	}

	idToken, err := verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, &providers.Error{StatusCode: http.StatusBadRequest, Message: "id_token verification failed"}
	}

	var claims struct {
		Sub   string `json:"sub"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, errors.Wrap(err, "[google.FetchProfile] extracting claims")
	}
	if claims.Sub == "" {
		return nil, &providers.Error{StatusCode: http.StatusBadRequest, Message: "id_token without sub claim"}
	}

	return &providers.Profile{
		Provider:  providerName,
		SubjectID: claims.Sub,
		Name:      claims.Name,
		Email:     claims.Email,
		Raw:       map[string]any{"sub": claims.Sub, "name": claims.Name, "email": claims.Email},
	}, nil
}

func (p *Provider) getVerifier(ctx context.Context) (*oidc.IDTokenVerifier, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.verifier != nil {
		return p.verifier, nil
	}

	provider, err := oidc.NewProvider(ctx, p.issuer)
	if err != nil {
		return nil, err
	}
	p.verifier = provider.Verifier(&oidc.Config{ClientID: p.clientID})
	return p.verifier, nil
}
