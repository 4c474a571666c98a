package facebook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/noauthlabs/noauth-server/providers"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

const (
	providerName = "facebook"
	graphMeURL   = "https://graph.facebook.com/v12.0/me"
)

// Provider fetches profiles from the Facebook Graph API using the
// user-supplied access token as a bearer credential.
type Provider struct {
	baseURL string
}

type Option func(*Provider)

// WithBaseURL overrides the Graph API endpoint (for tests).
func WithBaseURL(baseURL string) Option {
	return func(p *Provider) {
		p.baseURL = baseURL
	}
}

func New(options ...Option) *Provider {
	p := &Provider{baseURL: graphMeURL}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *Provider) Name() string {
	return providerName
}

// FetchProfile calls the Graph "me" endpoint. A non-2xx status from the
// Graph API is surfaced as a providers.Error carrying the upstream code.
func (p *Provider) FetchProfile(ctx context.Context, accessToken string) (*providers.Profile, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken}))

	requestURL := p.baseURL + "?fields=" + url.QueryEscape("id,name,email")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "[facebook.FetchProfile] building request")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "[facebook.FetchProfile] graph request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &providers.Error{StatusCode: resp.StatusCode, Message: "facebook graph rejected the token"}
	}

	var payload struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.Wrap(err, "[facebook.FetchProfile] decoding response")
	}
	if payload.ID == "" {
		return nil, &providers.Error{StatusCode: http.StatusBadRequest, Message: "facebook profile without id"}
	}

	return &providers.Profile{
		Provider:  providerName,
		SubjectID: payload.ID,
		Name:      payload.Name,
		Email:     payload.Email,
		Raw:       map[string]any{"id": payload.ID, "name": payload.Name, "email": payload.Email},
	}, nil
}
