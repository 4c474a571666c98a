package sessions

import (
	"time"

	"github.com/noauthlabs/noauth-server/scopes"
)

// Grant names the flow that produced a session.
type Grant string

const (
	GrantClientCredentials Grant = "client_credentials"
	GrantUserCredentials   Grant = "user_credentials"
	GrantRefreshToken      Grant = "refresh_token"
	// Federated grants are "<provider>_token", e.g. facebook_token.
)

// FederatedGrant returns the grant kind for a federated provider name.
func FederatedGrant(provider string) Grant {
	return Grant(provider + "_token")
}

// Session is the persisted record backing one access/refresh token pair.
// Scopes is a snapshot taken at issue time, not a live join; it is
// rewritten only by the engine's eager resync.
type Session struct {
	// UUID is set only for user-bound sessions.
	UUID             *int64       `json:"uuid,omitempty"`
	AccessToken      string       `json:"access_token"`
	RefreshToken     string       `json:"refresh_token,omitempty"` // empty when the issuing client has refreshing disabled
	ATExpirationTime time.Time    `json:"at_expiration_time"`
	RTExpirationTime time.Time    `json:"rt_expiration_time,omitempty"`
	Scopes           []scopes.Ref `json:"scopes"`
	IssuedBy         string       `json:"issuedBy"` // client_id of the issuing client
	Grant            Grant        `json:"grant"`
}

// Expired reports whether the access token's TTL has elapsed. A zero
// expiration time means the session never expires.
func (s *Session) Expired(now time.Time) bool {
	return !s.ATExpirationTime.IsZero() && !s.ATExpirationTime.After(now)
}

// RefreshExpired reports whether the refresh token's own TTL has
// elapsed. A zero expiration time means the refresh token lives as long
// as the session row.
func (s *Session) RefreshExpired(now time.Time) bool {
	return !s.RTExpirationTime.IsZero() && !s.RTExpirationTime.After(now)
}

// TokenResponse is the serialized payload returned to callers. UUID and
// Scopes are populated only on the introspection (token info) response.
type TokenResponse struct {
	UUID         *int64   `json:"uuid,omitempty"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token,omitempty"`
	ExpiresIn    int64    `json:"expires_in"`
	TokenType    string   `json:"token_type"`
	Scopes       []string `json:"scopes,omitempty"`
}

// BasicResponse builds the issuance payload for a session.
func (s *Session) BasicResponse(now time.Time) *TokenResponse {
	return &TokenResponse{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresIn:    s.expiresInSeconds(now),
		TokenType:    "bearer",
	}
}

// FullResponse builds the introspection payload, including the user uuid
// and the session's resolved scope ids.
func (s *Session) FullResponse(now time.Time, scopeIDs []string) *TokenResponse {
	response := s.BasicResponse(now)
	response.UUID = s.UUID
	response.Scopes = scopeIDs
	return response
}

func (s *Session) expiresInSeconds(now time.Time) int64 {
	if s.ATExpirationTime.IsZero() {
		return 0
	}
	return int64(s.ATExpirationTime.Sub(now) / time.Second)
}
