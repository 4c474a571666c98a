package users

import "github.com/noauthlabs/noauth-server/scopes"

// SocialProfile is the normalized profile of one linked federated
// identity. SubjectID is the provider's stable external subject
// identifier and is the only field users are ever matched on - transient
// fields like name or email must not be used for lookup.
type SocialProfile struct {
	SubjectID string         `json:"id"`
	Name      string         `json:"name,omitempty"`
	Email     string         `json:"email,omitempty"`
	Raw       map[string]any `json:"raw,omitempty"`
}

// User is an end-user identity scoped to one project.
type User struct {
	// UUID is allocated from a per-deployment sequence on insert.
	UUID      int64        `json:"uuid"`
	Login     string       `json:"login,omitempty"`
	Password  string       `json:"-"` // salted digest, never raw
	ProjectID string       `json:"-"`
	Scopes    []scopes.Ref `json:"scopes,omitempty"`
	// Social maps provider name to the linked federated profile, at most
	// one per provider.
	Social map[string]*SocialProfile `json:"social,omitempty"`
}
