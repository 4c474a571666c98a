package providers

import (
	"context"
	"fmt"
)

// Profile is the normalized result of a federated-identity lookup.
// SubjectID is the provider's stable external subject identifier and is
// the only field safe to match local users on.
type Profile struct {
	Provider  string
	SubjectID string
	Name      string
	Email     string
	Raw       map[string]any
}

// Provider fetches the profile behind a federated credential (an access
// token or an id_token, depending on the provider).
type Provider interface {
	Name() string
	FetchProfile(ctx context.Context, token string) (*Profile, error)
}

// Error is a provider-side failure carrying the upstream status class.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider error %d: %s", e.StatusCode, e.Message)
}

// IsClientError reports whether the failure is a 400-class rejection of
// the presented token, as opposed to a provider/network fault.
func (e *Error) IsClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}
