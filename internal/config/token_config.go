package config

import "time"

type TokenConfig interface {
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
	GetProviderTimeout() time.Duration
}

type Tokens struct{}

var _ TokenConfig = Tokens{}

func (Tokens) GetAccessTokenExpiry() time.Duration {
	return 1 * time.Hour
}

// GetRefreshTokenExpiry returns zero, meaning refresh tokens do not
// expire on their own and die only through rotation or revocation.
func (Tokens) GetRefreshTokenExpiry() time.Duration {
	return 0
}

// GetProviderTimeout bounds every call to an external identity provider.
func (Tokens) GetProviderTimeout() time.Duration {
	return 10 * time.Second
}
