package clients

import "github.com/noauthlabs/noauth-server/scopes"

// GrantScopes holds the two scope allow-lists of a client. Both only ever
// reference scopes belonging to the client's own project.
type GrantScopes struct {
	// ClientCredentials are grantable without a user.
	ClientCredentials []scopes.Ref `json:"client_credentials"`
	// UserCredentials is the allow-list a user-bound session may
	// additionally receive; user scopes outside it are never issued
	// through this client.
	UserCredentials []scopes.Ref `json:"user_credentials"`
}

// Client is an application registered under exactly one project.
type Client struct {
	ID                 string      `json:"client_id"`
	Secret             string      `json:"client_secret"`
	Name               string      `json:"client_name,omitempty"`
	Description        string      `json:"client_description,omitempty"`
	ProjectID          string      `json:"project_id"`
	Scopes             GrantScopes `json:"scopes"`
	HasRefreshingToken bool        `json:"has_refreshing_token"`
}
