package clients

import "context"

// Repo is the store contract for client rows. Find methods return
// (nil, nil) when no client matches.
type Repo interface {
	FindByID(ctx context.Context, clientID string) (*Client, error)
	// FindByCredentials matches client_id and client_secret exactly.
	FindByCredentials(ctx context.Context, clientID, clientSecret string) (*Client, error)
	Upsert(ctx context.Context, client *Client) (*Client, error)
}
