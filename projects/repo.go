package projects

import "context"

// Repo is the store contract for project rows. FindByID returns
// (nil, nil) when no project matches.
type Repo interface {
	FindByID(ctx context.Context, projectID string) (*Project, error)
	Upsert(ctx context.Context, project *Project) (*Project, error)
}
