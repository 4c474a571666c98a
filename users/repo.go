package users

import (
	"context"
	"errors"
)

// ErrDuplicateLogin is the store-level uniqueness violation for logins.
// The manager maps it to a 409.
var ErrDuplicateLogin = errors.New("login already in use within project")

// Repo is the store contract for user rows. Find methods return
// (nil, nil) when no user matches.
type Repo interface {
	// Insert persists a new user, allocating its UUID from the
	// deployment-wide sequence. Returns ErrDuplicateLogin when the login
	// is already taken within the project.
	Insert(ctx context.Context, user *User) (*User, error)
	FindByUUID(ctx context.Context, projectID string, uuid int64) (*User, error)
	// FindByLoginPassword matches login and password digest exactly
	// within the project.
	FindByLoginPassword(ctx context.Context, projectID, login, passwordHash string) (*User, error)
	// FindBySocialSubject looks a user up by a provider's stable external
	// subject id.
	FindBySocialSubject(ctx context.Context, projectID, provider, subjectID string) (*User, error)
	// Update replaces the stored row matched by project and UUID.
	// Returns ErrDuplicateLogin when a login change collides.
	Update(ctx context.Context, user *User) (*User, error)
	// Delete reports whether a row was actually removed.
	Delete(ctx context.Context, projectID string, uuid int64) (bool, error)
	CountByProject(ctx context.Context, projectID string) (int, error)
}
