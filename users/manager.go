package users

import (
	"context"

	"github.com/noauthlabs/noauth-server/internal/autherr"
	"github.com/noauthlabs/noauth-server/internal/crypto"
	"github.com/noauthlabs/noauth-server/projects"
	"github.com/noauthlabs/noauth-server/scopes"
	"github.com/pkg/errors"
)

// SessionResyncer propagates a user's changed scope set into the user's
// live sessions. Implemented by the token engine.
type SessionResyncer interface {
	ResyncScopesForUser(ctx context.Context, uuid int64, newScopeRefs []scopes.Ref) error
}

// Manager is the management surface for the users of one project:
// creation, credential changes, scope changes and federated-identity
// linking. Scope mutations trigger the engine's eager session resync.
type Manager struct {
	project *projects.Project
	users   Repo
	catalog scopes.Catalog
	resync  SessionResyncer
}

// NewManager binds a manager to a project. resync may be nil when no
// session engine is attached (e.g. offline provisioning).
func NewManager(project *projects.Project, users Repo, catalog scopes.Catalog, resync SessionResyncer) (*Manager, error) {
	if project == nil {
		return nil, errors.New("[NewManager] project is required")
	}
	if users == nil {
		return nil, errors.New("[NewManager] users repo is required")
	}
	if catalog == nil {
		return nil, errors.New("[NewManager] scopes catalog is required")
	}
	return &Manager{project: project, users: users, catalog: catalog, resync: resync}, nil
}

// NewUserConfig describes a user to create. ScopeIDs defaults to the
// project's default_registration_scopes when empty.
type NewUserConfig struct {
	Login    string
	Password string
	ScopeIDs []string
	Social   map[string]*SocialProfile
}

// CreateUser registers a new user under the manager's project. The
// password is stored as the deterministic login-salted digest. A login
// already in use within the project is a conflict.
func (m *Manager) CreateUser(ctx context.Context, config NewUserConfig) (*User, error) {
	scopeIDs := config.ScopeIDs
	if len(scopeIDs) == 0 {
		scopeIDs = m.project.DefaultRegistrationScopes
	}
	refs, err := scopes.Resolve(ctx, m.catalog, scopeIDs)
	if err != nil {
		return nil, errors.Wrap(err, "[CreateUser] resolving scopes")
	}

	user := &User{
		Login:     config.Login,
		ProjectID: m.project.ID,
		Scopes:    refs,
		Social:    config.Social,
	}
	if config.Password != "" {
		user.Password = crypto.CreatePasswordHash(config.Login, config.Password)
	}

	created, err := m.users.Insert(ctx, user)
	if err != nil {
		if errors.Is(err, ErrDuplicateLogin) {
			return nil, autherr.Conflict("Login already in use")
		}
		return nil, errors.Wrap(err, "[CreateUser] Users.Insert")
	}
	return created, nil
}

// GetByUUID returns the user or a 404 when absent.
func (m *Manager) GetByUUID(ctx context.Context, uuid int64) (*User, error) {
	user, err := m.users.FindByUUID(ctx, m.project.ID, uuid)
	if err != nil {
		return nil, errors.Wrap(err, "[GetByUUID] Users.FindByUUID")
	}
	if user == nil {
		return nil, autherr.NotFound("User not found", "No user with that uuid in the project")
	}
	return user, nil
}

// GetByLoginAndPassword returns the matching user or nil when the
// credentials do not match; it is a lookup, not an auth failure.
func (m *Manager) GetByLoginAndPassword(ctx context.Context, login, password string) (*User, error) {
	hash := crypto.CreatePasswordHash(login, password)
	user, err := m.users.FindByLoginPassword(ctx, m.project.ID, login, hash)
	if err != nil {
		return nil, errors.Wrap(err, "[GetByLoginAndPassword] Users.FindByLoginPassword")
	}
	return user, nil
}

// ChangeLogin updates the login and rehashes the stored password digest.
// The current password is required: the digest is salted by login, so a
// login change without it would leave the stored digest unverifiable.
func (m *Manager) ChangeLogin(ctx context.Context, uuid int64, newLogin, currentPassword string) (*User, error) {
	if currentPassword == "" {
		return nil, autherr.BadRequest("Password is required to change login")
	}
	user, err := m.GetByUUID(ctx, uuid)
	if err != nil {
		return nil, err
	}
	user.Login = newLogin
	user.Password = crypto.CreatePasswordHash(newLogin, currentPassword)
	return m.update(ctx, user, "[ChangeLogin]")
}

// ChangePassword replaces the stored password digest.
func (m *Manager) ChangePassword(ctx context.Context, uuid int64, newPassword string) (*User, error) {
	user, err := m.GetByUUID(ctx, uuid)
	if err != nil {
		return nil, err
	}
	user.Password = crypto.CreatePasswordHash(user.Login, newPassword)
	return m.update(ctx, user, "[ChangePassword]")
}

// UpdateLoginAndPassword replaces both credentials in one write.
func (m *Manager) UpdateLoginAndPassword(ctx context.Context, uuid int64, newLogin, newPassword string) (*User, error) {
	user, err := m.GetByUUID(ctx, uuid)
	if err != nil {
		return nil, err
	}
	user.Login = newLogin
	user.Password = crypto.CreatePasswordHash(newLogin, newPassword)
	return m.update(ctx, user, "[UpdateLoginAndPassword]")
}

// AddScopes grants additional scopes to the user and resyncs the user's
// live sessions.
func (m *Manager) AddScopes(ctx context.Context, uuid int64, scopeIDs []string) (*User, error) {
	user, err := m.GetByUUID(ctx, uuid)
	if err != nil {
		return nil, err
	}
	refs, err := scopes.Resolve(ctx, m.catalog, scopeIDs)
	if err != nil {
		return nil, errors.Wrap(err, "[AddScopes] resolving scopes")
	}
	user.Scopes = scopes.Merge(user.Scopes, refs)
	return m.updateWithResync(ctx, user, "[AddScopes]")
}

// RemoveScopes revokes scopes from the user and resyncs the user's live
// sessions.
func (m *Manager) RemoveScopes(ctx context.Context, uuid int64, scopeIDs []string) (*User, error) {
	user, err := m.GetByUUID(ctx, uuid)
	if err != nil {
		return nil, err
	}
	refs, err := scopes.Resolve(ctx, m.catalog, scopeIDs)
	if err != nil {
		return nil, errors.Wrap(err, "[RemoveScopes] resolving scopes")
	}

	remove := make(map[scopes.Ref]struct{}, len(refs))
	for _, ref := range refs {
		remove[ref] = struct{}{}
	}
	var kept []scopes.Ref
	for _, ref := range user.Scopes {
		if _, drop := remove[ref]; !drop {
			kept = append(kept, ref)
		}
	}
	user.Scopes = kept
	return m.updateWithResync(ctx, user, "[RemoveScopes]")
}

// LinkSocial attaches a federated profile to the user. A subject id
// already linked to a different user in the project is a conflict.
func (m *Manager) LinkSocial(ctx context.Context, uuid int64, profile *SocialProfile, provider string) (*User, error) {
	existing, err := m.users.FindBySocialSubject(ctx, m.project.ID, provider, profile.SubjectID)
	if err != nil {
		return nil, errors.Wrap(err, "[LinkSocial] Users.FindBySocialSubject")
	}
	if existing != nil && existing.UUID != uuid {
		return nil, autherr.Conflict("Federated identity already linked to another user")
	}

	user, err := m.GetByUUID(ctx, uuid)
	if err != nil {
		return nil, err
	}
	if user.Social == nil {
		user.Social = make(map[string]*SocialProfile)
	}
	user.Social[provider] = profile
	return m.update(ctx, user, "[LinkSocial]")
}

// DeleteByUUID removes the user, reporting whether a row was removed.
func (m *Manager) DeleteByUUID(ctx context.Context, uuid int64) (bool, error) {
	deleted, err := m.users.Delete(ctx, m.project.ID, uuid)
	if err != nil {
		return false, errors.Wrap(err, "[DeleteByUUID] Users.Delete")
	}
	return deleted, nil
}

func (m *Manager) update(ctx context.Context, user *User, caller string) (*User, error) {
	updated, err := m.users.Update(ctx, user)
	if err != nil {
		if errors.Is(err, ErrDuplicateLogin) {
			return nil, autherr.Conflict("Login already in use")
		}
		return nil, errors.Wrap(err, caller+" Users.Update")
	}
	if updated == nil {
		return nil, autherr.NotFound("User not found", "No user with that uuid in the project")
	}
	return updated, nil
}

func (m *Manager) updateWithResync(ctx context.Context, user *User, caller string) (*User, error) {
	updated, err := m.update(ctx, user, caller)
	if err != nil {
		return nil, err
	}
	if m.resync != nil {
		if err := m.resync.ResyncScopesForUser(ctx, updated.UUID, updated.Scopes); err != nil {
			return nil, errors.Wrap(err, caller+" session resync")
		}
	}
	return updated, nil
}
