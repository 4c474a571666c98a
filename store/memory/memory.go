// Package memory is an in-process implementation of the store contracts.
// It is the authoritative single logical store of a deployment: one
// mutex covers every collection, which gives the find-and-remove
// operations the atomicity the session engine relies on.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/noauthlabs/noauth-server/clients"
	"github.com/noauthlabs/noauth-server/projects"
	"github.com/noauthlabs/noauth-server/scopes"
	"github.com/noauthlabs/noauth-server/sessions"
	"github.com/noauthlabs/noauth-server/users"
)

type Store struct {
	mu sync.RWMutex

	projectRows map[string]*projects.Project // project_id -> row
	clientRows  map[string]*clients.Client   // client_id -> row
	scopeByRef  map[scopes.Ref]*scopes.Scope
	scopeByID   map[string]scopes.Ref // scope_id -> ref
	userRows    map[int64]*users.User
	userLogins  map[string]int64 // projectID+"\x00"+login -> uuid
	uuidSeq     int64

	sessionByAccess  map[string]*sessions.Session
	sessionByRefresh map[string]string // refresh_token -> access_token
}

func New() *Store {
	return &Store{
		projectRows:      make(map[string]*projects.Project),
		clientRows:       make(map[string]*clients.Client),
		scopeByRef:       make(map[scopes.Ref]*scopes.Scope),
		scopeByID:        make(map[string]scopes.Ref),
		userRows:         make(map[int64]*users.User),
		userLogins:       make(map[string]int64),
		sessionByAccess:  make(map[string]*sessions.Session),
		sessionByRefresh: make(map[string]string),
	}
}

func (s *Store) Projects() projects.Repo { return &projectRepo{s} }
func (s *Store) Clients() clients.Repo   { return &clientRepo{s} }
func (s *Store) Scopes() scopes.Catalog  { return &scopeCatalog{s} }
func (s *Store) Users() users.Repo       { return &userRepo{s} }
func (s *Store) Sessions() sessions.Repo { return &sessionRepo{s} }

// --- projects ---

type projectRepo struct{ s *Store }

func (r *projectRepo) FindByID(_ context.Context, projectID string) (*projects.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := r.s.projectRows[projectID]
	if !ok {
		return nil, nil
	}
	return cloneProject(row), nil
}

func (r *projectRepo) Upsert(_ context.Context, project *projects.Project) (*projects.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.projectRows[project.ID] = cloneProject(project)
	return cloneProject(project), nil
}

// --- clients ---

type clientRepo struct{ s *Store }

func (r *clientRepo) FindByID(_ context.Context, clientID string) (*clients.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := r.s.clientRows[clientID]
	if !ok {
		return nil, nil
	}
	return cloneClient(row), nil
}

func (r *clientRepo) FindByCredentials(_ context.Context, clientID, clientSecret string) (*clients.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := r.s.clientRows[clientID]
	if !ok || row.Secret != clientSecret {
		return nil, nil
	}
	return cloneClient(row), nil
}

func (r *clientRepo) Upsert(_ context.Context, client *clients.Client) (*clients.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.clientRows[client.ID] = cloneClient(client)
	return cloneClient(client), nil
}

// --- scopes ---

type scopeCatalog struct{ s *Store }

func (c *scopeCatalog) FindByIDs(_ context.Context, ids []string) ([]*scopes.Scope, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	var found []*scopes.Scope
	for _, id := range ids {
		if ref, ok := c.s.scopeByID[id]; ok {
			found = append(found, cloneScope(c.s.scopeByRef[ref]))
		}
	}
	return found, nil
}

func (c *scopeCatalog) FindByRefs(_ context.Context, refs []scopes.Ref) ([]*scopes.Scope, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	var found []*scopes.Scope
	for _, ref := range refs {
		if row, ok := c.s.scopeByRef[ref]; ok {
			found = append(found, cloneScope(row))
		}
	}
	return found, nil
}

// Upsert matches by scope_id; an existing scope keeps its ref so that
// rows referencing it stay valid.
func (c *scopeCatalog) Upsert(_ context.Context, scope *scopes.Scope) (*scopes.Scope, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	row := cloneScope(scope)
	if existingRef, ok := c.s.scopeByID[scope.ID]; ok {
		row.Ref = existingRef
	} else {
		row.Ref = scopes.Ref(uuid.NewString())
	}
	c.s.scopeByRef[row.Ref] = row
	c.s.scopeByID[row.ID] = row.Ref
	return cloneScope(row), nil
}

// --- users ---

type userRepo struct{ s *Store }

func loginKey(projectID, login string) string {
	return projectID + "\x00" + login
}

func (r *userRepo) Insert(_ context.Context, user *users.User) (*users.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if user.Login != "" {
		if _, taken := r.s.userLogins[loginKey(user.ProjectID, user.Login)]; taken {
			return nil, users.ErrDuplicateLogin
		}
	}

	// Deployment-wide sequence, shared across projects.
	r.s.uuidSeq++
	row := cloneUser(user)
	row.UUID = r.s.uuidSeq
	r.s.userRows[row.UUID] = row
	if row.Login != "" {
		r.s.userLogins[loginKey(row.ProjectID, row.Login)] = row.UUID
	}
	return cloneUser(row), nil
}

func (r *userRepo) FindByUUID(_ context.Context, projectID string, uuid int64) (*users.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := r.s.userRows[uuid]
	if !ok || row.ProjectID != projectID {
		return nil, nil
	}
	return cloneUser(row), nil
}

func (r *userRepo) FindByLoginPassword(_ context.Context, projectID, login, passwordHash string) (*users.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	uid, ok := r.s.userLogins[loginKey(projectID, login)]
	if !ok {
		return nil, nil
	}
	row := r.s.userRows[uid]
	if row.Password == "" || row.Password != passwordHash {
		return nil, nil
	}
	return cloneUser(row), nil
}

func (r *userRepo) FindBySocialSubject(_ context.Context, projectID, provider, subjectID string) (*users.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, row := range r.s.userRows {
		if row.ProjectID != projectID {
			continue
		}
		if profile, ok := row.Social[provider]; ok && profile.SubjectID == subjectID {
			return cloneUser(row), nil
		}
	}
	return nil, nil
}

func (r *userRepo) Update(_ context.Context, user *users.User) (*users.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.userRows[user.UUID]
	if !ok || existing.ProjectID != user.ProjectID {
		return nil, nil
	}

	if user.Login != existing.Login {
		if user.Login != "" {
			if uid, taken := r.s.userLogins[loginKey(user.ProjectID, user.Login)]; taken && uid != user.UUID {
				return nil, users.ErrDuplicateLogin
			}
		}
		if existing.Login != "" {
			delete(r.s.userLogins, loginKey(existing.ProjectID, existing.Login))
		}
		if user.Login != "" {
			r.s.userLogins[loginKey(user.ProjectID, user.Login)] = user.UUID
		}
	}

	row := cloneUser(user)
	r.s.userRows[row.UUID] = row
	return cloneUser(row), nil
}

func (r *userRepo) Delete(_ context.Context, projectID string, uuid int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.userRows[uuid]
	if !ok || row.ProjectID != projectID {
		return false, nil
	}
	if row.Login != "" {
		delete(r.s.userLogins, loginKey(row.ProjectID, row.Login))
	}
	delete(r.s.userRows, uuid)
	return true, nil
}

func (r *userRepo) CountByProject(_ context.Context, projectID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	count := 0
	for _, row := range r.s.userRows {
		if row.ProjectID == projectID {
			count++
		}
	}
	return count, nil
}

// --- sessions ---

type sessionRepo struct{ s *Store }

func (r *sessionRepo) Insert(_ context.Context, session *sessions.Session) (*sessions.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row := cloneSession(session)
	r.s.sessionByAccess[row.AccessToken] = row
	if row.RefreshToken != "" {
		r.s.sessionByRefresh[row.RefreshToken] = row.AccessToken
	}
	return cloneSession(row), nil
}

func (r *sessionRepo) FindByAccessToken(_ context.Context, accessToken string, now time.Time) (*sessions.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := r.s.sessionByAccess[accessToken]
	if !ok || row.Expired(now) {
		// expired rows are treated as absent, not removed (lazy expiry)
		return nil, nil
	}
	return cloneSession(row), nil
}

func (r *sessionRepo) FindAndRemoveByRefreshToken(_ context.Context, refreshToken string, now time.Time) (*sessions.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	accessToken, ok := r.s.sessionByRefresh[refreshToken]
	if !ok {
		return nil, nil
	}
	row := r.s.sessionByAccess[accessToken]
	if row.Expired(now) || row.RefreshExpired(now) {
		return nil, nil
	}

	delete(r.s.sessionByRefresh, refreshToken)
	delete(r.s.sessionByAccess, accessToken)
	return cloneSession(row), nil
}

func (r *sessionRepo) DeleteByAccessToken(_ context.Context, accessToken string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.sessionByAccess[accessToken]
	if !ok {
		return nil
	}
	if row.RefreshToken != "" {
		delete(r.s.sessionByRefresh, row.RefreshToken)
	}
	delete(r.s.sessionByAccess, accessToken)
	return nil
}

func (r *sessionRepo) DeleteByRefreshToken(_ context.Context, refreshToken string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	accessToken, ok := r.s.sessionByRefresh[refreshToken]
	if !ok {
		return nil
	}
	delete(r.s.sessionByRefresh, refreshToken)
	delete(r.s.sessionByAccess, accessToken)
	return nil
}

func (r *sessionRepo) FindByUUID(_ context.Context, uuid int64) ([]*sessions.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var found []*sessions.Session
	for _, row := range r.s.sessionByAccess {
		if row.UUID != nil && *row.UUID == uuid {
			found = append(found, cloneSession(row))
		}
	}
	return found, nil
}

func (r *sessionRepo) UpdateScopes(_ context.Context, accessToken string, refs []scopes.Ref) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.sessionByAccess[accessToken]
	if !ok {
		return nil
	}
	row.Scopes = append([]scopes.Ref(nil), refs...)
	return nil
}
