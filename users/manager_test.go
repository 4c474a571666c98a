package users_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/noauthlabs/noauth-server/internal/autherr"
	"github.com/noauthlabs/noauth-server/projects"
	"github.com/noauthlabs/noauth-server/scopes"
	"github.com/noauthlabs/noauth-server/store/memory"
	"github.com/noauthlabs/noauth-server/users"
	"github.com/stretchr/testify/require"
)

const (
	testProjectID = "p1"
	testLogin     = "bob"
	testPassword  = "secret"
)

// recordingResyncer captures every resync the manager triggers.
type recordingResyncer struct {
	calls []resyncCall
}

type resyncCall struct {
	uuid int64
	refs []scopes.Ref
}

func (r *recordingResyncer) ResyncScopesForUser(_ context.Context, uuid int64, refs []scopes.Ref) error {
	r.calls = append(r.calls, resyncCall{uuid: uuid, refs: refs})
	return nil
}

type managerFixture struct {
	store   *memory.Store
	manager *users.Manager
	resync  *recordingResyncer
}

func setupManagerFixture(t *testing.T) *managerFixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()

	project, err := store.Projects().Upsert(ctx, &projects.Project{
		ID:                        testProjectID,
		DefaultRegistrationScopes: []string{"basic"},
	})
	require.NoError(t, err)

	for _, id := range []string{"basic", "admin", "billing"} {
		_, err := store.Scopes().Upsert(ctx, &scopes.Scope{ID: id, ProjectID: testProjectID})
		require.NoError(t, err)
	}

	resync := &recordingResyncer{}
	manager, err := users.NewManager(project, store.Users(), store.Scopes(), resync)
	require.NoError(t, err)

	return &managerFixture{store: store, manager: manager, resync: resync}
}

func (f *managerFixture) createUser(t *testing.T, scopeIDs ...string) *users.User {
	t.Helper()
	user, err := f.manager.CreateUser(context.Background(), users.NewUserConfig{
		Login:    testLogin,
		Password: testPassword,
		ScopeIDs: scopeIDs,
	})
	require.NoError(t, err)
	return user
}

func requireStatus(t *testing.T, err error, status int) {
	t.Helper()
	var authError *autherr.Error
	require.ErrorAs(t, err, &authError)
	require.Equal(t, status, authError.Status)
}

func TestCreateUserStoresDigestNotPassword(t *testing.T) {
	f := setupManagerFixture(t)

	user := f.createUser(t, "basic")
	require.NotEmpty(t, user.Password)
	require.NotEqual(t, testPassword, user.Password)
	require.Len(t, user.Scopes, 1)

	found, err := f.manager.GetByLoginAndPassword(context.Background(), testLogin, testPassword)
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, user.UUID, found.UUID)
}

func TestCreateUserDefaultsToRegistrationScopes(t *testing.T) {
	f := setupManagerFixture(t)
	ctx := context.Background()

	user := f.createUser(t)

	ids, err := scopes.IDs(ctx, f.store.Scopes(), user.Scopes)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"basic"}, ids)
}

func TestCreateUserDuplicateLoginConflicts(t *testing.T) {
	f := setupManagerFixture(t)

	f.createUser(t, "basic")
	_, err := f.manager.CreateUser(context.Background(), users.NewUserConfig{
		Login:    testLogin,
		Password: "other",
	})
	requireStatus(t, err, http.StatusConflict)
}

func TestChangeLoginRehashesDigest(t *testing.T) {
	f := setupManagerFixture(t)
	ctx := context.Background()

	user := f.createUser(t, "basic")

	_, err := f.manager.ChangeLogin(ctx, user.UUID, "robert", testPassword)
	require.NoError(t, err)

	// The digest is salted by login, so the old pair no longer matches
	// and the new one does.
	old, err := f.manager.GetByLoginAndPassword(ctx, testLogin, testPassword)
	require.NoError(t, err)
	require.Nil(t, old)

	renamed, err := f.manager.GetByLoginAndPassword(ctx, "robert", testPassword)
	require.NoError(t, err)
	require.NotNil(t, renamed)
	require.Equal(t, user.UUID, renamed.UUID)
}

func TestChangeLoginRequiresPassword(t *testing.T) {
	f := setupManagerFixture(t)
	ctx := context.Background()

	user := f.createUser(t, "basic")

	_, err := f.manager.ChangeLogin(ctx, user.UUID, "robert", "")
	requireStatus(t, err, http.StatusBadRequest)

	// Without the rehash the old credentials still work.
	found, err := f.manager.GetByLoginAndPassword(ctx, testLogin, testPassword)
	require.NoError(t, err)
	require.NotNil(t, found)
}

func TestChangePassword(t *testing.T) {
	f := setupManagerFixture(t)
	ctx := context.Background()

	user := f.createUser(t, "basic")
	_, err := f.manager.ChangePassword(ctx, user.UUID, "rotated")
	require.NoError(t, err)

	stale, err := f.manager.GetByLoginAndPassword(ctx, testLogin, testPassword)
	require.NoError(t, err)
	require.Nil(t, stale)

	fresh, err := f.manager.GetByLoginAndPassword(ctx, testLogin, "rotated")
	require.NoError(t, err)
	require.NotNil(t, fresh)
}

func TestAddScopesTriggersSessionResync(t *testing.T) {
	f := setupManagerFixture(t)
	ctx := context.Background()

	user := f.createUser(t, "basic")
	require.Empty(t, f.resync.calls)

	updated, err := f.manager.AddScopes(ctx, user.UUID, []string{"admin"})
	require.NoError(t, err)
	require.Len(t, updated.Scopes, 2)

	require.Len(t, f.resync.calls, 1)
	require.Equal(t, user.UUID, f.resync.calls[0].uuid)
	require.ElementsMatch(t, updated.Scopes, f.resync.calls[0].refs)
}

func TestRemoveScopesTriggersSessionResync(t *testing.T) {
	f := setupManagerFixture(t)
	ctx := context.Background()

	user := f.createUser(t, "basic", "admin")

	updated, err := f.manager.RemoveScopes(ctx, user.UUID, []string{"admin"})
	require.NoError(t, err)

	ids, err := scopes.IDs(ctx, f.store.Scopes(), updated.Scopes)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"basic"}, ids)

	require.Len(t, f.resync.calls, 1)
	require.ElementsMatch(t, updated.Scopes, f.resync.calls[0].refs)
}

func TestLinkSocial(t *testing.T) {
	f := setupManagerFixture(t)
	ctx := context.Background()

	user := f.createUser(t, "basic")
	profile := &users.SocialProfile{SubjectID: "g-123", Name: "Bob", Email: "bob@example.com"}

	linked, err := f.manager.LinkSocial(ctx, user.UUID, profile, "google")
	require.NoError(t, err)
	require.Equal(t, "g-123", linked.Social["google"].SubjectID)

	// Re-linking the same subject to the same user is fine.
	_, err = f.manager.LinkSocial(ctx, user.UUID, profile, "google")
	require.NoError(t, err)

	// Linking it to a different user is a conflict.
	other, err := f.manager.CreateUser(ctx, users.NewUserConfig{Login: "carol", Password: "pw"})
	require.NoError(t, err)
	_, err = f.manager.LinkSocial(ctx, other.UUID, profile, "google")
	requireStatus(t, err, http.StatusConflict)
}

func TestGetByUUIDNotFound(t *testing.T) {
	f := setupManagerFixture(t)

	_, err := f.manager.GetByUUID(context.Background(), 404)
	requireStatus(t, err, http.StatusNotFound)
}

func TestDeleteByUUID(t *testing.T) {
	f := setupManagerFixture(t)
	ctx := context.Background()

	user := f.createUser(t, "basic")

	deleted, err := f.manager.DeleteByUUID(ctx, user.UUID)
	require.NoError(t, err)
	require.True(t, deleted)

	deleted, err = f.manager.DeleteByUUID(ctx, user.UUID)
	require.NoError(t, err)
	require.False(t, deleted)

	// The freed login is reusable.
	_, err = f.manager.CreateUser(ctx, users.NewUserConfig{Login: testLogin, Password: testPassword})
	require.NoError(t, err)
}
