package scopes_test

import (
	"context"
	"testing"

	"github.com/noauthlabs/noauth-server/scopes"
	"github.com/noauthlabs/noauth-server/store/memory"
	"github.com/stretchr/testify/require"
)

func seedCatalog(t *testing.T, ids ...string) (*memory.Store, map[string]scopes.Ref) {
	t.Helper()
	store := memory.New()
	refs := make(map[string]scopes.Ref, len(ids))
	for _, id := range ids {
		scope, err := store.Scopes().Upsert(context.Background(), &scopes.Scope{ID: id})
		require.NoError(t, err)
		refs[id] = scope.Ref
	}
	return store, refs
}

func TestResolveDeduplicatesAndDropsUnknown(t *testing.T) {
	store, refs := seedCatalog(t, "public", "loggedin")

	resolved, err := scopes.Resolve(context.Background(), store.Scopes(),
		[]string{"public", "public", "loggedin", "unknown", ""})
	require.NoError(t, err)
	require.ElementsMatch(t, []scopes.Ref{refs["public"], refs["loggedin"]}, resolved)
}

func TestResolveEmptyInput(t *testing.T) {
	store, _ := seedCatalog(t)
	resolved, err := scopes.Resolve(context.Background(), store.Scopes(), nil)
	require.NoError(t, err)
	require.Empty(t, resolved)
}

func TestMergeUnion(t *testing.T) {
	a := []scopes.Ref{"r1", "r2"}
	b := []scopes.Ref{"r2", "r3"}
	require.Equal(t, []scopes.Ref{"r1", "r2", "r3"}, scopes.Merge(a, b))
}

func TestMergeDeduplicatesWithinOneSide(t *testing.T) {
	require.Equal(t, []scopes.Ref{"r1", "r2"},
		scopes.Merge([]scopes.Ref{"r1", "r1"}, []scopes.Ref{"r2", "r2"}))
}

func TestIntersect(t *testing.T) {
	a := []scopes.Ref{"r1", "r2", "r3"}
	b := []scopes.Ref{"r2", "r3", "r4"}
	require.Equal(t, []scopes.Ref{"r2", "r3"}, scopes.Intersect(a, b))
	require.Empty(t, scopes.Intersect(a, []scopes.Ref{"r9"}))
}

func TestIDsRoundTrip(t *testing.T) {
	store, refs := seedCatalog(t, "public", "premium")

	ids, err := scopes.IDs(context.Background(), store.Scopes(),
		[]scopes.Ref{refs["public"], refs["premium"], "gone"})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"public", "premium"}, ids)
}

func TestHasAny(t *testing.T) {
	held := []string{"loggedin", "public"}
	require.True(t, scopes.HasAny(held, []string{"loggedin", "premium"}))
	require.False(t, scopes.HasAny(held, []string{"premium"}))
	require.False(t, scopes.HasAny(held, nil))
}
