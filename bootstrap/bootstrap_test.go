package bootstrap_test

import (
	"context"
	"testing"

	"github.com/noauthlabs/noauth-server/bootstrap"
	"github.com/noauthlabs/noauth-server/store/memory"
	"github.com/stretchr/testify/require"
)

func seedRepos(store *memory.Store) bootstrap.Repos {
	return bootstrap.Repos{
		Projects: store.Projects(),
		Clients:  store.Clients(),
		Scopes:   store.Scopes(),
	}
}

func testConfig() bootstrap.Config {
	return bootstrap.Config{
		Projects: []bootstrap.ProjectConfig{{
			ProjectID:                 "p1",
			Name:                      "Project One",
			DefaultRegistrationScopes: []string{"basic"},
			Clients: []bootstrap.ClientConfig{{
				ClientID: "c1",
				Secret:   "s1",
				Scopes: bootstrap.GrantScopesConfig{
					ClientCredentials: []bootstrap.ScopeConfig{{ScopeID: "public"}},
					// duplicate scope_id entries collapse to one row
					UserCredentials: []bootstrap.ScopeConfig{{ScopeID: "basic"}, {ScopeID: "basic"}},
				},
			}},
		}},
	}
}

func TestInitializeSeedsProjectClientAndScopes(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	require.NoError(t, bootstrap.Initialize(ctx, seedRepos(store), testConfig()))

	project, err := store.Projects().FindByID(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, project)
	require.Equal(t, []string{"basic"}, project.DefaultRegistrationScopes)

	client, err := store.Clients().FindByCredentials(ctx, "c1", "s1")
	require.NoError(t, err)
	require.NotNil(t, client)
	require.Equal(t, "p1", client.ProjectID)
	require.True(t, client.HasRefreshingToken) // defaults on
	require.Len(t, client.Scopes.ClientCredentials, 1)
	require.Len(t, client.Scopes.UserCredentials, 1)

	found, err := store.Scopes().FindByIDs(ctx, []string{"public", "basic"})
	require.NoError(t, err)
	require.Len(t, found, 2)
}

func TestInitializeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	repos := seedRepos(store)

	require.NoError(t, bootstrap.Initialize(ctx, repos, testConfig()))
	first, err := store.Clients().FindByID(ctx, "c1")
	require.NoError(t, err)

	// Re-seeding keeps the canonical scope refs stable.
	require.NoError(t, bootstrap.Initialize(ctx, repos, testConfig()))
	second, err := store.Clients().FindByID(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, first.Scopes, second.Scopes)
}

func TestInitializeRejectsIncompleteConfig(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	require.Error(t, bootstrap.Initialize(ctx, seedRepos(store), bootstrap.Config{}))

	require.Error(t, bootstrap.Initialize(ctx, seedRepos(store), bootstrap.Config{
		Projects: []bootstrap.ProjectConfig{{
			ProjectID: "p1",
			Clients:   []bootstrap.ClientConfig{{ClientID: "c1"}}, // missing secret
		}},
	}))
}
