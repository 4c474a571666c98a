package memory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/noauthlabs/noauth-server/sessions"
	"github.com/noauthlabs/noauth-server/store/memory"
	"github.com/noauthlabs/noauth-server/users"
	"github.com/stretchr/testify/require"
)

func TestUserInsertAllocatesSequence(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	first, err := store.Users().Insert(ctx, &users.User{ProjectID: "p1", Login: "a"})
	require.NoError(t, err)
	second, err := store.Users().Insert(ctx, &users.User{ProjectID: "p2", Login: "b"})
	require.NoError(t, err)

	// One sequence shared across projects.
	require.Equal(t, int64(1), first.UUID)
	require.Equal(t, int64(2), second.UUID)
}

func TestUserInsertDuplicateLogin(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	_, err := store.Users().Insert(ctx, &users.User{ProjectID: "p1", Login: "alice"})
	require.NoError(t, err)
	_, err = store.Users().Insert(ctx, &users.User{ProjectID: "p1", Login: "alice"})
	require.ErrorIs(t, err, users.ErrDuplicateLogin)

	// The same login under a different project is fine.
	_, err = store.Users().Insert(ctx, &users.User{ProjectID: "p2", Login: "alice"})
	require.NoError(t, err)
}

func TestFindByAccessTokenLazyExpiry(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	now := time.Now()

	_, err := store.Sessions().Insert(ctx, &sessions.Session{
		AccessToken:      "at1",
		ATExpirationTime: now.Add(-time.Minute),
		IssuedBy:         "c1",
		Grant:            sessions.GrantClientCredentials,
	})
	require.NoError(t, err)

	found, err := store.Sessions().FindByAccessToken(ctx, "at1", now)
	require.NoError(t, err)
	require.Nil(t, found)

	// The expired row is still there, just invisible.
	found, err = store.Sessions().FindByAccessToken(ctx, "at1", now.Add(-2*time.Minute))
	require.NoError(t, err)
	require.NotNil(t, found)
}

func TestFindAndRemoveByRefreshTokenSingleWinner(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	now := time.Now()

	_, err := store.Sessions().Insert(ctx, &sessions.Session{
		AccessToken:      "at1",
		RefreshToken:     "rt1",
		ATExpirationTime: now.Add(time.Hour),
		IssuedBy:         "c1",
		Grant:            sessions.GrantUserCredentials,
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	winners := make(chan *sessions.Session, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			session, err := store.Sessions().FindAndRemoveByRefreshToken(ctx, "rt1", now)
			require.NoError(t, err)
			if session != nil {
				winners <- session
			}
		}()
	}
	wg.Wait()
	close(winners)

	require.Len(t, winners, 1)
}

func TestFindAndRemoveByRefreshTokenHonorsRefreshExpiry(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	now := time.Now()

	_, err := store.Sessions().Insert(ctx, &sessions.Session{
		AccessToken:      "at1",
		RefreshToken:     "rt1",
		ATExpirationTime: now.Add(time.Hour),
		RTExpirationTime: now.Add(-time.Minute),
		IssuedBy:         "c1",
		Grant:            sessions.GrantUserCredentials,
	})
	require.NoError(t, err)

	session, err := store.Sessions().FindAndRemoveByRefreshToken(ctx, "rt1", now)
	require.NoError(t, err)
	require.Nil(t, session)

	// The access token itself is still live.
	found, err := store.Sessions().FindByAccessToken(ctx, "at1", now)
	require.NoError(t, err)
	require.NotNil(t, found)
}

func TestDeleteByAccessTokenIdempotent(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	_, err := store.Sessions().Insert(ctx, &sessions.Session{
		AccessToken: "at1", RefreshToken: "rt1", IssuedBy: "c1", Grant: sessions.GrantUserCredentials,
	})
	require.NoError(t, err)

	require.NoError(t, store.Sessions().DeleteByAccessToken(ctx, "at1"))
	require.NoError(t, store.Sessions().DeleteByAccessToken(ctx, "at1"))
	require.NoError(t, store.Sessions().DeleteByAccessToken(ctx, "never-issued"))

	// The refresh index is cleaned up with it.
	session, err := store.Sessions().FindAndRemoveByRefreshToken(ctx, "rt1", time.Now())
	require.NoError(t, err)
	require.Nil(t, session)
}
