package facebook_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/noauthlabs/noauth-server/providers"
	"github.com/noauthlabs/noauth-server/providers/facebook"
	"github.com/stretchr/testify/require"
)

func newGraphStub(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "id,name,email", r.URL.Query().Get("fields"))

		switch r.Header.Get("Authorization") {
		case "Bearer good-token":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"fb-1","name":"Alice","email":"alice@example.com"}`))
		case "Bearer anonymous-token":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"name":"No Subject"}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
}

func TestFetchProfile(t *testing.T) {
	stub := newGraphStub(t)
	defer stub.Close()

	provider := facebook.New(facebook.WithBaseURL(stub.URL))
	require.Equal(t, "facebook", provider.Name())

	profile, err := provider.FetchProfile(context.Background(), "good-token")
	require.NoError(t, err)
	require.Equal(t, "facebook", profile.Provider)
	require.Equal(t, "fb-1", profile.SubjectID)
	require.Equal(t, "Alice", profile.Name)
	require.Equal(t, "alice@example.com", profile.Email)
}

func TestFetchProfileRejectedToken(t *testing.T) {
	stub := newGraphStub(t)
	defer stub.Close()

	provider := facebook.New(facebook.WithBaseURL(stub.URL))

	_, err := provider.FetchProfile(context.Background(), "bad-token")
	var providerErr *providers.Error
	require.ErrorAs(t, err, &providerErr)
	require.Equal(t, http.StatusUnauthorized, providerErr.StatusCode)
	require.True(t, providerErr.IsClientError())
}

func TestFetchProfileWithoutSubjectID(t *testing.T) {
	stub := newGraphStub(t)
	defer stub.Close()

	provider := facebook.New(facebook.WithBaseURL(stub.URL))

	_, err := provider.FetchProfile(context.Background(), "anonymous-token")
	var providerErr *providers.Error
	require.ErrorAs(t, err, &providerErr)
	require.Equal(t, http.StatusBadRequest, providerErr.StatusCode)
}
