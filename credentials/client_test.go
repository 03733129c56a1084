package credentials_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	path  string
	query map[string][]string
	body  map[string]any
}

// newRecordingServer returns a test identity server that captures the last
// request and answers with the given JSON body.
func newRecordingServer(t *testing.T, response string) (*httptest.Server, *recordedRequest) {
	t.Helper()

	last := &recordedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		last.path = r.URL.Path
		last.query = r.URL.Query()
		last.body = map[string]any{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&last.body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return srv, last
}

func TestLogin(t *testing.T) {
	srv, last := newRecordingServer(t, `{"access_token":"tok1","uid":"u1","expires_in":3600}`)

	client, err := credentials.New(srv.URL)
	require.NoError(t, err)

	res, err := client.Login(context.Background(), "a@b.com", "pw")
	require.NoError(t, err)

	require.Equal(t, "/login", last.path)
	require.Equal(t, "a@b.com", last.body["username"])
	require.Equal(t, "pw", last.body["password"])

	token := res.Normalize()
	require.Equal(t, "tok1", token.AccessToken)
	require.Equal(t, "u1", token.UID)
	require.Equal(t, 3600, token.ExpiresIn)
}

func TestServerErrorReturnedAsData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid credentials"}`))
	}))
	t.Cleanup(srv.Close)

	client, err := credentials.New(srv.URL)
	require.NoError(t, err)

	res, err := client.Login(context.Background(), "a@b.com", "wrong")
	require.NoError(t, err)
	require.True(t, res.Failed())
	require.Equal(t, "invalid credentials", res.Error)
}

func TestSignupCarriesRedirect(t *testing.T) {
	srv, last := newRecordingServer(t, `{"success":"check your email"}`)

	client, err := credentials.New(srv.URL)
	require.NoError(t, err)

	_, err = client.Signup(context.Background(), "a@b.com", "pw", "https://app.example.com/account/login#activated")
	require.NoError(t, err)

	require.Equal(t, "/signup", last.path)
	require.Equal(t, "https://app.example.com/account/login#activated", last.query["redirect"][0])
}

func TestRequestResetCarriesRedirect(t *testing.T) {
	srv, last := newRecordingServer(t, `{"success":"email sent"}`)

	client, err := credentials.New(srv.URL)
	require.NoError(t, err)

	_, err = client.RequestReset(context.Background(), "a@b.com", "https://app.example.com/account/reset/hash")
	require.NoError(t, err)

	require.Equal(t, "/reset", last.path)
	require.Equal(t, "https://app.example.com/account/reset/hash", last.query["redirect"][0])
	require.Equal(t, "a@b.com", last.body["username"])
	require.NotContains(t, last.body, "password")
	require.NotContains(t, last.body, "hash")
}

func TestConfirmResetCarriesHashAndNoRedirect(t *testing.T) {
	srv, last := newRecordingServer(t, `{"success":"password changed"}`)

	client, err := credentials.New(srv.URL)
	require.NoError(t, err)

	_, err = client.ConfirmReset(context.Background(), "a@b.com", "newpw", "hash-123")
	require.NoError(t, err)

	require.Equal(t, "/reset", last.path)
	require.Empty(t, last.query["redirect"])
	require.Equal(t, "newpw", last.body["password"])
	require.Equal(t, "hash-123", last.body["hash"])
}

func TestRefreshBody(t *testing.T) {
	srv, last := newRecordingServer(t, `{"access_token":"tok2","expires_in":3600}`)

	client, err := credentials.New(srv.URL)
	require.NoError(t, err)

	_, err = client.Refresh(context.Background(), "u1", "ref1")
	require.NoError(t, err)

	require.Equal(t, "/refresh", last.path)
	require.Equal(t, "u1", last.body["uid"])
	require.Equal(t, "ref1", last.body["token"])
}

func TestDelete(t *testing.T) {
	srv, last := newRecordingServer(t, `{"success":"account removed"}`)

	client, err := credentials.New(srv.URL)
	require.NoError(t, err)

	_, err = client.Delete(context.Background(), "a@b.com", "pw")
	require.NoError(t, err)
	require.Equal(t, "/delete", last.path)
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client, err := credentials.New(srv.URL)
	require.NoError(t, err)

	_, err = client.Login(context.Background(), "a@b.com", "pw")
	require.Error(t, err)
}

func TestMalformedResponseIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>gateway timeout</html>"))
	}))
	t.Cleanup(srv.Close)

	client, err := credentials.New(srv.URL)
	require.NoError(t, err)

	_, err = client.Login(context.Background(), "a@b.com", "pw")
	require.Error(t, err)
}

func TestNewRequiresServer(t *testing.T) {
	_, err := credentials.New("  ")
	require.Error(t, err)
}
