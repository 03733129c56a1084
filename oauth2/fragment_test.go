package oauth2_test

import (
	"testing"

	"github.com/jrsteele09/go-auth-client/oauth2"
	"github.com/stretchr/testify/require"
)

func TestParseFragment(t *testing.T) {
	values := oauth2.ParseFragment("#access_token=abc&state=XYZ123&expires_in=3600")

	require.Equal(t, "abc", values["access_token"])
	require.Equal(t, "XYZ123", values["state"])
	require.Equal(t, "3600", values["expires_in"])
}

func TestParseFragmentDecodesValues(t *testing.T) {
	values := oauth2.ParseFragment("redirect=https%3A%2F%2Fexample.com%2Fcallback&scope=openid%20profile")

	require.Equal(t, "https://example.com/callback", values["redirect"])
	require.Equal(t, "openid profile", values["scope"])
}

func TestParseFragmentEmpty(t *testing.T) {
	require.Empty(t, oauth2.ParseFragment(""))
	require.Empty(t, oauth2.ParseFragment("#"))
}

func TestParseFragmentValuelessPair(t *testing.T) {
	values := oauth2.ParseFragment("activated")
	require.Equal(t, "", values["activated"])
}

func TestPasswordResetHash(t *testing.T) {
	hash, ok := oauth2.PasswordResetHash("#reset=abc%2F123%3D")
	require.True(t, ok)
	require.Equal(t, "abc/123=", hash)
}

func TestPasswordResetHashAbsent(t *testing.T) {
	_, ok := oauth2.PasswordResetHash("#access_token=abc")
	require.False(t, ok)

	_, ok = oauth2.PasswordResetHash("")
	require.False(t, ok)
}
