package oauth2

import "strconv"

// SentinelExpirySeconds is the access-token lifetime assumed when the identity
// server does not declare one. One second means "treat as already expired":
// the next GetToken falls through to a refresh instead of serving a token of
// unknown age.
const SentinelExpirySeconds = 1

// TokenResponse is the JSON body returned by the identity server's /login and
// /refresh endpoints. Two generations of servers are in the wild and they name
// the token fields differently, so both families are accepted and Normalize
// picks whichever is present.
type TokenResponse struct {
	// AccessToken is the bearer token presented to protected resources.
	AccessToken string `json:"access_token,omitempty"`

	// IDToken is the older servers' name for the access token field.
	IDToken string `json:"idToken,omitempty"`

	// RefreshToken is the long-lived credential exchanged for new access
	// tokens without re-prompting the user.
	RefreshToken string `json:"refresh_token,omitempty"`

	// LegacyRefreshToken is the older servers' name for the refresh token.
	LegacyRefreshToken string `json:"refreshToken,omitempty"`

	// UID identifies the user the tokens belong to; required for refresh.
	UID string `json:"uid,omitempty"`

	// ExpiresIn is the access-token lifetime in seconds.
	ExpiresIn int `json:"expires_in,omitempty"`

	// LegacyExpiresIn is the older servers' name for the lifetime field.
	LegacyExpiresIn int `json:"accessTokenExpirationSeconds,omitempty"`

	// Error carries the identity server's failure message. A response with a
	// non-empty Error is data, not a transport failure; callers branch on it.
	Error string `json:"error,omitempty"`

	// Success carries the identity server's confirmation message for
	// operations that do not return tokens (signup, reset).
	Success string `json:"success,omitempty"`
}

// Token is the canonical view of a token response after field-name
// normalization.
type Token struct {
	AccessToken  string
	RefreshToken string
	UID          string
	ExpiresIn    int // seconds
}

// Normalize resolves the two field-name families into a canonical Token.
// Missing token fields default to the empty string; a missing lifetime
// defaults to SentinelExpirySeconds.
func (tr *TokenResponse) Normalize() Token {
	t := Token{ExpiresIn: SentinelExpirySeconds}
	if tr == nil {
		return t
	}
	t.AccessToken = firstNonEmpty(tr.AccessToken, tr.IDToken)
	t.RefreshToken = firstNonEmpty(tr.RefreshToken, tr.LegacyRefreshToken)
	t.UID = tr.UID
	if tr.ExpiresIn > 0 {
		t.ExpiresIn = tr.ExpiresIn
	} else if tr.LegacyExpiresIn > 0 {
		t.ExpiresIn = tr.LegacyExpiresIn
	}
	return t
}

// Failed reports whether the response is unusable as a session: absent
// entirely or carrying a server-reported error.
func (tr *TokenResponse) Failed() bool {
	return tr == nil || tr.Error != ""
}

// TokenResponseFromValues builds a TokenResponse from decoded key/value pairs,
// typically a parsed callback fragment.
func TokenResponseFromValues(values map[string]string) *TokenResponse {
	tr := &TokenResponse{
		AccessToken:        values["access_token"],
		IDToken:            values["idToken"],
		RefreshToken:       values["refresh_token"],
		LegacyRefreshToken: values["refreshToken"],
		UID:                values["uid"],
		Error:              values["error"],
	}
	if n, err := strconv.Atoi(values["expires_in"]); err == nil {
		tr.ExpiresIn = n
	}
	if n, err := strconv.Atoi(values["accessTokenExpirationSeconds"]); err == nil {
		tr.LegacyExpiresIn = n
	}
	return tr
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
