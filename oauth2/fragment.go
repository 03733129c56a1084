package oauth2

import (
	"net/url"
	"strings"
)

// ResponseType represents the OAuth 2.0 response type requested from the
// authorization endpoint.
type ResponseType string

const (
	// TokenResponseType indicates the implicit flow: tokens are returned
	// directly in the redirect URL fragment, with no code exchange.
	// Example: /authorize?response_type=token&client_id=...
	TokenResponseType ResponseType = "token"
)

// ParseFragment decodes a callback URL fragment of the form
// "access_token=...&state=..." into a key/value map. A leading '#' is
// tolerated. Values are URL-decoded; a pair without '=' maps to the empty
// string. The empty fragment yields an empty map.
func ParseFragment(raw string) map[string]string {
	raw = strings.TrimPrefix(raw, "#")
	values := make(map[string]string)
	if raw == "" {
		return values
	}
	for _, item := range strings.Split(raw, "&") {
		key, value, _ := strings.Cut(item, "=")
		if key == "" {
			continue
		}
		if decoded, err := url.QueryUnescape(value); err == nil {
			value = decoded
		}
		values[key] = value
	}
	return values
}

// PasswordResetHash extracts the opaque hash from a password-reset deep link
// fragment of the literal form "#reset=<urlencoded-value>". It returns the
// decoded hash and true, or "" and false when the fragment is anything else.
func PasswordResetHash(raw string) (string, bool) {
	raw = strings.TrimPrefix(raw, "#")
	encoded, ok := strings.CutPrefix(raw, "reset=")
	if !ok {
		return "", false
	}
	decoded, err := url.QueryUnescape(encoded)
	if err != nil {
		return encoded, true
	}
	return decoded, true
}
