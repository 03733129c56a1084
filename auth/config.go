package auth

import (
	"net/url"
	"strings"

	"github.com/jrsteele09/go-auth-client/oauth2"
	"github.com/pkg/errors"
)

// Config holds the client-side configuration for one identity server.
// Immutable after construction: the flow never writes to it, and everything
// derived from the current request (state, nonce, reset hash) lives in the
// flow's own mutable state instead.
type Config struct {
	// Server is the identity server base URL, e.g. "https://id.example.com".
	// Required. Never serialized into the authorize query.
	Server string

	// ClientID identifies this application to the identity server.
	ClientID string

	// RedirectURI is where the authorize redirect returns to. Its origin is
	// also the root for the signup/reset redirect parameters.
	RedirectURI string

	// Audience is the API identifier the token should be minted for.
	Audience string

	// ResponseType defaults to "token" (implicit flow).
	ResponseType oauth2.ResponseType

	// Scope defaults to "openid".
	Scope string
}

func (c Config) withDefaults() Config {
	if c.ResponseType == "" {
		c.ResponseType = oauth2.TokenResponseType
	}
	if c.Scope == "" {
		c.Scope = "openid"
	}
	c.Server = strings.TrimRight(c.Server, "/")
	return c
}

func (c Config) validate() error {
	if strings.TrimSpace(c.Server) == "" {
		return errors.New("[Config.validate] Server is required")
	}
	return nil
}

// authorizeQuery serializes the authorize request parameters. The field list
// is explicit and ordered: adding a Config field never leaks it into the URL,
// and fields without a value are skipped.
func (c Config) authorizeQuery(nonce, state string) string {
	pairs := []struct{ key, value string }{
		{"client_id", c.ClientID},
		{"redirect_uri", c.RedirectURI},
		{"audience", c.Audience},
		{"response_type", string(c.ResponseType)},
		{"scope", c.Scope},
		{"nonce", nonce},
		{"state", state},
	}

	var qs strings.Builder
	for _, p := range pairs {
		if p.value == "" {
			continue
		}
		if qs.Len() > 0 {
			qs.WriteByte('&')
		}
		qs.WriteString(p.key)
		qs.WriteByte('=')
		qs.WriteString(url.QueryEscape(p.value))
	}
	return qs.String()
}

// domainRoot returns the scheme://host origin of the redirect URI, used to
// build the redirect parameters for signup and reset emails.
func (c Config) domainRoot() (string, error) {
	u, err := url.Parse(c.RedirectURI)
	if err != nil {
		return "", errors.Wrap(err, "[Config.domainRoot] parse RedirectURI")
	}
	if u.Scheme == "" || u.Host == "" {
		return "", errors.New("[Config.domainRoot] RedirectURI must be absolute")
	}
	return u.Scheme + "://" + u.Host, nil
}
