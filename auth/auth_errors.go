package auth

import "errors"

var (
	NotAuthenticatedErr = errors.New("no access token in session")
	NoResetHashErr      = errors.New("no password reset hash captured")
)

// AuthorizationRequiredError is returned by GetToken when no stored token
// exists and a silent refresh could not produce one. RedirectURL is the
// identity server's authorize endpoint, with the CSRF state already persisted;
// the caller must treat the redirect as terminal and send the user agent
// there.
type AuthorizationRequiredError struct {
	RedirectURL string
}

func (e *AuthorizationRequiredError) Error() string {
	return "authorization required: redirect to " + e.RedirectURL
}

// ServerError carries a failure message reported by the identity server in an
// otherwise well-formed response. It is produced only where a caller asked for
// the server's verdict instead of a redirect.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return "identity server rejected the request"
	}
	return e.Message
}
