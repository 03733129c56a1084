package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-auth-client/session"
	"github.com/pkg/errors"
)

// Claims decodes the payload of the stored access token without verifying its
// signature. The token is opaque to this client; verification is the resource
// server's job. Returns NotAuthenticatedErr when no token is stored.
func (f *Flow) Claims() (jwt.MapClaims, error) {
	token := f.store.Get(session.EntryToken)
	if token == "" {
		return nil, NotAuthenticatedErr
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, errors.Wrap(err, "[Flow.Claims] parse access token")
	}
	return claims, nil
}
