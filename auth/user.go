package auth

import (
	"context"

	"github.com/jrsteele09/go-auth-client/oauth2"
	"github.com/jrsteele09/go-auth-client/session"
	"github.com/pkg/errors"
)

// Paths on the application origin used in redirect parameters. The login page
// looks for the "#activated" marker to surface an activation success message;
// the reset page consumes the emailed "#reset=<hash>" deep link.
const (
	loginActivatedPath = "/account/login#activated"
	resetHashPath      = "/account/reset/hash"
)

// Authenticated reports whether a non-expired access token is stored. Note
// that false does not imply logged-out: a usable refresh token may still
// produce a session silently.
func (f *Flow) Authenticated() bool {
	return f.store.Get(session.EntryToken) != ""
}

// Login exchanges credentials for tokens and, when the response carries an
// access token, commits it as the session. The response is returned either
// way; a server-reported failure lives in its Error field.
func (f *Flow) Login(ctx context.Context, username, password string) (*oauth2.TokenResponse, error) {
	res, err := f.creds.Login(ctx, username, password)
	if err != nil {
		return nil, errors.Wrap(err, "[Flow.Login] login request")
	}
	if !res.Failed() && res.Normalize().AccessToken != "" {
		f.setToken(res)
	}
	return res, nil
}

// Signup registers a new account. The activation email links back to the
// application's login page with the "#activated" marker.
func (f *Flow) Signup(ctx context.Context, username, password string) (*oauth2.TokenResponse, error) {
	root, err := f.cfg.domainRoot()
	if err != nil {
		return nil, errors.Wrap(err, "[Flow.Signup] build redirect")
	}
	res, err := f.creds.Signup(ctx, username, password, root+loginActivatedPath)
	if err != nil {
		return nil, errors.Wrap(err, "[Flow.Signup] signup request")
	}
	return res, nil
}

// Reset asks the identity server to email a password-reset link pointing at
// the application's reset-confirmation page.
func (f *Flow) Reset(ctx context.Context, username string) (*oauth2.TokenResponse, error) {
	root, err := f.cfg.domainRoot()
	if err != nil {
		return nil, errors.Wrap(err, "[Flow.Reset] build redirect")
	}
	res, err := f.creds.RequestReset(ctx, username, root+resetHashPath)
	if err != nil {
		return nil, errors.Wrap(err, "[Flow.Reset] reset request")
	}
	return res, nil
}

// ConfirmReset commits a new password using the hash captured from the reset
// deep link (see CaptureResetHash). On success the hash is discarded so it
// cannot be replayed.
func (f *Flow) ConfirmReset(ctx context.Context, username, password string) (*oauth2.TokenResponse, error) {
	f.mu.Lock()
	hash := f.resetHash
	f.mu.Unlock()
	if hash == "" {
		return nil, NoResetHashErr
	}

	res, err := f.creds.ConfirmReset(ctx, username, password, hash)
	if err != nil {
		return nil, errors.Wrap(err, "[Flow.ConfirmReset] reset request")
	}
	if res.Success != "" {
		f.mu.Lock()
		f.resetHash = ""
		f.mu.Unlock()
	}
	return res, nil
}

// Delete removes the account after re-proving the credentials. The stored
// session is left alone; it simply stops working.
func (f *Flow) Delete(ctx context.Context, username, password string) (*oauth2.TokenResponse, error) {
	res, err := f.creds.Delete(ctx, username, password)
	if err != nil {
		return nil, errors.Wrap(err, "[Flow.Delete] delete request")
	}
	return res, nil
}

// LogOut clears every stored session entry.
func (f *Flow) LogOut() {
	f.store.Set(session.EntryToken, "", 0)
	f.store.Set(session.EntryRefreshToken, "", 0)
	f.store.Set(session.EntryUID, "", 0)
	f.store.Set(session.EntryState, "", 0)
}
