package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/jrsteele09/go-auth-client/oauth2"
	"github.com/jrsteele09/go-auth-client/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const stateLength = 32

// Flow orchestrates the redirect-based authorization flow against one
// identity server: it builds the authorize request, validates the CSRF state
// on return, persists the resulting session, and drives token refresh.
//
// The session itself (token, refresh token, uid) is owned exclusively by the
// session store; Flow holds only transient flow state (the captured
// password-reset hash and the in-flight refresh bookkeeping).
type Flow struct {
	cfg   Config
	store session.Repo
	creds *credentials.Client
	log   zerolog.Logger

	httpClient        *http.Client
	randomString      func() (string, error)
	sentinelBoundsTTL bool

	mu              sync.Mutex
	resetHash       string
	refreshInflight *refreshCall
}

type refreshCall struct {
	done chan struct{}
	res  *oauth2.TokenResponse
	err  error
}

// Option defines a function type to modify the Flow instance.
type Option func(*Flow)

// WithLogger sets the logger used by the flow and its credential client.
func WithLogger(log zerolog.Logger) Option {
	return func(f *Flow) {
		f.log = log
	}
}

// WithHTTPClient sets the HTTP client used for credential operations.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(f *Flow) {
		f.httpClient = httpClient
	}
}

// WithRandomString sets the state/nonce generator (primarily for testing).
// The default reads 32 bytes from crypto/rand.
func WithRandomString(randomFunc func() (string, error)) Option {
	return func(f *Flow) {
		f.randomString = randomFunc
	}
}

// WithSentinelRefreshTTL controls what happens to the refresh-token and uid
// max-ages when the identity server omits the access-token lifetime. When
// bound is true (the default, matching historical behaviour) the one-second
// sentinel applies to them too, so such a session cannot outlive a second at
// all. Pass false to keep the 30-day refresh TTL regardless.
func WithSentinelRefreshTTL(bound bool) Option {
	return func(f *Flow) {
		f.sentinelBoundsTTL = bound
	}
}

// New creates a Flow for the given configuration and session store.
func New(cfg Config, store session.Repo, options ...Option) (*Flow, error) {
	if err := cfg.validate(); err != nil {
		return nil, errors.Wrap(err, "[auth.New] invalid configuration")
	}
	if store == nil {
		return nil, errors.New("[auth.New] session store is required")
	}

	f := &Flow{
		cfg:               cfg.withDefaults(),
		store:             store,
		log:               zerolog.Nop(),
		httpClient:        http.DefaultClient,
		randomString:      randomString,
		sentinelBoundsTTL: true,
	}
	for _, opt := range options {
		opt(f)
	}

	creds, err := credentials.New(f.cfg.Server,
		credentials.WithHTTPClient(f.httpClient),
		credentials.WithLogger(f.log),
	)
	if err != nil {
		return nil, errors.Wrap(err, "[auth.New] credential client")
	}
	f.creds = creds

	return f, nil
}

// CaptureResetHash reads a password-reset deep link ("#reset=<hash>") from the
// given URL and keeps the decoded hash for a later ConfirmReset. It reports
// whether a hash was captured. The URL is not modified; the hash is discarded
// once consumed.
func (f *Flow) CaptureResetHash(currentURL string) bool {
	u, err := url.Parse(currentURL)
	if err != nil {
		return false
	}
	hash, ok := oauth2.PasswordResetHash(u.EscapedFragment())
	if !ok {
		return false
	}
	f.mu.Lock()
	f.resetHash = hash
	f.mu.Unlock()
	return true
}

// Authorize begins a new redirect-based authorization round-trip. It
// generates a fresh nonce and CSRF state, persists the state with the default
// max-age, and returns the authorize URL the user agent must visit. The
// caller must treat the redirect as terminal: once issued it cannot be
// cancelled, and any in-flight flow state is overwritten.
func (f *Flow) Authorize() (string, error) {
	nonce, err := f.randomString()
	if err != nil {
		return "", errors.Wrap(err, "[Flow.Authorize] generate nonce")
	}
	state, err := f.randomString()
	if err != nil {
		return "", errors.Wrap(err, "[Flow.Authorize] generate state")
	}

	f.store.Set(session.EntryState, state, session.DefaultTTL)

	redirect := f.cfg.Server + "/authorize?" + f.cfg.authorizeQuery(nonce, state)
	f.log.Debug().Str("redirect", redirect).Msg("authorization redirect")
	return redirect, nil
}

// ValidateCallback processes the identity server's redirect back to us. When
// a CSRF state entry is persisted and the URL fragment carries the same state
// value, the fragment's token fields are committed as the new session, the
// state entry is cleared, and the returned URL has the fragment stripped.
//
// Any mismatch or missing state is a silent rejection: nothing is stored, no
// error is surfaced, and the input URL is returned unchanged. An
// attacker-supplied callback cannot force a session commit without the
// pre-shared state value.
func (f *Flow) ValidateCallback(currentURL string) (string, bool) {
	stored := f.store.Get(session.EntryState)
	if stored == "" {
		return currentURL, false
	}

	u, err := url.Parse(currentURL)
	if err != nil {
		return currentURL, false
	}

	values := oauth2.ParseFragment(u.EscapedFragment())
	if values["state"] != stored {
		f.log.Debug().Msg("callback state mismatch, rejecting")
		return currentURL, false
	}

	f.store.Set(session.EntryState, "", 0)
	f.setToken(oauth2.TokenResponseFromValues(values))

	u.Fragment = ""
	return u.String(), true
}

// Refresh exchanges the stored refresh token and uid for fresh token fields.
// When either is absent it returns (nil, nil) without a network call.
// Otherwise the response is committed to the store unconditionally, even when
// the identity server reports an error; callers must inspect the returned
// response's Error field.
//
// At most one refresh is in flight at a time: concurrent callers block on the
// first call's outcome instead of issuing their own request.
func (f *Flow) Refresh(ctx context.Context) (*oauth2.TokenResponse, error) {
	f.mu.Lock()
	if call := f.refreshInflight; call != nil {
		f.mu.Unlock()
		select {
		case <-call.done:
			return call.res, call.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	token := f.store.Get(session.EntryRefreshToken)
	uid := f.store.Get(session.EntryUID)
	if token == "" || uid == "" {
		f.mu.Unlock()
		return nil, nil
	}

	call := &refreshCall{done: make(chan struct{})}
	f.refreshInflight = call
	f.mu.Unlock()

	res, err := f.creds.Refresh(ctx, uid, token)
	if err == nil {
		f.setToken(res)
	}

	call.res, call.err = res, err
	f.mu.Lock()
	f.refreshInflight = nil
	f.mu.Unlock()
	close(call.done)

	return res, err
}

// GetToken is the single entry point consumers use to obtain a usable access
// token. It returns the stored token when present and unexpired. Otherwise it
// attempts a silent refresh; when that fails, the zero token is returned
// together with either an *AuthorizationRequiredError carrying the authorize
// redirect (stayOnPage false) or a *ServerError carrying the identity
// server's message (stayOnPage true).
func (f *Flow) GetToken(ctx context.Context, stayOnPage bool) (string, error) {
	if token := f.store.Get(session.EntryToken); token != "" {
		return token, nil
	}

	res, err := f.Refresh(ctx)
	if err != nil {
		return "", errors.Wrap(err, "[Flow.GetToken] refresh")
	}
	if res.Failed() {
		if stayOnPage {
			serverErr := &ServerError{}
			if res != nil {
				serverErr.Message = res.Error
			}
			return "", serverErr
		}
		redirect, err := f.Authorize()
		if err != nil {
			return "", errors.Wrap(err, "[Flow.GetToken] authorize")
		}
		return "", &AuthorizationRequiredError{RedirectURL: redirect}
	}

	return f.store.Get(session.EntryToken), nil
}

// setToken normalizes a token response and commits it as the session. The
// access-token max-age is the server-declared lifetime (one second when
// undeclared, so the entry is treated as already expired); the refresh token
// and uid get thirty days, unless the sentinel lifetime binds them too (see
// WithSentinelRefreshTTL).
func (f *Flow) setToken(res *oauth2.TokenResponse) {
	token := res.Normalize()

	maxAge := time.Duration(token.ExpiresIn) * time.Second
	refreshAge := session.RefreshTTL
	if f.sentinelBoundsTTL && token.ExpiresIn == oauth2.SentinelExpirySeconds {
		refreshAge = maxAge
	}

	f.store.Set(session.EntryToken, token.AccessToken, maxAge)
	f.store.Set(session.EntryRefreshToken, token.RefreshToken, refreshAge)
	f.store.Set(session.EntryUID, token.UID, refreshAge)
}

func randomString() (string, error) {
	bytes := make([]byte, stateLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", errors.Wrap(err, "randomString rand.Read")
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
