package credentials

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-auth-client/oauth2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Client issues the direct credential operations against the identity server:
// login, signup, password reset, account deletion and token refresh. Every
// operation is a single POST of a JSON body to {server}/{operation}.
//
// The identity server reports its own failures inside the JSON body (an
// "error" field) with whatever status code it likes; those responses are
// returned unmodified as data. A Go error is returned only for transport
// failure or an unparseable body. The client never retries.
type Client struct {
	server     string
	httpClient *http.Client
	log        zerolog.Logger
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

// WithHTTPClient sets the underlying HTTP client (primarily for testing and
// for callers that need their own transport timeouts).
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger used for per-request debug logging.
func WithLogger(log zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// New creates a credential client for the given identity server base URL.
func New(server string, options ...ClientOption) (*Client, error) {
	if strings.TrimSpace(server) == "" {
		return nil, errors.New("[credentials.New] server base URL is required")
	}
	c := &Client{
		server:     strings.TrimRight(server, "/"),
		httpClient: http.DefaultClient,
		log:        zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
	Hash     string `json:"hash,omitempty"`
}

type refreshRequest struct {
	UID   string `json:"uid"`
	Token string `json:"token"`
}

// Login exchanges a username and password for token fields.
func (c *Client) Login(ctx context.Context, username, password string) (*oauth2.TokenResponse, error) {
	return c.post(ctx, "login", nil, credentialsRequest{Username: username, Password: password})
}

// Signup registers a new account. The redirect parameter points back at the
// login page with an "#activated" marker so it can surface a success message
// once the activation email has been followed.
func (c *Client) Signup(ctx context.Context, username, password, redirect string) (*oauth2.TokenResponse, error) {
	query := url.Values{"redirect": {redirect}}
	return c.post(ctx, "signup", query, credentialsRequest{Username: username, Password: password})
}

// RequestReset asks the server to send a password-reset email. The redirect
// parameter points at the page that consumes the emailed reset hash.
func (c *Client) RequestReset(ctx context.Context, username, redirect string) (*oauth2.TokenResponse, error) {
	query := url.Values{"redirect": {redirect}}
	return c.post(ctx, "reset", query, credentialsRequest{Username: username})
}

// ConfirmReset commits a new password using the hash captured from the reset
// deep link. No redirect parameter is sent on this leg.
func (c *Client) ConfirmReset(ctx context.Context, username, password, hash string) (*oauth2.TokenResponse, error) {
	return c.post(ctx, "reset", nil, credentialsRequest{Username: username, Password: password, Hash: hash})
}

// Delete removes the account after re-proving the credentials.
func (c *Client) Delete(ctx context.Context, username, password string) (*oauth2.TokenResponse, error) {
	return c.post(ctx, "delete", nil, credentialsRequest{Username: username, Password: password})
}

// Refresh exchanges a refresh token and uid for fresh token fields.
func (c *Client) Refresh(ctx context.Context, uid, token string) (*oauth2.TokenResponse, error) {
	return c.post(ctx, "refresh", nil, refreshRequest{UID: uid, Token: token})
}

func (c *Client) post(ctx context.Context, operation string, query url.Values, body any) (*oauth2.TokenResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrapf(err, "[Client.post] marshal %s request", operation)
	}

	endpoint := c.server + "/" + operation
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrapf(err, "[Client.post] build %s request", operation)
	}
	req.Header.Set("Content-Type", "application/json")

	requestID := uuid.New().String()
	c.log.Debug().Str("request_id", requestID).Str("operation", operation).Msg("credential request")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "[Client.post] %s request failed", operation)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "[Client.post] read %s response", operation)
	}

	var tr oauth2.TokenResponse
	if err := json.Unmarshal(data, &tr); err != nil {
		return nil, errors.Wrapf(err, "[Client.post] parse %s response", operation)
	}

	c.log.Debug().
		Str("request_id", requestID).
		Str("operation", operation).
		Int("status", res.StatusCode).
		Bool("server_error", tr.Error != "").
		Msg("credential response")

	return &tr, nil
}
