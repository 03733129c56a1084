package auth

import (
	"context"

	xoauth2 "golang.org/x/oauth2"
)

// TokenSource adapts the flow to golang.org/x/oauth2 so the session can back
// any oauth2-aware HTTP client. The source never redirects: when no usable
// session exists it fails with the identity server's message, and the caller
// decides whether to start an authorization round-trip.
func (f *Flow) TokenSource(ctx context.Context) xoauth2.TokenSource {
	return &tokenSource{ctx: ctx, flow: f}
}

type tokenSource struct {
	ctx  context.Context
	flow *Flow
}

func (ts *tokenSource) Token() (*xoauth2.Token, error) {
	access, err := ts.flow.GetToken(ts.ctx, true)
	if err != nil {
		return nil, err
	}
	return &xoauth2.Token{AccessToken: access, TokenType: "Bearer"}, nil
}
