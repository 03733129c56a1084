package auth

import (
	"context"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/pkg/errors"
)

// ServerFromIssuer resolves a Config.Server base URL for identity servers
// that publish OIDC discovery metadata. The advertised authorization endpoint
// must follow this client's "{server}/authorize" convention; anything else is
// rejected rather than guessed at.
func ServerFromIssuer(ctx context.Context, issuer string) (string, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return "", errors.Wrap(err, "[ServerFromIssuer] discover provider")
	}

	authURL := provider.Endpoint().AuthURL
	server, ok := strings.CutSuffix(authURL, "/authorize")
	if !ok {
		return "", errors.Errorf("[ServerFromIssuer] unsupported authorization endpoint %q", authURL)
	}
	return server, nil
}
