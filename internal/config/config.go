package config

import (
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

// Config is the CLI's environment-driven configuration.
type Config struct {
	// Server is the identity server base URL.
	Server string `env:"AUTH_SERVER,required"`

	// ClientID identifies this application to the identity server.
	ClientID string `env:"AUTH_CLIENT_ID"`

	// RedirectURI is where the authorize redirect returns to; its origin is
	// also used for signup/reset redirect parameters.
	RedirectURI string `env:"AUTH_REDIRECT_URI"`

	Audience string `env:"AUTH_AUDIENCE"`
	Scope    string `env:"AUTH_SCOPE" envDefault:"openid"`

	// SessionFile is where the session entries are persisted. Defaults to
	// <user config dir>/go-auth-client/session.json.
	SessionFile string `env:"AUTH_SESSION_FILE"`

	Debug   bool   `env:"AUTH_DEBUG"`
	AppName string `env:"AUTH_APP_NAME" envDefault:"Go Auth Client"`
}

// New reads the configuration from the environment.
func New() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, errors.Wrap(err, "[config.New] parse environment")
	}
	if c.SessionFile == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return Config{}, errors.Wrap(err, "[config.New] resolve config dir")
		}
		c.SessionFile = filepath.Join(dir, "go-auth-client", "session.json")
	}
	return c, nil
}
