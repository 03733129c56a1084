package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-auth-client/auth"
	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/jrsteele09/go-auth-client/oauth2"
	"github.com/jrsteele09/go-auth-client/session"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	c, err := config.New()
	if err != nil {
		return err
	}

	level := zerolog.InfoLevel
	if c.Debug {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	store, err := session.NewFileRepo(c.SessionFile)
	if err != nil {
		return err
	}

	flow, err := auth.New(auth.Config{
		Server:      c.Server,
		ClientID:    c.ClientID,
		RedirectURI: c.RedirectURI,
		Audience:    c.Audience,
		Scope:       c.Scope,
	}, store, auth.WithLogger(log))
	if err != nil {
		return err
	}

	cmd := &cli.Command{
		Name:  "authcli",
		Usage: "manage a session against the configured identity server",
		Description: `
Environment variables:
	AUTH_SERVER        (required) identity server base URL
	AUTH_CLIENT_ID     OAuth client identifier
	AUTH_REDIRECT_URI  redirect URI registered for this client
	AUTH_AUDIENCE      requested token audience
	AUTH_SCOPE         requested scope (default: openid)
	AUTH_SESSION_FILE  session file path (default: user config dir)
	AUTH_DEBUG         enable debug logging
`,
		Commands: []*cli.Command{
			loginCommand(flow),
			signupCommand(flow),
			resetCommand(flow),
			deleteCommand(flow),
			refreshCommand(flow),
			tokenCommand(flow),
			claimsCommand(flow),
			logoutCommand(flow),
		},
	}

	displayAppname(c.AppName)
	return cmd.Run(context.Background(), os.Args)
}

func displayAppname(appname string) {
	figure.NewFigure(appname, "cybermedium", true).Print()
	fmt.Println()
}

func loginCommand(flow *auth.Flow) *cli.Command {
	return &cli.Command{
		Name:      "login",
		Usage:     "log in with username and password",
		ArgsUsage: "<username> <password>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			res, err := flow.Login(ctx, cmd.Args().Get(0), cmd.Args().Get(1))
			if err != nil {
				return err
			}
			return report(res, "logged in")
		},
	}
}

func signupCommand(flow *auth.Flow) *cli.Command {
	return &cli.Command{
		Name:      "signup",
		Usage:     "register a new account",
		ArgsUsage: "<username> <password>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			res, err := flow.Signup(ctx, cmd.Args().Get(0), cmd.Args().Get(1))
			if err != nil {
				return err
			}
			return report(res, "signed up, check your email")
		},
	}
}

func resetCommand(flow *auth.Flow) *cli.Command {
	return &cli.Command{
		Name:      "reset",
		Usage:     "request a password reset email, or commit a new password with --link",
		ArgsUsage: "<username>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "link", Usage: "the emailed reset link (carries the #reset hash)"},
			&cli.StringFlag{Name: "password", Usage: "new password, required with --link"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			username := cmd.Args().Get(0)
			link := cmd.String("link")

			if link == "" {
				res, err := flow.Reset(ctx, username)
				if err != nil {
					return err
				}
				return report(res, "reset email sent")
			}

			if !flow.CaptureResetHash(link) {
				return errors.New("the link carries no #reset hash")
			}
			res, err := flow.ConfirmReset(ctx, username, cmd.String("password"))
			if err != nil {
				return err
			}
			return report(res, "password changed")
		},
	}
}

func deleteCommand(flow *auth.Flow) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "delete the account",
		ArgsUsage: "<username> <password>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			res, err := flow.Delete(ctx, cmd.Args().Get(0), cmd.Args().Get(1))
			if err != nil {
				return err
			}
			return report(res, "account deleted")
		},
	}
}

func refreshCommand(flow *auth.Flow) *cli.Command {
	return &cli.Command{
		Name:  "refresh",
		Usage: "exchange the stored refresh token for a new access token",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			res, err := flow.Refresh(ctx)
			if err != nil {
				return err
			}
			if res == nil {
				return errors.New("no stored refresh token, log in first")
			}
			return report(res, "session refreshed")
		},
	}
}

func tokenCommand(flow *auth.Flow) *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "print a usable access token, or the authorize URL to visit",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			token, err := flow.GetToken(ctx, false)

			var authErr *auth.AuthorizationRequiredError
			if errors.As(err, &authErr) {
				fmt.Println("No session. Visit to authorize:")
				fmt.Println(authErr.RedirectURL)
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
}

func claimsCommand(flow *auth.Flow) *cli.Command {
	return &cli.Command{
		Name:  "claims",
		Usage: "print the decoded access token payload",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			claims, err := flow.Claims()
			if err != nil {
				return err
			}
			for name, value := range claims {
				fmt.Printf("%s: %v\n", name, value)
			}
			return nil
		},
	}
}

func logoutCommand(flow *auth.Flow) *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "clear the stored session",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			flow.LogOut()
			fmt.Println("logged out")
			return nil
		},
	}
}

// report surfaces the identity server's verdict: its error or success message
// when present, otherwise the given fallback.
func report(res *oauth2.TokenResponse, fallback string) error {
	if res.Failed() {
		return errors.New(res.Error)
	}
	if res.Success != "" {
		fmt.Println(res.Success)
		return nil
	}
	fmt.Println(fallback)
	return nil
}
