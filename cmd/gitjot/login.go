package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/nhle/gitjot/internal/app"
	"github.com/nhle/gitjot/internal/auth"
	"github.com/nhle/gitjot/internal/model"
	"github.com/nhle/gitjot/internal/theme"
	"github.com/nhle/gitjot/internal/ui/devicewait"
	"github.com/nhle/gitjot/internal/ui/prompt"
)

var errNoClientID = errors.New("github.client_id is not configured (set it in the config file or GITJOT_GITHUB_CLIENT_ID)")

func runLogin(ctx context.Context, a *app.App, out io.Writer, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: gitjot login pat|device|web")
	}

	var (
		cred *model.Credential
		err  error
	)
	switch auth.Method(args[0]) {
	case auth.MethodPAT:
		cred, err = loginPAT(ctx, a, args[1:])
	case auth.MethodDevice:
		cred, err = loginDevice(ctx, a)
	case auth.MethodWeb:
		return loginWeb(ctx, a, out)
	default:
		return fmt.Errorf("unknown sign-in method %q", args[0])
	}
	if err != nil {
		return err
	}

	printSignedIn(out, cred)
	return nil
}

func loginPAT(ctx context.Context, a *app.App, args []string) (*model.Credential, error) {
	var in auth.Input
	fs := pflag.NewFlagSet("login pat", pflag.ContinueOnError)
	fs.StringVar(&in.Token, "token", "", "personal access token")
	fs.StringVar(&in.Repo, "repo", "", "owner/repo or repository URL")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if in.Token == "" || in.Repo == "" {
		if err := prompt.PAT(&in).Run(); err != nil {
			return nil, err
		}
	}
	return a.Auth.PAT().Authorize(ctx, in)
}

func loginDevice(ctx context.Context, a *app.App) (*model.Credential, error) {
	if a.Config.GitHub.ClientID == "" {
		return nil, errNoClientID
	}

	flow := a.Auth.Device()
	code, err := flow.RequestCode(ctx)
	if err != nil {
		return nil, err
	}

	session := flow.StartPolling(ctx, code)
	final, err := tea.NewProgram(devicewait.New(code, session), tea.WithContext(ctx)).Run()
	if err != nil {
		session.Cancel()
		return nil, err
	}

	grant, err := final.(devicewait.Model).Result()
	if err != nil {
		return nil, err
	}

	repo, err := prompt.SelectRepo(grant.Repos)
	if err != nil {
		return nil, err
	}
	return flow.Confirm(grant, repo)
}

func loginWeb(ctx context.Context, a *app.App, out io.Writer) error {
	if a.Config.GitHub.ClientID == "" {
		return errNoClientID
	}

	link, err := a.Auth.Web().Begin(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Open this link in your browser and approve access:")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "  "+theme.SuccessStyle.Render(link))
	fmt.Fprintln(out)
	fmt.Fprintln(out, theme.HelpStyle.Render("Then run: gitjot callback '<redirect-url>'"))
	return nil
}

func runCallback(ctx context.Context, a *app.App, out io.Writer, args []string) error {
	var code, state string
	fs := pflag.NewFlagSet("callback", pflag.ContinueOnError)
	fs.StringVar(&code, "code", "", "authorization code")
	fs.StringVar(&state, "state", "", "state parameter")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if code == "" {
		if fs.NArg() != 1 {
			return errors.New("usage: gitjot callback <redirect-url> | --code C --state S")
		}
		var err error
		if code, state, err = parseCallback(fs.Arg(0)); err != nil {
			return err
		}
	}

	cred, err := a.Auth.Web().Complete(ctx, code, state)
	if err != nil {
		return err
	}
	printSignedIn(out, cred)
	return nil
}

// parseCallback extracts code and state from the redirect URL.
func parseCallback(raw string) (code, state string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("parsing redirect URL: %w", err)
	}

	q := u.Query()
	if e := q.Get("error"); e != "" {
		if desc := q.Get("error_description"); desc != "" {
			return "", "", fmt.Errorf("authorization failed: %s: %s", e, desc)
		}
		return "", "", fmt.Errorf("authorization failed: %s", e)
	}

	code = q.Get("code")
	if code == "" {
		return "", "", errors.New("redirect URL has no code parameter")
	}
	return code, q.Get("state"), nil
}

func printSignedIn(out io.Writer, cred *model.Credential) {
	fmt.Fprintf(out, "%s Signed in as %s. Notes go to %s.\n",
		theme.SuccessStyle.Render("✓"), cred.Username, cred.RepoFullName())
}
