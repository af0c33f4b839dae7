package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"

	"github.com/nhle/gitjot/internal/app"
	"github.com/nhle/gitjot/internal/auth"
	"github.com/nhle/gitjot/internal/model"
	"github.com/nhle/gitjot/internal/theme"
	"github.com/nhle/gitjot/internal/ui/prompt"
)

func runLogout(ctx context.Context, a *app.App, out io.Writer, args []string) error {
	var wipe, keep bool
	fs := pflag.NewFlagSet("logout", pflag.ContinueOnError)
	fs.BoolVar(&wipe, "wipe", false, "delete queued notes and history")
	fs.BoolVar(&keep, "keep", false, "keep queued notes and history")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if wipe && keep {
		return errors.New("--wipe and --keep are exclusive")
	}

	if !wipe && !keep && isatty.IsTerminal(os.Stdin.Fd()) {
		if err := prompt.ConfirmWipe(a.Notes.PendingCount(), &wipe).Run(); err != nil {
			return err
		}
	}

	if err := a.Auth.SignOut(ctx, auth.SignOutOptions{WipeData: wipe}); err != nil {
		return err
	}

	msg := "Signed out."
	if wipe {
		msg = "Signed out and deleted local data."
	}
	fmt.Fprintln(out, theme.SuccessStyle.Render("✓")+" "+msg)
	return nil
}

func runConfig(cfg *model.AppConfig, path string, out io.Writer, args []string) error {
	sub := ""
	if len(args) > 0 {
		sub = args[0]
	}

	switch sub {
	case "path":
		fmt.Fprintln(out, path)
		return nil

	case "init":
		var force bool
		fs := pflag.NewFlagSet("config init", pflag.ContinueOnError)
		fs.BoolVar(&force, "force", false, "overwrite an existing file")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := model.SaveConfig(path, cfg); err != nil {
			return err
		}
		fmt.Fprintln(out, "Wrote "+path)
		return nil
	}
	return errors.New("usage: gitjot config init|path")
}
