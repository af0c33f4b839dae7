// Command gitjot captures short notes into a GitHub repository, queueing
// them locally while offline.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/nhle/gitjot/internal/app"
	"github.com/nhle/gitjot/internal/logging"
	"github.com/nhle/gitjot/internal/model"
	"github.com/nhle/gitjot/internal/theme"
)

// command is one gitjot subcommand.
type command struct {
	usage   string
	summary string

	// fullScreen commands own the terminal, so logs go to the file only.
	fullScreen bool

	run func(ctx context.Context, a *app.App, out io.Writer, args []string) error
}

var commands = map[string]command{
	"login":    {usage: "login pat|device|web", summary: "sign in and choose the notes repository", run: runLogin},
	"callback": {usage: "callback <redirect-url> | --code C --state S", summary: "finish a browser sign-in", run: runCallback},
	"submit":   {usage: "submit [text... | -]", summary: "send a note, or queue it while offline", fullScreen: true, run: runSubmit},
	"sync":     {usage: "sync", summary: "deliver queued notes now", run: runSync},
	"watch":    {usage: "watch", summary: "dashboard with background sync", fullScreen: true, run: runWatch},
	"status":   {usage: "status", summary: "show account, repository and queue", run: runStatus},
	"history":  {usage: "history", summary: "list recent submissions", run: runHistory},
	"pending":  {usage: "pending", summary: "list queued notes", run: runPending},
	"topic":    {usage: "topic", summary: "print the current topic", run: runTopic},
	"ls":       {usage: "ls [dir]", summary: "list a repository directory", run: runList},
	"cat":      {usage: "cat <path>", summary: "print a repository file", run: runCat},
	"logout":   {usage: "logout [--wipe | --keep]", summary: "sign out, optionally deleting local data", fullScreen: true, run: runLogout},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, theme.ErrorStyle.Render("error: "+err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	global := pflag.NewFlagSet("gitjot", pflag.ContinueOnError)
	global.SetInterspersed(false)
	configPath := global.String("config", model.DefaultConfigPath(), "configuration file")
	verbose := global.BoolP("verbose", "v", false, "also log to stderr")
	global.Usage = func() { usage(out, global) }

	if err := global.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	rest := global.Args()
	if len(rest) == 0 || rest[0] == "help" {
		usage(out, global)
		return nil
	}

	cfg, err := model.LoadConfig(*configPath)
	if err != nil {
		return err
	}

	if rest[0] == "config" {
		return runConfig(cfg, *configPath, out, rest[1:])
	}

	cmd, ok := commands[rest[0]]
	if !ok {
		return fmt.Errorf("unknown command %q (see gitjot help)", rest[0])
	}

	logger, closeLog, err := logging.Setup(logging.Options{
		File:     cfg.Log.File,
		Level:    cfg.Log.Level,
		FileOnly: !*verbose || cmd.fullScreen,
	})
	if err != nil {
		return err
	}
	defer closeLog()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	logger.Debug("running command", "command", rest[0])
	return cmd.run(ctx, a, out, rest[1:])
}

func usage(out io.Writer, global *pflag.FlagSet) {
	fmt.Fprintln(out, theme.HeaderStyle.Render("gitjot")+" capture notes into a GitHub repository")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Usage: gitjot [flags] <command> [args]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Commands:")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c := commands[name]
		fmt.Fprintf(out, "  %-44s %s\n", c.usage, theme.HelpStyle.Render(c.summary))
	}
	fmt.Fprintf(out, "  %-44s %s\n", "config init|path", theme.HelpStyle.Render("write or locate the configuration file"))

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Flags:")
	fmt.Fprint(out, global.FlagUsages())
}
