package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/gitjot/internal/app"
	"github.com/nhle/gitjot/internal/model"
	"github.com/nhle/gitjot/internal/notes"
	appsync "github.com/nhle/gitjot/internal/sync"
	"github.com/nhle/gitjot/internal/theme"
	"github.com/nhle/gitjot/internal/ui/dashboard"
	"github.com/nhle/gitjot/internal/ui/prompt"
)

// topicTimeout bounds the topic lookup shown above the compose form.
const topicTimeout = 5 * time.Second

func runSubmit(ctx context.Context, a *app.App, out io.Writer, args []string) error {
	text, err := noteText(ctx, a, args, os.Stdin)
	if err != nil {
		return err
	}

	res, err := a.Notes.Submit(ctx, text)
	if err != nil {
		return err
	}

	switch res {
	case notes.Sent:
		fmt.Fprintln(out, theme.SuccessStyle.Render("✓")+" Sent.")
	case notes.Queued:
		fmt.Fprintf(out, "%s Offline, note queued (%d pending). Run gitjot sync later.\n",
			theme.WarnStyle.Render("…"), a.Notes.PendingCount())
	}
	return nil
}

// noteText takes the note from args, from stdin when args is "-", or from
// the compose form when args is empty.
func noteText(ctx context.Context, a *app.App, args []string, stdin io.Reader) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	tctx, cancel := context.WithTimeout(ctx, topicTimeout)
	topic, _ := a.Notes.CurrentTopic(tctx)
	cancel()

	var text string
	if err := prompt.Compose(&text, topic).Run(); err != nil {
		return "", err
	}
	return text, nil
}

func runSync(ctx context.Context, a *app.App, out io.Writer, _ []string) error {
	before := a.Notes.PendingCount()
	outcome := a.Scheduler.RunNow(ctx)
	left := a.Notes.PendingCount()

	if outcome == appsync.Success {
		fmt.Fprintf(out, "%s Delivered %d note(s).\n", theme.SuccessStyle.Render("✓"), before-left)
		return nil
	}
	return fmt.Errorf("sync incomplete: %d note(s) still pending", left)
}

func runWatch(ctx context.Context, a *app.App, _ io.Writer, _ []string) error {
	if !a.Auth.SignedIn() {
		return notes.ErrNotAuthenticated
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.Scheduler.Start(ctx)
	defer a.Scheduler.Stop()

	m := dashboard.New(ctx, a.Notes, a.Scheduler, a.Repo())
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func runStatus(_ context.Context, a *app.App, out io.Writer, _ []string) error {
	cred := a.Credentials.Get()
	if cred == nil {
		fmt.Fprintln(out, "Not signed in. Run gitjot login pat|device|web.")
	} else {
		fmt.Fprintf(out, "Account:    %s (%s)\n", cred.Username, cred.AuthType)
		fmt.Fprintf(out, "Repository: %s\n", cred.RepoFullName())
	}

	fmt.Fprintf(out, "Pending:    %d\n", a.Notes.PendingCount())
	if recs := a.Notes.RecentSubmissions(); len(recs) > 0 {
		fmt.Fprintf(out, "Last note:  %s\n", formatRecord(recs[0]))
	}
	return nil
}

func runHistory(_ context.Context, a *app.App, out io.Writer, _ []string) error {
	recs := a.Notes.RecentSubmissions()
	if len(recs) == 0 {
		fmt.Fprintln(out, theme.HelpStyle.Render("No submissions yet."))
		return nil
	}
	for _, rec := range recs {
		fmt.Fprintln(out, formatRecord(rec))
	}
	return nil
}

func formatRecord(rec model.SubmissionRecord) string {
	mark := "✓"
	if !rec.Success {
		mark = "✗"
	}
	return fmt.Sprintf("%s %s  %s",
		theme.OutcomeStyle(rec.Success).Render(mark),
		rec.Timestamp.Local().Format("2006-01-02 15:04"),
		strings.ReplaceAll(rec.Preview, "\n", " "))
}

func runPending(ctx context.Context, a *app.App, out io.Writer, _ []string) error {
	pending, err := a.Notes.PendingNotes(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		fmt.Fprintln(out, theme.HelpStyle.Render("Queue is empty."))
		return nil
	}
	for _, n := range pending {
		fmt.Fprintf(out, "%s  %-9s %s\n", n.Filename, n.Status, model.Preview(strings.ReplaceAll(n.Text, "\n", " ")))
	}
	return nil
}

func runTopic(ctx context.Context, a *app.App, out io.Writer, _ []string) error {
	topic, ok := a.Notes.CurrentTopic(ctx)
	if !ok {
		fmt.Fprintln(out, theme.HelpStyle.Render("No current topic."))
		return nil
	}
	fmt.Fprintln(out, topic)
	return nil
}

func runList(ctx context.Context, a *app.App, out io.Writer, args []string) error {
	dir := ""
	if len(args) > 0 {
		dir = strings.Trim(args[0], "/")
	}

	entries, err := a.Notes.ListDirectory(ctx, dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		name := e.Name
		if e.Type == "dir" {
			name = theme.DirStyle.Render(name + "/")
		}
		fmt.Fprintln(out, name)
	}
	return nil
}

func runCat(ctx context.Context, a *app.App, out io.Writer, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: gitjot cat <path>")
	}
	data, err := a.Notes.ReadFile(ctx, strings.TrimPrefix(args[0], "/"))
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}
