// Package dashboard is the full-screen watch view: queue size, drain
// status, the current topic and recent submissions.
package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/gitjot/internal/keys"
	"github.com/nhle/gitjot/internal/model"
	appsync "github.com/nhle/gitjot/internal/sync"
	"github.com/nhle/gitjot/internal/theme"
	"github.com/nhle/gitjot/internal/ui"
)

// Notes is the slice of notes.Service the dashboard reads.
type Notes interface {
	ObservePending(ctx context.Context) <-chan int
	ObserveHistory(ctx context.Context) <-chan []model.SubmissionRecord
	CurrentTopic(ctx context.Context) (string, bool)
}

// Scheduler is the slice of sync.Scheduler the dashboard drives.
type Scheduler interface {
	Trigger()
	GetStatus() appsync.Status
	WaitForResult() tea.Cmd
}

type pendingMsg struct {
	count int
	ch    <-chan int
}

type historyMsg struct {
	records []model.SubmissionRecord
	ch      <-chan []model.SubmissionRecord
}

type topicMsg struct {
	topic string
	ok    bool
}

// tickMsg refreshes relative times in the status line.
type tickMsg time.Time

// Model is the root model of the watch view.
type Model struct {
	ctx       context.Context
	notes     Notes
	scheduler Scheduler
	keys      *keys.KeyMap
	help      help.Model
	layout    ui.Layout
	ready     bool

	repo    string
	pending int
	history []model.SubmissionRecord
	topic   string
	status  appsync.Status
	now     time.Time
}

// New creates the dashboard for repo. The subscriptions it opens end when
// ctx is cancelled.
func New(ctx context.Context, notes Notes, scheduler Scheduler, repo string) Model {
	return Model{
		ctx:       ctx,
		notes:     notes,
		scheduler: scheduler,
		keys:      keys.DefaultKeyMap(),
		help:      help.New(),
		repo:      repo,
		status:    scheduler.GetStatus(),
		now:       time.Now(),
	}
}

// Init subscribes to the queue and history and loads the topic.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitPending(m.notes.ObservePending(m.ctx)),
		waitHistory(m.notes.ObserveHistory(m.ctx)),
		m.loadTopic(),
		m.scheduler.WaitForResult(),
		tick(),
	)
}

func waitPending(ch <-chan int) tea.Cmd {
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return pendingMsg{count: n, ch: ch}
	}
}

func waitHistory(ch <-chan []model.SubmissionRecord) tea.Cmd {
	return func() tea.Msg {
		recs, ok := <-ch
		if !ok {
			return nil
		}
		return historyMsg{records: recs, ch: ch}
	}
}

func (m Model) loadTopic() tea.Cmd {
	return func() tea.Msg {
		topic, ok := m.notes.CurrentTopic(m.ctx)
		return topicMsg{topic: topic, ok: ok}
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Update handles subscription messages and key presses.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.help.Width = msg.Width
		m.ready = true
		return m, nil

	case pendingMsg:
		m.pending = msg.count
		m.status = m.scheduler.GetStatus()
		return m, waitPending(msg.ch)

	case historyMsg:
		m.history = msg.records
		return m, waitHistory(msg.ch)

	case topicMsg:
		m.topic = ""
		if msg.ok {
			m.topic = msg.topic
		}
		return m, nil

	case appsync.RunResultMsg:
		m.status = m.scheduler.GetStatus()
		return m, m.scheduler.WaitForResult()

	case tickMsg:
		m.now = time.Time(msg)
		m.status = m.scheduler.GetStatus()
		return m, tick()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Sync):
			m.scheduler.Trigger()
			return m, nil
		case key.Matches(msg, m.keys.Topic):
			return m, m.loadTopic()
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
	}
	return m, nil
}

// View renders the dashboard inside the standard frame.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("gitjot  "+m.repo, m.syncStatus())
	statusBar := m.layout.RenderStatusBar(m.help.View(m.keys))
	return m.layout.RenderWithFrame(header, m.renderContent(), statusBar)
}

func (m Model) renderContent() string {
	var b strings.Builder

	topic := theme.HelpStyle.Render("none")
	if m.topic != "" {
		topic = m.topic
	}
	fmt.Fprintf(&b, "Topic:   %s\n", topic)
	fmt.Fprintf(&b, "Pending: %d\n", m.pending)
	if !m.status.LastSuccess.IsZero() {
		fmt.Fprintf(&b, "Synced:  %s\n", ago(m.now, m.status.LastSuccess))
	}
	b.WriteString("\n")

	if len(m.history) == 0 {
		b.WriteString(theme.HelpStyle.Render("No submissions yet."))
		return theme.PanelStyle.Render(b.String())
	}

	rows := max(m.layout.ContentHeight()-8, 1)
	for i, rec := range m.history {
		if i == rows {
			break
		}
		mark := "✓"
		if !rec.Success {
			mark = "✗"
		}
		mark = theme.OutcomeStyle(rec.Success).Render(mark)
		preview := strings.ReplaceAll(rec.Preview, "\n", " ")
		fmt.Fprintf(&b, "%s %s  %s\n", mark, rec.Timestamp.Local().Format("Jan 02 15:04"), preview)
	}
	return theme.PanelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

// syncStatus summarizes the drain state for the header.
func (m Model) syncStatus() string {
	state := m.status.State.String()
	label := state
	if m.status.State == appsync.RunBackoff && !m.status.NextRun.IsZero() {
		label = fmt.Sprintf("%s, retry in %s", state, until(m.now, m.status.NextRun))
	}
	return theme.RunStateStyle(state).Render(label)
}

func ago(now, t time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	}
	return fmt.Sprintf("%dh ago", int(d.Hours()))
}

func until(now, t time.Time) string {
	d := t.Sub(now).Round(time.Second)
	if d < 0 {
		return "0s"
	}
	return d.String()
}
