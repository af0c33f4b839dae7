// Package devicewait shows the device user code and waits for the user
// to approve it in the browser.
package devicewait

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/gitjot/internal/auth"
	"github.com/nhle/gitjot/internal/github"
	"github.com/nhle/gitjot/internal/theme"
)

// ErrCancelled is returned by Result when the user left the view.
var ErrCancelled = errors.New("device authorization cancelled")

// grantMsg carries the outcome of the poll session.
type grantMsg struct {
	grant *auth.DeviceGrant
	err   error
}

// Model is the waiting screen of the device-code flow.
type Model struct {
	code    *github.DeviceCode
	session *auth.PollSession
	spinner spinner.Model
	quit    key.Binding

	grant     *auth.DeviceGrant
	err       error
	cancelled bool
}

// New creates the view for a running poll session.
func New(code *github.DeviceCode, session *auth.PollSession) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.HelpStyle

	return Model{
		code:    code,
		session: session,
		spinner: sp,
		quit: key.NewBinding(
			key.WithKeys("esc", "q", "ctrl+c"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// Init starts the spinner and waits for the poll result.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.wait)
}

func (m Model) wait() tea.Msg {
	grant, err := m.session.Result()
	return grantMsg{grant: grant, err: err}
}

// Update handles spinner ticks, the poll result and cancellation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case grantMsg:
		m.grant, m.err = msg.grant, msg.err
		return m, tea.Quit

	case tea.KeyMsg:
		if key.Matches(msg, m.quit) {
			// Cancel returns once the poll loop has stopped.
			m.session.Cancel()
			m.cancelled = true
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the user code and verification URL.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString("\nOpen " + theme.SuccessStyle.Render(m.code.VerificationURI) + " and enter:\n\n")
	b.WriteString(theme.CodeStyle.Render(m.code.UserCode) + "\n\n")

	switch {
	case m.cancelled:
		b.WriteString(theme.HelpStyle.Render("Cancelled.") + "\n")
	case m.err != nil:
		b.WriteString(theme.ErrorStyle.Render(m.err.Error()) + "\n")
	case m.grant != nil:
		b.WriteString(theme.SuccessStyle.Render(fmt.Sprintf("Approved as %s.", m.grant.User.Login)) + "\n")
	default:
		b.WriteString(m.spinner.View() + " Waiting for approval...\n")
		b.WriteString(theme.HelpStyle.Render(m.quit.Help().Key+" "+m.quit.Help().Desc) + "\n")
	}
	return b.String()
}

// Result returns the grant once the program has exited.
func (m Model) Result() (*auth.DeviceGrant, error) {
	if m.cancelled {
		return nil, ErrCancelled
	}
	return m.grant, m.err
}
