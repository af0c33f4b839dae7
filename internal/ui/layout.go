// Package ui holds the Bubble Tea views of the gitjot CLI.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/gitjot/internal/theme"
)

// Layout frames a full-screen view: a one-line header, the content and a
// one-line status bar.
type Layout struct {
	Width  int
	Height int
}

// NewLayout creates a Layout for a terminal of the given size.
func NewLayout(width, height int) Layout {
	return Layout{Width: width, Height: height}
}

// ContentHeight returns the rows left between header and status bar.
func (l Layout) ContentHeight() int {
	return max(l.Height-2, 0)
}

// bar renders left and right text across the full width in style.
func (l Layout) bar(style lipgloss.Style, left, right string) string {
	leftR := style.Render(left)
	rightR := ""
	if right != "" {
		rightR = style.Render(right)
	}

	gap := max(l.Width-lipgloss.Width(leftR)-lipgloss.Width(rightR), 0)
	filler := lipgloss.NewStyle().
		Width(gap).
		Background(style.GetBackground()).
		Render("")

	return lipgloss.JoinHorizontal(lipgloss.Top, leftR, filler, rightR)
}

// RenderHeader renders the title bar with a status on the right.
func (l Layout) RenderHeader(title, status string) string {
	return l.bar(theme.HeaderStyle, title, status)
}

// RenderStatusBar renders the bottom bar with keyboard hints.
func (l Layout) RenderStatusBar(hints string) string {
	return l.bar(theme.StatusBarStyle, hints, "")
}

// RenderWithFrame stacks header, content and status bar, padding the
// content so the status bar sits on the last line.
func (l Layout) RenderWithFrame(header, content, statusBar string) string {
	if pad := l.ContentHeight() - lipgloss.Height(content); pad > 0 {
		content += strings.Repeat("\n", pad)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}
