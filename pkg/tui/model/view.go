package model

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// chromeHeight is the number of rows used by the title and status bar.
const chromeHeight = 2

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	endedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	ruleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// View renders the TUI.
func (a App) View() string {
	if !a.ready {
		return "loading..."
	}

	body := a.viewport.View()
	if len(a.lines) == 0 {
		body = dimStyle.Render("waiting for log output...")
	}

	return lipgloss.JoinVertical(lipgloss.Left, a.renderTitle(), body, a.renderStatusBar())
}

func (a App) renderTitle() string {
	title := titleStyle.Render(" jstern ") + dimStyle.Render(a.source)
	counts := fmt.Sprintf("  records:%d text:%d", a.records, a.passthrough)
	if !a.following {
		counts += " " + dimStyle.Render("[PAUSED]")
	}
	if a.ended {
		counts += " " + endedStyle.Render("[ENDED]")
	}
	return title + counts
}

func (a App) renderStatusBar() string {
	if a.mode == ModeSearch {
		return a.search.View() + "  " + helpStyle.Render("enter:apply esc:cancel")
	}

	left := a.statusMsg
	if q := a.search.Value(); q != "" {
		left += "  search: " + q
	}
	if a.ended {
		left += fmt.Sprintf("  (filtered:%d suppressed:%d)", a.stats.Filtered, a.stats.Suppressed)
	}
	right := "j/k:scroll space:follow g/G:top/bottom /:search c:clear q:quit"

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return helpStyle.Render(left + strings.Repeat(" ", gap) + right)
}
