package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"pnmptrace/internal/analysis"
)

const recentLines = 10

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFF7DB")).
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Margin(0, 1)

	alertStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F5F")).
			Bold(true)
)

func (m DashboardModel) View() string {
	title := titleStyle.Render(fmt.Sprintf("pnmptrace - Reading: %s", m.source))

	t := m.totals
	counts := fmt.Sprintf("Rate: %.2f reports/s\nDisplayed: %d\nFiltered: %d\nDropped: %d\nIgnored: %d",
		m.rate, t.Displayed, t.Filtered, t.Dropped, t.Ignored)
	countBox := infoStyle.Render(counts)

	frameBox := infoStyle.Render("Frame types:\n" + countLines(m.frameTypes, 5))
	protoBox := infoStyle.Render("Protocols:\n" + countLines(m.protocols, 5))
	reporterBox := infoStyle.Render("Top Reporters\n" + m.table.View())

	row1 := lipgloss.JoinHorizontal(lipgloss.Top, countBox, frameBox, protoBox)
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, reporterBox, infoStyle.Render("Recent frames:\n"+recentView(m.recent)))
	body := lipgloss.JoinVertical(lipgloss.Left, title, row1, row2, infoStyle.Render("Alerts:\n"+alertView(m.alerts)))

	footer := "\nPress q to quit."
	if m.done {
		status := "Input ended."
		if m.doneErr != nil {
			status = "Input failed: " + m.doneErr.Error()
		}
		footer = "\n" + status + " Press q to quit."
	}
	return body + footer
}

func countLines(stats []analysis.CountStat, limit int) string {
	if len(stats) == 0 {
		return "Waiting for data..."
	}
	if len(stats) > limit {
		stats = stats[:limit]
	}

	lines := make([]string, len(stats))
	for i, s := range stats {
		lines[i] = fmt.Sprintf("%s: %d", s.Name, s.Count)
	}
	return strings.Join(lines, "\n")
}

func recentView(entries []analysis.TraceEntry) string {
	if len(entries) == 0 {
		return "Waiting for data..."
	}
	if len(entries) > recentLines {
		entries = entries[len(entries)-recentLines:]
	}

	lines := make([]string, len(entries))
	for i, e := range entries {
		line := fmt.Sprintf("%s %s(%s) %s>%s<%s>",
			e.Timestamp.UTC().Format("15:04:05"), e.Reporter, e.Port, e.Source, e.Destination, e.FrameType)
		if e.Protocol != "" {
			line += " " + e.Protocol
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

func alertView(alerts []analysis.Alert) string {
	if len(alerts) == 0 {
		return "None"
	}

	lines := make([]string, len(alerts))
	for i, a := range alerts {
		lines[i] = fmt.Sprintf("%s %s %s",
			a.Timestamp.UTC().Format("15:04:05"), alertStyle.Render(string(a.Type)), a.Message)
	}
	return strings.Join(lines, "\n")
}
