package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pnmptrace/internal/analysis"
)

// TickMsg triggers a refresh from the statistics.
type TickMsg time.Time

// DoneMsg reports that the trace pipeline has stopped.
type DoneMsg struct {
	Err error
}

// DashboardModel shows the live session statistics while the trace
// pipeline runs in the background.
type DashboardModel struct {
	stats  *analysis.TraceStats
	source string

	rate       float64
	totals     analysis.Totals
	reporters  []analysis.CountStat
	frameTypes []analysis.CountStat
	protocols  []analysis.CountStat
	recent     []analysis.TraceEntry
	alerts     []analysis.Alert
	table      table.Model

	done    bool
	doneErr error
}

// NewDashboardModel returns a model reading stats. source names the
// input in the title bar.
func NewDashboardModel(stats *analysis.TraceStats, source string) DashboardModel {
	columns := []table.Column{
		{Title: "Reporter", Width: 12},
		{Title: "Reports", Width: 10},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(false),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return DashboardModel{
		stats:  stats,
		source: source,
		table:  t,
	}
}

func (m DashboardModel) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
