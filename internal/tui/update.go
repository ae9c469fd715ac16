package tui

import (
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
)

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case DoneMsg:
		m.done = true
		m.doneErr = msg.Err
		m.refresh()
		return m, nil

	case TickMsg:
		m.refresh()
		return m, tickCmd()
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *DashboardModel) refresh() {
	m.rate = m.stats.GetRate()
	m.totals = m.stats.Totals()
	m.reporters = m.stats.GetTopReporters(10)
	m.frameTypes = m.stats.GetFrameTypeStats()
	m.protocols = m.stats.GetProtocolStats()
	m.recent = m.stats.GetRecent()
	m.alerts = m.stats.GetAlerts()

	rows := make([]table.Row, len(m.reporters))
	for i, stat := range m.reporters {
		rows[i] = table.Row{stat.Name, strconv.FormatInt(stat.Count, 10)}
	}
	m.table.SetRows(rows)
}
