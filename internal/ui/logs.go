package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// logBoxHeight is the outer height of the log pane including its border and
// title.
func (m Model) logBoxHeight() int {
	// header + newline separators + command bar
	return maxInt(m.height-m.headerHeight()-1, LayoutMinLogHeight+3)
}

// updateLogViewport resizes the viewport and refreshes its content.
func (m *Model) updateLogViewport() {
	width := maxInt(m.width-4, 10)
	height := maxInt(m.logBoxHeight()-3, LayoutMinLogHeight)
	if m.logViewport.Width == 0 {
		m.logViewport = viewport.New(width, height)
	}
	m.logViewport.Width = width
	m.logViewport.Height = height
	m.logViewport.Style = lipgloss.NewStyle()

	m.logViewport.SetContent(m.renderLogContent())
	if m.follow {
		m.logViewport.GotoBottom()
	}
}

// renderLogContent renders the lines of the active log source.
func (m Model) renderLogContent() string {
	styles := m.theme.Styles()

	if m.logSource == logSourceDiagnostic {
		if m.diagErr != nil {
			return styles.DangerText.Render("Could not read diagnostic log: " + m.diagErr.Error())
		}
		lines := formatDiagnosticLines(m.diagLines)
		if len(lines) == 0 {
			return styles.FaintText.Render("Diagnostic log is empty.")
		}
		return strings.Join(lines, "\n")
	}

	if len(m.snapshot.Logs) == 0 {
		return styles.FaintText.Render("Waiting for output…")
	}
	rendered := make([]string, 0, len(m.snapshot.Logs))
	for _, line := range m.snapshot.Logs {
		rendered = append(rendered, m.styleOutputLine(line))
	}
	return strings.Join(rendered, "\n")
}

// styleOutputLine highlights launcher lines among container output.
func (m Model) styleOutputLine(line string) string {
	styles := m.theme.Styles()
	switch {
	case strings.HasPrefix(line, "$ "):
		return styles.AccentText.Render(line)
	case strings.HasPrefix(line, "Error: "):
		return styles.DangerText.Render(line)
	case strings.HasPrefix(line, "Got HTTP "), strings.HasPrefix(line, "Image updated"):
		return styles.SuccessText.Render(line)
	case strings.HasPrefix(line, "Image found locally"), strings.HasPrefix(line, "Checking for image updates"):
		return styles.InfoText.Render(line)
	default:
		return styles.Text.Render(line)
	}
}

// renderLogs renders the bordered log pane.
func (m Model) renderLogs() string {
	styles := m.theme.Styles()

	title := "Output · " + phaseLabel(m.snapshot.Phase)
	if m.logSource == logSourceDiagnostic {
		title = "Diagnostic log"
		if m.diagPath != "" {
			title += " · " + truncateMiddle(m.diagPath, maxInt(m.width-30, 20))
		}
	}
	if !m.follow {
		title += " (paused)"
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.BorderFocus)).
		Padding(0, 1).
		Width(maxInt(m.width-2, 12))

	content := styles.AccentText.Bold(true).Render(title) + "\n" + m.logViewport.View()
	return box.Render(content)
}

// handleLogsKey processes scrolling and follow keys for the log pane.
func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ToggleFollow):
		m.follow = !m.follow
		if m.follow {
			m.logViewport.GotoBottom()
			if m.logSource == logSourceDiagnostic {
				return m, readDiagnosticCmd(m.diagPath)
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Top):
		m.logViewport.GotoTop()
		m.follow = false
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		m.logViewport.GotoBottom()
		m.follow = true
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.logViewport.LineDown(1)
		m.follow = false
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.logViewport.LineUp(1)
		m.follow = false
		return m, nil

	case key.Matches(msg, m.keys.HalfPageDown):
		m.logViewport.HalfViewDown()
		m.follow = false
		return m, nil

	case key.Matches(msg, m.keys.HalfPageUp):
		m.logViewport.HalfViewUp()
		m.follow = false
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.logViewport.ViewDown()
		m.follow = false
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.logViewport.ViewUp()
		m.follow = false
		return m, nil
	}

	return m, nil
}
