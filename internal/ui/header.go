package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/superplanehq/superplane-desktop/internal/launcher"
)

// headerHeight is the number of lines renderHeader produces.
func (m Model) headerHeight() int {
	return len(strings.Split(m.currentLogo(), "\n")) + 2
}

func (m Model) currentLogo() string {
	if m.width < LayoutCompactWidth {
		return wordmark(m.appName)
	}
	return m.logo
}

// renderHeader renders the logo followed by the phase line and the detail
// line (error, running URL or notice).
func (m Model) renderHeader() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Logo.Render(m.currentLogo()))
	b.WriteString("\n")
	b.WriteString(m.renderPhaseLine())
	b.WriteString("\n")
	b.WriteString(m.renderDetailLine())
	return b.String()
}

func (m Model) renderPhaseLine() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	snap := m.snapshot

	phase := snap.Phase.String()
	parts := []string{styles.PhaseStyle(phase).Render(strings.ToUpper(phase))}

	if !snap.Phase.Terminal() && snap.Phase != launcher.PhaseIdle {
		parts = append(parts, bg.Render(m.spinner.View(), styles.AccentText))
	}

	status := snap.Status
	if status == "" {
		status = "Starting…"
	}
	parts = append(parts, bg.Render(truncate(status, maxInt(m.width-40, 20)), styles.Text))

	if snap.Attempts > 1 {
		parts = append(parts, bg.Render(fmt.Sprintf("attempt %d", snap.Attempts), styles.FaintText))
	}
	if !snap.LastUpdated.IsZero() {
		parts = append(parts, bg.Render(snap.LastUpdated.Format("15:04:05"), styles.FaintText))
	}

	return styles.Header.Width(m.width).Render(strings.Join(parts, bg.Spaces(2)))
}

func (m Model) renderDetailLine() string {
	styles := m.theme.Styles()
	snap := m.snapshot

	var parts []string
	switch {
	case snap.Failed() && snap.Error != "":
		parts = append(parts,
			styles.DangerText.Render(snap.Error),
			styles.MutedText.Render("press r to retry"))
	case snap.Phase == launcher.PhaseReady && snap.AppURL != "":
		parts = append(parts, styles.SuccessText.Render(fmt.Sprintf("%s is running at %s", m.appName, snap.AppURL)))
		parts = append(parts, m.renderHealth())
	case m.retrying:
		parts = append(parts, styles.WarningText.Render("Retrying…"))
	}
	if m.notice != "" {
		parts = append(parts, styles.WarningText.Render(m.notice))
	}

	return lipgloss.NewStyle().Padding(0, 1).Width(m.width).Render(strings.Join(parts, "  "))
}

// renderHealth summarizes the background health probes of a running app.
func (m Model) renderHealth() string {
	styles := m.theme.Styles()
	snap := m.snapshot
	switch {
	case snap.IsOffline():
		msg := "not responding"
		if snap.LastProbeError != nil {
			msg += ": " + classifyProbeError(snap.LastProbeError)
		}
		return styles.DangerText.Render(msg)
	case snap.LastProbe > 0:
		return styles.FaintText.Render(fmt.Sprintf("HTTP %d", snap.LastProbe))
	default:
		return ""
	}
}

// classifyProbeError shortens transport errors for the header.
func classifyProbeError(err error) string {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "connection refused"):
		return "connection refused"
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return "timed out"
	case strings.Contains(msg, "eof"), strings.Contains(msg, "reset"):
		return "connection dropped"
	default:
		return truncate(err.Error(), 40)
	}
}

// renderCommandBar renders the command hints bar.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.snapshot.Phase {
	case launcher.PhaseFailed:
		commands = append(commands, cmd{"r", "Retry"})
	case launcher.PhaseReady:
		commands = append(commands, cmd{"o", "Open"}, cmd{"r", "Restart"})
	}

	source := "Diagnostic"
	if m.logSource == logSourceDiagnostic {
		source = "Output"
	}
	follow := "Pause"
	if !m.follow {
		follow = "Follow"
	}
	commands = append(commands,
		cmd{"l", source},
		cmd{"Space", follow},
		cmd{"?", "Help"},
		cmd{"q", "Quit"},
	)

	colon := bg.Sep(":")
	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Footer.Width(m.width).Render(strings.Join(segments, bg.Spaces(2)))
}

// phaseLabel renders a phase for titles, e.g. "Waiting For Ready".
func phaseLabel(p launcher.Phase) string {
	return titleCase(p.String())
}
