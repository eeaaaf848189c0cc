package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

var helpSectionTitles = []string{"Launch", "Logs", "Scrolling", "General"}

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()

	var b strings.Builder

	b.WriteString(styles.Text.Bold(true).Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	b.WriteString("\n\n")

	groups := m.keys.FullHelp()
	for i, group := range groups {
		title := "More"
		if i < len(helpSectionTitles) {
			title = helpSectionTitles[i]
		}
		b.WriteString(styles.AccentText.Bold(true).Render(title))
		b.WriteString("\n")

		for _, binding := range group {
			b.WriteString(m.renderHelpItem(binding))
			b.WriteString("\n")
		}

		b.WriteString("\n")
	}

	b.WriteString(styles.AccentText.Bold(true).Render("Themes"))
	b.WriteString("\n")
	b.WriteString(m.renderThemeList())

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Width(44)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modal.Render(b.String()),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}

func (m Model) renderHelpItem(binding key.Binding) string {
	help := binding.Help()
	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Warning)).
		Width(12)
	return keyStyle.Render(help.Key) + m.theme.Styles().Text.Render(help.Desc)
}

// renderThemeList lists the themes T cycles through, marking the active one.
func (m Model) renderThemeList() string {
	styles := m.theme.Styles()
	names := ThemeNames()
	parts := make([]string, 0, len(names))
	for _, name := range names {
		if name == m.theme.Name {
			parts = append(parts, styles.WarningText.Bold(true).Render(name+" *"))
			continue
		}
		parts = append(parts, styles.MutedText.Render(name))
	}
	return strings.Join(parts, styles.FaintText.Render(" · "))
}
