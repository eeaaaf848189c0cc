package ui

import (
	"os/exec"
	"strings"
)

// createLogo renders the application name with figlet when it is installed.
// The result is plain text; callers apply the theme's logo style.
func createLogo(name string) string {
	output, err := exec.Command("figlet", "-f", "slant", name).Output()
	if err == nil && len(output) > 0 {
		return trimBlankLines(string(output))
	}
	return wordmark(name)
}

// wordmark is the single-line fallback logo.
func wordmark(name string) string {
	return strings.ToUpper(name)
}

func trimBlankLines(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			kept = append(kept, strings.TrimRight(line, " "))
		}
	}
	return strings.Join(kept, "\n")
}
