package ui

import (
	"testing"

	"github.com/superplanehq/superplane-desktop/internal/launcher"
)

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	if len(names) != 3 {
		t.Fatalf("ThemeNames() returned %d names, want 3", len(names))
	}
	if names[0] != "Nightfox" || names[1] != "Kanagawa" || names[2] != "Slate" {
		t.Fatalf("ThemeNames() = %v, want [Nightfox Kanagawa Slate]", names)
	}
}

func TestNextTheme(t *testing.T) {
	tests := []struct{ current, want string }{
		{"Nightfox", "Kanagawa"},
		{"Kanagawa", "Slate"},
		{"Slate", "Nightfox"},
		{"Unknown", "Nightfox"},
	}
	for _, tt := range tests {
		if got := NextTheme(tt.current); got != tt.want {
			t.Fatalf("NextTheme(%q) = %q, want %q", tt.current, got, tt.want)
		}
	}
}

func TestGetTheme(t *testing.T) {
	if got := GetTheme("Slate").Name; got != "Slate" {
		t.Fatalf("GetTheme(Slate).Name = %q, want Slate", got)
	}
	if got := GetTheme("Unknown").Name; got != "Nightfox" {
		t.Fatalf("GetTheme(Unknown).Name = %q, want Nightfox (fallback)", got)
	}
}

func TestThemesCoverEveryPhase(t *testing.T) {
	phases := []launcher.Phase{
		launcher.PhaseIdle,
		launcher.PhaseCheckingRuntime,
		launcher.PhasePulling,
		launcher.PhaseStarting,
		launcher.PhaseWaitingReady,
		launcher.PhaseReady,
		launcher.PhaseFailed,
	}
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		for _, p := range phases {
			if th.PhaseColors[p.String()] == "" {
				t.Fatalf("theme %s has no color for phase %q", name, p)
			}
		}
	}
}
