package ui

import (
	"strings"
	"testing"
	"time"
)

func TestShortAttempt(t *testing.T) {
	if got := shortAttempt("0b7c3a1e-91b2-4c1d-9f0a-6f1b2c3d4e5f"); got != "0b7c3a1e" {
		t.Fatalf("shortAttempt = %q, want 0b7c3a1e", got)
	}
	if got := shortAttempt("plain"); got != "plain" {
		t.Fatalf("shortAttempt = %q, want plain", got)
	}
}

func TestFormatDiagnosticLine(t *testing.T) {
	oldLocal := time.Local
	time.Local = time.FixedZone("TestLocal", -5*60*60)
	defer func() {
		time.Local = oldLocal
	}()

	line := `{"level":"warn","component":"docker","attempt":"0b7c3a1e-91b2","exit_code":1,"time":"2025-12-13T10:11:12Z","message":" background pull failed "}`
	got := formatDiagnosticLine(line)
	if wantSub := "2025-12-13 05:11:12 WARN [docker] #0b7c3a1e – background pull failed"; !strings.Contains(got, wantSub) {
		t.Fatalf("formatDiagnosticLine = %q, want it to contain %q", got, wantSub)
	}
	if !strings.Contains(got, "\n    - exit_code: 1") {
		t.Fatalf("formatDiagnosticLine missing details: %q", got)
	}
}

func TestFormatDiagnosticLine_PassThrough(t *testing.T) {
	for _, line := range []string{"plain text", "{not json", ""} {
		if got := formatDiagnosticLine(line); got != line {
			t.Fatalf("formatDiagnosticLine(%q) = %q, want unchanged", line, got)
		}
	}
	if got := formatDiagnosticLines(nil); got != nil {
		t.Fatalf("formatDiagnosticLines(nil) = %q, want nil", got)
	}
}
