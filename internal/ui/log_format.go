package ui

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// reservedFields are rendered in the header line of a diagnostic entry.
var reservedFields = map[string]struct{}{
	"time":      {},
	"level":     {},
	"message":   {},
	"component": {},
	"attempt":   {},
}

// formatDiagnosticLines renders JSON log lines written by the launcher's
// diagnostic logger. Lines that are not JSON objects pass through unchanged.
func formatDiagnosticLines(lines []string) []string {
	if len(lines) == 0 {
		return nil
	}
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, formatDiagnosticLine(line))
	}
	return out
}

func formatDiagnosticLine(line string) string {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "{") {
		return line
	}
	var fields map[string]any
	if err := json.Unmarshal([]byte(trimmed), &fields); err != nil {
		return line
	}

	ts := stringField(fields, "time")
	if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
		ts = parsed.In(time.Local).Format("2006-01-02 15:04:05")
	}
	level := strings.ToUpper(stringField(fields, "level"))
	if level == "" {
		level = "INFO"
	}
	parts := []string{level}
	if ts != "" {
		parts = append([]string{ts}, parts...)
	}
	if component := stringField(fields, "component"); component != "" {
		parts = append(parts, fmt.Sprintf("[%s]", component))
	}
	if attempt := stringField(fields, "attempt"); attempt != "" {
		parts = append(parts, "#"+shortAttempt(attempt))
	}
	header := strings.Join(parts, " ")
	if message := stringField(fields, "message"); message != "" {
		header += " – " + message
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		if _, skip := reservedFields[k]; !skip {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return header
	}
	sort.Strings(keys)

	var builder strings.Builder
	builder.WriteString(header)
	for _, k := range keys {
		builder.WriteString("\n    - ")
		builder.WriteString(k)
		builder.WriteString(": ")
		builder.WriteString(fmt.Sprint(fields[k]))
	}
	return builder.String()
}

func stringField(fields map[string]any, key string) string {
	if v, ok := fields[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// shortAttempt keeps the first block of an attempt UUID.
func shortAttempt(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}
