// Package ui provides the launcher's loading screen, a Bubble Tea program that
// shows launch progress until the application window takes over.
//
// # Architecture Overview
//
// The Model never talks to the container runtime. It polls state.Store on a
// short tick and renders the latest Snapshot; the orchestrator and container
// output readers write into the same store from their own goroutines. User
// actions that block (retry, reopening the window) run as tea.Cmd functions so
// the screen keeps redrawing while they are in flight.
//
// # Package Structure
//
//   - app.go: Model, messages, commands and the Run entry point
//   - header.go: logo, phase badge, status and error/running detail lines, command bar
//   - logs.go: bordered log pane with follow mode
//   - log_format.go: renders the JSON diagnostic log for display
//   - keys.go, help.go: key bindings and the help overlay
//   - theme.go, style_helpers.go: lipgloss themes and background-safe rendering
//
// # Log Sources
//
// The log pane shows either the container output collected in the store
// (pull progress, command echo lines, application stdout/stderr) or the tail
// of the launcher's own diagnostic log file. `l` switches between them.
//
// # Key Bindings
//
//   - r: Retry after a failure, or restart a running instance
//   - o: Reopen the application window
//   - l: Toggle container output / diagnostic log
//   - Space: Toggle follow mode; j/k, g/G, ctrl+d/u, pgup/pgdown scroll
//   - T: Cycle theme (saved to prefs.toml)
//   - h or ?: Help
//   - q, e or ctrl+c: Quit (stops the container)
package ui
