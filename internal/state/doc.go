// Package state provides thread-safe state shared between the launcher and
// the loading screen.
//
// # Overview
//
// Store implements launcher.Reporter. The orchestrator, the container output
// readers and the background health monitor write into it from their own
// goroutines; the UI reads a Snapshot on every tick and never blocks on the
// launch itself.
//
//	Producers:                         Consumer (UI):
//	┌──────────────────────┐          ┌──────────────────┐
//	│ Orchestrator         │          │                  │
//	│  Status/Phase/Error  │─────────→│ store.Snapshot() │
//	│ container output     │  (mutex) │        ↓         │
//	│  Log                 │          │   render view    │
//	│ health monitor       │          │                  │
//	│  RecordProbe         │          │                  │
//	└──────────────────────┘          └──────────────────┘
//
// # Attempts
//
// A transition to launcher.PhaseCheckingRuntime marks the start of a new
// attempt: the attempt counter increments and the previous error, application
// URL and health counters are cleared. Log lines are kept across attempts so a
// retry still shows what went wrong before.
//
// # Copying
//
// Snapshot returns the log lines as a fresh slice and a wrapped copy of the
// last probe error so the UI can hold on to a snapshot while writers continue.
//
// The zero Store is ready to use and keeps DefaultLogLimit log lines.
package state
