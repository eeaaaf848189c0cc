// Package app is the composition root of the SuperPlane desktop launcher.
//
// # Overview
//
// Run loads configuration and preferences, opens the diagnostic log, builds
// the container runtime adapters, the readiness poller, the window presenter
// and the launch orchestrator, then shows the loading screen until the user
// quits or the application window is closed.
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()          Read config.toml
//	       ├─────> prefs.Load()           Theme and window mode
//	       ├─────> newLogger()            JSON diagnostic log (zerolog)
//	       ├─────> state.NewStore()       Shared snapshot for the UI
//	       ├─────> launcher.New()         Docker CLI, supervisor, poller, presenter
//	       ├─────> StartHealthMonitor()   Probe the running application
//	       ├─────> go orchestrator.Run()  First launch attempt
//	       └─────> ui.Run()               Loading screen (blocks)
//
// # Shutdown
//
// When the loading screen exits, for any reason, the context is cancelled,
// the in-flight attempt is allowed to unwind, and the container is stopped
// with a fresh deadline so a cancelled parent context cannot skip teardown.
// Closing the application window cancels the same context.
//
// # Health Monitor
//
// After the application is ready the monitor keeps probing the health
// endpoint. Failures back off exponentially up to 30 seconds and are recorded
// in the store; two in a row mark the instance offline on the loading screen.
package app
