// Package launcher sequences the application lifecycle from a cold start to a
// running, reachable instance.
//
// An Orchestrator runs one attempt at a time through these phases:
//
//	CheckingRuntime → Pulling → Starting → WaitingReady → Ready
//	        └───────────┴──────────┴────────────┴──────→ Failed
//
// Phases only advance on success. The first failure moves the attempt to
// PhaseFailed, stops any container the attempt started, and reports a single
// user-facing message through the Reporter. Retry begins again at
// CheckingRuntime.
//
// Collaborators are small interfaces (Runtime, Container, Readiness,
// Reporter, Presenter) so the sequencing can be tested without a container
// runtime. The docker and readiness packages provide the production
// implementations; state.Store implements Reporter.
package launcher
