// Package docker drives the container runtime through its command line.
//
// The launcher never talks to the Docker Engine API directly. Every
// interaction is a subprocess whose exit code and streamed output are the
// only contract, which keeps the launcher compatible with any docker-CLI
// compatible runtime configured as the binary.
//
// # Components
//
//   - CLI.Available: `docker info` with a bounded timeout (runtime probe)
//   - CLI.ImageExists / Pull / PullBackground: image acquisition
//   - Supervisor: owns the single `docker run` child process
//
// # Container Start
//
// Supervisor.Start treats the first byte of output on either stream as an
// early liveness signal. When the container stays silent the grace period
// elapses and Start returns anyway; real readiness is decided by polling the
// HTTP health endpoint afterwards. A process that exits before either signal
// fails with *StartError carrying its exit code.
//
// # Teardown
//
// Stop runs `docker stop <name>` against the fixed container name and waits
// for the attached `docker run` process to exit, falling back to killing it.
// RemoveOrphan clears a container with the same name left over from an
// unclean shutdown before a new one is started.
package docker
