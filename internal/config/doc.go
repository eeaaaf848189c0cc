// Package config loads the launcher's TOML configuration.
//
// # Overview
//
// The launcher works without any configuration file. Every value has a
// built-in default matching the published SuperPlane demo image, and a file
// only needs to name the settings it overrides.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/superplane-desktop/config.toml
//  3. If the file doesn't exist, fall back to defaults
//  4. If the file exists but fields are missing or empty, use defaults
//
// # TOML Format
//
//	docker_binary = "docker"
//	image = "ghcr.io/superplanehq/superplane-demo:stable"
//	container_name = "superplane-desktop"
//	port = 3000
//	volume = "spdata"
//	health_path = "/health"
//	always_pull = false
//	poll_interval_ms = 1500
//	poll_timeout_ms = 120000
//	probe_timeout_ms = 3000
//	grace_period_ms = 5000
//	command_timeout_ms = 10000
//	log_dir = "~/.local/state/superplane-desktop"
//
// Durations are whole milliseconds; zero or negative values select the
// default. always_pull disables the local-image fast path and makes every
// launch wait for a full docker pull.
//
// # Validation
//
// The image must parse as a normalized Docker reference, the port must be a
// valid TCP port, and the container name must be usable with docker --name.
// Load returns an error for invalid settings rather than silently replacing
// them.
package config
