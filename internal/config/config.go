package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/distribution/reference"
	toml "github.com/pelletier/go-toml/v2"
)

// Config captures everything the launcher needs to boot the application container.
type Config struct {
	DockerBinary   string
	Image          string
	ContainerName  string
	Port           int
	Volume         string
	HealthPath     string
	AlwaysPull     bool
	PollInterval   time.Duration
	PollTimeout    time.Duration
	ProbeTimeout   time.Duration
	GracePeriod    time.Duration
	CommandTimeout time.Duration
	LogDir         string
}

const (
	defaultConfigPath     = "~/.config/superplane-desktop/config.toml"
	defaultLogDir         = "~/.local/state/superplane-desktop"
	defaultDockerBinary   = "docker"
	defaultImage          = "ghcr.io/superplanehq/superplane-demo:stable"
	defaultContainerName  = "superplane-desktop"
	defaultPort           = 3000
	defaultVolume         = "spdata"
	defaultHealthPath     = "/health"
	defaultPollInterval   = 1500 * time.Millisecond
	defaultPollTimeout    = 120 * time.Second
	defaultProbeTimeout   = 3 * time.Second
	defaultGracePeriod    = 5 * time.Second
	defaultCommandTimeout = 10 * time.Second
)

// Default returns the built-in launcher configuration.
func Default() Config {
	return Config{
		DockerBinary:   defaultDockerBinary,
		Image:          defaultImage,
		ContainerName:  defaultContainerName,
		Port:           defaultPort,
		Volume:         defaultVolume,
		HealthPath:     defaultHealthPath,
		PollInterval:   defaultPollInterval,
		PollTimeout:    defaultPollTimeout,
		ProbeTimeout:   defaultProbeTimeout,
		GracePeriod:    defaultGracePeriod,
		CommandTimeout: defaultCommandTimeout,
		LogDir:         mustExpand(defaultLogDir),
	}
}

type rawConfig struct {
	DockerBinary     string `toml:"docker_binary"`
	Image            string `toml:"image"`
	ContainerName    string `toml:"container_name"`
	Port             int    `toml:"port"`
	Volume           string `toml:"volume"`
	HealthPath       string `toml:"health_path"`
	AlwaysPull       bool   `toml:"always_pull"`
	PollIntervalMS   int    `toml:"poll_interval_ms"`
	PollTimeoutMS    int    `toml:"poll_timeout_ms"`
	ProbeTimeoutMS   int    `toml:"probe_timeout_ms"`
	GracePeriodMS    int    `toml:"grace_period_ms"`
	CommandTimeoutMS int    `toml:"command_timeout_ms"`
	LogDir           string `toml:"log_dir"`
}

// Load locates and parses the launcher config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.DockerBinary = stringOr(raw.DockerBinary, defaultDockerBinary)
	cfg.Image = stringOr(raw.Image, defaultImage)
	cfg.ContainerName = stringOr(raw.ContainerName, defaultContainerName)
	cfg.Volume = stringOr(raw.Volume, defaultVolume)
	cfg.HealthPath = stringOr(raw.HealthPath, defaultHealthPath)
	if !strings.HasPrefix(cfg.HealthPath, "/") {
		cfg.HealthPath = "/" + cfg.HealthPath
	}
	if raw.Port > 0 {
		cfg.Port = raw.Port
	}
	cfg.AlwaysPull = raw.AlwaysPull
	cfg.PollInterval = millisOr(raw.PollIntervalMS, defaultPollInterval)
	cfg.PollTimeout = millisOr(raw.PollTimeoutMS, defaultPollTimeout)
	cfg.ProbeTimeout = millisOr(raw.ProbeTimeoutMS, defaultProbeTimeout)
	cfg.GracePeriod = millisOr(raw.GracePeriodMS, defaultGracePeriod)
	cfg.CommandTimeout = millisOr(raw.CommandTimeoutMS, defaultCommandTimeout)
	cfg.LogDir = mustExpand(stringOr(raw.LogDir, defaultLogDir))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first setting the launcher cannot work with.
func (c Config) Validate() error {
	if _, err := reference.ParseNormalizedNamed(c.Image); err != nil {
		return fmt.Errorf("invalid image %q: %w", c.Image, err)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if strings.ContainsAny(c.ContainerName, " /:") {
		return fmt.Errorf("invalid container name %q", c.ContainerName)
	}
	return nil
}

// Origin returns the base URL the application is published on.
func (c Config) Origin() string {
	return "http://127.0.0.1:" + strconv.Itoa(c.Port)
}

// HealthURL returns the readiness endpoint polled after the container starts.
func (c Config) HealthURL() string {
	return c.Origin() + c.HealthPath
}

// LogPath returns the path to the launcher's diagnostic log file.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.LogDir) == "" {
		return mustExpand(defaultLogDir + "/launcher.log")
	}
	return filepath.Join(c.LogDir, "launcher.log")
}

func stringOr(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func millisOr(ms int, fallback time.Duration) time.Duration {
	if ms <= 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
