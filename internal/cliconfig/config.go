package cliconfig

import (
	"fmt"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/bft-labs/warden/internal/domain"
)

// DefaultBaseDir is where pid files and sockets live unless configured otherwise.
const DefaultBaseDir = "/var/warden"

// Config holds CLI configuration for warden.
type Config struct {
	Name    string
	BaseDir string

	LogLevel  string
	LogFormat string

	TickInterval    time.Duration
	DialTimeout     time.Duration
	ResponseTimeout time.Duration
	KillWait        time.Duration
	ShutdownTimeout time.Duration

	Processes []ProcessConfig
}

// ProcessConfig describes one supervised process from the config file.
type ProcessConfig struct {
	Name        string
	Group       string
	Command     string
	Dir         string
	Env         []string
	StopSignal  string
	StopTimeout time.Duration
	FlapCount   int
	FlapWindow  time.Duration
}

// Signal resolves StopSignal ("TERM", "SIGTERM" or a number). Empty means SIGTERM.
func (p ProcessConfig) Signal() (syscall.Signal, error) {
	name := strings.ToUpper(strings.TrimSpace(p.StopSignal))
	if name == "" {
		return syscall.SIGTERM, nil
	}
	if n, err := strconv.Atoi(name); err == nil && n > 0 {
		return syscall.Signal(n), nil
	}
	if !strings.HasPrefix(name, "SIG") {
		name = "SIG" + name
	}
	if sig := unix.SignalNum(name); sig != 0 {
		return sig, nil
	}
	return 0, fmt.Errorf("%w: process %q: unknown stop signal %q", domain.ErrInvalidConfig, p.Name, p.StopSignal)
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		BaseDir:         DefaultBaseDir,
		LogLevel:        "info",
		LogFormat:       "auto",
		TickInterval:    time.Second,
		DialTimeout:     2 * time.Second,
		ResponseTimeout: 10 * time.Second,
		KillWait:        time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidConfig)
	}
	if strings.ContainsAny(c.Name, "/:\n") {
		return fmt.Errorf("%w: name %q must not contain '/', ':' or newlines", domain.ErrInvalidConfig, c.Name)
	}
	if c.BaseDir == "" {
		c.BaseDir = DefaultBaseDir
	}

	switch c.LogFormat {
	case "":
		c.LogFormat = "auto"
	case "auto", "console", "json":
	default:
		return fmt.Errorf("%w: log format %q (want auto, console or json)", domain.ErrInvalidConfig, c.LogFormat)
	}

	if c.TickInterval <= 0 {
		return fmt.Errorf("%w: tick interval must be positive", domain.ErrInvalidConfig)
	}
	if c.DialTimeout <= 0 || c.ResponseTimeout <= 0 {
		return fmt.Errorf("%w: timeouts must be positive", domain.ErrInvalidConfig)
	}
	if c.KillWait < 0 || c.ShutdownTimeout < 0 {
		return fmt.Errorf("%w: kill wait and shutdown timeout must not be negative", domain.ErrInvalidConfig)
	}

	seen := make(map[string]bool, len(c.Processes))
	for _, p := range c.Processes {
		if p.Name == "" || p.Command == "" {
			return fmt.Errorf("%w: every process needs a name and a command", domain.ErrInvalidConfig)
		}
		key := p.Group + "\x00" + p.Name
		if seen[key] {
			return fmt.Errorf("%w: duplicate process %q in group %q", domain.ErrInvalidConfig, p.Name, p.Group)
		}
		seen[key] = true
		if _, err := p.Signal(); err != nil {
			return err
		}
	}

	return nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}
