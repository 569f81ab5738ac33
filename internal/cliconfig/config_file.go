package cliconfig

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// FileConfig mirrors Config but uses strings for durations to make TOML and YAML friendly.
type FileConfig struct {
	Name            string        `toml:"name" yaml:"name"`
	BaseDir         string        `toml:"base_dir" yaml:"base_dir"`
	LogLevel        string        `toml:"log_level" yaml:"log_level"`
	LogFormat       string        `toml:"log_format" yaml:"log_format"`
	TickInterval    string        `toml:"tick_interval" yaml:"tick_interval"`
	DialTimeout     string        `toml:"dial_timeout" yaml:"dial_timeout"`
	ResponseTimeout string        `toml:"response_timeout" yaml:"response_timeout"`
	KillWait        string        `toml:"kill_wait" yaml:"kill_wait"`
	ShutdownTimeout string        `toml:"shutdown_timeout" yaml:"shutdown_timeout"`
	Processes       []FileProcess `toml:"process" yaml:"processes"`
}

// FileProcess is one [[process]] table.
type FileProcess struct {
	Name        string   `toml:"name" yaml:"name"`
	Group       string   `toml:"group" yaml:"group"`
	Command     string   `toml:"command" yaml:"command"`
	Dir         string   `toml:"dir" yaml:"dir"`
	Env         []string `toml:"env" yaml:"env"`
	StopSignal  string   `toml:"stop_signal" yaml:"stop_signal"`
	StopTimeout string   `toml:"stop_timeout" yaml:"stop_timeout"`
	FlapCount   int      `toml:"flap_count" yaml:"flap_count"`
	FlapWindow  string   `toml:"flap_window" yaml:"flap_window"`
}

// LoadFileConfig reads and parses a config file. Files ending in .yaml or
// .yml are parsed as YAML, everything else as TOML. Unknown keys are rejected.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
			return fc, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		dec := toml.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&fc); err != nil {
			return fc, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.warden/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".warden", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
// Processes are only ever defined by the file.
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("name", fc.Name, &cfg.Name)
	s.setString("base-dir", fc.BaseDir, &cfg.BaseDir)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("log-format", fc.LogFormat, &cfg.LogFormat)

	if err := s.setDuration("tick", fc.TickInterval, &cfg.TickInterval); err != nil {
		return err
	}
	if err := s.setDuration("dial-timeout", fc.DialTimeout, &cfg.DialTimeout); err != nil {
		return err
	}
	if err := s.setDuration("timeout", fc.ResponseTimeout, &cfg.ResponseTimeout); err != nil {
		return err
	}
	if err := s.setDuration("kill-wait", fc.KillWait, &cfg.KillWait); err != nil {
		return err
	}
	if err := s.setDuration("shutdown-timeout", fc.ShutdownTimeout, &cfg.ShutdownTimeout); err != nil {
		return err
	}

	procs := make([]ProcessConfig, 0, len(fc.Processes))
	for _, fp := range fc.Processes {
		p := ProcessConfig{
			Name:       fp.Name,
			Group:      fp.Group,
			Command:    fp.Command,
			Dir:        fp.Dir,
			Env:        fp.Env,
			StopSignal: fp.StopSignal,
			FlapCount:  fp.FlapCount,
		}
		var err error
		if p.StopTimeout, err = parseOptionalDuration(fp.StopTimeout); err != nil {
			return fmt.Errorf("process %q stop_timeout: %w", fp.Name, err)
		}
		if p.FlapWindow, err = parseOptionalDuration(fp.FlapWindow); err != nil {
			return fmt.Errorf("process %q flap_window: %w", fp.Name, err)
		}
		procs = append(procs, p)
	}
	cfg.Processes = procs

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

func parseOptionalDuration(v string) (time.Duration, error) {
	if v == "" {
		return 0, nil
	}
	return time.ParseDuration(v)
}
