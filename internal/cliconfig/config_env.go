package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (WARDEN_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("name", os.Getenv("WARDEN_NAME"), &cfg.Name)
	s.setString("base-dir", os.Getenv("WARDEN_BASE_DIR"), &cfg.BaseDir)
	s.setString("log-level", os.Getenv("WARDEN_LOG_LEVEL"), &cfg.LogLevel)
	s.setString("log-format", os.Getenv("WARDEN_LOG_FORMAT"), &cfg.LogFormat)

	if err := s.setDuration("tick", os.Getenv("WARDEN_TICK_INTERVAL"), &cfg.TickInterval); err != nil {
		return err
	}
	if err := s.setDuration("dial-timeout", os.Getenv("WARDEN_DIAL_TIMEOUT"), &cfg.DialTimeout); err != nil {
		return err
	}
	if err := s.setDuration("timeout", os.Getenv("WARDEN_RESPONSE_TIMEOUT"), &cfg.ResponseTimeout); err != nil {
		return err
	}
	if err := s.setDuration("kill-wait", os.Getenv("WARDEN_KILL_WAIT"), &cfg.KillWait); err != nil {
		return err
	}
	if err := s.setDuration("shutdown-timeout", os.Getenv("WARDEN_SHUTDOWN_TIMEOUT"), &cfg.ShutdownTimeout); err != nil {
		return err
	}

	return nil
}
