// Package log provides a logging abstraction for warden components.
//
// This package defines a Logger interface that can be implemented by
// any logging library. Default implementations are provided for zerolog
// and a no-op logger for testing.
//
// # Usage
//
// Build a zerolog-backed logger for the daemon:
//
//	logger := log.NewZerologAdapter(os.Stderr, log.FormatAuto, "info")
//
// Scope it to an application or group, the way every component does:
//
//	appLog := logger.With(log.String("app", "web"))
//	appLog.Info("server started", log.Int("pid", os.Getpid()))
//
// Or use the no-op logger for testing:
//
//	logger := log.NewNoopLogger()
package log
