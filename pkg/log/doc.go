/*
Package log provides structured logging for Quill using zerolog.

The log package wraps the zerolog library to provide JSON-structured logging
with component-specific loggers, configurable log levels, and helper
functions for common logging patterns. All logs include timestamps and
support filtering by severity level.

# Usage

Initializing the Logger:

	import "github.com/cuemby/quill/pkg/log"

	// JSON output (production)
	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,
	})

	// Console output (development)
	log.Init(log.Config{
		Level: log.DebugLevel,
	})

Simple Logging:

	log.Info("Indexer started")
	log.Warn("Queue depth is high")

Structured Logging:

	log.Logger.Debug().
		Str("path", path).
		Int("words", words).
		Msg("Indexed file")

Component Loggers:

	watcherLog := log.WithComponent("watcher")
	watcherLog.Error().Err(err).Msg("Failed to register path")

# Design Patterns

Global Logger Pattern:
  - Single package-level Logger instance
  - Initialized once at application start
  - Accessible from all packages without passing

Context Logger Pattern:
  - Create child loggers with context fields
  - WithComponent for subsystem, WithPath for per-file context
  - Automatically includes context in all logs

Error Logging Pattern:
  - Always use .Err(err) for error objects
  - Consistent error format across the codebase

# See Also

  - Zerolog documentation: https://github.com/rs/zerolog
  - 12-Factor App Logs: https://12factor.net/logs
*/
package log
