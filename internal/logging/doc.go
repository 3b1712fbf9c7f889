// Package logging provides slog-based structured logging for coldstore.
// It offers a console handler for interactive use, a JSON handler for
// machine consumption, and helpers for attaching run context (archive,
// stage, run ID) to loggers.
package logging
