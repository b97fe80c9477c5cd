// Package logging builds the slog loggers used across wemscribe and defines
// the standardized structured field names. Log output goes to stderr and a
// per-run file under the configured log directory; stdout is reserved for
// the run summary.
package logging
