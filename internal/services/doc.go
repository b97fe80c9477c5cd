// Package services defines shared utilities consumed by the pipeline stage
// handlers and the external tool clients.
//
// Key responsibilities:
//   - Context helpers that stamp item IDs, stage names, and run identifiers
//     for logging.
//   - Structured error markers plus the Wrap helper that keep failure
//     classification consistent across stages.
//
// Use these helpers when wiring new stage logic so operational behaviour
// stays uniform across the pipeline.
package services
