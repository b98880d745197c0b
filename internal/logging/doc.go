// Package logging provides a small leveled logger for the audio relay.
//
// Levels, from most to least verbose:
//   - DEBUG: per-chunk and per-relay lifecycle detail
//   - INFO: startup, configuration and stream summaries
//   - WARN: recoverable problems (slow clients, producer stderr noise)
//   - ERROR: failed spawns, failed upstream calls
//   - FATAL: unrecoverable startup errors
//
// The level comes from LOG_LEVEL, or DEBUG=true as a shortcut. Scoped
// loggers created with With prefix every line so that concurrent relays
// can be told apart in the output.
package logging
