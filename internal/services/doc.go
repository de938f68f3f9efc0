// Package services defines shared utilities consumed by the mining loop and
// external integrations.
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper so failures from the
//     wallet node CLI classify consistently across worker, poller, and IPC.
//   - Context helpers that stamp session and command identifiers for logging.
//
// Use these helpers when wiring new daemon interactions so error handling and
// observability stay uniform.
package services
