// Package logging provides structured logging for bluescan.
//
// This package wraps zap logger with convenience functions for common logging
// patterns used throughout the scanner. It provides both general logging
// functions and specialized functions for scan-specific logging needs.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (per-observation merges, parser output)
//   - Info: Normal operations (scan start, per-source completion)
//   - Warn: Non-fatal issues (source failures, timeouts)
//   - Error: Fatal issues (startup failures, critical errors)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Scan source completed",
//	    zap.String("source", "ble"),
//	    zap.Int("observations", 12),
//	)
//
// # Configuration
//
// Logging is silent by default so CLI output stays clean. Set the
// BLUESCAN_LOG_LEVEL environment variable (or pass a level to Initialize)
// to enable it:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap
// logger handles synchronization automatically.
package logging
