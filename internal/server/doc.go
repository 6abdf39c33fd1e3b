// Package server exposes the scan pipeline over an HTTP API.
//
// Endpoints:
//
//	GET  /health                  liveness probe
//	POST /api/v1/scan             scan with caller-supplied parameters
//	POST /api/v1/scan/fast        short-window preset (3s, concurrent)
//	POST /api/v1/scan/thorough    long-window preset (10s, every source)
//	GET  /api/v1/scan/stream      WebSocket progress stream plus result
//	POST /api/v1/session          session handle and tool descriptors
//
// Scan responses list merged devices sorted by descending signal
// strength, along with per-source errors for sources that failed. A scan
// only fails as a whole when every source failed and nothing was found.
//
// The server shuts down gracefully on SIGINT/SIGTERM, allowing in-flight
// scans to finish within a bounded window.
package server
