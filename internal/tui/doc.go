// Package tui implements the interactive scan screen.
//
// While a scan runs it shows one line per source with a spinner, then a
// settled or failed marker as each source finishes. Progress events are
// forwarded from the aggregation orchestrator into the update loop with
// program.Send, so the model owns all screen state. The program quits on
// its own when the scan completes; the caller renders the final device
// table and summary outside the TUI.
package tui
