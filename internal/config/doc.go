// Package config manages the persistent user configuration for bluescan.
//
// Configuration is stored as YAML in the platform-appropriate directory
// ($XDG_CONFIG_HOME/bluescan on Linux, ~/.config/bluescan on macOS,
// %LOCALAPPDATA%\bluescan on Windows). A missing file yields defaults,
// saves are atomic, and the loaded instance is shared process-wide.
//
// The file carries scan defaults (window length, source selection),
// server binding for the HTTP API, the log level, and an optional path
// to lookup-table overrides.
package config
