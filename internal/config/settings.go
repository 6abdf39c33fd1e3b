package config

import "time"

// Settings represents the entire user configuration file.
type Settings struct {
	Version int             `yaml:"version"`
	Server  *ServerSettings `yaml:"server,omitempty"`
	Scan    *ScanSettings   `yaml:"scan,omitempty"`
	Log     *LogSettings    `yaml:"log,omitempty"`
	Lookups *LookupSettings `yaml:"lookups,omitempty"`
}

// ServerSettings configures the HTTP API server.
type ServerSettings struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// ScanSettings holds the scan defaults applied when a request or command
// line does not specify them.
type ScanSettings struct {
	// DurationSeconds is the default scan window length.
	DurationSeconds float64 `yaml:"duration_seconds"`

	// GraceSeconds is how long the aggregator waits for sources to
	// settle after the scan window closes.
	GraceSeconds float64 `yaml:"grace_seconds"`

	// Sources lists the enabled scan sources in priority order. Empty
	// means all sources.
	Sources []string `yaml:"sources,omitempty"`

	// Sequential disables concurrent fan-out, running sources one after
	// another in priority order.
	Sequential bool `yaml:"sequential"`
}

// LogSettings configures structured logging.
type LogSettings struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
}

// LookupSettings points at optional external lookup data.
type LookupSettings struct {
	// OverridesPath is a YAML file extending the compiled-in company and
	// OUI prefix tables.
	OverridesPath string `yaml:"overrides_path,omitempty"`
}

// NewSettings creates Settings with default values.
func NewSettings() *Settings {
	return &Settings{
		Version: 1,
		Server: &ServerSettings{
			Host: "0.0.0.0",
			Port: 8000,
		},
		Scan: &ScanSettings{
			DurationSeconds: 5.0,
			GraceSeconds:    2.0,
		},
		Log: &LogSettings{
			Level: "info",
		},
		Lookups: &LookupSettings{},
	}
}

// ScanDuration returns the default scan window as a duration.
func (s *Settings) ScanDuration() time.Duration {
	return time.Duration(s.Scan.DurationSeconds * float64(time.Second))
}

// GracePeriod returns the post-window settle allowance as a duration.
func (s *Settings) GracePeriod() time.Duration {
	return time.Duration(s.Scan.GraceSeconds * float64(time.Second))
}
