package sources

import (
	"github.com/rmercier/bluescan/internal/scan"
)

// Source identifiers, in priority order. Radio sources outrank passive
// registry and network lookups because their readings are live.
const (
	SourceBLE     = "ble"
	SourceClassic = "classic"
	SourceSysreg  = "sysreg"
	SourceMDNS    = "mdns"
)

// Default returns every platform scan source in priority order. Sources
// that turn out to be unavailable on the running host report that from
// Observe rather than here, so the aggregator can surface them as
// per-source errors instead of silently shrinking the set.
func Default() []scan.Source {
	return []scan.Source{
		NewBLE(),
		NewClassic(),
		NewSystemRegistry(),
		NewMDNS(),
	}
}
