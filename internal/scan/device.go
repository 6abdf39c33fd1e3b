package scan

import (
	"fmt"
	"strings"
)

// PlaceholderName is the display name used when no source reported one.
// Enrichment may later replace it with a synthesized friendly name.
const PlaceholderName = "Unknown"

// IsPlaceholderName reports whether a display name carries no real
// information and may be replaced during merging or enrichment.
func IsPlaceholderName(name string) bool {
	return name == "" || strings.EqualFold(name, PlaceholderName)
}

// Derived holds enrichment results. It is populated by the enrichment
// pipeline after all merging is done and is absent beforehand.
type Derived struct {
	// CompanyName is the manufacturer name resolved from the Bluetooth
	// SIG company identifier or the address OUI prefix.
	CompanyName string `json:"company_name,omitempty"`

	// FriendlyName is a human-friendly label synthesized from the lookup
	// tables when the advertised name is a placeholder.
	FriendlyName string `json:"friendly_name,omitempty"`

	// Category is a coarse device category hint ("Mobile", "Audio", ...)
	// from the OUI prefix table.
	Category string `json:"category,omitempty"`
}

// CanonicalDevice is the externally visible, deduplicated record for one
// physical device within a single aggregation run.
//
// A device is created by the first observation seen for a canonical identity,
// mutated in place by the merger as later observations arrive, and finalized
// (read-only) once enrichment completes. Nothing is persisted across runs.
type CanonicalDevice struct {
	// CanonicalID is the normalized address, unique within one run.
	// For non-normalizable identifiers it is the raw identifier unchanged.
	CanonicalID string `json:"id"`

	// Address is the normalized address in display form.
	Address string `json:"address"`

	// Name is the best-known display name. Never empty: it falls back to
	// PlaceholderName until enrichment synthesizes something better.
	Name string `json:"name"`

	// SignalStrength is the retained signal value. When several sources
	// report one, the value from the highest-priority source wins, ties
	// broken by most recently merged.
	SignalStrength *int `json:"rssi,omitempty"`

	// Attributes is the union of all observed attributes.
	Attributes map[string]AttrValue `json:"attributes,omitempty"`

	// DetectionSources lists the source IDs that contributed to this
	// record, in first-seen order, deduplicated.
	DetectionSources []string `json:"detection_sources"`

	// MergedFrom is the ordered audit trail of raw identifiers folded
	// into this record, including repeats from advertisement bursts.
	MergedFrom []string `json:"merged_from"`

	// Derived holds enrichment results, nil until enrichment runs.
	Derived *Derived `json:"derived,omitempty"`

	// signalRank is the priority rank of the source that supplied
	// SignalStrength. Lower is higher priority.
	signalRank int

	// normalized records whether CanonicalID is a normalized MAC address.
	normalized bool
}

// String returns a short human-readable description of the device
func (d *CanonicalDevice) String() string {
	rssi := "n/a"
	if d.SignalStrength != nil {
		rssi = fmt.Sprintf("%d", *d.SignalStrength)
	}
	return fmt.Sprintf("%s (%s) rssi=%s sources=%s",
		d.Name, d.Address, rssi, strings.Join(d.DetectionSources, "+"))
}

// Attr returns the attribute stored under key and whether it was present.
func (d *CanonicalDevice) Attr(key string) (AttrValue, bool) {
	if d.Attributes == nil {
		return AttrValue{}, false
	}
	v, ok := d.Attributes[key]
	return v, ok
}

// HasSource reports whether the given source contributed to this record.
func (d *CanonicalDevice) HasSource(sourceID string) bool {
	for _, s := range d.DetectionSources {
		if s == sourceID {
			return true
		}
	}
	return false
}

// Normalized reports whether the device identity is a normalized MAC
// address. Non-normalizable identities are never merged across sources.
func (d *CanonicalDevice) Normalized() bool {
	return d.normalized
}

// Result is the envelope returned by one aggregation call.
type Result struct {
	// Devices holds one record per physical device, in first-seen order.
	// Never nil.
	Devices []*CanonicalDevice `json:"devices"`

	// SourceErrors maps source IDs to failure descriptions for sources
	// that failed entirely. Sources that succeeded (or were not
	// configured to run) are absent.
	SourceErrors map[string]string `json:"source_errors,omitempty"`

	// TotalDiscovered counts devices before the name filter was applied.
	TotalDiscovered int `json:"total_discovered"`
}
