package scan

import (
	"encoding/json"
	"fmt"
)

// Well-known attribute keys. Sources are free to attach additional keys;
// these are the ones the merger and the enrichment pipeline know about.
const (
	// AttrManufacturerID is the Bluetooth SIG company identifier from
	// advertisement manufacturer data (integer attribute).
	AttrManufacturerID = "manufacturer_id"

	// AttrManufacturerData is the raw manufacturer-specific payload
	// (bytes attribute).
	AttrManufacturerData = "manufacturer_data"

	// AttrServiceUUIDs is the list of advertised service UUIDs
	// (string-list attribute).
	AttrServiceUUIDs = "service_uuids"

	// AttrTxPower is the advertised transmit power (integer attribute).
	AttrTxPower = "tx_power"

	// AttrDeviceClass is the device class or minor type reported by the
	// platform ("Headphones", "Keyboard", ...; string attribute).
	AttrDeviceClass = "device_class"

	// AttrAlternateNames collects non-placeholder display names that lost
	// the first-seen race during merging (string-list attribute).
	AttrAlternateNames = "alternate_names"

	// AttrConnectable indicates whether the device advertised as
	// connectable (bool attribute).
	AttrConnectable = "connectable"
)

// AttrKind identifies the concrete type stored in an AttrValue.
type AttrKind int

const (
	AttrKindString AttrKind = iota
	AttrKindInt
	AttrKindBool
	AttrKindBytes
	AttrKindStringList
	AttrKindIntList
)

// String returns a human-readable name for the attribute kind
func (k AttrKind) String() string {
	switch k {
	case AttrKindString:
		return "string"
	case AttrKindInt:
		return "int"
	case AttrKindBool:
		return "bool"
	case AttrKindBytes:
		return "bytes"
	case AttrKindStringList:
		return "string_list"
	case AttrKindIntList:
		return "int_list"
	default:
		return fmt.Sprintf("AttrKind(%d)", k)
	}
}

// AttrValue is a tagged-union value for the open-ended attribute bag carried
// by observations and devices. Keeping the union explicit (rather than an
// interface{} blob) keeps the merge logic type-safe while still letting each
// source attach whatever it knows.
type AttrValue struct {
	Kind    AttrKind
	Str     string
	Int     int64
	Bool    bool
	Bytes   []byte
	StrList []string
	IntList []int64
}

// StringAttr wraps a string value
func StringAttr(s string) AttrValue { return AttrValue{Kind: AttrKindString, Str: s} }

// IntAttr wraps an integer value
func IntAttr(i int64) AttrValue { return AttrValue{Kind: AttrKindInt, Int: i} }

// BoolAttr wraps a boolean value
func BoolAttr(b bool) AttrValue { return AttrValue{Kind: AttrKindBool, Bool: b} }

// BytesAttr wraps a raw byte payload
func BytesAttr(b []byte) AttrValue { return AttrValue{Kind: AttrKindBytes, Bytes: b} }

// StringListAttr wraps a list of strings
func StringListAttr(s []string) AttrValue { return AttrValue{Kind: AttrKindStringList, StrList: s} }

// IntListAttr wraps a list of integers
func IntListAttr(i []int64) AttrValue { return AttrValue{Kind: AttrKindIntList, IntList: i} }

// IsZero reports whether the value carries no usable information. The merge
// fill policy only overwrites zero values.
func (v AttrValue) IsZero() bool {
	switch v.Kind {
	case AttrKindString:
		return v.Str == ""
	case AttrKindInt:
		return false // an explicit integer (even 0) is information
	case AttrKindBool:
		return false
	case AttrKindBytes:
		return len(v.Bytes) == 0
	case AttrKindStringList:
		return len(v.StrList) == 0
	case AttrKindIntList:
		return len(v.IntList) == 0
	default:
		return true
	}
}

// MarshalJSON renders the underlying value directly, without the union
// wrapper, so API responses stay flat.
func (v AttrValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case AttrKindString:
		return json.Marshal(v.Str)
	case AttrKindInt:
		return json.Marshal(v.Int)
	case AttrKindBool:
		return json.Marshal(v.Bool)
	case AttrKindBytes:
		// Render bytes as a list of integers, matching the wire format
		// expected by existing API consumers.
		ints := make([]int, len(v.Bytes))
		for i, b := range v.Bytes {
			ints[i] = int(b)
		}
		return json.Marshal(ints)
	case AttrKindStringList:
		return json.Marshal(v.StrList)
	case AttrKindIntList:
		return json.Marshal(v.IntList)
	default:
		return []byte("null"), nil
	}
}

// RawObservation is one sighting of a device from one scan source, before
// identity resolution. Observations are immutable once returned by a source;
// the aggregator folds them into CanonicalDevice records and discards them.
type RawObservation struct {
	// SourceID identifies the scan source that produced this observation
	// (e.g. "ble", "classic", "sysreg", "mdns").
	SourceID string

	// RawAddress is the source-native device identifier. Formatting is
	// source-specific; the identity normalizer canonicalizes it.
	RawAddress string

	// DisplayName is the advertised or registered device name. Empty
	// means unknown.
	DisplayName string

	// SignalStrength is the received-signal indicator, if the source
	// reports one. Meaning is source-specific but comparable within a
	// source.
	SignalStrength *int

	// Attributes carries source-specific extras (manufacturer data,
	// service UUIDs, transmit power, ...).
	Attributes map[string]AttrValue
}

// Signal is a convenience constructor for the optional SignalStrength field.
func Signal(v int) *int {
	return &v
}
