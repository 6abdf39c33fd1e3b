// Package btdata holds the static lookup tables used by device enrichment.
//
// Two tables are provided: the Bluetooth SIG company-identifier registry
// (manufacturer ID to company name) and an OUI prefix table (first three
// address octets to vendor hints such as model and friendly name).
//
// The tables are data, not logic. They are compiled in for zero-config
// operation, and can be extended at runtime from a versioned YAML overrides
// file so corrections do not require a rebuild:
//
//	version: 1
//	companies:
//	  "0x0BEE": "Some New Vendor Ltd."
//	prefixes:
//	  "AB:CD:EF":
//	    company: "Some New Vendor Ltd."
//	    category: "Audio"
//	    friendly_name: "SNV Speaker"
//
// Tables are immutable once constructed and safe for concurrent use.
package btdata
