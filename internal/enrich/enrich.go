package enrich

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/rmercier/bluescan/internal/btdata"
	"github.com/rmercier/bluescan/internal/logging"
	"github.com/rmercier/bluescan/internal/scan"
	"go.uber.org/zap"
)

// Enricher derives secondary attributes (company name, friendly name,
// category) for merged devices using the static lookup tables.
//
// Enrichment is best-effort and heuristic: a lookup miss is a no-op, never
// an error, and nothing here touches device identity. The whole pass can be
// skipped in constrained environments without affecting aggregation.
type Enricher struct {
	tables *btdata.Tables
}

// New creates an enricher over the given lookup tables.
func New(tables *btdata.Tables) *Enricher {
	return &Enricher{tables: tables}
}

// Default creates an enricher over the compiled-in tables.
func Default() *Enricher {
	return New(btdata.Builtin())
}

// Apply populates the device's Derived field and, when the display name is
// still a placeholder, replaces it with the synthesized friendly name.
//
// CanonicalID, Address, DetectionSources and MergedFrom are never modified.
func (e *Enricher) Apply(d *scan.CanonicalDevice) {
	derived := &scan.Derived{}

	var hint btdata.DeviceHint
	var hintOK bool
	if d.Normalized() {
		hint, hintOK = e.tables.PrefixHint(d.Address)
	}

	derived.CompanyName = e.companyName(d, hint, hintOK)
	if hintOK {
		derived.Category = hint.Category
	}
	derived.FriendlyName = e.friendlyName(d, hint, hintOK, derived.CompanyName)

	d.Derived = derived

	if scan.IsPlaceholderName(d.Name) && derived.FriendlyName != "" {
		logging.Debug("Placeholder name replaced",
			zap.String("device", d.CanonicalID),
			zap.String("friendly_name", derived.FriendlyName),
		)
		d.Name = derived.FriendlyName
	}
}

// companyName resolves the manufacturer, preferring the advertised company
// identifier over the address prefix.
func (e *Enricher) companyName(d *scan.CanonicalDevice, hint btdata.DeviceHint, hintOK bool) string {
	if attr, ok := d.Attr(scan.AttrManufacturerID); ok && attr.Kind == scan.AttrKindInt {
		if name, found := e.tables.CompanyName(uint16(attr.Int)); found {
			return name
		}
	}
	if hintOK {
		return hint.Company
	}
	return ""
}

// friendlyName synthesizes the best human-friendly label available.
func (e *Enricher) friendlyName(d *scan.CanonicalDevice, hint btdata.DeviceHint, hintOK bool, company string) string {
	// Some stacks deliver names as space-separated ASCII codes; decode
	// those before anything else.
	if decoded := DecodeASCIIName(d.Name); decoded != d.Name {
		return decoded
	}

	// A real advertised name is already the friendliest label we have.
	if !scan.IsPlaceholderName(d.Name) {
		return d.Name
	}

	if hintOK && hint.FriendlyName != "" {
		return hint.FriendlyName
	}

	suffix := addressSuffix(d.Address)
	if company != "" {
		return fmt.Sprintf("%s Device (%s)", company, suffix)
	}
	if suffix != "" {
		return fmt.Sprintf("BT Device %s", suffix)
	}
	return ""
}

// addressSuffix returns the last three octets of an address for use in
// synthesized labels ("AA:BB:CC:DD:EE:FF" -> "DD:EE:FF").
func addressSuffix(addr string) string {
	if len(addr) <= 8 {
		return addr
	}
	return addr[len(addr)-8:]
}

// DecodeASCIIName decodes a display name transmitted as space-separated
// ASCII codes ("105 80 104 111 110 101 0" -> "iPhone"). Decoding stops at
// the first NUL code. If the input does not look like an ASCII-coded name,
// or the decoded result does not look like a plausible name, the input is
// returned unchanged.
func DecodeASCIIName(encoded string) string {
	if encoded == "" || !strings.Contains(encoded, " ") {
		return encoded
	}
	for _, r := range encoded {
		if !unicode.IsDigit(r) && !unicode.IsSpace(r) {
			return encoded
		}
	}

	var b strings.Builder
	for _, field := range strings.Fields(encoded) {
		code, err := strconv.Atoi(field)
		if err != nil {
			return encoded
		}
		if code == 0 {
			break
		}
		if code < 32 || code > 126 {
			continue
		}
		b.WriteByte(byte(code))
	}

	decoded := b.String()
	if len(decoded) < 2 || !containsLetter(decoded) {
		return encoded
	}
	return decoded
}

func containsLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
