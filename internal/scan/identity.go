package scan

import "strings"

// NormalizeAddress canonicalizes a device address so that observations of
// the same physical device compare equal regardless of source formatting.
//
// Separators are stripped, hex digits upper-cased, and the result is
// re-grouped into colon-separated octets: "aa-bb-cc-dd-ee-ff",
// "aabbccddeeff" and "AA:BB:CC:DD:EE:FF" all normalize to
// "AA:BB:CC:DD:EE:FF".
//
// If the input does not reduce to exactly 12 hexadecimal characters (a
// platform-opaque handle, for example), the input is returned unchanged and
// ok is false. Callers must treat such identifiers as non-normalizable:
// they are never merged across sources, which avoids accidentally merging
// unrelated devices.
//
// The function is pure and idempotent: NormalizeAddress of an already
// canonical address returns it unchanged with ok true.
func NormalizeAddress(raw string) (canonical string, ok bool) {
	if raw == "" {
		return raw, false
	}

	var b strings.Builder
	b.Grow(12)
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'a' && r <= 'f':
			b.WriteRune(r - 'a' + 'A')
		case r >= 'A' && r <= 'F':
			b.WriteRune(r)
		case r >= 'g' && r <= 'z', r >= 'G' && r <= 'Z':
			// Non-hex letter: cannot be a MAC address.
			return raw, false
		default:
			// Separator (colon, dash, dot, space...): skip.
		}
	}

	hex := b.String()
	if len(hex) != 12 {
		return raw, false
	}

	var out strings.Builder
	out.Grow(17)
	for i := 0; i < 12; i += 2 {
		if i > 0 {
			out.WriteByte(':')
		}
		out.WriteString(hex[i : i+2])
	}
	return out.String(), true
}

// OUIPrefix returns the organizationally-unique prefix (first three octets,
// "AA:BB:CC") of a normalized address, or "" when the address is not a
// normalized MAC.
func OUIPrefix(canonical string) string {
	if len(canonical) < 8 {
		return ""
	}
	prefix := canonical[:8]
	if _, ok := NormalizeAddress(prefix + ":00:00:00"); !ok {
		return ""
	}
	return prefix
}
