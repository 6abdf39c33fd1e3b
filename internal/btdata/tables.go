package btdata

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rmercier/bluescan/internal/scan"
)

// Tables bundles the two static lookup tables consumed by the enrichment
// pipeline: company identifiers and OUI prefixes. Tables are built once at
// process start and are read-only afterwards, so they are safe for
// concurrent use without locking.
type Tables struct {
	companies map[uint16]string
	prefixes  map[string]DeviceHint
}

// Builtin returns the compiled-in lookup tables.
func Builtin() *Tables {
	return &Tables{
		companies: companyIdentifiers,
		prefixes:  ouiPrefixes,
	}
}

// CompanyName resolves a Bluetooth SIG company identifier.
func (t *Tables) CompanyName(id uint16) (string, bool) {
	name, ok := t.companies[id]
	return name, ok
}

// PrefixHint resolves vendor hints for a normalized address. The lookup
// uses the organizationally-unique prefix (first three octets).
func (t *Tables) PrefixHint(canonicalAddr string) (DeviceHint, bool) {
	prefix := scan.OUIPrefix(canonicalAddr)
	if prefix == "" {
		return DeviceHint{}, false
	}
	hint, ok := t.prefixes[strings.ToUpper(prefix)]
	return hint, ok
}

// overridesFile is the YAML shape for user-supplied table overrides. The
// tables are versioned external data, not logic: users can extend or
// correct them without a rebuild.
type overridesFile struct {
	Version   int                   `yaml:"version"`
	Companies map[string]string     `yaml:"companies"`
	Prefixes  map[string]DeviceHint `yaml:"prefixes"`
}

// LoadOverrides returns a copy of the builtin tables extended with the
// overrides from the given YAML file. Override entries win over builtin
// ones. Company keys are hex identifiers ("0x004C" or "004C").
func LoadOverrides(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lookup overrides: %w", err)
	}

	var file overridesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse lookup overrides: %w", err)
	}
	if file.Version != 1 {
		return nil, fmt.Errorf("unsupported lookup overrides version: %d (expected 1)", file.Version)
	}

	t := &Tables{
		companies: make(map[uint16]string, len(companyIdentifiers)+len(file.Companies)),
		prefixes:  make(map[string]DeviceHint, len(ouiPrefixes)+len(file.Prefixes)),
	}
	for id, name := range companyIdentifiers {
		t.companies[id] = name
	}
	for prefix, hint := range ouiPrefixes {
		t.prefixes[prefix] = hint
	}

	for key, name := range file.Companies {
		id, err := parseCompanyID(key)
		if err != nil {
			return nil, err
		}
		t.companies[id] = name
	}
	for prefix, hint := range file.Prefixes {
		normalized := strings.ToUpper(strings.TrimSpace(prefix))
		if len(normalized) != 8 {
			return nil, fmt.Errorf("invalid OUI prefix %q (expected AA:BB:CC form)", prefix)
		}
		t.prefixes[normalized] = hint
	}

	return t, nil
}

func parseCompanyID(key string) (uint16, error) {
	s := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(key)), "0x")
	id, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid company identifier %q: %w", key, err)
	}
	return uint16(id), nil
}
