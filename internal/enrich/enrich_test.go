package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmercier/bluescan/internal/scan"
)

// deviceFor builds a merged device the way the aggregator would.
func deviceFor(addr, name string, attrs map[string]scan.AttrValue) *scan.CanonicalDevice {
	return scan.MergeObservation(nil, scan.RawObservation{
		SourceID:    "ble",
		RawAddress:  addr,
		DisplayName: name,
		Attributes:  attrs,
	}, 0)
}

func TestApply_CompanyFromManufacturerID(t *testing.T) {
	t.Parallel()

	d := deviceFor("aa:bb:cc:dd:ee:ff", "My AirPods", map[string]scan.AttrValue{
		scan.AttrManufacturerID: scan.IntAttr(0x004C),
	})

	Default().Apply(d)

	require.NotNil(t, d.Derived)
	assert.Equal(t, "Apple, Inc.", d.Derived.CompanyName)
	// A real advertised name stays primary.
	assert.Equal(t, "My AirPods", d.Name)
	assert.Equal(t, "My AirPods", d.Derived.FriendlyName)
}

func TestApply_PlaceholderReplacedFromPrefixTable(t *testing.T) {
	t.Parallel()

	d := deviceFor("70:FC:8F:12:34:56", "", nil)

	Default().Apply(d)

	require.NotNil(t, d.Derived)
	assert.Equal(t, "Freebox SA", d.Derived.CompanyName)
	assert.Equal(t, "Freebox", d.Derived.Category)
	assert.Equal(t, "Freebox Server", d.Derived.FriendlyName)
	assert.Equal(t, "Freebox Server", d.Name, "placeholder must be replaced")
}

func TestApply_CompanyFallbackSynthesizedName(t *testing.T) {
	t.Parallel()

	// Unknown prefix, known manufacturer ID, no name.
	d := deviceFor("12:34:56:78:9a:bc", "", map[string]scan.AttrValue{
		scan.AttrManufacturerID: scan.IntAttr(0x0059),
	})

	Default().Apply(d)

	require.NotNil(t, d.Derived)
	assert.Equal(t, "Nordic Semiconductor ASA", d.Derived.CompanyName)
	assert.Equal(t, "Nordic Semiconductor ASA Device (78:9A:BC)", d.Name)
}

func TestApply_NoLookupHitIsNoop(t *testing.T) {
	t.Parallel()

	d := deviceFor("12:34:56:78:9a:bc", "", nil)

	Default().Apply(d)

	require.NotNil(t, d.Derived, "Derived is always populated, even empty")
	assert.Empty(t, d.Derived.CompanyName)
	assert.Equal(t, "BT Device 78:9A:BC", d.Name, "last-resort synthesized label")
}

func TestApply_NeverTouchesIdentity(t *testing.T) {
	t.Parallel()

	d := deviceFor("70:FC:8F:12:34:56", "", nil)
	id, addr := d.CanonicalID, d.Address
	sources := append([]string(nil), d.DetectionSources...)
	merged := append([]string(nil), d.MergedFrom...)

	Default().Apply(d)

	assert.Equal(t, id, d.CanonicalID)
	assert.Equal(t, addr, d.Address)
	assert.Equal(t, sources, d.DetectionSources)
	assert.Equal(t, merged, d.MergedFrom)
}

func TestApply_OpaqueIdentifierSkipsPrefixLookup(t *testing.T) {
	t.Parallel()

	d := deviceFor("platform-handle-9", "Registry Device", nil)

	Default().Apply(d)

	require.NotNil(t, d.Derived)
	assert.Empty(t, d.Derived.CompanyName)
	assert.Equal(t, "Registry Device", d.Name)
}

func TestDecodeASCIIName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		encoded string
		want    string
	}{
		{
			name:    "iphone with nul terminator",
			encoded: "105 80 104 111 110 101 0",
			want:    "iPhone",
		},
		{
			name:    "decoding stops at nul",
			encoded: "104 105 0 120 120",
			want:    "hi",
		},
		{
			name:    "plain name unchanged",
			encoded: "Freebox Server",
			want:    "Freebox Server",
		},
		{
			name:    "no spaces unchanged",
			encoded: "12345",
			want:    "12345",
		},
		{
			name:    "digits that decode to garbage unchanged",
			encoded: "1 2 3",
			want:    "1 2 3",
		},
		{
			name:    "empty unchanged",
			encoded: "",
			want:    "",
		},
		{
			name:    "non-printable codes skipped",
			encoded: "7 104 105 7",
			want:    "hi",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, DecodeASCIIName(tt.encoded))
		})
	}
}

func TestApply_ASCIICodedNameDecoded(t *testing.T) {
	t.Parallel()

	d := deviceFor("12:34:56:78:9a:bc", "105 80 104 111 110 101 0", nil)

	Default().Apply(d)

	require.NotNil(t, d.Derived)
	assert.Equal(t, "iPhone", d.Derived.FriendlyName)
}
