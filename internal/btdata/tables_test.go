package btdata

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBuiltin_CompanyName(t *testing.T) {
	tables := Builtin()

	tests := []struct {
		id     uint16
		want   string
		wantOK bool
	}{
		{0x004C, "Apple, Inc.", true},
		{0x0006, "Microsoft", true},
		{0x0075, "Samsung Electronics Co. Ltd.", true},
		{0xFFFF, "", false},
	}

	for _, tt := range tests {
		got, ok := tables.CompanyName(tt.id)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("CompanyName(%#04x) = (%q, %v), want (%q, %v)",
				tt.id, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestBuiltin_PrefixHint(t *testing.T) {
	tables := Builtin()

	tests := []struct {
		name   string
		addr   string
		want   string // expected friendly name
		wantOK bool
	}{
		{
			name:   "freebox server prefix",
			addr:   "70:FC:8F:12:34:56",
			want:   "Freebox Server",
			wantOK: true,
		},
		{
			name:   "iphone prefix",
			addr:   "04:15:52:AA:BB:CC",
			want:   "iPhone",
			wantOK: true,
		},
		{
			name:   "lowercase address still matches",
			addr:   "70:fc:8f:12:34:56",
			want:   "Freebox Server",
			wantOK: true,
		},
		{
			name:   "unknown prefix",
			addr:   "FF:FF:FF:00:00:00",
			wantOK: false,
		},
		{
			name:   "too short",
			addr:   "70:FC",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hint, ok := tables.PrefixHint(tt.addr)
			if ok != tt.wantOK {
				t.Fatalf("PrefixHint(%q) ok = %v, want %v", tt.addr, ok, tt.wantOK)
			}
			if ok && hint.FriendlyName != tt.want {
				t.Errorf("PrefixHint(%q).FriendlyName = %q, want %q", tt.addr, hint.FriendlyName, tt.want)
			}
		})
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lookups.yaml")
	content := `version: 1
companies:
  "0x0BEE": "Hive Audio Ltd."
  "004C": "Apple Override"
prefixes:
  "AB:CD:EF":
    company: "Hive Audio Ltd."
    category: "Audio"
    friendly_name: "Hive Speaker"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	tables, err := LoadOverrides(path)
	if err != nil {
		t.Fatalf("LoadOverrides() error = %v", err)
	}

	// New entries appear.
	if name, ok := tables.CompanyName(0x0BEE); !ok || name != "Hive Audio Ltd." {
		t.Errorf("CompanyName(0x0BEE) = (%q, %v), want override", name, ok)
	}
	if hint, ok := tables.PrefixHint("AB:CD:EF:00:00:00"); !ok || hint.FriendlyName != "Hive Speaker" {
		t.Errorf("PrefixHint override = (%+v, %v)", hint, ok)
	}

	// Overrides win over builtin entries.
	if name, _ := tables.CompanyName(0x004C); name != "Apple Override" {
		t.Errorf("CompanyName(0x004C) = %q, want override to win", name)
	}

	// Builtin entries survive.
	if _, ok := tables.PrefixHint("70:FC:8F:00:00:00"); !ok {
		t.Error("builtin prefix lost after overrides")
	}
}

func TestLoadOverrides_Invalid(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "wrong version",
			content: "version: 2\n",
		},
		{
			name:    "bad company key",
			content: "version: 1\ncompanies:\n  \"zz\": \"Nope\"\n",
		},
		{
			name:    "bad prefix",
			content: "version: 1\nprefixes:\n  \"ABCDEF\":\n    company: \"X\"\n",
		},
		{
			name:    "not yaml",
			content: "{{{",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadOverrides(path); err == nil {
				t.Error("LoadOverrides() error = nil, want failure")
			}
		})
	}
}

func TestLoadOverrides_MissingFile(t *testing.T) {
	if _, err := LoadOverrides(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("LoadOverrides() error = nil for missing file")
	}
}
