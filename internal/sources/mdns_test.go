package sources

import (
	"reflect"
	"testing"

	"github.com/grandcat/zeroconf"

	"github.com/rmercier/bluescan/internal/scan"
)

func entryWith(instance string, txt []string) *zeroconf.ServiceEntry {
	return &zeroconf.ServiceEntry{
		ServiceRecord: zeroconf.ServiceRecord{Instance: instance},
		Text:          txt,
	}
}

func TestParseMDNSEntry(t *testing.T) {
	tests := []struct {
		name     string
		entry    *zeroconf.ServiceEntry
		wantOK   bool
		wantAddr string
		wantName string
	}{
		{
			name:     "freebox api service with box mac",
			entry:    entryWith("Freebox Server", []string{"api_version=8.0", "box_mac=70:FC:8F:AA:BB:CC", "box_model=fbxgw7-r1"}),
			wantOK:   true,
			wantAddr: "70:FC:8F:AA:BB:CC",
			wantName: "Freebox Server",
		},
		{
			name:     "generic service with bt_mac",
			entry:    entryWith("Living Room TV", []string{"bt_mac=CC:B1:1A:00:11:22"}),
			wantOK:   true,
			wantAddr: "CC:B1:1A:00:11:22",
		},
		{
			name:   "no address in txt records",
			entry:  entryWith("Printer", []string{"ty=LaserJet", "note=office"}),
			wantOK: false,
		},
		{
			name:   "empty txt",
			entry:  entryWith("Silent", nil),
			wantOK: false,
		},
		{
			name:     "preferred key wins over generic mac",
			entry:    entryWith("Box", []string{"mac=11:11:11:11:11:11", "bt_mac=22:22:22:22:22:22"}),
			wantOK:   true,
			wantAddr: "22:22:22:22:22:22",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs, ok := parseMDNSEntry(tt.entry)
			if ok != tt.wantOK {
				t.Fatalf("parseMDNSEntry() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if obs.RawAddress != tt.wantAddr {
				t.Errorf("RawAddress = %q, want %q", obs.RawAddress, tt.wantAddr)
			}
			if tt.wantName != "" && obs.DisplayName != tt.wantName {
				t.Errorf("DisplayName = %q, want %q", obs.DisplayName, tt.wantName)
			}
			if obs.SourceID != SourceMDNS {
				t.Errorf("SourceID = %q", obs.SourceID)
			}
			if obs.SignalStrength != nil {
				t.Error("presence source must not report a signal")
			}
		})
	}
}

func TestParseMDNSEntry_ModelAttribute(t *testing.T) {
	obs, ok := parseMDNSEntry(entryWith("Freebox Server", []string{
		"box_mac=70:FC:8F:AA:BB:CC",
		"box_model=fbxgw7-r1",
		"device_type=FreeboxServer",
	}))
	if !ok {
		t.Fatal("parseMDNSEntry() ok = false")
	}
	if got := obs.Attributes["mdns_model"]; got.Str != "fbxgw7-r1" {
		t.Errorf("mdns_model = %q", got.Str)
	}
	if got := obs.Attributes["mdns_device_type"]; got.Str != "FreeboxServer" {
		t.Errorf("mdns_device_type = %q", got.Str)
	}
	if _, ok := scan.NormalizeAddress(obs.RawAddress); !ok {
		t.Error("published address should normalize")
	}
}

func TestParseTXT(t *testing.T) {
	got := parseTXT([]string{"key=value", "FLAG", "empty=", "Mixed=a=b", ""})
	want := map[string]string{
		"key":   "value",
		"flag":  "",
		"empty": "",
		"mixed": "a=b",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseTXT() = %v, want %v", got, want)
	}
}
