package sources

import (
	"context"
	"testing"
	"time"

	"github.com/rmercier/bluescan/internal/scan"
)

func TestParseBluetoothctlDevices(t *testing.T) {
	output := "Device AA:BB:CC:DD:EE:FF My Phone\n" +
		"Device 11:22:33:44:55:66 Freebox Player Mini\n" +
		"Device 22:33:44:55:66:77\n" +
		"Controller 00:00:00:00:00:00 hci0\n"

	observations := parseBluetoothctlDevices(output)
	if len(observations) != 3 {
		t.Fatalf("got %d observations, want 3", len(observations))
	}
	if observations[0].DisplayName != "My Phone" {
		t.Errorf("first name = %q", observations[0].DisplayName)
	}
	if observations[1].DisplayName != "Freebox Player Mini" {
		t.Errorf("multi-word name = %q", observations[1].DisplayName)
	}
	if observations[2].DisplayName != "" {
		t.Errorf("nameless device = %q, want empty", observations[2].DisplayName)
	}
	for _, obs := range observations {
		if obs.SourceID != SourceSysreg {
			t.Errorf("SourceID = %q", obs.SourceID)
		}
	}
}

func TestParseSystemProfiler(t *testing.T) {
	output := []byte(`{
	  "SPBluetoothDataType": [
	    {
	      "device_connected": [
	        {"AirPods de Remi": {"device_address": "04:F7:E4:11:22:33", "device_minorType": "Headphones", "device_rssi": "-52"}}
	      ],
	      "device_not_connected": [
	        {"Freebox Player": {"device_address": "70-FC-8F-44-55-66"}}
	      ]
	    }
	  ]
	}`)

	observations, err := parseSystemProfiler(output)
	if err != nil {
		t.Fatalf("parseSystemProfiler() error = %v", err)
	}
	if len(observations) != 2 {
		t.Fatalf("got %d observations, want 2", len(observations))
	}

	byName := make(map[string]scan.RawObservation)
	for _, obs := range observations {
		byName[obs.DisplayName] = obs
	}

	connected, ok := byName["AirPods de Remi"]
	if !ok {
		t.Fatal("connected device missing")
	}
	if connected.SignalStrength == nil || *connected.SignalStrength != -52 {
		t.Errorf("connected RSSI = %v, want -52", connected.SignalStrength)
	}
	if !connected.Attributes[scan.AttrConnectable].Bool {
		t.Error("connected device should be marked connectable")
	}
	if got := connected.Attributes[scan.AttrDeviceClass].Str; got != "Headphones" {
		t.Errorf("device class = %q, want Headphones", got)
	}

	disconnected, ok := byName["Freebox Player"]
	if !ok {
		t.Fatal("disconnected device missing")
	}
	if disconnected.SignalStrength != nil {
		t.Error("disconnected device should have no signal reading")
	}
	if disconnected.RawAddress != "70-FC-8F-44-55-66" {
		t.Errorf("raw address = %q, want dash form preserved", disconnected.RawAddress)
	}
}

func TestParseSystemProfiler_Malformed(t *testing.T) {
	if _, err := parseSystemProfiler([]byte("not json")); err == nil {
		t.Error("parseSystemProfiler() error = nil for garbage input")
	}
}

func TestParsePnpDevices(t *testing.T) {
	output := []byte(`[
	  {"FriendlyName": "Freebox Player", "InstanceId": "BTHENUM\\DEV_70FC8F001122\\8&2AB\\0", "Status": "OK"},
	  {"FriendlyName": "Bluetooth Radio", "InstanceId": "USB\\VID_8087&PID_0026\\5&0", "Status": "OK"},
	  {"FriendlyName": "Old Headset", "InstanceId": "BTHENUM\\DEV_0018091A2B3C\\9&1CD\\0", "Status": "Unknown"}
	]`)

	observations, err := parsePnpDevices(output)
	if err != nil {
		t.Fatalf("parsePnpDevices() error = %v", err)
	}
	if len(observations) != 3 {
		t.Fatalf("got %d observations, want 3", len(observations))
	}

	if observations[0].RawAddress != "70FC8F001122" {
		t.Errorf("embedded address = %q, want 70FC8F001122", observations[0].RawAddress)
	}
	if _, ok := scan.NormalizeAddress(observations[0].RawAddress); !ok {
		t.Error("extracted address should normalize")
	}

	// Adapters keep their opaque instance ID.
	if observations[1].RawAddress != "USB\\VID_8087&PID_0026\\5&0" {
		t.Errorf("adapter address = %q", observations[1].RawAddress)
	}

	if attr := observations[2].Attributes[scan.AttrConnectable]; attr.Bool {
		t.Error("non-OK device should not be connectable")
	}
}

func TestParsePnpDevices_SingleObject(t *testing.T) {
	output := []byte(`{"FriendlyName": "Only One", "InstanceId": "BTHENUM\\DEV_AABBCCDDEEFF\\1&0", "Status": "OK"}`)

	observations, err := parsePnpDevices(output)
	if err != nil {
		t.Fatalf("parsePnpDevices() error = %v", err)
	}
	if len(observations) != 1 || observations[0].RawAddress != "AABBCCDDEEFF" {
		t.Errorf("parsePnpDevices() = %+v", observations)
	}
}

func TestParsePnpDevices_Empty(t *testing.T) {
	observations, err := parsePnpDevices([]byte("  \n"))
	if err != nil || len(observations) != 0 {
		t.Errorf("parsePnpDevices() = %v, %v, want empty and no error", observations, err)
	}
}

func TestSystemRegistry_ObserveLinux(t *testing.T) {
	s := &SystemRegistry{
		goos: "linux",
		run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			if name != "bluetoothctl" {
				t.Errorf("ran %q, want bluetoothctl", name)
			}
			return []byte("Device AA:BB:CC:DD:EE:FF Paired Phone\n"), nil
		},
	}

	observations, err := s.Observe(context.Background(), scan.ScanRequest{Duration: time.Second})
	if err != nil {
		t.Fatalf("Observe() error = %v", err)
	}
	if len(observations) != 1 || observations[0].DisplayName != "Paired Phone" {
		t.Errorf("Observe() = %+v", observations)
	}
}

func TestSystemRegistry_ObserveUnsupportedPlatform(t *testing.T) {
	s := &SystemRegistry{goos: "plan9"}

	_, err := s.Observe(context.Background(), scan.ScanRequest{Duration: time.Second})
	if err == nil {
		t.Fatal("Observe() error = nil on unsupported platform")
	}
}
