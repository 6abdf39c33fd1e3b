package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/rmercier/bluescan/internal/logging"
	"github.com/rmercier/bluescan/internal/scan"
)

// SystemRegistry reads devices the operating system already knows about,
// typically paired or previously seen devices. It complements the radio
// sources: a paired Freebox remote shows up here even when it is not
// advertising during the scan window.
type SystemRegistry struct {
	run  runCommand
	goos string
}

// NewSystemRegistry creates a registry source for the running platform.
func NewSystemRegistry() *SystemRegistry {
	return &SystemRegistry{run: execCommand, goos: runtime.GOOS}
}

func (s *SystemRegistry) ID() string { return SourceSysreg }

func (s *SystemRegistry) Observe(ctx context.Context, req scan.ScanRequest) ([]scan.RawObservation, error) {
	ctx, cancel := context.WithTimeout(ctx, req.Duration)
	defer cancel()

	var (
		observations []scan.RawObservation
		err          error
	)
	switch s.goos {
	case "linux":
		observations, err = s.observeLinux(ctx)
	case "darwin":
		observations, err = s.observeDarwin(ctx)
	case "windows":
		observations, err = s.observeWindows(ctx)
	default:
		return nil, scan.NewUnavailableError(SourceSysreg, "no registry backend for "+s.goos)
	}
	if err != nil {
		return nil, err
	}

	logging.Debug("System registry read",
		zap.String("platform", s.goos),
		zap.Int("devices", len(observations)),
	)
	return observations, nil
}

func (s *SystemRegistry) observeLinux(ctx context.Context) ([]scan.RawObservation, error) {
	output, err := s.run(ctx, "bluetoothctl", "devices")
	if err != nil {
		return nil, scan.NewSourceError(SourceSysreg, fmt.Errorf("bluetoothctl devices: %w", err))
	}
	return parseBluetoothctlDevices(string(output)), nil
}

func (s *SystemRegistry) observeDarwin(ctx context.Context) ([]scan.RawObservation, error) {
	output, err := s.run(ctx, "system_profiler", "SPBluetoothDataType", "-json")
	if err != nil {
		return nil, scan.NewSourceError(SourceSysreg, fmt.Errorf("system_profiler: %w", err))
	}
	return parseSystemProfiler(output)
}

func (s *SystemRegistry) observeWindows(ctx context.Context) ([]scan.RawObservation, error) {
	output, err := s.run(ctx, "powershell", "-NoProfile", "-Command",
		"Get-PnpDevice -Class Bluetooth | Select-Object FriendlyName, InstanceId, Status | ConvertTo-Json")
	if err != nil {
		return nil, scan.NewSourceError(SourceSysreg, fmt.Errorf("Get-PnpDevice: %w", err))
	}
	return parsePnpDevices(output)
}

// parseBluetoothctlDevices extracts devices from bluetoothctl output:
//
//	Device AA:BB:CC:DD:EE:FF My Phone
func parseBluetoothctlDevices(output string) []scan.RawObservation {
	var observations []scan.RawObservation
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 || fields[0] != "Device" {
			continue
		}
		observations = append(observations, scan.RawObservation{
			SourceID:    SourceSysreg,
			RawAddress:  fields[1],
			DisplayName: strings.Join(fields[2:], " "),
		})
	}
	return observations
}

// spBluetoothReport mirrors the slice of the system_profiler JSON output
// this source cares about. Device entries are single-key objects mapping
// the device name to its properties.
type spBluetoothReport struct {
	SPBluetoothDataType []struct {
		Connected    []map[string]spDevice `json:"device_connected"`
		NotConnected []map[string]spDevice `json:"device_not_connected"`
	} `json:"SPBluetoothDataType"`
}

type spDevice struct {
	Address   string `json:"device_address"`
	MinorType string `json:"device_minorType"`
	RSSI      string `json:"device_rssi"`
}

func parseSystemProfiler(output []byte) ([]scan.RawObservation, error) {
	var report spBluetoothReport
	if err := json.Unmarshal(output, &report); err != nil {
		return nil, scan.NewSourceError(SourceSysreg, fmt.Errorf("unexpected system_profiler output: %w", err))
	}

	var observations []scan.RawObservation
	for _, section := range report.SPBluetoothDataType {
		for _, group := range section.Connected {
			observations = append(observations, profilerObservations(group, true)...)
		}
		for _, group := range section.NotConnected {
			observations = append(observations, profilerObservations(group, false)...)
		}
	}
	return observations, nil
}

func profilerObservations(group map[string]spDevice, connected bool) []scan.RawObservation {
	observations := make([]scan.RawObservation, 0, len(group))
	for name, device := range group {
		obs := scan.RawObservation{
			SourceID:    SourceSysreg,
			RawAddress:  device.Address,
			DisplayName: name,
			Attributes: map[string]scan.AttrValue{
				scan.AttrConnectable: scan.BoolAttr(connected),
			},
		}
		if device.MinorType != "" {
			obs.Attributes[scan.AttrDeviceClass] = scan.StringAttr(device.MinorType)
		}
		// RSSI is only reported for connected devices, as a string.
		if rssi, err := strconv.Atoi(strings.TrimSpace(device.RSSI)); err == nil && rssi != 0 {
			obs.SignalStrength = scan.Signal(rssi)
		}
		observations = append(observations, obs)
	}
	return observations
}

// pnpDevice mirrors the Get-PnpDevice JSON fields used here. PowerShell
// emits a bare object instead of an array when only one device matches.
type pnpDevice struct {
	FriendlyName string `json:"FriendlyName"`
	InstanceID   string `json:"InstanceId"`
	Status       string `json:"Status"`
}

// pnpAddressPattern matches the 12-hex device address embedded in
// Bluetooth enumerator instance IDs (BTHENUM\...DEV_AABBCCDDEEFF\...).
var pnpAddressPattern = regexp.MustCompile(`(?:DEV_|BLUETOOTHDEVICE_)([0-9A-Fa-f]{12})`)

func parsePnpDevices(output []byte) ([]scan.RawObservation, error) {
	trimmed := strings.TrimSpace(string(output))
	if trimmed == "" {
		return nil, nil
	}

	var devices []pnpDevice
	if err := json.Unmarshal([]byte(trimmed), &devices); err != nil {
		var single pnpDevice
		if err := json.Unmarshal([]byte(trimmed), &single); err != nil {
			return nil, scan.NewSourceError(SourceSysreg, fmt.Errorf("unexpected Get-PnpDevice output: %w", err))
		}
		devices = []pnpDevice{single}
	}

	var observations []scan.RawObservation
	for _, device := range devices {
		if device.InstanceID == "" {
			continue
		}

		// Entries without an embedded device address are adapters or
		// service nodes. They keep their opaque instance ID so repeat
		// sightings still merge.
		raw := device.InstanceID
		if match := pnpAddressPattern.FindStringSubmatch(device.InstanceID); match != nil {
			raw = match[1]
		}

		observations = append(observations, scan.RawObservation{
			SourceID:    SourceSysreg,
			RawAddress:  raw,
			DisplayName: device.FriendlyName,
			Attributes: map[string]scan.AttrValue{
				scan.AttrConnectable: scan.BoolAttr(strings.EqualFold(device.Status, "OK")),
			},
		})
	}
	return observations, nil
}
