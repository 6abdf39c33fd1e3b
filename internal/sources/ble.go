package sources

import (
	"context"
	"time"

	"go.uber.org/zap"
	"tinygo.org/x/bluetooth"

	"github.com/rmercier/bluescan/internal/logging"
	"github.com/rmercier/bluescan/internal/scan"
)

// BLE scans for Bluetooth Low Energy advertisements through the platform
// adapter (BlueZ on Linux, CoreBluetooth on macOS, WinRT on Windows).
type BLE struct {
	adapter *bluetooth.Adapter
}

// NewBLE creates a BLE source over the default platform adapter.
func NewBLE() *BLE {
	return &BLE{adapter: bluetooth.DefaultAdapter}
}

func (b *BLE) ID() string { return SourceBLE }

// Observe runs an advertisement scan for the requested duration. Devices
// advertise repeatedly during a scan window, so observations are keyed by
// address while collecting: the first advertised name is kept and the
// signal reading tracks the most recent advertisement.
func (b *BLE) Observe(ctx context.Context, req scan.ScanRequest) ([]scan.RawObservation, error) {
	if err := b.adapter.Enable(); err != nil {
		return nil, scan.NewUnavailableError(SourceBLE, "cannot enable adapter: "+err.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, req.Duration)
	defer cancel()

	// Scan blocks until StopScan is called, so the context watcher is
	// what ends the scan window.
	go func() {
		<-ctx.Done()
		if err := b.adapter.StopScan(); err != nil {
			logging.Debug("StopScan after scan window", zap.Error(err))
		}
	}()

	collected := make(map[string]*scan.RawObservation)
	order := make([]string, 0, 16)

	start := time.Now()
	err := b.adapter.Scan(func(_ *bluetooth.Adapter, result bluetooth.ScanResult) {
		// The adapter invokes this callback serially from the scan loop.
		addr := result.Address.String()
		obs, seen := collected[addr]
		if !seen {
			obs = &scan.RawObservation{
				SourceID:   SourceBLE,
				RawAddress: addr,
				Attributes: make(map[string]scan.AttrValue),
			}
			collected[addr] = obs
			order = append(order, addr)
		}

		if obs.DisplayName == "" {
			obs.DisplayName = result.LocalName()
		}
		obs.SignalStrength = scan.Signal(int(result.RSSI))
		applyAdvertisement(obs, result)
	})

	if err != nil && ctx.Err() == nil {
		return nil, scan.NewSourceError(SourceBLE, err)
	}

	observations := make([]scan.RawObservation, 0, len(order))
	for _, addr := range order {
		observations = append(observations, *collected[addr])
	}

	logging.Debug("BLE scan window closed",
		zap.Int("advertisers", len(observations)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return observations, nil
}

// applyAdvertisement copies payload fields that identify the device. Only
// the first manufacturer data element matters for vendor resolution.
func applyAdvertisement(obs *scan.RawObservation, result bluetooth.ScanResult) {
	for _, element := range result.ManufacturerData() {
		obs.Attributes[scan.AttrManufacturerID] = scan.IntAttr(int64(element.CompanyID))
		obs.Attributes[scan.AttrManufacturerData] = scan.BytesAttr(element.Data)
		break
	}

	if uuids := serviceUUIDs(result); len(uuids) > 0 {
		obs.Attributes[scan.AttrServiceUUIDs] = scan.StringListAttr(uuids)
	}
}

func serviceUUIDs(result bluetooth.ScanResult) []string {
	elements := result.ServiceData()
	if len(elements) == 0 {
		return nil
	}
	uuids := make([]string, 0, len(elements))
	for _, element := range elements {
		uuids = append(uuids, element.UUID.String())
	}
	return uuids
}
