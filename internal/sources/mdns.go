package sources

import (
	"context"
	"strings"
	"sync"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/rmercier/bluescan/internal/logging"
	"github.com/rmercier/bluescan/internal/scan"
)

const mdnsDomain = "local."

// mdnsServiceTypes are the service types browsed for Bluetooth presence
// hints. Freebox boxes advertise _fbx-api._tcp, Apple devices announce
// companion links, and generic HTTP covers set-top boxes that publish a
// device MAC in their TXT records.
var mdnsServiceTypes = []string{
	"_fbx-api._tcp",
	"_companion-link._tcp",
	"_http._tcp",
}

// txtAddressKeys are the TXT record keys checked for a device address,
// in order of preference.
var txtAddressKeys = []string{"bt_mac", "bd_addr", "box_mac", "mac_address", "mac"}

// MDNS discovers devices that announce themselves over multicast DNS.
// It is a presence source, not a radio source: it only yields devices
// that publish an address in their TXT records, and it never reports a
// signal reading.
type MDNS struct {
	serviceTypes []string
}

// NewMDNS creates an mDNS presence source browsing the default service
// types.
func NewMDNS() *MDNS {
	return &MDNS{serviceTypes: mdnsServiceTypes}
}

func (m *MDNS) ID() string { return SourceMDNS }

// Observe browses every configured service type for the scan duration.
// Each type needs its own resolver because a browse owns its listener.
func (m *MDNS) Observe(ctx context.Context, req scan.ScanRequest) ([]scan.RawObservation, error) {
	ctx, cancel := context.WithTimeout(ctx, req.Duration)
	defer cancel()

	var (
		mu           sync.Mutex
		observations []scan.RawObservation
		browseErrs   int
	)

	var wg sync.WaitGroup
	for _, serviceType := range m.serviceTypes {
		wg.Add(1)
		go func(serviceType string) {
			defer wg.Done()

			resolver, err := zeroconf.NewResolver(nil)
			if err != nil {
				mu.Lock()
				browseErrs++
				mu.Unlock()
				logging.Debug("mDNS resolver failed", zap.String("service", serviceType), zap.Error(err))
				return
			}

			entries := make(chan *zeroconf.ServiceEntry)
			done := make(chan struct{})
			go func() {
				defer close(done)
				for entry := range entries {
					obs, ok := parseMDNSEntry(entry)
					if !ok {
						continue
					}
					mu.Lock()
					observations = append(observations, obs)
					mu.Unlock()
				}
			}()

			if err := resolver.Browse(ctx, serviceType, mdnsDomain, entries); err != nil {
				mu.Lock()
				browseErrs++
				mu.Unlock()
				logging.Debug("mDNS browse failed", zap.String("service", serviceType), zap.Error(err))
				return
			}

			<-ctx.Done()
			<-done
		}(serviceType)
	}
	wg.Wait()

	if browseErrs == len(m.serviceTypes) {
		return nil, scan.NewUnavailableError(SourceMDNS, "multicast DNS browsing failed on every service type")
	}
	return observations, nil
}

// parseMDNSEntry converts a service entry into an observation. Entries
// that do not publish a device address in their TXT records are skipped:
// without an address there is nothing to resolve the entry against.
func parseMDNSEntry(entry *zeroconf.ServiceEntry) (scan.RawObservation, bool) {
	txt := parseTXT(entry.Text)

	var raw string
	for _, key := range txtAddressKeys {
		if v := txt[key]; v != "" {
			raw = v
			break
		}
	}
	if raw == "" {
		return scan.RawObservation{}, false
	}

	name := strings.TrimSpace(entry.Instance)
	obs := scan.RawObservation{
		SourceID:    SourceMDNS,
		RawAddress:  raw,
		DisplayName: name,
		Attributes:  make(map[string]scan.AttrValue),
	}
	if model := txt["box_model"]; model != "" {
		obs.Attributes["mdns_model"] = scan.StringAttr(model)
	}
	if deviceType := txt["device_type"]; deviceType != "" {
		obs.Attributes["mdns_device_type"] = scan.StringAttr(deviceType)
	}
	return obs, true
}

// parseTXT splits "key=value" TXT records into a map. Keys without a
// value map to the empty string.
func parseTXT(records []string) map[string]string {
	txt := make(map[string]string, len(records))
	for _, record := range records {
		parts := strings.SplitN(record, "=", 2)
		key := strings.ToLower(strings.TrimSpace(parts[0]))
		if key == "" {
			continue
		}
		if len(parts) == 2 {
			txt[key] = parts[1]
		} else {
			txt[key] = ""
		}
	}
	return txt
}
