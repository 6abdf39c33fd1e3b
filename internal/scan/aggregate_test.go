package scan

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

// fakeSource is a scripted scan source for orchestrator tests.
type fakeSource struct {
	id    string
	obs   []RawObservation
	err   error
	delay time.Duration // how long Observe takes; 0 returns immediately
	block bool          // never settle, ignore ctx (misbehaving source)
}

func (f *fakeSource) ID() string { return f.id }

func (f *fakeSource) Observe(ctx context.Context, req ScanRequest) ([]RawObservation, error) {
	if f.block {
		// Misbehaving source: sleeps well past any reasonable deadline.
		time.Sleep(10 * time.Second)
		return nil, errors.New("unreachable")
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.obs, f.err
}

func obsFor(source, addr, name string, rssi *int) RawObservation {
	return RawObservation{SourceID: source, RawAddress: addr, DisplayName: name, SignalStrength: rssi}
}

func testConfig() Config {
	return Config{Duration: 50 * time.Millisecond, Concurrent: true, GracePeriod: 100 * time.Millisecond}
}

func TestAggregate_EndToEnd(t *testing.T) {
	// BLE sees the device without a name, classic sees it with one.
	agg := NewAggregator(
		&fakeSource{id: "ble", obs: []RawObservation{
			obsFor("ble", "aa:bb:cc:dd:ee:ff", "", Signal(-60)),
		}},
		&fakeSource{id: "classic", obs: []RawObservation{
			obsFor("classic", "AABBCCDDEEFF", "Freebox Server", Signal(-70)),
		}},
	)

	result, err := agg.Aggregate(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}

	if len(result.Devices) != 1 {
		t.Fatalf("got %d devices, want 1 (same physical device)", len(result.Devices))
	}

	d := result.Devices[0]
	if d.CanonicalID != "AA:BB:CC:DD:EE:FF" {
		t.Errorf("CanonicalID = %q, want AA:BB:CC:DD:EE:FF", d.CanonicalID)
	}
	if d.Name != "Freebox Server" {
		t.Errorf("Name = %q, want Freebox Server", d.Name)
	}
	if !reflect.DeepEqual(d.DetectionSources, []string{"ble", "classic"}) {
		t.Errorf("DetectionSources = %v, want [ble classic]", d.DetectionSources)
	}
	if d.SignalStrength == nil || *d.SignalStrength != -60 {
		t.Errorf("SignalStrength = %v, want -60 (priority source retained)", d.SignalStrength)
	}
	if !reflect.DeepEqual(d.MergedFrom, []string{"aa:bb:cc:dd:ee:ff", "AABBCCDDEEFF"}) {
		t.Errorf("MergedFrom = %v, want both raw identifiers in fold order", d.MergedFrom)
	}
	if len(result.SourceErrors) != 0 {
		t.Errorf("SourceErrors = %v, want empty", result.SourceErrors)
	}
}

func TestAggregate_PartialFailure(t *testing.T) {
	agg := NewAggregator(
		&fakeSource{id: "ble", obs: []RawObservation{
			obsFor("ble", "aa:bb:cc:dd:ee:01", "Headset", Signal(-50)),
		}},
		&fakeSource{id: "classic", err: errors.New("adapter busy")},
		&fakeSource{id: "sysreg", obs: []RawObservation{
			obsFor("sysreg", "aa:bb:cc:dd:ee:02", "Keyboard", nil),
		}},
	)

	result, err := agg.Aggregate(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("Aggregate() error = %v, want partial result", err)
	}

	if len(result.Devices) != 2 {
		t.Errorf("got %d devices, want 2 from the surviving sources", len(result.Devices))
	}
	if len(result.SourceErrors) != 1 {
		t.Fatalf("SourceErrors = %v, want exactly one entry", result.SourceErrors)
	}
	if _, ok := result.SourceErrors["classic"]; !ok {
		t.Errorf("SourceErrors = %v, want entry for classic", result.SourceErrors)
	}
}

func TestAggregate_TotalFailure(t *testing.T) {
	agg := NewAggregator(
		&fakeSource{id: "ble", err: errors.New("adapter off")},
		&fakeSource{id: "classic", err: errors.New("no hardware")},
	)

	_, err := agg.Aggregate(context.Background(), testConfig())
	if err == nil {
		t.Fatal("Aggregate() error = nil, want total failure")
	}
	if !IsTotalFailure(err) {
		t.Fatalf("IsTotalFailure(%v) = false", err)
	}

	var te *TotalFailureError
	if !errors.As(err, &te) {
		t.Fatalf("error is not *TotalFailureError: %v", err)
	}
	if len(te.PerSource) != 2 {
		t.Errorf("PerSource = %v, want both sources recorded", te.PerSource)
	}
}

func TestAggregate_OneDeviceAvertsTotalFailure(t *testing.T) {
	agg := NewAggregator(
		&fakeSource{id: "ble", obs: []RawObservation{
			obsFor("ble", "aa:bb:cc:dd:ee:ff", "Tracker", Signal(-80)),
		}},
		&fakeSource{id: "classic", err: errors.New("inquiry failed")},
	)

	result, err := agg.Aggregate(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("Aggregate() error = %v, want success with one device", err)
	}
	if len(result.Devices) != 1 {
		t.Errorf("got %d devices, want 1", len(result.Devices))
	}
	if len(result.SourceErrors) != 1 {
		t.Errorf("SourceErrors = %v, want one entry", result.SourceErrors)
	}
}

func TestAggregate_FilterAppliedAfterMerge(t *testing.T) {
	// BLE reports the device nameless; classic later names it "My Phone".
	// The filter must match against the merged name.
	agg := NewAggregator(
		&fakeSource{id: "ble", obs: []RawObservation{
			obsFor("ble", "aa:bb:cc:dd:ee:01", "", Signal(-60)),
			obsFor("ble", "aa:bb:cc:dd:ee:02", "Speaker", Signal(-40)),
		}},
		&fakeSource{id: "classic", obs: []RawObservation{
			obsFor("classic", "AA:BB:CC:DD:EE:01", "My Phone", nil),
		}},
	)

	cfg := testConfig()
	cfg.FilterName = "phone"
	result, err := agg.Aggregate(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}

	if len(result.Devices) != 1 {
		t.Fatalf("got %d devices, want 1 (only the phone matches)", len(result.Devices))
	}
	if result.Devices[0].Name != "My Phone" {
		t.Errorf("Name = %q, want My Phone", result.Devices[0].Name)
	}
	if result.TotalDiscovered != 2 {
		t.Errorf("TotalDiscovered = %d, want 2 (filter excludes, never discards the count)", result.TotalDiscovered)
	}
}

func TestAggregate_ValidationErrors(t *testing.T) {
	agg := NewAggregator(&fakeSource{id: "ble"})

	tests := []struct {
		name string
		cfg  Config
	}{
		{
			name: "zero duration",
			cfg:  Config{Duration: 0},
		},
		{
			name: "negative duration",
			cfg:  Config{Duration: -time.Second},
		},
		{
			name: "unknown source",
			cfg:  Config{Duration: time.Second, Sources: []string{"sonar"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := agg.Aggregate(context.Background(), tt.cfg)
			if err == nil {
				t.Fatal("Aggregate() error = nil, want validation failure")
			}
			if !IsValidationError(err) {
				t.Errorf("IsValidationError(%v) = false", err)
			}
		})
	}
}

func TestAggregate_SourceSubset(t *testing.T) {
	agg := NewAggregator(
		&fakeSource{id: "ble", obs: []RawObservation{
			obsFor("ble", "aa:bb:cc:dd:ee:01", "One", nil),
		}},
		&fakeSource{id: "classic", err: errors.New("must not run")},
	)

	result, err := agg.Aggregate(context.Background(), Config{
		Duration:   50 * time.Millisecond,
		Sources:    []string{"ble"},
		Concurrent: true,
	})
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if len(result.SourceErrors) != 0 {
		t.Errorf("SourceErrors = %v, unselected source must not run", result.SourceErrors)
	}
	if len(result.Devices) != 1 {
		t.Errorf("got %d devices, want 1", len(result.Devices))
	}
}

func TestAggregate_MisbehavingSourceTimesOut(t *testing.T) {
	agg := NewAggregator(
		&fakeSource{id: "ble", obs: []RawObservation{
			obsFor("ble", "aa:bb:cc:dd:ee:01", "Fast", nil),
		}},
		&fakeSource{id: "classic", block: true},
	)

	start := time.Now()
	result, err := agg.Aggregate(context.Background(), Config{
		Duration:    30 * time.Millisecond,
		Concurrent:  true,
		GracePeriod: 50 * time.Millisecond,
	})
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("Aggregate() error = %v, want degraded result", err)
	}
	if elapsed > 2*time.Second {
		t.Errorf("Aggregate blocked for %v, must not wait for a stuck source", elapsed)
	}
	if len(result.Devices) != 1 {
		t.Errorf("got %d devices, want 1 from the source that settled", len(result.Devices))
	}
	msg, ok := result.SourceErrors["classic"]
	if !ok {
		t.Fatalf("SourceErrors = %v, want timeout entry for classic", result.SourceErrors)
	}
	if msg == "" {
		t.Error("timeout reason must be distinguishable")
	}
}

func TestAggregate_CancelledSourceIsTimeout(t *testing.T) {
	agg := NewAggregator(
		&fakeSource{id: "ble", obs: []RawObservation{
			obsFor("ble", "aa:bb:cc:dd:ee:01", "Fast", nil),
		}},
		// Cooperative but slow: honors ctx and reports the deadline error.
		&fakeSource{id: "classic", delay: 5 * time.Second},
	)

	result, err := agg.Aggregate(context.Background(), Config{
		Duration:    30 * time.Millisecond,
		Concurrent:  true,
		GracePeriod: 100 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if len(result.Devices) != 1 {
		t.Errorf("got %d devices, want 1", len(result.Devices))
	}
	if _, ok := result.SourceErrors["classic"]; !ok {
		t.Errorf("SourceErrors = %v, want entry for cancelled source", result.SourceErrors)
	}
}

func TestAggregate_Sequential(t *testing.T) {
	agg := NewAggregator(
		&fakeSource{id: "ble", obs: []RawObservation{
			obsFor("ble", "aa:bb:cc:dd:ee:01", "One", Signal(-50)),
		}},
		&fakeSource{id: "classic", obs: []RawObservation{
			obsFor("classic", "aa:bb:cc:dd:ee:01", "", Signal(-70)),
			obsFor("classic", "aa:bb:cc:dd:ee:02", "Two", nil),
		}},
	)

	cfg := testConfig()
	cfg.Concurrent = false
	result, err := agg.Aggregate(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if len(result.Devices) != 2 {
		t.Fatalf("got %d devices, want 2", len(result.Devices))
	}
	// First-seen order: device 01 (from ble, rank 0) before device 02.
	if result.Devices[0].CanonicalID != "AA:BB:CC:DD:EE:01" {
		t.Errorf("first device = %q, want AA:BB:CC:DD:EE:01", result.Devices[0].CanonicalID)
	}
	if *result.Devices[0].SignalStrength != -50 {
		t.Errorf("signal = %d, want -50 from the priority source", *result.Devices[0].SignalStrength)
	}
}

func TestAggregate_DeterministicFoldOrder(t *testing.T) {
	// The classic source settles long before BLE, but fold order must
	// still follow source priority: BLE's name is first-seen.
	agg := NewAggregator(
		&fakeSource{id: "ble", delay: 20 * time.Millisecond, obs: []RawObservation{
			obsFor("ble", "aa:bb:cc:dd:ee:ff", "BLE Name", nil),
		}},
		&fakeSource{id: "classic", obs: []RawObservation{
			obsFor("classic", "aa:bb:cc:dd:ee:ff", "Classic Name", nil),
		}},
	)

	for i := 0; i < 5; i++ {
		result, err := agg.Aggregate(context.Background(), testConfig())
		if err != nil {
			t.Fatalf("Aggregate() error = %v", err)
		}
		if result.Devices[0].Name != "BLE Name" {
			t.Fatalf("run %d: Name = %q, want BLE Name regardless of completion order",
				i, result.Devices[0].Name)
		}
	}
}

func TestAggregate_NonNormalizableAlwaysDistinct(t *testing.T) {
	// Two sources report the same opaque handle: they must stay separate
	// devices. Within one source, repeats of the handle still merge.
	agg := NewAggregator(
		&fakeSource{id: "sysreg", obs: []RawObservation{
			obsFor("sysreg", "opaque-handle-1", "Reg Device", nil),
			obsFor("sysreg", "opaque-handle-1", "Reg Device", nil),
		}},
		&fakeSource{id: "mdns", obs: []RawObservation{
			obsFor("mdns", "opaque-handle-1", "Net Device", nil),
		}},
	)

	result, err := agg.Aggregate(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if len(result.Devices) != 2 {
		t.Fatalf("got %d devices, want 2 (opaque IDs never merge across sources)", len(result.Devices))
	}
	if len(result.Devices[0].MergedFrom) != 2 {
		t.Errorf("same-source repeats should merge: MergedFrom = %v", result.Devices[0].MergedFrom)
	}
	for _, d := range result.Devices {
		if d.Normalized() {
			t.Errorf("device %q marked normalized, want opaque", d.CanonicalID)
		}
		if d.CanonicalID != "opaque-handle-1" {
			t.Errorf("CanonicalID = %q, want raw identifier unchanged", d.CanonicalID)
		}
	}
}

func TestAggregate_EnricherRuns(t *testing.T) {
	agg := NewAggregator(
		&fakeSource{id: "ble", obs: []RawObservation{
			obsFor("ble", "aa:bb:cc:dd:ee:ff", "", nil),
		}},
	).WithEnricher(func(d *CanonicalDevice) {
		d.Derived = &Derived{CompanyName: "Acme Corp"}
		if IsPlaceholderName(d.Name) {
			d.Name = "Acme Device"
		}
	})

	result, err := agg.Aggregate(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	d := result.Devices[0]
	if d.Derived == nil || d.Derived.CompanyName != "Acme Corp" {
		t.Errorf("Derived = %+v, want company populated", d.Derived)
	}
	if d.Name != "Acme Device" {
		t.Errorf("Name = %q, want enriched placeholder replacement", d.Name)
	}
}

func TestAggregate_ProgressEvents(t *testing.T) {
	var events []ProgressEvent
	agg := NewAggregator(
		&fakeSource{id: "ble", obs: []RawObservation{
			obsFor("ble", "aa:bb:cc:dd:ee:ff", "X", nil),
		}},
	).WithProgress(func(ev ProgressEvent) {
		events = append(events, ev)
	})

	if _, err := agg.Aggregate(context.Background(), testConfig()); err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}

	var started, settled, done bool
	for _, ev := range events {
		switch ev.Stage {
		case StageSourceStarted:
			started = true
		case StageSourceSettled:
			settled = true
		case StageDone:
			done = true
			if ev.Devices != 1 {
				t.Errorf("StageDone devices = %d, want 1", ev.Devices)
			}
		}
	}
	if !started || !settled || !done {
		t.Errorf("missing lifecycle events: started=%v settled=%v done=%v", started, settled, done)
	}
}

func TestAggregate_EmptyResultIsNotNil(t *testing.T) {
	agg := NewAggregator(
		&fakeSource{id: "ble"}, // succeeds with zero observations
		&fakeSource{id: "classic", err: errors.New("broken")},
	)

	result, err := agg.Aggregate(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if result.Devices == nil {
		t.Error("Devices is nil, want empty non-nil slice")
	}
}
