package scan

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rmercier/bluescan/internal/logging"
)

// DefaultGracePeriod is how long the orchestrator waits beyond the scan
// duration for sources to tear down before declaring them timed out.
const DefaultGracePeriod = 2 * time.Second

// ScanRequest is what the orchestrator hands each scan source.
type ScanRequest struct {
	// Duration is how long the source should listen for devices.
	Duration time.Duration

	// FilterName is advisory only: sources may use it to narrow radio
	// filtering, but the authoritative name filter is applied by the
	// orchestrator against the final merged name.
	FilterName string
}

// Source is one autonomous scan source (BLE advertisements, classic
// inquiry, platform registry, ...). Implementations must be stateless per
// invocation, must honor ctx cancellation, and should return within the
// requested duration plus a small teardown margin.
type Source interface {
	// ID returns the stable source identifier used in detection
	// provenance and error reporting.
	ID() string

	// Observe runs one scan and returns the raw observations, or an
	// error if the source failed entirely.
	Observe(ctx context.Context, req ScanRequest) ([]RawObservation, error)
}

// ProgressStage identifies a step of the aggregation lifecycle
type ProgressStage int

const (
	// StageSourceStarted is emitted when a source's scan task launches
	StageSourceStarted ProgressStage = iota
	// StageSourceSettled is emitted when a source's task completes or fails
	StageSourceSettled
	// StageMerging is emitted once, before the deterministic fold
	StageMerging
	// StageDone is emitted with the final device count
	StageDone
)

// ProgressEvent describes one aggregation lifecycle step. Events are
// delivered from the orchestrator goroutine, never from scan tasks, so
// handlers need no synchronization against merges.
type ProgressEvent struct {
	Stage        ProgressStage
	SourceID     string
	Observations int
	Devices      int
	Err          error
}

// ProgressFunc receives progress events during an aggregation run
type ProgressFunc func(ProgressEvent)

// Config carries the parameters of one aggregation call.
type Config struct {
	// Duration is the scan window. Must be positive.
	Duration time.Duration

	// FilterName, when non-empty, is a case-insensitive substring match
	// applied to each finalized device's name, after merge and
	// enrichment. A device renamed by a later merge can therefore still
	// match.
	FilterName string

	// Sources selects which registered sources run. Empty means all.
	// Folding always follows the aggregator's registered priority order,
	// not the order given here.
	Sources []string

	// Concurrent selects fan-out execution. When false, sources run one
	// at a time in priority order.
	Concurrent bool

	// GracePeriod bounds task teardown after the scan window closes.
	// Zero means DefaultGracePeriod.
	GracePeriod time.Duration
}

// Aggregator runs the configured scan sources and reconciles their
// observations into one canonical record per device.
//
// The source slice order is the source priority order: it decides both the
// deterministic fold order and which source's signal reading wins a merge.
type Aggregator struct {
	sources  []Source
	enrich   func(*CanonicalDevice)
	progress ProgressFunc
}

// NewAggregator creates an aggregator over the given sources, in priority
// order (highest priority first).
func NewAggregator(sources ...Source) *Aggregator {
	return &Aggregator{sources: sources}
}

// WithEnricher installs the post-merge enrichment pass. The function is
// called once per finalized device and must not fail the aggregation.
func (a *Aggregator) WithEnricher(fn func(*CanonicalDevice)) *Aggregator {
	a.enrich = fn
	return a
}

// WithProgress installs a progress event handler.
func (a *Aggregator) WithProgress(fn ProgressFunc) *Aggregator {
	a.progress = fn
	return a
}

// SourceIDs returns the registered source identifiers in priority order.
func (a *Aggregator) SourceIDs() []string {
	ids := make([]string, len(a.sources))
	for i, s := range a.sources {
		ids[i] = s.ID()
	}
	return ids
}

// sourceOutcome is the settled result of one scan task. Tasks never touch
// shared state: each returns its outcome to the orchestrator over a channel
// and all folding happens afterwards, single-threaded.
type sourceOutcome struct {
	id      string
	obs     []RawObservation
	err     error
	elapsed time.Duration
}

// Aggregate runs one scan across the configured sources and returns the
// deduplicated, enriched device catalog.
//
// Partial failure is not an error: sources that fail are reported in
// Result.SourceErrors while the rest contribute devices. The call itself
// fails only on invalid configuration or when every source failed and no
// device was accumulated.
func (a *Aggregator) Aggregate(ctx context.Context, cfg Config) (*Result, error) {
	if cfg.Duration <= 0 {
		return nil, NewValidationError("scan duration must be positive, got %v", cfg.Duration)
	}
	if cfg.GracePeriod <= 0 {
		cfg.GracePeriod = DefaultGracePeriod
	}

	tasks, err := a.selectSources(cfg.Sources)
	if err != nil {
		return nil, err
	}

	logging.LogScanStart(cfg.Duration, sourceIDs(tasks), cfg.Concurrent, cfg.FilterName)

	req := ScanRequest{Duration: cfg.Duration, FilterName: cfg.FilterName}

	var outcomes map[string]sourceOutcome
	if cfg.Concurrent {
		outcomes = a.runConcurrent(ctx, tasks, req, cfg.GracePeriod)
	} else {
		outcomes = a.runSequential(ctx, tasks, req)
	}

	return a.fold(tasks, outcomes, cfg.FilterName)
}

// selectSources resolves the requested source IDs against the registered
// sources, preserving registered priority order.
func (a *Aggregator) selectSources(requested []string) ([]Source, error) {
	if len(a.sources) == 0 {
		return nil, NewValidationError("no scan sources registered")
	}
	if len(requested) == 0 {
		return a.sources, nil
	}

	want := make(map[string]bool, len(requested))
	for _, id := range requested {
		want[id] = true
	}

	selected := make([]Source, 0, len(requested))
	for _, src := range a.sources {
		if want[src.ID()] {
			selected = append(selected, src)
			delete(want, src.ID())
		}
	}
	for id := range want {
		return nil, NewValidationError("unknown scan source %q", id)
	}
	return selected, nil
}

// runConcurrent fans out one goroutine per source and gathers all outcomes.
// The orchestrator never waits beyond the scan duration plus the grace
// period: tasks that have not settled by then are recorded as timed out,
// while already-settled outcomes are kept (graceful degradation).
func (a *Aggregator) runConcurrent(ctx context.Context, tasks []Source, req ScanRequest, grace time.Duration) map[string]sourceOutcome {
	// Sources get the scan window; the grace period is reserved for
	// teardown after this context expires.
	scanCtx, cancel := context.WithTimeout(ctx, req.Duration)
	defer cancel()

	results := make(chan sourceOutcome, len(tasks))
	for _, src := range tasks {
		a.emit(ProgressEvent{Stage: StageSourceStarted, SourceID: src.ID()})
		go func(src Source) {
			start := time.Now()
			obs, err := src.Observe(scanCtx, req)
			results <- sourceOutcome{id: src.ID(), obs: obs, err: err, elapsed: time.Since(start)}
		}(src)
	}

	outcomes := make(map[string]sourceOutcome, len(tasks))
	timer := time.NewTimer(req.Duration + grace)
	defer timer.Stop()
	done := ctx.Done()

	remaining := len(tasks)
collect:
	for remaining > 0 {
		select {
		case out := <-results:
			remaining--
			a.record(outcomes, out)
		case <-done:
			// Caller cancelled: shrink the wait to the grace period so
			// cooperative teardown can still deliver settled outcomes.
			done = nil
			if !timer.Stop() {
				<-timer.C
			}
			timer.Reset(grace)
		case <-timer.C:
			break collect
		}
	}

	// Anything that did not settle is a timeout, same as a source error.
	for _, src := range tasks {
		if _, ok := outcomes[src.ID()]; !ok {
			a.record(outcomes, sourceOutcome{
				id:      src.ID(),
				err:     NewTimeoutError(src.ID()),
				elapsed: req.Duration + grace,
			})
		}
	}
	return outcomes
}

// runSequential runs sources one at a time in priority order.
func (a *Aggregator) runSequential(ctx context.Context, tasks []Source, req ScanRequest) map[string]sourceOutcome {
	outcomes := make(map[string]sourceOutcome, len(tasks))
	for _, src := range tasks {
		if ctx.Err() != nil {
			a.record(outcomes, sourceOutcome{id: src.ID(), err: NewTimeoutError(src.ID())})
			continue
		}
		a.emit(ProgressEvent{Stage: StageSourceStarted, SourceID: src.ID()})

		scanCtx, cancel := context.WithTimeout(ctx, req.Duration)
		start := time.Now()
		obs, err := src.Observe(scanCtx, req)
		cancel()

		a.record(outcomes, sourceOutcome{id: src.ID(), obs: obs, err: err, elapsed: time.Since(start)})
	}
	return outcomes
}

// record classifies and stores one settled outcome and reports progress.
func (a *Aggregator) record(outcomes map[string]sourceOutcome, out sourceOutcome) {
	if out.err != nil {
		out.err = classifySourceError(out.id, out.err)
	}
	outcomes[out.id] = out
	logging.LogSourceResult(out.id, len(out.obs), out.elapsed, out.err)
	a.emit(ProgressEvent{
		Stage:        StageSourceSettled,
		SourceID:     out.id,
		Observations: len(out.obs),
		Err:          out.err,
	})
}

// classifySourceError maps raw source errors onto the scan error taxonomy.
// A source timing out is treated identically to a source erroring, with a
// distinguishable reason.
func classifySourceError(sourceID string, err error) error {
	var se *ScanError
	if errors.As(err, &se) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewTimeoutError(sourceID)
	}
	return NewSourceError(sourceID, err)
}

// fold builds the final device set from the settled outcomes.
//
// Observations are folded in a fixed, deterministic order: sources in
// priority order, and within a source in arrival order. This runs strictly
// after all tasks have settled, single-threaded, so merge determinism does
// not depend on wall-clock completion order.
func (a *Aggregator) fold(tasks []Source, outcomes map[string]sourceOutcome, filter string) (*Result, error) {
	a.emit(ProgressEvent{Stage: StageMerging})

	sourceErrors := make(map[string]error)
	devices := make(map[string]*CanonicalDevice)
	var order []string

	for rank, src := range tasks {
		out := outcomes[src.ID()]
		if out.err != nil {
			sourceErrors[src.ID()] = out.err
			continue
		}
		for _, obs := range out.obs {
			key := foldKey(obs)
			existing := devices[key]
			merged := MergeObservation(existing, obs, rank)
			if existing == nil {
				devices[key] = merged
				order = append(order, key)
			}
			logging.LogDeviceMerged(merged.CanonicalID, obs.SourceID, obs.RawAddress)
		}
	}

	// Total failure: every configured source failed and nothing was
	// accumulated. Anything less is a partial result, not an error.
	if len(sourceErrors) == len(tasks) && len(order) == 0 {
		perSource := make(map[string]error, len(sourceErrors))
		for id, err := range sourceErrors {
			perSource[id] = err
		}
		return nil, &TotalFailureError{PerSource: perSource}
	}

	all := make([]*CanonicalDevice, 0, len(order))
	for _, key := range order {
		d := devices[key]
		if a.enrich != nil {
			a.enrich(d)
		}
		all = append(all, d)
	}

	matched := all
	if filter != "" {
		needle := strings.ToLower(filter)
		matched = make([]*CanonicalDevice, 0, len(all))
		for _, d := range all {
			if strings.Contains(strings.ToLower(d.Name), needle) {
				matched = append(matched, d)
			}
		}
	}

	result := &Result{
		Devices:         matched,
		TotalDiscovered: len(all),
	}
	if len(sourceErrors) > 0 {
		result.SourceErrors = make(map[string]string, len(sourceErrors))
		for id, err := range sourceErrors {
			result.SourceErrors[id] = err.Error()
		}
	}

	a.emit(ProgressEvent{Stage: StageDone, Devices: len(matched)})
	return result, nil
}

// foldKey returns the map key used during the fold. Normalizable addresses
// share one key across sources; non-normalizable identifiers are qualified
// by source so they never merge across sources (conservative policy for
// platform-opaque handles).
func foldKey(obs RawObservation) string {
	canonical, ok := NormalizeAddress(obs.RawAddress)
	if ok {
		return canonical
	}
	return obs.SourceID + "\x00" + canonical
}

func (a *Aggregator) emit(ev ProgressEvent) {
	if a.progress != nil {
		a.progress(ev)
	}
}

func sourceIDs(tasks []Source) []string {
	ids := make([]string, len(tasks))
	for i, s := range tasks {
		ids[i] = s.ID()
	}
	return ids
}
