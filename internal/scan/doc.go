// Package scan implements the multi-source discovery aggregation engine.
//
// The engine runs several independent Bluetooth scan sources concurrently
// (BLE advertisements, classic inquiry, platform registries, network
// presence), tolerates any subset of them failing, reconciles observations
// that refer to the same physical device, and returns one canonical record
// per device within a bounded time window.
//
// # Pipeline
//
// One aggregation call flows through four stages:
//
//  1. Fan-out: one goroutine per configured source, each producing an
//     isolated observation list or an error. No shared state is touched
//     while tasks run.
//  2. Identity resolution: NormalizeAddress canonicalizes each raw address
//     so sightings of the same device compare equal across sources.
//  3. Merge: observations are folded single-threaded in a fixed order
//     (source priority, then arrival order), so merge results are
//     deterministic regardless of task completion order.
//  4. Enrichment: an optional post-merge pass derives company names and
//     friendly labels; it never changes identity and never fails the call.
//
// # Failure model
//
// A failing or timed-out source contributes an entry to
// Result.SourceErrors and nothing else; sibling sources are unaffected.
// The call itself only fails on invalid configuration, or when every
// source failed and zero devices were accumulated (TotalFailureError).
//
// # Usage Example
//
//	agg := scan.NewAggregator(sources...).WithEnricher(enricher.Apply)
//	result, err := agg.Aggregate(ctx, scan.Config{
//	    Duration:   5 * time.Second,
//	    Concurrent: true,
//	})
//	if err != nil {
//	    return err
//	}
//	for _, device := range result.Devices {
//	    fmt.Println(device)
//	}
//
// Nothing is persisted between calls: each aggregation is a stateless,
// one-shot operation.
package scan
