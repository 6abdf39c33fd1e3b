// Package enrich implements the post-merge enrichment pipeline.
//
// Enrichment derives secondary, human-friendly attributes for each merged
// device: the manufacturer name (from the advertised Bluetooth SIG company
// identifier, or failing that the address OUI prefix), a coarse device
// category, and a friendly display label synthesized when no source
// reported a usable name.
//
// The pipeline is deliberately best-effort: lookups that miss are no-ops,
// never errors, and identity fields are never touched. This keeps
// enrichment safe to skip entirely in constrained environments.
package enrich
