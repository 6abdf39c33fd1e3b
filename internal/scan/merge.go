package scan

// MergeObservation folds one raw observation into a canonical device record.
//
// When existing is nil a new record is created from the observation alone.
// Otherwise existing is mutated in place following the fill policy: a scalar
// field is only overwritten when the existing value is absent, empty or a
// placeholder. Existing information is never displaced by a later
// observation's empty value.
//
// rank is the priority rank of the observation's source (lower is higher
// priority); it decides which source's signal reading is retained.
//
// Merging is NOT safe for concurrent use: the aggregator serializes all
// merges into a single-threaded fold, which is what makes arrival order
// (and therefore the primary-name choice) deterministic.
func MergeObservation(existing *CanonicalDevice, obs RawObservation, rank int) *CanonicalDevice {
	if existing == nil {
		return newDevice(obs, rank)
	}

	mergeName(existing, obs.DisplayName)
	mergeSignal(existing, obs.SignalStrength, rank)
	mergeAttributes(existing, obs.Attributes)

	if !existing.HasSource(obs.SourceID) {
		existing.DetectionSources = append(existing.DetectionSources, obs.SourceID)
	}
	// Full audit trail: repeats from the same source are recorded too.
	existing.MergedFrom = append(existing.MergedFrom, obs.RawAddress)

	return existing
}

// newDevice creates the canonical record for the first observation of an
// identity.
func newDevice(obs RawObservation, rank int) *CanonicalDevice {
	canonical, ok := NormalizeAddress(obs.RawAddress)

	name := obs.DisplayName
	if IsPlaceholderName(name) {
		name = PlaceholderName
	}

	d := &CanonicalDevice{
		CanonicalID:      canonical,
		Address:          canonical,
		Name:             name,
		DetectionSources: []string{obs.SourceID},
		MergedFrom:       []string{obs.RawAddress},
		normalized:       ok,
	}

	if obs.SignalStrength != nil {
		v := *obs.SignalStrength
		d.SignalStrength = &v
		d.signalRank = rank
	}

	if len(obs.Attributes) > 0 {
		d.Attributes = make(map[string]AttrValue, len(obs.Attributes))
		for k, v := range obs.Attributes {
			d.Attributes[k] = v
		}
	}

	return d
}

// mergeName applies the name resolution policy: a non-placeholder name wins
// over a placeholder; when two sources supply distinct real names the
// first-seen name stays primary and the later one is kept as an alternate
// attribute instead of being discarded.
func mergeName(d *CanonicalDevice, incoming string) {
	if IsPlaceholderName(incoming) {
		return
	}
	if IsPlaceholderName(d.Name) {
		d.Name = incoming
		return
	}
	if d.Name == incoming {
		return
	}
	addAlternateName(d, incoming)
}

func addAlternateName(d *CanonicalDevice, name string) {
	if d.Attributes == nil {
		d.Attributes = make(map[string]AttrValue, 1)
	}
	existing := d.Attributes[AttrAlternateNames]
	for _, n := range existing.StrList {
		if n == name {
			return
		}
	}
	d.Attributes[AttrAlternateNames] = StringListAttr(append(existing.StrList, name))
}

// mergeSignal retains the reading from the highest-priority source; ties
// (same rank, i.e. a repeat sighting from the same source) go to the most
// recently merged value.
func mergeSignal(d *CanonicalDevice, incoming *int, rank int) {
	if incoming == nil {
		return
	}
	if d.SignalStrength != nil && rank > d.signalRank {
		return
	}
	v := *incoming
	d.SignalStrength = &v
	d.signalRank = rank
}

// mergeAttributes merges key-by-key with the fill policy applied
// independently per key: one source can supply manufacturer data while
// another supplies service UUIDs and both are retained.
func mergeAttributes(d *CanonicalDevice, incoming map[string]AttrValue) {
	if len(incoming) == 0 {
		return
	}
	if d.Attributes == nil {
		d.Attributes = make(map[string]AttrValue, len(incoming))
	}
	for k, v := range incoming {
		if v.IsZero() {
			continue
		}
		if cur, ok := d.Attributes[k]; ok && !cur.IsZero() {
			continue
		}
		d.Attributes[k] = v
	}
}
