package relic

// Index maps an effect name to the positions of the items carrying it. An
// item appears once per field holding the name, in input order.
type Index map[string][]int

// BuildIndex indexes every non-empty field of items.
func BuildIndex(items []Relic) Index {
	ix := make(Index)
	for i := range items {
		for _, name := range items[i].Fields() {
			ix[name] = append(ix[name], i)
		}
	}
	return ix
}

// Occurrences returns how many fields across the indexed items carry effect.
func (ix Index) Occurrences(effect string) int {
	return len(ix[effect])
}

// FilterCandidates narrows items to the ones worth searching. With
// requirements, only items carrying at least one required effect survive;
// without, every item does. Items carrying any avoided effect are then
// removed. Content duplicates collapse to their first occurrence and the
// result keeps input order.
func FilterCandidates(items []Relic, ix Index, required []Requirement, avoided []string) []Relic {
	keep := make([]bool, len(items))
	if len(required) == 0 {
		for i := range keep {
			keep[i] = true
		}
	} else {
		for _, req := range required {
			for _, i := range ix[req.Effect] {
				keep[i] = true
			}
		}
	}
	for _, name := range avoided {
		for _, i := range ix[name] {
			keep[i] = false
		}
	}

	seen := make(map[string]bool)
	out := make([]Relic, 0, len(items))
	for i := range items {
		if !keep[i] {
			continue
		}
		k := items[i].Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, items[i])
	}
	return out
}
