package vodtolive

import "sort"

// closestClientBandwidth resolves a viewer-requested bandwidth against the
// available ladder: the largest entry not exceeding the request, or the
// smallest entry when everything available exceeds it.
func closestClientBandwidth(available []Bandwidth, requested Bandwidth) (Bandwidth, bool) {
	if len(available) == 0 {
		return 0, false
	}
	sorted := append([]Bandwidth(nil), available...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] > sorted[j] })
	for _, bw := range sorted {
		if bw <= requested {
			return bw, true
		}
	}
	return sorted[len(sorted)-1], true
}

// closestCoveringBandwidth aligns an external bandwidth (a new VOD's variant,
// or an ad splice's ladder entry) onto the available ladder: the smallest
// entry at or above the target, or the largest entry when none covers it.
// Note the comparison runs in the opposite direction from the client policy;
// the two are intentionally not unified.
func closestCoveringBandwidth(available []Bandwidth, target Bandwidth) (Bandwidth, bool) {
	if len(available) == 0 {
		return 0, false
	}
	sorted := append([]Bandwidth(nil), available...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	for _, bw := range sorted {
		if bw >= target {
			return bw, true
		}
	}
	return sorted[len(sorted)-1], true
}
