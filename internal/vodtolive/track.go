package vodtolive

import (
	"math"
	"sort"
)

// fallbackTargetDuration is used for tracks finalized without any playable
// segment, matching the common HLS default.
const fallbackTargetDuration = 10

// track is the append-only segment sequence for one bandwidth of one VOD.
type track struct {
	segments       []Segment
	targetDuration int
	initialized    bool
}

// trackSet owns the per-bandwidth tracks of a single VOD. Tracks are mutated
// only during that VOD's load phase and are read-only afterwards. During a
// load, each track has a single writer; the map itself is populated up front
// so concurrent per-track ingestion never mutates shared state.
type trackSet struct {
	tracks map[Bandwidth]*track
}

func newTrackSet() *trackSet {
	return &trackSet{tracks: make(map[Bandwidth]*track)}
}

// ensure creates an empty track for bw if none exists.
func (ts *trackSet) ensure(bw Bandwidth) {
	if _, ok := ts.tracks[bw]; !ok {
		ts.tracks[bw] = &track{}
	}
}

// has reports whether a track exists for bw.
func (ts *trackSet) has(bw Bandwidth) bool {
	_, ok := ts.tracks[bw]
	return ok
}

// append adds seg to the track for bw. Appending to a finalized track is a
// no-op, which keeps duplicate variant declarations from corrupting a track.
func (ts *trackSet) append(bw Bandwidth, seg Segment) {
	tr, ok := ts.tracks[bw]
	if !ok || tr.initialized {
		return
	}
	tr.segments = append(tr.segments, seg)
}

// finalize computes the track's target duration (ceiling of the largest
// playable segment duration) and marks it initialized.
func (ts *trackSet) finalize(bw Bandwidth) {
	tr, ok := ts.tracks[bw]
	if !ok || tr.initialized {
		return
	}
	max := 0.0
	for _, seg := range tr.segments {
		if !seg.Discontinuity() && seg.Duration > max {
			max = seg.Duration
		}
	}
	if max > 0 {
		tr.targetDuration = int(math.Ceil(max))
	} else {
		tr.targetDuration = fallbackTargetDuration
	}
	tr.initialized = true
}

// segments returns the track's segment sequence. Callers must not mutate it.
func (ts *trackSet) segments(bw Bandwidth) []Segment {
	tr, ok := ts.tracks[bw]
	if !ok {
		return nil
	}
	return tr.segments
}

// lastSegment returns the most recently appended segment for bw.
func (ts *trackSet) lastSegment(bw Bandwidth) (Segment, bool) {
	tr, ok := ts.tracks[bw]
	if !ok || len(tr.segments) == 0 {
		return Segment{}, false
	}
	return tr.segments[len(tr.segments)-1], true
}

// targetDuration returns the finalized target duration for bw.
func (ts *trackSet) targetDuration(bw Bandwidth) int {
	tr, ok := ts.tracks[bw]
	if !ok {
		return fallbackTargetDuration
	}
	return tr.targetDuration
}

// bandwidths lists, in ascending order, the bandwidths of tracks that carry
// data or have been finalized. Tracks created but never fed stay invisible so
// the matching policies never select an empty track.
func (ts *trackSet) bandwidths() []Bandwidth {
	out := make([]Bandwidth, 0, len(ts.tracks))
	for bw, tr := range ts.tracks {
		if len(tr.segments) > 0 || tr.initialized {
			out = append(out, bw)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// reference returns the lowest initialized bandwidth. The windower cuts index
// ranges against this one track and applies them to all others.
func (ts *trackSet) reference() (Bandwidth, bool) {
	found := false
	var ref Bandwidth
	for bw, tr := range ts.tracks {
		if !tr.initialized {
			continue
		}
		if !found || bw < ref {
			ref = bw
			found = true
		}
	}
	return ref, found
}
