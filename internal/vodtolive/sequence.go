package vodtolive

// sequenceDuration is the target seconds of playable content per live media
// sequence window.
const sequenceDuration = 60

// mediaSequence is one live-style window: for every bandwidth, the segment
// values spanning the same index range of that bandwidth's track.
type mediaSequence struct {
	segments map[Bandwidth][]Segment
}

// buildSequences cuts the (spliced) tracks into overlapping sliding windows.
// Index ranges are chosen once, against the reference track, and applied to
// all tracks, which keeps the output ABR aligned. Each window accumulates
// playable duration from its own start; the segment that pushes the total to
// the target closes the window and the next window starts one segment later.
// A final window that never reaches the target is dropped, not emitted short.
func (v *Vod) buildSequences() error {
	ref, ok := v.tracks.reference()
	if !ok {
		return ErrNoTracks
	}
	bws := v.tracks.bandwidths()
	refSegs := v.tracks.segments(ref)

	windowStart := 0
	cursor := 0
	elapsed := 0.0
	current := make(map[Bandwidth][]Segment, len(bws))
	for cursor < len(refSegs) {
		if !refSegs[cursor].Discontinuity() {
			elapsed += refSegs[cursor].Duration
		}
		if elapsed < sequenceDuration {
			for _, bw := range bws {
				segs := v.tracks.segments(bw)
				if cursor < len(segs) {
					current[bw] = append(current[bw], segs[cursor])
				}
			}
			cursor++
			continue
		}
		v.sequences = append(v.sequences, mediaSequence{segments: current})
		current = make(map[Bandwidth][]Segment, len(bws))
		elapsed = 0
		windowStart++
		cursor = windowStart
	}
	return nil
}
