package vodtolive

import "time"

// Bandwidth identifies a variant by its BANDWIDTH attribute, in bits per second.
type Bandwidth uint32

// discontinuityDuration is the sentinel duration of a segment that carries no
// playable media and only signals a decoder/timeline reset.
const discontinuityDuration = -1

// Segment is one entry in a bandwidth track: either a playable media segment
// or a discontinuity marker.
type Segment struct {
	Duration  float64
	URI       string
	Timestamp time.Time // wall-clock instant of the first sample; zero when timeline tracking is off
}

// Discontinuity reports whether the segment is a discontinuity marker.
func (s Segment) Discontinuity() bool {
	return s.Duration == discontinuityDuration
}

func discontinuitySegment() Segment {
	return Segment{Duration: discontinuityDuration}
}

// UsageProfile describes one resolution-bearing variant advertised by a VOD's
// master manifest. Profiles only drive master-manifest rendering.
type UsageProfile struct {
	Bandwidth  Bandwidth
	Resolution string
	Codecs     string
}

// SpliceSegment is a single ad segment offered by a splice for one bandwidth.
type SpliceSegment struct {
	Duration float64
	URI      string
}

// SpliceInfo describes an ad break to insert Position seconds into the VOD's
// own content. Its bandwidth ladder need not match the VOD's; each track picks
// the closest covering entry.
type SpliceInfo struct {
	Position float64
	Segments map[Bandwidth][]SpliceSegment
}
