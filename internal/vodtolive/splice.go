package vodtolive

import (
	"sort"
	"time"
)

// spliceInserter rewrites one bandwidth track during ingestion, inserting ad
// breaks at their declared content positions. It keeps two cursors: position
// counts every second appended to the track for this VOD (source and ad
// segments alike, which is what lands colliding splices back-to-back with a
// single shared discontinuity), and timeline drives wall-clock stamping.
// Seeded predecessor segments advance neither cursor.
type spliceInserter struct {
	tracks   *trackSet
	bw       Bandwidth
	splices  []SpliceInfo
	next     int
	position float64
	timeline float64
	offset   time.Time
}

func newSpliceInserter(tracks *trackSet, bw Bandwidth, splices []SpliceInfo, offset time.Time) *spliceInserter {
	return &spliceInserter{tracks: tracks, bw: bw, splices: splices, offset: offset}
}

// push appends one source segment, first applying every pending splice whose
// position the segment would step over. last marks the manifest's final
// segment; splices triggered by it get no trailing discontinuity. Splices the
// cursor never reaches are silently dropped.
func (si *spliceInserter) push(seg Segment, last bool) {
	for si.next < len(si.splices) && si.position+seg.Duration > si.splices[si.next].Position {
		si.insert(si.splices[si.next], last)
		si.next++
	}
	si.appendPlayable(seg)
}

func (si *spliceInserter) insert(sp SpliceInfo, last bool) {
	ads := si.adSegments(sp)
	if len(ads) == 0 {
		return
	}
	// Never open a track with a discontinuity, and never stack one onto
	// another: the trailing marker of the previous splice doubles as this
	// one's leading marker.
	if tail, ok := si.tracks.lastSegment(si.bw); ok && !tail.Discontinuity() {
		si.tracks.append(si.bw, discontinuitySegment())
	}
	for _, ad := range ads {
		si.appendPlayable(Segment{Duration: ad.Duration, URI: ad.URI})
	}
	if !last {
		si.tracks.append(si.bw, discontinuitySegment())
	}
}

// adSegments picks the splice's ladder entry closest to this track's
// bandwidth. The splice's ladder need not match the VOD's.
func (si *spliceInserter) adSegments(sp SpliceInfo) []SpliceSegment {
	keys := make([]Bandwidth, 0, len(sp.Segments))
	for bw := range sp.Segments {
		keys = append(keys, bw)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	bw, ok := closestCoveringBandwidth(keys, si.bw)
	if !ok {
		return nil
	}
	return sp.Segments[bw]
}

func (si *spliceInserter) appendPlayable(seg Segment) {
	if !si.offset.IsZero() {
		seg.Timestamp = si.offset.Add(time.Duration(si.timeline * float64(time.Second)))
	}
	si.timeline += seg.Duration
	si.position += seg.Duration
	si.tracks.append(si.bw, seg)
}
