package vodtolive

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/mogiioin/hls-m3u8/m3u8"
	"golang.org/x/sync/errgroup"
)

// mediaPlaylistCapacity is the initial decoder capacity; the decoder extends
// it as needed for longer VODs.
const mediaPlaylistCapacity = 1024

// Vod re-windows one finite HLS VOD into an ordered list of live-style media
// sequences. A Vod is mutable during Load/LoadAfter and read-only afterwards,
// so concurrent renders need no locking.
type Vod struct {
	masterURI  string
	splices    []SpliceInfo
	timeOffset time.Time

	tracks    *trackSet
	profiles  []UsageProfile
	sequences []mediaSequence
}

// NewVod creates a VOD for the given master manifest URI. Splices are applied
// at their content positions during load; a non-zero timeOffset anchors every
// playable segment to a wall-clock timeline.
func NewVod(masterURI string, splices []SpliceInfo, timeOffset time.Time) *Vod {
	sorted := append([]SpliceInfo(nil), splices...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })
	return &Vod{
		masterURI:  masterURI,
		splices:    sorted,
		timeOffset: timeOffset,
		tracks:     newTrackSet(),
	}
}

// MasterURI returns the master manifest URI this VOD was created from.
func (v *Vod) MasterURI() string { return v.masterURI }

// Load ingests the master manifest and every resolution-bearing variant from
// src, then builds the media sequences. A failure on any variant fails the
// whole load.
func (v *Vod) Load(ctx context.Context, src ManifestSource) error {
	return v.load(ctx, src, false)
}

// LoadAfter seeds this VOD with the tail of prev's final media sequence, so
// the first sequences span the VOD boundary with a single discontinuity, then
// loads as usual. The predecessor is not retained after seeding.
func (v *Vod) LoadAfter(ctx context.Context, src ManifestSource, prev *Vod) error {
	if err := v.seedFrom(prev); err != nil {
		return err
	}
	return v.load(ctx, src, true)
}

// seedFrom carries all but the first segment of prev's last media sequence
// into this VOD's tracks, per bandwidth, followed by a discontinuity marker.
// The first segment is dropped because the live edge has already played past
// it. When prev tracked a timeline, this VOD's time offset continues it.
func (v *Vod) seedFrom(prev *Vod) error {
	last := prev.SequenceCount() - 1
	if last < 0 {
		return ErrNoTracks
	}
	var offset time.Time
	for _, bw := range prev.Bandwidths() {
		carried := prev.sequences[last].segments[bw]
		v.tracks.ensure(bw)
		for _, seg := range carried[1:] {
			v.tracks.append(bw, seg)
			if v.timeOffset.IsZero() && !seg.Discontinuity() && !seg.Timestamp.IsZero() {
				// The carried tail ends the predecessor's timeline; this
				// VOD's own segments continue right after the last of them.
				offset = seg.Timestamp.Add(time.Duration(seg.Duration * float64(time.Second)))
			}
		}
		v.tracks.append(bw, discontinuitySegment())
	}
	if v.timeOffset.IsZero() {
		v.timeOffset = offset
	}
	return nil
}

func (v *Vod) load(ctx context.Context, src ManifestSource, chained bool) error {
	body, err := src.Fetch(ctx, v.masterURI)
	if err != nil {
		return err
	}
	defer body.Close()

	master := m3u8.NewMasterPlaylist()
	if err := master.DecodeFrom(body, false); err != nil {
		return &ParseError{URI: v.masterURI, Err: err}
	}

	// Map each variant onto its track sequentially before fanning out, so the
	// track map is never mutated concurrently and a master manifest declaring
	// the same bandwidth twice schedules it once.
	type mediaLoad struct {
		uri string
		bw  Bandwidth
	}
	var loads []mediaLoad
	claimed := make(map[Bandwidth]bool)
	for _, variant := range master.Variants {
		if variant == nil || variant.Resolution == "" {
			continue // audio-only and other auxiliary renditions
		}
		declared := Bandwidth(variant.Bandwidth)
		v.profiles = append(v.profiles, UsageProfile{
			Bandwidth:  declared,
			Resolution: variant.Resolution,
			Codecs:     variant.Codecs,
		})
		bw := declared
		if !v.tracks.has(bw) {
			if chained {
				// The predecessor's ladder rules; fold this variant onto the
				// closest established track.
				if aligned, ok := closestCoveringBandwidth(v.tracks.bandwidths(), declared); ok {
					bw = aligned
				}
			}
			v.tracks.ensure(bw)
		}
		if claimed[bw] {
			continue
		}
		claimed[bw] = true
		loads = append(loads, mediaLoad{uri: resolveURI(v.masterURI, variant.URI), bw: bw})
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, ml := range loads {
		ml := ml
		g.Go(func() error {
			return v.loadMedia(gctx, src, ml.uri, ml.bw)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return v.buildSequences()
}

// loadMedia ingests one variant's media manifest into the track for bw,
// applying pending ad splices inline, and finalizes the track.
func (v *Vod) loadMedia(ctx context.Context, src ManifestSource, uri string, bw Bandwidth) error {
	body, err := src.Fetch(ctx, uri)
	if err != nil {
		return err
	}
	defer body.Close()

	pl, err := m3u8.NewMediaPlaylist(0, mediaPlaylistCapacity)
	if err != nil {
		return &ParseError{URI: uri, Err: err}
	}
	if err := pl.DecodeFrom(body, false); err != nil {
		return &ParseError{URI: uri, Err: err}
	}

	ins := newSpliceInserter(v.tracks, bw, v.splices, v.timeOffset)
	segs := pl.GetAllSegments()
	for i, ms := range segs {
		ins.push(Segment{Duration: ms.Duration, URI: resolveURI(uri, ms.URI)}, i == len(segs)-1)
	}
	v.tracks.finalize(bw)
	return nil
}

// Bandwidths returns the VOD's available bandwidths in ascending order.
func (v *Vod) Bandwidths() []Bandwidth {
	return v.tracks.bandwidths()
}

// UsageProfiles returns one profile per resolution-bearing variant, in master
// manifest order.
func (v *Vod) UsageProfiles() []UsageProfile {
	return append([]UsageProfile(nil), v.profiles...)
}

// SequenceCount returns the number of live media sequences this VOD yields.
func (v *Vod) SequenceCount() int {
	return len(v.sequences)
}

// SequenceSegments returns a copy of media sequence idx: per bandwidth, the
// segment values that sequence spans.
func (v *Vod) SequenceSegments(idx int) map[Bandwidth][]Segment {
	if idx < 0 || idx >= len(v.sequences) {
		return nil
	}
	out := make(map[Bandwidth][]Segment, len(v.sequences[idx].segments))
	for bw, segs := range v.sequences[idx].segments {
		out[bw] = append([]Segment(nil), segs...)
	}
	return out
}

// DiscontinuityCount returns the number of discontinuity markers in the
// reference track. The session adds it to the rolling discontinuity sequence
// when this VOD is replaced.
func (v *Vod) DiscontinuityCount() int {
	ref, ok := v.tracks.reference()
	if !ok {
		return 0
	}
	n := 0
	for _, seg := range v.tracks.segments(ref) {
		if seg.Discontinuity() {
			n++
		}
	}
	return n
}

// resolveURI resolves a possibly relative playlist or segment URI against the
// URI of the manifest that referenced it. Absolute http(s) URIs pass through.
func resolveURI(baseURI, uri string) string {
	if strings.HasPrefix(uri, "http") {
		return uri
	}
	if i := strings.LastIndex(baseURI, "/"); i >= 0 {
		return baseURI[:i+1] + uri
	}
	return uri
}
