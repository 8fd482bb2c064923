package vodtolive

import (
	"fmt"
	"strings"
)

// programDateTimeLayout renders EXT-X-PROGRAM-DATE-TIME as ISO-8601 with
// millisecond precision.
const programDateTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// RenderMediaSequence serializes media sequence seqIdx for the bandwidth
// closest to requested (client-selection policy) as a live media playlist.
// The rolling offsets come from the session so sequence numbering keeps
// increasing across VOD boundaries. Timestamps are carried on the segments,
// so overlapping sequences render identical program-date-times for the same
// discontinuity.
func (v *Vod) RenderMediaSequence(requested Bandwidth, seqIdx, mediaSeqOffset, discSeqOffset int) (string, error) {
	if seqIdx < 0 || seqIdx >= len(v.sequences) {
		return "", fmt.Errorf("media sequence %d out of range [0,%d)", seqIdx, len(v.sequences))
	}
	bw, ok := closestClientBandwidth(v.tracks.bandwidths(), requested)
	if !ok {
		return "", ErrNoTracks
	}

	var b strings.Builder
	b.WriteString("#EXTM3U\n")
	b.WriteString("#EXT-X-VERSION:3\n")
	fmt.Fprintf(&b, "#EXT-X-TARGETDURATION:%d\n", v.tracks.targetDuration(bw))
	fmt.Fprintf(&b, "#EXT-X-MEDIA-SEQUENCE:%d\n", mediaSeqOffset+seqIdx)
	fmt.Fprintf(&b, "#EXT-X-DISCONTINUITY-SEQUENCE:%d\n", discSeqOffset)

	segs := v.sequences[seqIdx].segments[bw]
	for i, seg := range segs {
		if seg.Discontinuity() {
			b.WriteString("#EXT-X-DISCONTINUITY\n")
			if i+1 < len(segs) && !segs[i+1].Timestamp.IsZero() {
				fmt.Fprintf(&b, "#EXT-X-PROGRAM-DATE-TIME:%s\n", segs[i+1].Timestamp.UTC().Format(programDateTimeLayout))
			}
			continue
		}
		fmt.Fprintf(&b, "#EXTINF:%.3f,\n", seg.Duration)
		b.WriteString(seg.URI)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// RenderMasterManifest serializes the VOD's usage profiles as a master
// playlist whose media manifest URIs are scoped to the given session token.
func (v *Vod) RenderMasterManifest(sessionID string) string {
	var b strings.Builder
	b.WriteString("#EXTM3U\n")
	for _, p := range v.profiles {
		fmt.Fprintf(&b, "#EXT-X-STREAM-INF:BANDWIDTH=%d,RESOLUTION=%s,CODECS=%q\n", p.Bandwidth, p.Resolution, p.Codecs)
		fmt.Fprintf(&b, "master%d.m3u8;session=%s\n", p.Bandwidth, sessionID)
	}
	return b.String()
}
