package vodtolive

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// The reference fixture mirrors a real 4-bitrate, ~44 minute VOD: 295
// segments of 9.0 seconds per track, which yields exactly 289 live media
// sequences of 6 segments each.
const (
	fixtureMasterURI  = "http://mock.com/mock.m3u8"
	fixtureMaster2URI = "http://mock.com/mock2.m3u8"
	fixtureSegments   = 295
	fixtureSegDur     = 9.0
)

// fixtureProfiles maps each fixture bandwidth to the encoder profile index
// used in its segment file names.
var fixtureProfiles = map[Bandwidth]int{
	1497000: 3,
	2497000: 2,
	3496000: 4,
	4497000: 1,
}

// fakeSource serves playlist text from memory.
type fakeSource struct {
	manifests map[string]string
}

func (f *fakeSource) Fetch(_ context.Context, uri string) (io.ReadCloser, error) {
	body, ok := f.manifests[uri]
	if !ok {
		return nil, &FetchError{URI: uri, Err: fmt.Errorf("not found")}
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func fixtureMasterManifest() string {
	var b strings.Builder
	b.WriteString("#EXTM3U\n")
	// Audio-only rendition: no RESOLUTION attribute, must be ignored.
	b.WriteString("#EXT-X-STREAM-INF:BANDWIDTH=97000,CODECS=\"mp4a.40.2\"\n")
	b.WriteString("audio.m3u8\n")
	for _, bw := range []Bandwidth{1497000, 2497000, 3496000, 4497000} {
		fmt.Fprintf(&b, "#EXT-X-STREAM-INF:BANDWIDTH=%d,RESOLUTION=640x360,CODECS=\"avc1.4d001f,mp4a.40.2\"\n", bw)
		fmt.Fprintf(&b, "%d.m3u8\n", bw)
	}
	return b.String()
}

func fixtureMediaManifest(profile int) string {
	var b strings.Builder
	b.WriteString("#EXTM3U\n")
	b.WriteString("#EXT-X-VERSION:3\n")
	b.WriteString("#EXT-X-TARGETDURATION:9\n")
	b.WriteString("#EXT-X-MEDIA-SEQUENCE:1\n")
	b.WriteString("#EXT-X-PLAYLIST-TYPE:VOD\n")
	for n := 1; n <= fixtureSegments; n++ {
		fmt.Fprintf(&b, "#EXTINF:%.3f,\n", fixtureSegDur)
		fmt.Fprintf(&b, "segment%d_%d_av.ts\n", n, profile)
	}
	b.WriteString("#EXT-X-ENDLIST\n")
	return b.String()
}

// fixtureSource serves two master manifests (for chaining tests) that share
// the same four media playlists.
func fixtureSource() *fakeSource {
	m := map[string]string{
		fixtureMasterURI:  fixtureMasterManifest(),
		fixtureMaster2URI: fixtureMasterManifest(),
	}
	for bw, profile := range fixtureProfiles {
		m[fmt.Sprintf("http://mock.com/%d.m3u8", bw)] = fixtureMediaManifest(profile)
	}
	return &fakeSource{manifests: m}
}

// segURI is the resolved locator of fixture segment n for bandwidth bw.
func segURI(n int, bw Bandwidth) string {
	return fmt.Sprintf("http://mock.com/segment%d_%d_av.ts", n, fixtureProfiles[bw])
}

// Short fixture: two-bitrate assets of 8 segments each, small enough to march
// a session across VOD boundaries in a handful of requests.
func shortMasterManifest(prefix string) string {
	var b strings.Builder
	b.WriteString("#EXTM3U\n")
	b.WriteString("#EXT-X-STREAM-INF:BANDWIDTH=1497000,RESOLUTION=640x360,CODECS=\"avc1.4d001e,mp4a.40.2\"\n")
	fmt.Fprintf(&b, "%s_1497000.m3u8\n", prefix)
	b.WriteString("#EXT-X-STREAM-INF:BANDWIDTH=2497000,RESOLUTION=960x540,CODECS=\"avc1.4d001f,mp4a.40.2\"\n")
	fmt.Fprintf(&b, "%s_2497000.m3u8\n", prefix)
	return b.String()
}

func shortMediaManifest(prefix string) string {
	var b strings.Builder
	b.WriteString("#EXTM3U\n")
	b.WriteString("#EXT-X-VERSION:3\n")
	b.WriteString("#EXT-X-TARGETDURATION:9\n")
	b.WriteString("#EXT-X-MEDIA-SEQUENCE:1\n")
	for n := 1; n <= 8; n++ {
		b.WriteString("#EXTINF:9.000,\n")
		fmt.Fprintf(&b, "%s_seg%d.ts\n", prefix, n)
	}
	b.WriteString("#EXT-X-ENDLIST\n")
	return b.String()
}

func shortSource() *fakeSource {
	m := make(map[string]string)
	for _, prefix := range []string{"a", "b"} {
		m[fmt.Sprintf("http://mock.com/%s.m3u8", prefix)] = shortMasterManifest(prefix)
		m[fmt.Sprintf("http://mock.com/%s_1497000.m3u8", prefix)] = shortMediaManifest(prefix)
		m[fmt.Sprintf("http://mock.com/%s_2497000.m3u8", prefix)] = shortMediaManifest(prefix)
	}
	return &fakeSource{manifests: m}
}
