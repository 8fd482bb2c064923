package vodtolive

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"hls-vod2live/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

var sessionTokenRe = regexp.MustCompile(`session=([0-9a-f-]+)`)

func testRouter(t *testing.T) chi.Router {
	t.Helper()
	catalog := NewStaticCatalog([]string{"http://mock.com/a.m3u8", "http://mock.com/b.m3u8"})
	h := NewHandler(NewCacheStore(time.Minute), catalog, shortSource(), logger.NewNop(), nil)
	r := chi.NewRouter()
	r.Get("/live/master.m3u8", h.MasterManifest)
	r.Get("/live/master{bandwidth:[0-9]+}.m3u8;session={token}", h.MediaManifest)
	r.Get("/live/master{bandwidth:[0-9]+}.m3u8", h.MediaManifest)
	return r
}

func TestHandler_masterManifestMintsSession(t *testing.T) {
	r := testRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/live/master.m3u8", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != playlistContentType {
		t.Errorf("content type: got %q", ct)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "#EXTM3U\n") {
		t.Errorf("body:\n%s", body)
	}
	if !sessionTokenRe.MatchString(body) {
		t.Errorf("expected session token in media URIs:\n%s", body)
	}
}

func TestHandler_mediaManifestRoundTrip(t *testing.T) {
	r := testRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/live/master.m3u8", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("master status: got %d", rec.Code)
	}
	m := sessionTokenRe.FindStringSubmatch(rec.Body.String())
	if m == nil {
		t.Fatal("no session token in master manifest")
	}
	token := m[1]

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/live/master2497000.m3u8;session="+token, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("media status: got %d, body: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "#EXT-X-MEDIA-SEQUENCE:0\n") {
		t.Errorf("media body:\n%s", rec.Body.String())
	}

	// The same token also works as a query parameter.
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/live/master2497000.m3u8?session="+token, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("query media status: got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "#EXT-X-MEDIA-SEQUENCE:1\n") {
		t.Errorf("query media body:\n%s", rec.Body.String())
	}
}

func TestHandler_unknownSession(t *testing.T) {
	r := testRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/live/master2497000.m3u8;session=deadbeef", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d", rec.Code)
	}
}

func TestHandler_badBandwidth(t *testing.T) {
	r := testRouter(t)
	// 99999999999 overflows 32 bits.
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/live/master99999999999.m3u8;session=deadbeef", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("overflow status: got %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/live/master0.m3u8;session=deadbeef", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("zero status: got %d", rec.Code)
	}
}

func TestHandler_upstreamFailureIsBadGateway(t *testing.T) {
	catalog := NewStaticCatalog([]string{"http://mock.com/missing.m3u8"})
	h := NewHandler(NewCacheStore(time.Minute), catalog, shortSource(), logger.NewNop(), nil)
	r := chi.NewRouter()
	r.Get("/live/master.m3u8", h.MasterManifest)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/live/master.m3u8", nil))
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status: got %d", rec.Code)
	}
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unknown session", ErrUnknownSession, http.StatusNotFound},
		{"invalid state", ErrInvalidState, http.StatusInternalServerError},
		{"fetch failure", &FetchError{URI: "u", Err: ErrNoAssets}, http.StatusBadGateway},
		{"parse failure", &ParseError{URI: "u", Err: ErrNoAssets}, http.StatusBadGateway},
		{"no tracks", ErrNoTracks, http.StatusBadGateway},
		{"empty catalog", ErrNoAssets, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errorStatus(tt.err); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}
