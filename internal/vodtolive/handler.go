package vodtolive

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"hls-vod2live/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
)

const playlistContentType = "application/vnd.apple.mpegurl"

// Handler exposes the simulated live channel over HTTP using go-chi.
type Handler struct {
	store   SessionStore
	catalog VodCatalog
	source  ManifestSource
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewHandler returns a Handler wiring the session store, catalog, and
// manifest source together. Metrics may be nil to disable metric recording
// (e.g. in tests).
func NewHandler(store SessionStore, catalog VodCatalog, source ManifestSource, log *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{store: store, catalog: catalog, source: source, log: log, metrics: m}
}

// MasterManifest handles GET /live/master.m3u8. Every request mints a new
// session whose token is baked into the media manifest URIs, and acquiring
// the session's first VOD happens right here.
func (h *Handler) MasterManifest(w http.ResponseWriter, r *http.Request) {
	sess := NewSession(h.catalog, h.source, h.log)
	body, err := sess.MasterManifest(r.Context())
	if err != nil {
		h.log.Error("master manifest failed",
			slog.String("session_id", sess.ID()),
			slog.String("error", err.Error()))
		if h.metrics != nil {
			h.metrics.IncVodLoadFailures()
		}
		w.WriteHeader(errorStatus(err))
		return
	}
	h.store.Put(sess)

	h.log.Debug("session started", slog.String("session_id", sess.ID()))
	if h.metrics != nil {
		h.metrics.IncSessionsStarted()
		h.metrics.IncMasterManifests()
	}
	w.Header().Set("Content-Type", playlistContentType)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(body))
}

// MediaManifest handles GET /live/master{bandwidth}.m3u8;session={token}.
func (h *Handler) MediaManifest(w http.ResponseWriter, r *http.Request) {
	bw64, err := strconv.ParseUint(chi.URLParam(r, "bandwidth"), 10, 32)
	if err != nil || bw64 == 0 {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	token := chi.URLParam(r, "token")
	if token == "" {
		token = r.URL.Query().Get("session")
	}

	sess, ok := h.store.Get(token)
	if !ok {
		h.log.Info("unknown session", slog.String("session_id", token))
		w.WriteHeader(http.StatusNotFound)
		return
	}

	body, err := sess.MediaManifest(r.Context(), Bandwidth(bw64))
	if err != nil {
		h.log.Error("media manifest failed",
			slog.String("session_id", token),
			slog.Uint64("bandwidth", bw64),
			slog.String("error", err.Error()))
		w.WriteHeader(errorStatus(err))
		return
	}

	if h.metrics != nil {
		h.metrics.IncMediaManifests()
	}
	w.Header().Set("Content-Type", playlistContentType)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(body))
}

// errorStatus maps the engine's error taxonomy to HTTP status codes.
func errorStatus(err error) int {
	var fetchErr *FetchError
	var parseErr *ParseError
	switch {
	case errors.Is(err, ErrUnknownSession):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidState):
		return http.StatusInternalServerError
	case errors.As(err, &fetchErr), errors.As(err, &parseErr),
		errors.Is(err, ErrNoTracks), errors.Is(err, ErrNoAssets):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
