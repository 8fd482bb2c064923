package vodtolive

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// sessionState drives the VOD acquisition cycle. After the first transition
// the machine cycles playing -> nextInit -> playing for as long as the
// session lives.
type sessionState int

const (
	stateVodInit sessionState = iota
	stateVodPlaying
	stateVodNextInit
)

func (s sessionState) String() string {
	switch s {
	case stateVodInit:
		return "vod_init"
	case stateVodPlaying:
		return "vod_playing"
	case stateVodNextInit:
		return "vod_next_init"
	default:
		return fmt.Sprintf("sessionState(%d)", int(s))
	}
}

// Session simulates one continuous live channel for a single viewer. Every
// manifest request ticks the state machine; each media request serves the
// current media sequence and moves the live edge forward by one. A session
// processes one request at a time against its own state.
type Session struct {
	id      string
	catalog VodCatalog
	source  ManifestSource
	log     *slog.Logger

	mu          sync.Mutex
	state       sessionState
	current     *Vod
	mediaSeq    int // rolling media-sequence offset across finished VODs
	discSeq     int // rolling discontinuity-sequence offset across finished VODs
	vodMediaSeq int // window cursor within the current VOD
}

// NewSession creates a session with a fresh opaque token.
func NewSession(catalog VodCatalog, source ManifestSource, log *slog.Logger) *Session {
	return &Session{
		id:      uuid.NewString(),
		catalog: catalog,
		source:  source,
		log:     log,
		state:   stateVodInit,
	}
}

// ID returns the session's opaque token, embedded in media manifest URIs.
func (s *Session) ID() string { return s.id }

// MediaManifest ticks the state machine, renders the current media sequence
// for the requested bandwidth, and advances the live edge.
func (s *Session) MediaManifest(ctx context.Context, bw Bandwidth) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.tick(ctx); err != nil {
		return "", err
	}
	out, err := s.current.RenderMediaSequence(bw, s.vodMediaSeq, s.mediaSeq, s.discSeq)
	if err != nil {
		return "", err
	}
	s.vodMediaSeq++
	return out, nil
}

// MasterManifest ticks the state machine and renders the current VOD's master
// manifest. The very first request for a session acquires its first VOD here.
func (s *Session) MasterManifest(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.tick(ctx); err != nil {
		return "", err
	}
	return s.current.RenderMasterManifest(s.id), nil
}

// tick runs one state transition. On failure the session keeps its state so
// the next request re-drives acquisition.
func (s *Session) tick(ctx context.Context) error {
	switch s.state {
	case stateVodInit:
		req, err := s.catalog.Next(ctx)
		if err != nil {
			return err
		}
		vod := NewVod(req.MasterURI, req.Splices, req.TimeOffset)
		if err := vod.Load(ctx, s.source); err != nil {
			return err
		}
		s.current = vod
		s.vodMediaSeq = 0
		s.state = stateVodPlaying
		s.log.Info("vod loaded",
			slog.String("session_id", s.id),
			slog.String("master_uri", req.MasterURI),
			slog.Int("sequences", vod.SequenceCount()))
		return nil
	case stateVodPlaying:
		if s.vodMediaSeq == s.current.SequenceCount()-1 {
			// This request still serves the current VOD; the next tick
			// acquires the successor.
			s.state = stateVodNextInit
		}
		return nil
	case stateVodNextInit:
		finished := s.current.SequenceCount()
		discontinuities := s.current.DiscontinuityCount()
		req, err := s.catalog.Next(ctx)
		if err != nil {
			return err
		}
		vod := NewVod(req.MasterURI, req.Splices, req.TimeOffset)
		if err := vod.LoadAfter(ctx, s.source, s.current); err != nil {
			return err
		}
		s.current = vod
		s.vodMediaSeq = 0
		s.mediaSeq += finished
		s.discSeq += discontinuities
		s.state = stateVodPlaying
		s.log.Info("vod switched",
			slog.String("session_id", s.id),
			slog.String("master_uri", req.MasterURI),
			slog.Int("media_seq", s.mediaSeq),
			slog.Int("disc_seq", s.discSeq))
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrInvalidState, s.state)
	}
}
