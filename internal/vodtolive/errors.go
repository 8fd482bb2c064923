package vodtolive

import (
	"errors"
	"fmt"
)

var (
	// ErrNoTracks is returned when media sequences are requested for a VOD
	// that has no initialized bandwidth track.
	ErrNoTracks = errors.New("no initialized bandwidth tracks")

	// ErrUnknownSession is returned when a client references a session token
	// that is not present in the session store.
	ErrUnknownSession = errors.New("unknown session")

	// ErrInvalidState indicates the session state machine observed a state it
	// does not recognize. This is a programming defect, not a runtime condition.
	ErrInvalidState = errors.New("invalid session state")

	// ErrNoAssets is returned by a catalog that has nothing to play.
	ErrNoAssets = errors.New("catalog has no assets")
)

// FetchError wraps a manifest source failure with the URI that failed.
type FetchError struct {
	URI string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URI, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError wraps a playlist decoding failure with the URI of the manifest.
type ParseError struct {
	URI string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.URI, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
