package vodtolive

import (
	"context"
	"sync"
	"time"
)

// VodRequest describes the next asset to go live: its master manifest plus
// optional ad breaks and a wall-clock anchor for program-date-time output.
type VodRequest struct {
	MasterURI  string
	Splices    []SpliceInfo
	TimeOffset time.Time
}

// VodCatalog supplies the next VOD for a session. The ad-decision source
// hides behind the same interface: splices arrive attached to the request.
type VodCatalog interface {
	Next(ctx context.Context) (VodRequest, error)
}

// StaticCatalog rotates through a fixed list of master manifest URIs,
// round-robin, so the simulated channel plays its assets in a stable order.
type StaticCatalog struct {
	mu   sync.Mutex
	uris []string
	next int
}

// NewStaticCatalog returns a catalog over the given master manifest URIs.
func NewStaticCatalog(uris []string) *StaticCatalog {
	return &StaticCatalog{uris: append([]string(nil), uris...)}
}

// Next implements VodCatalog.
func (c *StaticCatalog) Next(ctx context.Context) (VodRequest, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.uris) == 0 {
		return VodRequest{}, ErrNoAssets
	}
	uri := c.uris[c.next]
	c.next = (c.next + 1) % len(c.uris)
	return VodRequest{MasterURI: uri}, nil
}
