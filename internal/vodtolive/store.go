package vodtolive

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// SessionStore tracks live sessions by their opaque token. Implementations
// decide the eviction policy; the engine only gets and puts.
type SessionStore interface {
	Get(id string) (*Session, bool)
	Put(s *Session)
	Count() int
}

// CacheStore keeps sessions in an expiring in-memory cache. A session's TTL
// renews on every lookup, so sessions die only when their viewer stops
// polling for manifests.
type CacheStore struct {
	c   *cache.Cache
	ttl time.Duration
}

// NewCacheStore returns a store evicting sessions idle for longer than ttl.
// A non-positive ttl disables eviction.
func NewCacheStore(ttl time.Duration) *CacheStore {
	if ttl <= 0 {
		return &CacheStore{c: cache.New(cache.NoExpiration, 0), ttl: cache.NoExpiration}
	}
	return &CacheStore{c: cache.New(ttl, ttl), ttl: ttl}
}

// Get implements SessionStore.Get and renews the session's TTL.
func (s *CacheStore) Get(id string) (*Session, bool) {
	v, ok := s.c.Get(id)
	if !ok {
		return nil, false
	}
	sess := v.(*Session)
	s.c.Set(id, sess, s.ttl)
	return sess, true
}

// Put implements SessionStore.Put.
func (s *CacheStore) Put(sess *Session) {
	s.c.Set(sess.ID(), sess, s.ttl)
}

// Count implements SessionStore.Count. Used for metrics; may briefly include
// sessions that expired but are not yet swept.
func (s *CacheStore) Count() int {
	return s.c.ItemCount()
}
