package usecase

import (
	"sync"
	"time"

	"github.com/xavierca1/donor-crm/internal/entity"
)

const viewInsight = "insight"

type cacheKey struct {
	donorID string
	view    string
}

type cacheEntry struct {
	insight   entity.Insight
	expiresAt time.Time
}

// InsightCache is a per-process TTL cache of derived donor views. A nil
// *InsightCache is valid and caches nothing.
//
// Each donor has a generation that InvalidateDonor advances. Readers capture
// it with Generation before loading from storage and pass it to Set, so a
// view computed before a concurrent write is never stored.
type InsightCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	clock   Clock
	entries map[cacheKey]cacheEntry
	gens    map[string]uint64
}

// NewInsightCache returns nil when ttl <= 0, which disables caching.
func NewInsightCache(ttl time.Duration, clock Clock) *InsightCache {
	if ttl <= 0 {
		return nil
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &InsightCache{
		ttl:     ttl,
		clock:   clock,
		entries: make(map[cacheKey]cacheEntry),
		gens:    make(map[string]uint64),
	}
}

func (c *InsightCache) Get(donorID, view string) (entity.Insight, bool) {
	if c == nil {
		return entity.Insight{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	k := cacheKey{donorID, view}
	e, ok := c.entries[k]
	if !ok {
		return entity.Insight{}, false
	}
	if !c.clock.Now().Before(e.expiresAt) {
		delete(c.entries, k)
		return entity.Insight{}, false
	}
	return e.insight, true
}

// Generation returns the donor's current invalidation generation.
func (c *InsightCache) Generation(donorID string) uint64 {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[donorID]
}

// Set stores insight unless the donor was invalidated after gen was read.
func (c *InsightCache) Set(donorID, view string, gen uint64, insight entity.Insight) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[donorID] != gen {
		return
	}
	c.entries[cacheKey{donorID, view}] = cacheEntry{insight: insight, expiresAt: c.clock.Now().Add(c.ttl)}
}

// InvalidateDonor drops every view of donorID.
func (c *InsightCache) InvalidateDonor(donorID string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[donorID]++
	for k := range c.entries {
		if k.donorID == donorID {
			delete(c.entries, k)
		}
	}
}
