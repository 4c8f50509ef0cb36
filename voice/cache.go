package voice

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Clock is injectable so tests control expiry without sleeping.
type Clock func() time.Time

const DefaultAgentTTL = 30 * time.Minute

type cacheEntry struct {
	agentID string
	created time.Time
}

// AgentCache is the process-scoped cache of provider-assigned voice-agent
// ids. It is advisory: losing it on restart just triggers a harmless
// re-provision. Entries expire after the TTL.
type AgentCache struct {
	mu      sync.Mutex
	now     Clock
	ttl     time.Duration
	entries map[string]cacheEntry
	sweeper *cron.Cron
}

func NewAgentCache(ttl time.Duration, now Clock) *AgentCache {
	if ttl <= 0 {
		ttl = DefaultAgentTTL
	}
	if now == nil {
		now = time.Now
	}
	return &AgentCache{
		now:     now,
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the cached agent id for key if it has not expired.
func (c *AgentCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if c.now().Sub(entry.created) >= c.ttl {
		delete(c.entries, key)
		return "", false
	}
	return entry.agentID, true
}

// Put stores an agent id under key, stamping it with the current time.
func (c *AgentCache) Put(key, agentID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{agentID: agentID, created: c.now()}
}

// Sweep removes expired entries and reports how many were dropped.
func (c *AgentCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	cutoff := c.now()
	for key, entry := range c.entries {
		if cutoff.Sub(entry.created) >= c.ttl {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// StartSweeper schedules a periodic Sweep. Stop the returned scheduler on
// shutdown.
func (c *AgentCache) StartSweeper() *cron.Cron {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sweeper != nil {
		return c.sweeper
	}
	scheduler := cron.New()
	scheduler.AddFunc("@every 5m", func() { c.Sweep() })
	scheduler.Start()
	c.sweeper = scheduler
	return scheduler
}
