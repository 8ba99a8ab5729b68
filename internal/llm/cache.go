package llm

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/OneOfOne/xxhash"

	"github.com/Veraticus/creditrag/internal/model"
)

const defaultCacheTTL = 15 * time.Minute

// VerdictCache stores external classifier verdicts keyed by normalized input.
type VerdictCache interface {
	Get(ctx context.Context, key string) (Verdict, bool)
	Set(ctx context.Context, key string, verdict Verdict)
	Close() error
}

// cacheKey hashes the classification inputs after case and space folding,
// so "Open " and "open" share an entry.
func cacheKey(item model.LineItem) string {
	days := "null"
	if item.PaymentDays != nil {
		days = strconv.Itoa(*item.PaymentDays)
	}
	remark := "null"
	if item.CreditorRemark != nil {
		remark = strings.ToLower(strings.TrimSpace(*item.CreditorRemark))
	}

	h := xxhash.NewS64(0)
	_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(item.AccountStatus)) + "\x00" + days + "\x00" + remark))
	return strconv.FormatUint(h.Sum64(), 16)
}

type cacheEntry struct {
	expiry  time.Time
	verdict Verdict
}

// memoryCache is an in-process TTL cache with a background janitor.
type memoryCache struct {
	entries map[string]cacheEntry
	stopCh  chan struct{}
	ttl     time.Duration
	mu      sync.RWMutex
	once    sync.Once
}

// NewMemoryCache creates an in-process cache. Close stops its janitor.
func NewMemoryCache(ttl time.Duration) VerdictCache {
	return newMemoryCache(ttl, 5*time.Minute)
}

func newMemoryCache(ttl, sweepEvery time.Duration) *memoryCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	cache := &memoryCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		stopCh:  make(chan struct{}),
	}
	go cache.cleanup(sweepEvery)
	return cache
}

// Get returns a verdict if present and unexpired.
func (c *memoryCache) Get(_ context.Context, key string) (Verdict, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || time.Now().After(entry.expiry) {
		return Verdict{}, false
	}
	return entry.verdict, true
}

// Set stores a verdict for the cache TTL.
func (c *memoryCache) Set(_ context.Context, key string, verdict Verdict) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{verdict: verdict, expiry: time.Now().Add(c.ttl)}
}

func (c *memoryCache) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case now := <-ticker.C:
			c.mu.Lock()
			for key, entry := range c.entries {
				if now.After(entry.expiry) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		}
	}
}

func (c *memoryCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (c *memoryCache) Close() error {
	c.once.Do(func() { close(c.stopCh) })
	return nil
}
