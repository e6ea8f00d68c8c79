package realtime

import (
	"sync"
	"time"

	"github.com/joonwoo/stockfolio/backend/internal/stock"
	"github.com/joonwoo/stockfolio/backend/pkg/logger"
)

// QuoteCache is an in-memory cache for the latest resolved quotes
// ⭐ SSOT: 실시간 시세 캐싱은 이 구조체에서만
type QuoteCache struct {
	mu     sync.RWMutex
	quotes map[string]*stock.Quote
	ttl    time.Duration
	logger *logger.Logger
}

// NewQuoteCache creates a new quote cache. ttl marks entries stale for
// Snapshot callers; entries are never evicted.
func NewQuoteCache(ttl time.Duration, log *logger.Logger) *QuoteCache {
	return &QuoteCache{
		quotes: make(map[string]*stock.Quote),
		ttl:    ttl,
		logger: log,
	}
}

// Update stores a quote unless the cache already holds a newer one.
func (c *QuoteCache) Update(quote *stock.Quote) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	existing, exists := c.quotes[quote.Symbol]
	if exists && quote.UpdatedAt.Before(existing.UpdatedAt) {
		c.logger.WithFields(map[string]interface{}{
			"symbol":   quote.Symbol,
			"new_time": quote.UpdatedAt,
			"old_time": existing.UpdatedAt,
		}).Debug("Rejected older quote")
		return false
	}

	c.quotes[quote.Symbol] = quote
	return true
}

// Get retrieves the cached quote for one symbol.
func (c *QuoteCache) Get(symbol string) (*stock.Quote, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	quote, ok := c.quotes[symbol]
	return quote, ok
}

// Fresh reports whether the cached quote for symbol is younger than
// the cache TTL.
func (c *QuoteCache) Fresh(symbol string, now time.Time) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	quote, ok := c.quotes[symbol]
	if !ok {
		return false
	}
	return now.Sub(quote.UpdatedAt) <= c.ttl
}

// Snapshot returns the cached quotes for the requested symbols.
// Missing symbols are skipped.
func (c *QuoteCache) Snapshot(symbols []string) []*stock.Quote {
	c.mu.RLock()
	defer c.mu.RUnlock()

	quotes := make([]*stock.Quote, 0, len(symbols))
	for _, symbol := range symbols {
		if q, ok := c.quotes[symbol]; ok {
			quotes = append(quotes, q)
		}
	}
	return quotes
}

// Size returns the number of cached symbols.
func (c *QuoteCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.quotes)
}
