// Package cache memoizes extraction results for repeated identical notes.
//
// Entries expire after a TTL: relative dates resolve against the wall clock,
// so a cached result is only valid for a short while.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/athapong/notegraph/pkg/entity"
	"github.com/athapong/notegraph/pkg/graph/metrics"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"
)

const (
	DefaultSize = 256
	DefaultTTL  = time.Minute

	cacheType = "extraction"
)

// Extractor is the subset of extract.Extractor the cache needs
type Extractor interface {
	Extract(text string) (*entity.Result, error)
}

// Cache is a size- and time-bounded memo of one extractor's results keyed by
// a SHA-256 hash of the note text. Cached results are shared between callers
// and must be treated as read-only.
type Cache struct {
	extractor Extractor
	lru       *expirable.LRU[string, *entity.Result]
	logger    *logrus.Logger
}

// New creates a cache in front of ex holding at most size entries for ttl
// each. Non-positive values fall back to DefaultSize and DefaultTTL.
func New(ex Extractor, size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	return &Cache{
		extractor: ex,
		lru:       expirable.NewLRU[string, *entity.Result](size, nil, ttl),
		logger:    logger,
	}
}

// Key returns the content hash used to index text
func Key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Extract returns the cached result for text, or runs the extractor and
// caches the outcome. Errors are not cached.
func (c *Cache) Extract(text string) (*entity.Result, error) {
	key := Key(text)
	if result, ok := c.lru.Get(key); ok {
		metrics.CacheHits.WithLabelValues(cacheType).Inc()
		return result, nil
	}
	metrics.CacheMisses.WithLabelValues(cacheType).Inc()

	result, err := c.extractor.Extract(text)
	if err != nil {
		return nil, err
	}

	c.lru.Add(key, result)
	c.logger.WithField("key", key[:12]).Debug("Cached extraction result")
	return result, nil
}

// Len reports the number of live entries
func (c *Cache) Len() int {
	return c.lru.Len()
}

// Purge drops every entry
func (c *Cache) Purge() {
	c.lru.Purge()
}
