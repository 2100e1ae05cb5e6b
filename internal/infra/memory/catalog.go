package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quiz-runner-service/internal/domain"
)

// CachedCatalog caches question lists with TTL to avoid repeated store hits.
// Cached snapshots are never refreshed into an in-progress session; sessions
// copy the slice at construction.
type CachedCatalog struct {
	loader CatalogSource
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedContent
}

// CatalogSource fetches question content from a backing store.
type CatalogSource interface {
	LoadQuestions(ctx context.Context, contentID string) ([]domain.Question, error)
}

type cachedContent struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewCachedCatalog(loader CatalogSource, ttl time.Duration) *CachedCatalog {
	return &CachedCatalog{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedContent),
	}
}

func (c *CachedCatalog) LoadQuestions(ctx context.Context, contentID string) ([]domain.Question, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[contentID]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.questions, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(contentID, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[contentID]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.questions, nil
		}
		c.mu.RUnlock()

		questions, err := c.loader.LoadQuestions(ctx, contentID)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.cache[contentID] = cachedContent{
			questions: questions,
			expiresAt: now.Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (c *CachedCatalog) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

// StaticCatalog is a simple catalog backed by an in-memory map (useful for
// tests/demos).
type StaticCatalog struct {
	contents map[string][]domain.Question
}

func NewStaticCatalog(contents map[string][]domain.Question) *StaticCatalog {
	return &StaticCatalog{contents: contents}
}

func (c *StaticCatalog) LoadQuestions(_ context.Context, contentID string) ([]domain.Question, error) {
	if questions, ok := c.contents[contentID]; ok {
		return questions, nil
	}
	return nil, domain.ErrCatalogUnavailable
}
