package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"acadtutor/internal/engine"
	"golang.org/x/sync/singleflight"
)

// CatalogLoader fetches curated questions from a backing store (e.g., Postgres).
type CatalogLoader interface {
	LoadCatalog(ctx context.Context) (engine.Catalog, error)
}

// CatalogRepository caches the question bank with TTL to avoid rebuilding it on every quiz.
type CatalogRepository struct {
	loader CatalogLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu        sync.RWMutex
	bank      *engine.QuestionBank
	expiresAt time.Time
}

func NewCatalogRepository(loader CatalogLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CatalogRepository) GetBank(ctx context.Context) (*engine.QuestionBank, error) {
	if bank, ok := r.cached(r.clock()); ok {
		return bank, nil
	}

	result, err, _ := r.sf.Do("bank", func() (interface{}, error) {
		now := r.clock()
		if bank, ok := r.cached(now); ok {
			return bank, nil
		}

		catalog, err := r.loader.LoadCatalog(ctx)
		if err != nil {
			return nil, err
		}
		bank := engine.NewQuestionBank(catalog)

		r.mu.Lock()
		r.bank = bank
		r.expiresAt = now.Add(r.ttlWithJitter())
		r.mu.Unlock()
		return bank, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*engine.QuestionBank), nil
}

// Invalidate drops the cached bank so the next lookup reloads it.
func (r *CatalogRepository) Invalidate() {
	r.mu.Lock()
	r.bank = nil
	r.mu.Unlock()
}

func (r *CatalogRepository) cached(now time.Time) (*engine.QuestionBank, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.bank != nil && r.expiresAt.After(now) {
		return r.bank, true
	}
	return nil, false
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticCatalogLoader serves a fixed catalog (the seed content, or test fixtures).
type StaticCatalogLoader struct {
	catalog engine.Catalog
}

func NewStaticCatalogLoader(catalog engine.Catalog) *StaticCatalogLoader {
	return &StaticCatalogLoader{catalog: catalog}
}

func (l *StaticCatalogLoader) LoadCatalog(context.Context) (engine.Catalog, error) {
	return l.catalog, nil
}

// LayeredCatalogLoader merges the catalogs of several loaders, later ones overriding earlier topics.
type LayeredCatalogLoader []CatalogLoader

func (l LayeredCatalogLoader) LoadCatalog(ctx context.Context) (engine.Catalog, error) {
	out := engine.Catalog{}
	for _, loader := range l {
		c, err := loader.LoadCatalog(ctx)
		if err != nil {
			return nil, err
		}
		out = out.Merge(c)
	}
	return out, nil
}
