package redis

import (
	"context"
	"encoding/json"
	"log"
	"math/rand"
	"sync"
	"time"

	"acadtutor/internal/engine"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const catalogKey = "acadtutor:catalog"

// CatalogLoader fetches curated questions from a backing store (e.g., Postgres).
type CatalogLoader interface {
	LoadCatalog(ctx context.Context) (engine.Catalog, error)
}

// CatalogRepository shares the question catalog between instances through Redis
// and falls back to the loader on a cache miss.
// The catalog is stored as: SET acadtutor:catalog JSON(Catalog) EX ttl+jitter
type CatalogRepository struct {
	client *redis.Client
	loader CatalogLoader
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewCatalogRepository(client *redis.Client, loader CatalogLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CatalogRepository) GetBank(ctx context.Context) (*engine.QuestionBank, error) {
	if catalog, ok := r.cached(ctx); ok {
		return engine.NewQuestionBank(catalog), nil
	}

	result, err, _ := r.sf.Do(catalogKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if catalog, ok := r.cached(ctx); ok {
			return catalog, nil
		}

		catalog, err := r.loader.LoadCatalog(ctx)
		if err != nil {
			return nil, err
		}

		data, err := json.Marshal(catalog)
		if err == nil {
			err = r.client.Set(ctx, catalogKey, data, r.ttlWithJitter()).Err()
		}
		if err != nil {
			log.Printf("catalog cache fill failed: %v", err)
		}
		return catalog, nil
	})
	if err != nil {
		return nil, err
	}
	return engine.NewQuestionBank(result.(engine.Catalog)), nil
}

// Invalidate removes the shared copy so every instance reloads it.
func (r *CatalogRepository) Invalidate(ctx context.Context) error {
	return r.client.Del(ctx, catalogKey).Err()
}

func (r *CatalogRepository) cached(ctx context.Context) (engine.Catalog, bool) {
	data, err := r.client.Get(ctx, catalogKey).Bytes()
	if err != nil || len(data) == 0 {
		return nil, false
	}
	var catalog engine.Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		log.Printf("discarding undecodable cached catalog: %v", err)
		return nil, false
	}
	return catalog, true
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
