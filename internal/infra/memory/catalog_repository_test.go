package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"acadtutor/internal/domain"
	"acadtutor/internal/engine"
)

func TestCatalogRepositoryCaches(t *testing.T) {
	loader := &countingLoader{CatalogLoader: NewStaticCatalogLoader(sampleCatalog())}
	repo := NewCatalogRepository(loader, time.Minute)

	bank, err := repo.GetBank(context.Background())
	if err != nil {
		t.Fatalf("get bank: %v", err)
	}
	if got := bank.Lookup("Chemistry", "Atoms"); len(got) != 1 {
		t.Fatalf("expected 1 question, got %d", len(got))
	}
	if loader.count() != 1 {
		t.Fatalf("expected loader once, got %d", loader.count())
	}

	if _, err := repo.GetBank(context.Background()); err != nil {
		t.Fatalf("get bank 2: %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.count())
	}
}

func TestCatalogRepositoryExpires(t *testing.T) {
	loader := &countingLoader{CatalogLoader: NewStaticCatalogLoader(sampleCatalog())}
	repo := NewCatalogRepository(loader, time.Minute)
	now := time.Now()
	repo.clock = func() time.Time { return now }

	_, _ = repo.GetBank(context.Background())
	now = now.Add(2 * time.Minute)
	_, _ = repo.GetBank(context.Background())
	if loader.count() != 2 {
		t.Fatalf("expected reload after expiry, loader calls %d", loader.count())
	}

	repo.Invalidate()
	_, _ = repo.GetBank(context.Background())
	if loader.count() != 3 {
		t.Fatalf("expected reload after invalidate, loader calls %d", loader.count())
	}
}

func TestCatalogRepositoryConcurrentFill(t *testing.T) {
	loader := &countingLoader{CatalogLoader: NewStaticCatalogLoader(sampleCatalog()), delay: 20 * time.Millisecond}
	repo := NewCatalogRepository(loader, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.GetBank(context.Background()); err != nil {
				t.Errorf("get bank: %v", err)
			}
		}()
	}
	wg.Wait()
	if loader.count() != 1 {
		t.Fatalf("expected a single fill, loader calls %d", loader.count())
	}
}

func TestCatalogRepositoryLoaderError(t *testing.T) {
	repo := NewCatalogRepository(failingLoader{}, time.Minute)
	if _, err := repo.GetBank(context.Background()); err == nil {
		t.Fatalf("expected loader error")
	}
}

func TestLayeredCatalogLoader(t *testing.T) {
	override := engine.Catalog{"Blockchain": {"Basics": sampleCatalog()["Chemistry"]["Atoms"]}}
	catalog, err := LayeredCatalogLoader{
		NewStaticCatalogLoader(engine.SeedCatalog()),
		NewStaticCatalogLoader(override),
	}.LoadCatalog(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := catalog["Blockchain"]["Basics"]; len(got) != 1 {
		t.Fatalf("expected overridden topic, got %d questions", len(got))
	}
	if len(catalog["Mathematics"]) == 0 {
		t.Fatalf("expected seed subjects to survive")
	}
}

type countingLoader struct {
	CatalogLoader
	delay time.Duration

	mu    sync.Mutex
	calls int
}

func (l *countingLoader) LoadCatalog(ctx context.Context) (engine.Catalog, error) {
	l.mu.Lock()
	l.calls++
	l.mu.Unlock()
	time.Sleep(l.delay)
	return l.CatalogLoader.LoadCatalog(ctx)
}

func (l *countingLoader) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

type failingLoader struct{}

func (failingLoader) LoadCatalog(context.Context) (engine.Catalog, error) {
	return nil, errors.New("db down")
}

func sampleCatalog() engine.Catalog {
	return engine.Catalog{
		"Chemistry": {
			"Atoms": {
				{
					Prompt:        "What is the charge of an electron?",
					Options:       map[string]string{"A": "Positive", "B": "Negative", "C": "Neutral"},
					CorrectAnswer: "B",
					Difficulty:    domain.DifficultyEasy,
				},
			},
		},
	}
}
