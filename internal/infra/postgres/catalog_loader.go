package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"acadtutor/internal/domain"
	"acadtutor/internal/engine"
	"github.com/jackc/pgx/v4/pgxpool"
)

// CatalogLoader loads curated bank questions (JSONB rows) from Postgres.
type CatalogLoader struct {
	pool *pgxpool.Pool
}

func NewCatalogLoader(pool *pgxpool.Pool) *CatalogLoader {
	return &CatalogLoader{pool: pool}
}

func (l *CatalogLoader) LoadCatalog(ctx context.Context) (engine.Catalog, error) {
	rows, err := l.pool.Query(ctx, `SELECT subject, topic, data FROM bank_questions ORDER BY subject, topic, position`)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	defer rows.Close()

	catalog := engine.Catalog{}
	for rows.Next() {
		var (
			subject, topic string
			raw            []byte
		)
		if err := rows.Scan(&subject, &topic, &raw); err != nil {
			return nil, fmt.Errorf("scan bank question: %w", err)
		}
		var q domain.Question
		if err := json.Unmarshal(raw, &q); err != nil {
			return nil, fmt.Errorf("unmarshal bank question %s: %w", domain.TopicKey(subject, topic), err)
		}
		if catalog[subject] == nil {
			catalog[subject] = map[string][]domain.Question{}
		}
		catalog[subject][topic] = append(catalog[subject][topic], q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return catalog, nil
}
