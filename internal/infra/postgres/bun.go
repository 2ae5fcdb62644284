package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"acadtutor/internal/domain"
	"acadtutor/internal/engine"
	pgmigrations "acadtutor/internal/infra/postgres/migrations"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

// OpenBun opens a bun handle for schema and seed work. Callers close it.
func OpenBun(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

// Migrate applies every pending migration and returns the applied group.
func Migrate(ctx context.Context, db *bun.DB) (*migrate.MigrationGroup, error) {
	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return nil, err
	}
	return migrator.Migrate(ctx)
}

// BankQuestion is one row of bank_questions.
type BankQuestion struct {
	bun.BaseModel `bun:"table:bank_questions"`

	ID         int64             `bun:"id,pk,autoincrement"`
	Subject    string            `bun:"subject,notnull"`
	Topic      string            `bun:"topic,notnull"`
	Position   int               `bun:"position,notnull"`
	Difficulty domain.Difficulty `bun:"difficulty,notnull"`
	Data       domain.Question   `bun:"data,type:jsonb,notnull"`
}

// SeedCatalog upserts the catalog into bank_questions and returns the number of rows written.
func SeedCatalog(ctx context.Context, db *bun.DB, catalog engine.Catalog) (int, error) {
	rows := BankRows(catalog)
	if len(rows) == 0 {
		return 0, nil
	}
	_, err := db.NewInsert().
		Model(&rows).
		On("CONFLICT (subject, topic, position) DO UPDATE").
		Set("difficulty = EXCLUDED.difficulty").
		Set("data = EXCLUDED.data").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed bank questions: %w", err)
	}
	return len(rows), nil
}

// BankRows flattens a catalog into rows ordered by subject, topic and position.
func BankRows(catalog engine.Catalog) []BankQuestion {
	subjects := make([]string, 0, len(catalog))
	for s := range catalog {
		subjects = append(subjects, s)
	}
	sort.Strings(subjects)

	var rows []BankQuestion
	for _, subject := range subjects {
		topics := make([]string, 0, len(catalog[subject]))
		for t := range catalog[subject] {
			topics = append(topics, t)
		}
		sort.Strings(topics)
		for _, topic := range topics {
			for i, q := range catalog[subject][topic] {
				q.ID = 0
				rows = append(rows, BankQuestion{
					Subject:    subject,
					Topic:      topic,
					Position:   i + 1,
					Difficulty: q.Difficulty,
					Data:       q,
				})
			}
		}
	}
	return rows
}
