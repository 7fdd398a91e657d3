package records

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"

	contractx "github.com/tanpawarit/records-assistant/agent/contract"
)

// recordRow stores one local record as a JSON document. Position keeps the
// file order of a collection.
type recordRow struct {
	bun.BaseModel `bun:"table:local_records,alias:lr"`

	Domain     string         `bun:"domain,notnull"`
	Collection string         `bun:"collection,notnull"`
	Position   int            `bun:"position,notnull"`
	Payload    map[string]any `bun:"payload,type:jsonb"`
}

// SQLLoader reads local collections from the local_records table.
type SQLLoader struct {
	db *bun.DB
}

func NewSQLLoader(db *bun.DB) *SQLLoader {
	return &SQLLoader{db: db}
}

func (l *SQLLoader) Load(ctx context.Context) (*Collections, error) {
	var rows []recordRow
	err := l.db.NewSelect().
		Model(&rows).
		OrderExpr("domain ASC, collection ASC, position ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select local records: %w", err)
	}

	grouped := make(map[contractx.Domain]map[string][]contractx.Record, len(contractx.Domains))
	for _, row := range rows {
		domain := contractx.Domain(row.Domain)
		if !domain.Valid() {
			log.Warn().Str("domain", row.Domain).Msg("skipping local record of unknown domain")
			continue
		}
		if grouped[domain] == nil {
			grouped[domain] = make(map[string][]contractx.Record, 4)
		}
		grouped[domain][row.Collection] = append(grouped[domain][row.Collection], contractx.Record(row.Payload))
	}

	c := NewCollections()
	for domain, byName := range grouped {
		for name, recs := range byName {
			c.Set(domain, name, recs)
		}
	}
	return c, nil
}

// Seed replaces the table content with the given collections and returns the
// number of rows written.
func (l *SQLLoader) Seed(ctx context.Context, c *Collections) (int, error) {
	if _, err := l.db.NewCreateTable().Model((*recordRow)(nil)).IfNotExists().Exec(ctx); err != nil {
		return 0, fmt.Errorf("create local_records: %w", err)
	}
	if _, err := l.db.NewTruncateTable().Model((*recordRow)(nil)).Exec(ctx); err != nil {
		return 0, fmt.Errorf("truncate local_records: %w", err)
	}

	var rows []recordRow
	for _, domain := range contractx.Domains {
		for _, name := range c.Names(domain) {
			for i, rec := range c.Get(domain, name) {
				rows = append(rows, recordRow{
					Domain:     string(domain),
					Collection: name,
					Position:   i,
					Payload:    map[string]any(rec),
				})
			}
		}
	}
	if len(rows) == 0 {
		return 0, nil
	}

	if _, err := l.db.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return 0, fmt.Errorf("insert local_records: %w", err)
	}
	return len(rows), nil
}
