package records

import (
	"context"
	"errors"
	"testing"

	contractx "github.com/tanpawarit/records-assistant/agent/contract"
)

func newTestCollections() *Collections {
	c := NewCollections()
	c.Set(contractx.DomainCRM, "clients", []contractx.Record{
		{"id": float64(1), "name": "Acme Industries", "email": "contact@acme.test"},
		{"id": float64(2), "name": "TechCorp", "email": "hello@techcorp.test"},
	})
	c.Set(contractx.DomainHR, "employees", []contractx.Record{
		{"id": "E01", "first_name": "Jean", "last_name": "Dupont", "department": "Sales"},
		{"id": "E02", "first_name": "Marie", "last_name": "Curie", "department": "R&D"},
	})
	return c
}

func TestLocalEntityListReturnsWholeCollection(t *testing.T) {
	t.Parallel()

	store := NewLocalEntity(newTestCollections(), contractx.DomainCRM, "clients")
	recs, err := store.List(context.Background(), 1)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
}

func TestLocalEntitySearch(t *testing.T) {
	t.Parallel()

	clients := NewLocalEntity(newTestCollections(), contractx.DomainCRM, "clients")
	employees := NewLocalEntity(newTestCollections(), contractx.DomainHR, "employees")

	tests := []struct {
		name     string
		store    *LocalEntity
		criteria map[string]any
		want     int
	}{
		{name: "name substring", store: clients, criteria: map[string]any{"name": "acme"}, want: 1},
		{name: "numeric id", store: clients, criteria: map[string]any{"id": "2"}, want: 1},
		{name: "name or id", store: clients, criteria: map[string]any{"name": "acme", "id": "2"}, want: 2},
		{name: "full employee name", store: employees, criteria: map[string]any{"name": "jean dupont"}, want: 1},
		{name: "code id", store: employees, criteria: map[string]any{"id": "e02"}, want: 1},
		{name: "no criteria", store: clients, criteria: map[string]any{}, want: 0},
		{name: "no match", store: clients, criteria: map[string]any{"name": "globex"}, want: 0},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			recs, err := tc.store.Search(context.Background(), tc.criteria)
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if len(recs) != tc.want {
				t.Fatalf("expected %d records, got %d", tc.want, len(recs))
			}
		})
	}
}

func TestLocalEntityIsReadOnly(t *testing.T) {
	t.Parallel()

	store := NewLocalEntity(newTestCollections(), contractx.DomainCRM, "clients")
	ctx := context.Background()

	if _, err := store.Create(ctx, contractx.Record{"name": "x"}); !errors.Is(err, contractx.ErrReadOnly) {
		t.Fatalf("Create() expected ErrReadOnly, got %v", err)
	}
	if err := store.Update(ctx, 1, contractx.Record{"name": "x"}); !errors.Is(err, contractx.ErrReadOnly) {
		t.Fatalf("Update() expected ErrReadOnly, got %v", err)
	}
	if err := store.Delete(ctx, 1); !errors.Is(err, contractx.ErrReadOnly) {
		t.Fatalf("Delete() expected ErrReadOnly, got %v", err)
	}
}

func TestCollectionsGetReturnsCopy(t *testing.T) {
	t.Parallel()

	c := newTestCollections()
	got := c.Get(contractx.DomainCRM, "clients")
	got[0] = contractx.Record{"id": 99}

	again := c.Get(contractx.DomainCRM, "clients")
	if again[0]["id"] != float64(1) {
		t.Fatalf("collection was mutated through Get(): %v", again[0])
	}
	if c.Count(contractx.DomainHR) != 2 {
		t.Fatalf("expected 2 HR records, got %d", c.Count(contractx.DomainHR))
	}
}
