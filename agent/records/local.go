package records

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cast"

	contractx "github.com/tanpawarit/records-assistant/agent/contract"
)

// nameFields are the record fields a "name" criterion is matched against.
var nameFields = []string{"name", "title", "first_name", "last_name"}

// LocalEntity serves one local collection through the EntityStore contract.
// It is read-only.
type LocalEntity struct {
	collections *Collections
	domain      contractx.Domain
	name        string
}

func NewLocalEntity(collections *Collections, domain contractx.Domain, name string) *LocalEntity {
	return &LocalEntity{collections: collections, domain: domain, name: name}
}

// List returns the whole collection. The limit only bounds remote reads.
func (l *LocalEntity) List(ctx context.Context, _ int) ([]contractx.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return l.collections.Get(l.domain, l.name), nil
}

// Search returns records matching any criterion: id by equality, name as a
// case-insensitive substring, other keys by case-insensitive equality.
func (l *LocalEntity) Search(ctx context.Context, criteria map[string]any) ([]contractx.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(criteria) == 0 {
		return nil, nil
	}

	var out []contractx.Record
	for _, rec := range l.collections.Get(l.domain, l.name) {
		if Matches(rec, criteria) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (l *LocalEntity) Create(context.Context, contractx.Record) (int64, error) {
	return 0, fmt.Errorf("%w: create in %s/%s", contractx.ErrReadOnly, l.domain, l.name)
}

func (l *LocalEntity) Update(context.Context, int64, contractx.Record) error {
	return fmt.Errorf("%w: update in %s/%s", contractx.ErrReadOnly, l.domain, l.name)
}

func (l *LocalEntity) Delete(context.Context, int64) error {
	return fmt.Errorf("%w: delete in %s/%s", contractx.ErrReadOnly, l.domain, l.name)
}

// Matches reports whether rec satisfies at least one criterion.
func Matches(rec contractx.Record, criteria map[string]any) bool {
	for key, want := range criteria {
		needle := strings.ToLower(strings.TrimSpace(cast.ToString(want)))
		if needle == "" {
			continue
		}
		switch key {
		case "id":
			if strings.EqualFold(cast.ToString(rec["id"]), needle) {
				return true
			}
		case "name":
			if matchesName(rec, needle) {
				return true
			}
		default:
			if strings.EqualFold(cast.ToString(rec[key]), needle) {
				return true
			}
		}
	}
	return false
}

func matchesName(rec contractx.Record, needle string) bool {
	for _, field := range nameFields {
		if strings.Contains(strings.ToLower(cast.ToString(rec[field])), needle) {
			return true
		}
	}
	full := strings.TrimSpace(cast.ToString(rec["first_name"]) + " " + cast.ToString(rec["last_name"]))
	return full != "" && strings.Contains(strings.ToLower(full), needle)
}
