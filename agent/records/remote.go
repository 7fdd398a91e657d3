package records

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	contractx "github.com/tanpawarit/records-assistant/agent/contract"
)

const (
	ModelPartner = "res.partner"
	ModelLead    = "crm.lead"

	searchLimit = 100
)

// RPC is the remote procedure surface of the business-records service.
type RPC interface {
	Search(ctx context.Context, model string, domain []any, limit int) ([]int64, error)
	Read(ctx context.Context, model string, ids []int64, fields []string) ([]map[string]any, error)
	Create(ctx context.Context, model string, values map[string]any) (int64, error)
	Write(ctx context.Context, model string, ids []int64, values map[string]any) error
	Unlink(ctx context.Context, model string, ids []int64) error
}

type deleteMode int

const (
	deleteArchive deleteMode = iota
	deleteUnlink
)

type entityDef struct {
	model          string
	baseFilter     []any
	readFields     []string
	writeFields    []fieldMapping
	createForced   map[string]any
	searchFields   map[string]string
	fromRemote     func(map[string]any) contractx.Record
	deleteBehavior deleteMode
}

// RemoteEntity maps one record family of the remote service onto the
// EntityStore contract.
type RemoteEntity struct {
	rpc RPC
	def entityDef
}

// NewRemoteClients serves clients from res.partner. Delete archives.
func NewRemoteClients(rpc RPC) *RemoteEntity {
	return &RemoteEntity{
		rpc: rpc,
		def: entityDef{
			model:       ModelPartner,
			readFields:  clientFields,
			writeFields: clientWriteFields,
			searchFields: map[string]string{
				"name":  "name",
				"email": "email",
				"phone": "phone",
				"city":  "city",
			},
			fromRemote:     clientFromRemote,
			deleteBehavior: deleteArchive,
		},
	}
}

// NewRemoteOpportunities serves opportunities from crm.lead. Delete unlinks.
func NewRemoteOpportunities(rpc RPC) *RemoteEntity {
	return &RemoteEntity{
		rpc: rpc,
		def: entityDef{
			model:        ModelLead,
			baseFilter:   []any{[]any{"type", "=", "opportunity"}},
			readFields:   opportunityFields,
			writeFields:  opportunityWriteFields,
			createForced: map[string]any{"type": "opportunity"},
			searchFields: map[string]string{
				"title": "name",
				"name":  "name",
			},
			fromRemote:     opportunityFromRemote,
			deleteBehavior: deleteUnlink,
		},
	}
}

func (r *RemoteEntity) Model() string {
	return r.def.model
}

func (r *RemoteEntity) List(ctx context.Context, limit int) ([]contractx.Record, error) {
	return r.fetch(ctx, r.def.baseFilter, limit)
}

// Search ORs the criteria together. Without usable criteria nothing is
// fetched.
func (r *RemoteEntity) Search(ctx context.Context, criteria map[string]any) ([]contractx.Record, error) {
	terms := r.searchTerms(criteria)
	if len(terms) == 0 {
		return nil, nil
	}

	filter := make([]any, 0, len(r.def.baseFilter)+2*len(terms))
	filter = append(filter, r.def.baseFilter...)
	for i := 1; i < len(terms); i++ {
		filter = append(filter, "|")
	}
	filter = append(filter, terms...)

	return r.fetch(ctx, filter, searchLimit)
}

func (r *RemoteEntity) Create(ctx context.Context, data contractx.Record) (int64, error) {
	values := toRemote(data, r.def.writeFields)
	for k, v := range r.def.createForced {
		values[k] = v
	}

	id, err := r.rpc.Create(ctx, r.def.model, values)
	if err != nil {
		return 0, fmt.Errorf("%w: create %s: %w", contractx.ErrRemoteCall, r.def.model, err)
	}
	return id, nil
}

func (r *RemoteEntity) Update(ctx context.Context, id int64, data contractx.Record) error {
	values := toRemote(data, r.def.writeFields)
	if len(values) == 0 {
		return fmt.Errorf("%w: no writable fields for %s", contractx.ErrValidation, r.def.model)
	}
	if err := r.rpc.Write(ctx, r.def.model, []int64{id}, values); err != nil {
		return fmt.Errorf("%w: write %s/%d: %w", contractx.ErrRemoteCall, r.def.model, id, err)
	}
	return nil
}

func (r *RemoteEntity) Delete(ctx context.Context, id int64) error {
	var err error
	switch r.def.deleteBehavior {
	case deleteArchive:
		err = r.rpc.Write(ctx, r.def.model, []int64{id}, map[string]any{"active": false})
	default:
		err = r.rpc.Unlink(ctx, r.def.model, []int64{id})
	}
	if err != nil {
		return fmt.Errorf("%w: delete %s/%d: %w", contractx.ErrRemoteCall, r.def.model, id, err)
	}
	return nil
}

func (r *RemoteEntity) fetch(ctx context.Context, filter []any, limit int) ([]contractx.Record, error) {
	if filter == nil {
		filter = []any{}
	}
	ids, err := r.rpc.Search(ctx, r.def.model, filter, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: search %s: %w", contractx.ErrRemoteCall, r.def.model, err)
	}
	if len(ids) == 0 {
		return []contractx.Record{}, nil
	}

	rows, err := r.rpc.Read(ctx, r.def.model, ids, r.def.readFields)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", contractx.ErrRemoteCall, r.def.model, err)
	}

	out := make([]contractx.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, r.def.fromRemote(row))
	}
	return out, nil
}

func (r *RemoteEntity) searchTerms(criteria map[string]any) []any {
	keys := make([]string, 0, len(criteria))
	for k := range criteria {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	terms := make([]any, 0, len(keys))
	for _, key := range keys {
		value := strings.TrimSpace(cast.ToString(criteria[key]))
		if value == "" {
			continue
		}
		if key == "id" {
			id, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				continue
			}
			terms = append(terms, []any{"id", "=", id})
			continue
		}
		if field, ok := r.def.searchFields[key]; ok {
			terms = append(terms, []any{field, "ilike", value})
		}
	}
	return terms
}
