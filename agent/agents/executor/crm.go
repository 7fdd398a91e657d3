package executor

import (
	"context"
	"fmt"

	"github.com/spf13/cast"

	contractx "github.com/tanpawarit/records-assistant/agent/contract"
)

const (
	collClients       = "clients"
	collOpportunities = "opportunities"

	defaultProbability = 50
)

func (e *Executor) registerCRM() {
	d := contractx.DomainCRM
	e.register(d, "list_clients", e.listClients)
	e.register(d, "search_client", e.searchClients)
	e.register(d, "create_client", e.createClient)
	e.register(d, "update_client", e.updateClient)
	e.register(d, "delete_client", e.deleteClient)
	e.register(d, "list_opportunities", e.listOpportunities)
	e.register(d, "search_opportunity", e.searchOpportunities)
	e.register(d, "create_opportunity", e.createOpportunity)
	e.register(d, "update_opportunity", e.updateOpportunity)
	e.register(d, "delete_opportunity", e.deleteOpportunity)
	e.register(d, "status_opportunities", e.opportunityStatus)
	e.register(d, "report_sales", e.salesReport)
}

/* ------------------------------- clients ------------------------------- */

func (e *Executor) listClients(ctx context.Context, cmd contractx.Command) (contractx.Envelope, error) {
	recs, source, err := e.readAll(ctx, cmd, collClients)
	if err != nil {
		return contractx.Envelope{}, err
	}
	return contractx.Envelope{
		Success: true,
		Title:   "Client list",
		Count:   len(recs),
		Items:   recs,
		Summary: fmt.Sprintf("%d clients found", len(recs)),
		Metrics: map[string]float64{"total_clients": float64(len(recs))},
		Source:  source,
	}, nil
}

func (e *Executor) searchClients(ctx context.Context, cmd contractx.Command) (contractx.Envelope, error) {
	criteria := pick(cmd, "name", "id", "email", "phone")
	recs, source, err := e.search(ctx, cmd, collClients, criteria)
	if err != nil {
		return contractx.Envelope{}, err
	}
	return contractx.Envelope{
		Success: true,
		Title:   "Client search",
		Count:   len(recs),
		Items:   recs,
		Summary: fmt.Sprintf("%d clients match %s", len(recs), describeCriteria(criteria)),
		Source:  source,
	}, nil
}

func (e *Executor) createClient(ctx context.Context, cmd contractx.Command) (contractx.Envelope, error) {
	name := stringParam(cmd, "name")
	if name == "" {
		return contractx.Envelope{}, fmt.Errorf("%w: client name is required", contractx.ErrValidation)
	}
	store, err := e.writer(contractx.DomainCRM, collClients)
	if err != nil {
		return contractx.Envelope{}, err
	}

	data := pick(cmd, "email", "phone", "city", "address")
	data["name"] = name
	data["is_company"] = true

	id, err := store.Create(ctx, data)
	if err != nil {
		return contractx.Envelope{}, err
	}

	item := data.Clone()
	item["id"] = id
	return contractx.Envelope{
		Success: true,
		Title:   "Client created",
		Count:   1,
		Items:   []contractx.Record{item},
		Summary: fmt.Sprintf("Client %q created with ID %d", name, id),
		Metrics: map[string]float64{"client_id": float64(id)},
		Source:  contractx.SourceRemote,
	}, nil
}

func (e *Executor) updateClient(ctx context.Context, cmd contractx.Command) (contractx.Envelope, error) {
	id, err := idParam(cmd)
	if err != nil {
		return contractx.Envelope{}, err
	}
	changes := pick(cmd, "name", "email", "phone", "city", "address")
	if len(changes) == 0 {
		return contractx.Envelope{}, fmt.Errorf("%w: nothing to update on client %d", contractx.ErrValidation, id)
	}
	store, err := e.writer(contractx.DomainCRM, collClients)
	if err != nil {
		return contractx.Envelope{}, err
	}
	if err := store.Update(ctx, id, changes); err != nil {
		return contractx.Envelope{}, err
	}

	item := changes.Clone()
	item["id"] = id
	return contractx.Envelope{
		Success: true,
		Title:   "Client updated",
		Count:   1,
		Items:   []contractx.Record{item},
		Summary: fmt.Sprintf("Client %d updated (%d fields)", id, len(changes)),
		Metrics: map[string]float64{"client_id": float64(id)},
		Source:  contractx.SourceRemote,
	}, nil
}

func (e *Executor) deleteClient(ctx context.Context, cmd contractx.Command) (contractx.Envelope, error) {
	id, err := idParam(cmd)
	if err != nil {
		return contractx.Envelope{}, err
	}
	store, err := e.writer(contractx.DomainCRM, collClients)
	if err != nil {
		return contractx.Envelope{}, err
	}
	if err := store.Delete(ctx, id); err != nil {
		return contractx.Envelope{}, err
	}

	return contractx.Envelope{
		Success: true,
		Title:   "Client archived",
		Count:   1,
		Items:   []contractx.Record{{"id": id, "status": "archived"}},
		Summary: fmt.Sprintf("Client %d archived", id),
		Metrics: map[string]float64{"client_id": float64(id)},
		Source:  contractx.SourceRemote,
	}, nil
}

/* ---------------------------- opportunities ---------------------------- */

func (e *Executor) listOpportunities(ctx context.Context, cmd contractx.Command) (contractx.Envelope, error) {
	recs, source, err := e.readAll(ctx, cmd, collOpportunities)
	if err != nil {
		return contractx.Envelope{}, err
	}
	totals, err := summarizeOpportunities(recs)
	if err != nil {
		return contractx.Envelope{}, err
	}
	return contractx.Envelope{
		Success: true,
		Title:   "Opportunity list",
		Count:   len(recs),
		Items:   recs,
		Summary: fmt.Sprintf("%d opportunities found", len(recs)),
		Metrics: map[string]float64{
			"total_opportunities": float64(totals.count),
			"total_value":         totals.totalValue,
			"avg_probability":     totals.avgProbability,
		},
		Source: source,
	}, nil
}

func (e *Executor) searchOpportunities(ctx context.Context, cmd contractx.Command) (contractx.Envelope, error) {
	criteria := pick(cmd, "title=title|name", "id")
	recs, source, err := e.search(ctx, cmd, collOpportunities, criteria)
	if err != nil {
		return contractx.Envelope{}, err
	}
	return contractx.Envelope{
		Success: true,
		Title:   "Opportunity search",
		Count:   len(recs),
		Items:   recs,
		Summary: fmt.Sprintf("%d opportunities match %s", len(recs), describeCriteria(criteria)),
		Source:  source,
	}, nil
}

func (e *Executor) createOpportunity(ctx context.Context, cmd contractx.Command) (contractx.Envelope, error) {
	title := stringParam(cmd, "title", "name")
	if title == "" {
		return contractx.Envelope{}, fmt.Errorf("%w: opportunity title is required", contractx.ErrValidation)
	}
	store, err := e.writer(contractx.DomainCRM, collOpportunities)
	if err != nil {
		return contractx.Envelope{}, err
	}

	data := pick(cmd, "email", "phone", "client_id")
	data["title"] = title
	data["probability"] = defaultProbability
	if p, ok := cmd.Param("probability"); ok {
		data["probability"] = cast.ToInt(p)
	}
	data["expected_value"] = 0.0
	if v, ok := floatParam(cmd, "expected_value", "value", "amount"); ok {
		data["expected_value"] = v
	}

	id, err := store.Create(ctx, data)
	if err != nil {
		return contractx.Envelope{}, err
	}

	item := data.Clone()
	item["id"] = id
	return contractx.Envelope{
		Success: true,
		Title:   "Opportunity created",
		Count:   1,
		Items:   []contractx.Record{item},
		Summary: fmt.Sprintf("Opportunity %q created with ID %d", title, id),
		Metrics: map[string]float64{
			"opportunity_id": float64(id),
			"expected_value": cast.ToFloat64(data["expected_value"]),
		},
		Source: contractx.SourceRemote,
	}, nil
}

func (e *Executor) updateOpportunity(ctx context.Context, cmd contractx.Command) (contractx.Envelope, error) {
	id, err := idParam(cmd)
	if err != nil {
		return contractx.Envelope{}, err
	}
	changes := pick(cmd, "title=title|name", "probability", "expected_value=expected_value|value|amount", "email", "phone")
	if len(changes) == 0 {
		return contractx.Envelope{}, fmt.Errorf("%w: nothing to update on opportunity %d", contractx.ErrValidation, id)
	}
	store, err := e.writer(contractx.DomainCRM, collOpportunities)
	if err != nil {
		return contractx.Envelope{}, err
	}
	if err := store.Update(ctx, id, changes); err != nil {
		return contractx.Envelope{}, err
	}

	item := changes.Clone()
	item["id"] = id
	return contractx.Envelope{
		Success: true,
		Title:   "Opportunity updated",
		Count:   1,
		Items:   []contractx.Record{item},
		Summary: fmt.Sprintf("Opportunity %d updated (%d fields)", id, len(changes)),
		Metrics: map[string]float64{"opportunity_id": float64(id)},
		Source:  contractx.SourceRemote,
	}, nil
}

func (e *Executor) deleteOpportunity(ctx context.Context, cmd contractx.Command) (contractx.Envelope, error) {
	id, err := idParam(cmd)
	if err != nil {
		return contractx.Envelope{}, err
	}
	store, err := e.writer(contractx.DomainCRM, collOpportunities)
	if err != nil {
		return contractx.Envelope{}, err
	}
	if err := store.Delete(ctx, id); err != nil {
		return contractx.Envelope{}, err
	}

	return contractx.Envelope{
		Success: true,
		Title:   "Opportunity deleted",
		Count:   1,
		Items:   []contractx.Record{{"id": id, "status": "deleted"}},
		Summary: fmt.Sprintf("Opportunity %d deleted", id),
		Metrics: map[string]float64{"opportunity_id": float64(id)},
		Source:  contractx.SourceRemote,
	}, nil
}

func (e *Executor) opportunityStatus(ctx context.Context, cmd contractx.Command) (contractx.Envelope, error) {
	recs, source, err := e.readAll(ctx, cmd, collOpportunities)
	if err != nil {
		return contractx.Envelope{}, err
	}
	totals, err := summarizeOpportunities(recs)
	if err != nil {
		return contractx.Envelope{}, err
	}
	return contractx.Envelope{
		Success: true,
		Title:   "Opportunity pipeline",
		Count:   len(recs),
		Items:   recs,
		Summary: fmt.Sprintf("%d opportunities, total value %.2f, average probability %.1f%%",
			totals.count, totals.totalValue, totals.avgProbability),
		Metrics: map[string]float64{
			"opportunity_count": float64(totals.count),
			"total_value":       totals.totalValue,
			"weighted_value":    totals.weightedValue,
			"avg_probability":   totals.avgProbability,
		},
		Source: source,
	}, nil
}

func (e *Executor) salesReport(ctx context.Context, cmd contractx.Command) (contractx.Envelope, error) {
	set, source, err := e.readSet(ctx, cmd, collClients, collOpportunities)
	if err != nil {
		return contractx.Envelope{}, err
	}

	clients, err := decodeRecords[client](set[collClients])
	if err != nil {
		return contractx.Envelope{}, err
	}
	companies := 0
	for _, c := range clients {
		if c.IsCompany {
			companies++
		}
	}
	totals, err := summarizeOpportunities(set[collOpportunities])
	if err != nil {
		return contractx.Envelope{}, err
	}

	return contractx.Envelope{
		Success: true,
		Title:   "Sales report",
		Count:   totals.count,
		Aggregate: map[string]any{
			"clients":         len(clients),
			"companies":       companies,
			"opportunities":   totals.count,
			"pipeline_value":  totals.totalValue,
			"weighted_value":  totals.weightedValue,
			"avg_probability": totals.avgProbability,
			"by_stage":        totals.byStage,
		},
		Summary: fmt.Sprintf("%d clients, %d opportunities, pipeline value %.2f", len(clients), totals.count, totals.totalValue),
		Metrics: map[string]float64{
			"clients":         float64(len(clients)),
			"opportunities":   float64(totals.count),
			"pipeline_value":  totals.totalValue,
			"weighted_value":  totals.weightedValue,
			"avg_probability": totals.avgProbability,
		},
		Source: source,
	}, nil
}
