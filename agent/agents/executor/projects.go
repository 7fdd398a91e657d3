package executor

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cast"

	contractx "github.com/tanpawarit/records-assistant/agent/contract"
)

const (
	collProjects = "projects"
	collTasks    = "tasks"
)

func (e *Executor) registerProjects() {
	d := contractx.DomainProjects
	e.register(d, "list_projects", e.listProjects)
	e.register(d, "project_status", e.projectStatus)
	e.register(d, "projects_progress", e.projectsProgress)
	e.register(d, "report_projects", e.projectsReport)
	e.register(d, "create_project", e.unsupported)
	e.register(d, "update_project", e.unsupported)
	e.register(d, "delete_project", e.unsupported)
}

func (e *Executor) listProjects(ctx context.Context, cmd contractx.Command) (contractx.Envelope, error) {
	recs, source, err := e.readAll(ctx, cmd, collProjects)
	if err != nil {
		return contractx.Envelope{}, err
	}
	return contractx.Envelope{
		Success: true,
		Title:   "Project list",
		Count:   len(recs),
		Items:   recs,
		Summary: fmt.Sprintf("%d projects found", len(recs)),
		Metrics: map[string]float64{"total_projects": float64(len(recs))},
		Source:  source,
	}, nil
}

// projectStatus returns the first project matching the id or name, with its
// tasks attached.
func (e *Executor) projectStatus(ctx context.Context, cmd contractx.Command) (contractx.Envelope, error) {
	criteria := pick(cmd, "id", "name")
	recs, source, err := e.search(ctx, cmd, collProjects, criteria)
	if err != nil {
		return contractx.Envelope{}, err
	}
	taskRecs, ok, err := e.companion(ctx, cmd, collTasks, source)
	if err != nil {
		return contractx.Envelope{}, err
	}
	if !ok {
		if recs, err = e.local(cmd.Domain, collProjects).Search(ctx, criteria); err != nil {
			return contractx.Envelope{}, err
		}
		if taskRecs, err = e.local(cmd.Domain, collTasks).List(ctx, 0); err != nil {
			return contractx.Envelope{}, err
		}
		source = contractx.SourceLocal
	}
	if len(recs) == 0 {
		return contractx.Envelope{
			Success: true,
			Title:   "Project status",
			Count:   0,
			Items:   []contractx.Record{},
			Summary: fmt.Sprintf("No project matches %s", describeCriteria(criteria)),
			Source:  source,
		}, nil
	}

	found := recs[0]
	decoded, err := decodeRecords[project]([]contractx.Record{found})
	if err != nil {
		return contractx.Envelope{}, err
	}
	p := decoded[0]

	var tasks []contractx.Record
	done := 0
	for _, t := range taskRecs {
		if !strings.EqualFold(cast.ToString(t["project_id"]), p.ID) {
			continue
		}
		tasks = append(tasks, t)
		if canonicalStatus(cast.ToString(t["status"])) == "completed" {
			done++
		}
	}

	item := found.Clone()
	item["tasks"] = tasks
	return contractx.Envelope{
		Success: true,
		Title:   fmt.Sprintf("Project status: %s", p.Name),
		Count:   1,
		Items:   []contractx.Record{item},
		Summary: fmt.Sprintf("%s is %s at %.0f%% progress, %d/%d tasks done",
			p.Name, canonicalStatus(p.Status), p.Progress, done, len(tasks)),
		Metrics: map[string]float64{
			"progress":        p.Progress,
			"budget":          p.Budget,
			"budget_spent":    p.BudgetSpent,
			"budget_used_pct": percent(p.BudgetSpent, p.Budget),
			"tasks_total":     float64(len(tasks)),
			"tasks_done":      float64(done),
		},
		Source: source,
	}, nil
}

type portfolioTotals struct {
	count       int
	byStatus    map[string]int
	avgProgress float64
	budget      float64
	spent       float64
}

func summarizeProjects(recs []contractx.Record) (portfolioTotals, error) {
	projects, err := decodeRecords[project](recs)
	if err != nil {
		return portfolioTotals{}, err
	}
	t := portfolioTotals{count: len(projects), byStatus: make(map[string]int)}
	var progress float64
	for _, p := range projects {
		t.byStatus[canonicalStatus(p.Status)]++
		progress += p.Progress
		t.budget += p.Budget
		t.spent += p.BudgetSpent
	}
	if t.count > 0 {
		t.avgProgress = round1(progress / float64(t.count))
	}
	return t, nil
}

func (e *Executor) projectsProgress(ctx context.Context, cmd contractx.Command) (contractx.Envelope, error) {
	recs, source, err := e.readAll(ctx, cmd, collProjects)
	if err != nil {
		return contractx.Envelope{}, err
	}
	t, err := summarizeProjects(recs)
	if err != nil {
		return contractx.Envelope{}, err
	}
	return contractx.Envelope{
		Success: true,
		Title:   "Project progress",
		Count:   len(recs),
		Items:   recs,
		Summary: fmt.Sprintf("%d projects: %d in progress, %d completed, %d planned, average progress %.1f%%",
			t.count, t.byStatus["in_progress"], t.byStatus["completed"], t.byStatus["planned"], t.avgProgress),
		Metrics: map[string]float64{
			"total_projects":  float64(t.count),
			"in_progress":     float64(t.byStatus["in_progress"]),
			"completed":       float64(t.byStatus["completed"]),
			"planned":         float64(t.byStatus["planned"]),
			"avg_progress":    t.avgProgress,
			"total_budget":    t.budget,
			"total_spent":     t.spent,
			"budget_used_pct": percent(t.spent, t.budget),
		},
		Source: source,
	}, nil
}

func (e *Executor) projectsReport(ctx context.Context, cmd contractx.Command) (contractx.Envelope, error) {
	set, source, err := e.readSet(ctx, cmd, collProjects, collTasks)
	if err != nil {
		return contractx.Envelope{}, err
	}
	t, err := summarizeProjects(set[collProjects])
	if err != nil {
		return contractx.Envelope{}, err
	}
	tasks, err := decodeRecords[task](set[collTasks])
	if err != nil {
		return contractx.Envelope{}, err
	}
	tasksByStatus := map[string]int{}
	for _, tk := range tasks {
		tasksByStatus[canonicalStatus(tk.Status)]++
	}

	return contractx.Envelope{
		Success: true,
		Title:   "Project report",
		Count:   t.count,
		Aggregate: map[string]any{
			"projects":     t.count,
			"by_status":    t.byStatus,
			"avg_progress": t.avgProgress,
			"tasks": map[string]any{
				"total":     len(tasks),
				"by_status": tasksByStatus,
			},
			"budget": map[string]any{
				"total":    t.budget,
				"spent":    t.spent,
				"used_pct": percent(t.spent, t.budget),
			},
		},
		Summary: fmt.Sprintf("%d projects, %d tasks, %.1f%% of budget spent", t.count, len(tasks), percent(t.spent, t.budget)),
		Metrics: map[string]float64{
			"projects":        float64(t.count),
			"tasks":           float64(len(tasks)),
			"avg_progress":    t.avgProgress,
			"budget_used_pct": percent(t.spent, t.budget),
		},
		Source: source,
	}, nil
}
