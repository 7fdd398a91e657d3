package executor

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	contractx "github.com/tanpawarit/records-assistant/agent/contract"
)

func TestLeaveStatusCountsStatuses(t *testing.T) {
	t.Parallel()

	env := New(newTestCollections()).Execute(context.Background(), command(contractx.DomainHR, "status_leave", nil))
	if !env.Success {
		t.Fatalf("status_leave failed: %q", env.Error)
	}
	want := map[string]float64{"total_requests": 3, "approved": 2, "pending": 1, "rejected": 0}
	if diff := cmp.Diff(want, env.Metrics); diff != "" {
		t.Fatalf("metrics mismatch (-want +got):\n%s", diff)
	}
}

func TestHRReportGroupsByDepartment(t *testing.T) {
	t.Parallel()

	env := New(newTestCollections()).Execute(context.Background(), command(contractx.DomainHR, "report_hr", nil))
	if !env.Success {
		t.Fatalf("report_hr failed: %q", env.Error)
	}
	if !env.IsAggregate() || env.Items != nil {
		t.Fatalf("expected an aggregate-shaped result")
	}
	departments := env.Aggregate["departments"].(map[string]any)
	rd := departments["R&D"].(map[string]any)
	if rd["employees"] != 2 || rd["payroll"] != 9300.0 {
		t.Fatalf("unexpected R&D totals: %v", rd)
	}
	if env.Metrics["payroll"] != 13100 {
		t.Fatalf("payroll = %v, want 13100", env.Metrics["payroll"])
	}
	if env.Metrics["avg_eval_score"] != 4.5 {
		t.Fatalf("avg_eval_score = %v, want 4.5", env.Metrics["avg_eval_score"])
	}
}

func TestSearchEmployeeByName(t *testing.T) {
	t.Parallel()

	env := New(newTestCollections()).Execute(context.Background(), command(contractx.DomainHR, "search_employee", map[string]any{"name": "Jean"}))
	if env.Count != 1 || env.Items[0]["id"] != "E001" {
		t.Fatalf("unexpected search result: %+v", env)
	}
}

func TestLocalOnlyWritesAreUnsupported(t *testing.T) {
	t.Parallel()

	ex := New(newTestCollections())
	for _, cmd := range []contractx.Command{
		command(contractx.DomainHR, "create_employee", map[string]any{"name": "Paul"}),
		command(contractx.DomainHR, "delete_employee", map[string]any{"id": "E001"}),
		command(contractx.DomainProjects, "update_project", map[string]any{"id": "P001"}),
	} {
		env := ex.Execute(context.Background(), cmd)
		if env.Success {
			t.Fatalf("%s: expected unsupported failure", cmd.Operation)
		}
		if !strings.Contains(env.Error, contractx.ErrUnsupported.Error()) {
			t.Fatalf("%s: unexpected error %q", cmd.Operation, env.Error)
		}
	}
}

func TestProjectStatusAttachesTasks(t *testing.T) {
	t.Parallel()

	env := New(newTestCollections()).Execute(context.Background(), command(contractx.DomainProjects, "project_status", map[string]any{"id": "P001"}))
	if !env.Success || env.Count != 1 {
		t.Fatalf("project_status failed: %+v", env)
	}
	tasks := env.Items[0]["tasks"].([]contractx.Record)
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if env.Metrics["tasks_done"] != 1 || env.Metrics["budget_used_pct"] != 50 {
		t.Fatalf("unexpected metrics: %v", env.Metrics)
	}

	env = New(newTestCollections()).Execute(context.Background(), command(contractx.DomainProjects, "project_status", map[string]any{"id": "P404"}))
	if !env.Success || env.Count != 0 {
		t.Fatalf("expected empty success for unknown project, got %+v", env)
	}
}

func TestProjectsProgress(t *testing.T) {
	t.Parallel()

	env := New(newTestCollections()).Execute(context.Background(), command(contractx.DomainProjects, "projects_progress", nil))
	want := map[string]float64{
		"total_projects":  3,
		"in_progress":     1,
		"completed":       1,
		"planned":         1,
		"avg_progress":    53.3,
		"total_budget":    120000,
		"total_spent":     40000,
		"budget_used_pct": 33.3,
	}
	if diff := cmp.Diff(want, env.Metrics); diff != "" {
		t.Fatalf("metrics mismatch (-want +got):\n%s", diff)
	}
}

func TestProjectsReport(t *testing.T) {
	t.Parallel()

	env := New(newTestCollections()).Execute(context.Background(), command(contractx.DomainProjects, "report_projects", nil))
	if !env.IsAggregate() {
		t.Fatalf("expected aggregate result")
	}
	tasks := env.Aggregate["tasks"].(map[string]any)
	if tasks["total"] != 3 {
		t.Fatalf("tasks total = %v, want 3", tasks["total"])
	}
	byStatus := tasks["by_status"].(map[string]int)
	if byStatus["completed"] != 2 {
		t.Fatalf("completed tasks = %d, want 2", byStatus["completed"])
	}
}

func TestMalformedRecordFailsAtBoundary(t *testing.T) {
	t.Parallel()

	c := newTestCollections()
	c.Set(contractx.DomainCRM, "opportunities", []contractx.Record{{"probability": []any{"not", "a", "number"}}})

	env := New(c).Execute(context.Background(), command(contractx.DomainCRM, "status_opportunities", nil))
	if env.Success {
		t.Fatalf("expected decode failure to be reported")
	}
	if env.Error == "" {
		t.Fatalf("expected error detail")
	}
}
