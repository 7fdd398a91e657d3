package executor

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/records-assistant/agent/contract"
)

const (
	collEmployees     = "employees"
	collLeaveRequests = "leave_requests"
	collEvaluations   = "evaluations"
)

func (e *Executor) registerHR() {
	d := contractx.DomainHR
	e.register(d, "list_employees", e.listEmployees)
	e.register(d, "search_employee", e.searchEmployees)
	e.register(d, "status_leave", e.leaveStatus)
	e.register(d, "report_hr", e.hrReport)
	e.register(d, "create_employee", e.unsupported)
	e.register(d, "update_employee", e.unsupported)
	e.register(d, "delete_employee", e.unsupported)
}

func (e *Executor) listEmployees(ctx context.Context, cmd contractx.Command) (contractx.Envelope, error) {
	recs, source, err := e.readAll(ctx, cmd, collEmployees)
	if err != nil {
		return contractx.Envelope{}, err
	}
	employees, err := decodeRecords[employee](recs)
	if err != nil {
		return contractx.Envelope{}, err
	}
	departments := map[string]struct{}{}
	for _, emp := range employees {
		if emp.Department != "" {
			departments[emp.Department] = struct{}{}
		}
	}
	return contractx.Envelope{
		Success: true,
		Title:   "Employee list",
		Count:   len(recs),
		Items:   recs,
		Summary: fmt.Sprintf("%d employees across %d departments", len(recs), len(departments)),
		Metrics: map[string]float64{
			"total_employees": float64(len(recs)),
			"departments":     float64(len(departments)),
		},
		Source: source,
	}, nil
}

func (e *Executor) searchEmployees(ctx context.Context, cmd contractx.Command) (contractx.Envelope, error) {
	criteria := pick(cmd, "name", "id", "email")
	recs, source, err := e.search(ctx, cmd, collEmployees, criteria)
	if err != nil {
		return contractx.Envelope{}, err
	}
	return contractx.Envelope{
		Success: true,
		Title:   "Employee search",
		Count:   len(recs),
		Items:   recs,
		Summary: fmt.Sprintf("%d employees match %s", len(recs), describeCriteria(criteria)),
		Source:  source,
	}, nil
}

type leaveCounts struct {
	total    int
	approved int
	pending  int
	rejected int
}

func countLeave(recs []contractx.Record) (leaveCounts, error) {
	requests, err := decodeRecords[leaveRequest](recs)
	if err != nil {
		return leaveCounts{}, err
	}
	c := leaveCounts{total: len(requests)}
	for _, r := range requests {
		switch canonicalStatus(r.Status) {
		case "approved":
			c.approved++
		case "pending":
			c.pending++
		case "rejected":
			c.rejected++
		}
	}
	return c, nil
}

func (e *Executor) leaveStatus(ctx context.Context, cmd contractx.Command) (contractx.Envelope, error) {
	recs, source, err := e.readAll(ctx, cmd, collLeaveRequests)
	if err != nil {
		return contractx.Envelope{}, err
	}
	counts, err := countLeave(recs)
	if err != nil {
		return contractx.Envelope{}, err
	}
	return contractx.Envelope{
		Success: true,
		Title:   "Leave requests",
		Count:   len(recs),
		Items:   recs,
		Summary: fmt.Sprintf("%d leave requests: %d approved, %d pending", counts.total, counts.approved, counts.pending),
		Metrics: map[string]float64{
			"total_requests": float64(counts.total),
			"approved":       float64(counts.approved),
			"pending":        float64(counts.pending),
			"rejected":       float64(counts.rejected),
		},
		Source: source,
	}, nil
}

func (e *Executor) hrReport(ctx context.Context, cmd contractx.Command) (contractx.Envelope, error) {
	set, source, err := e.readSet(ctx, cmd, collEmployees, collLeaveRequests, collEvaluations)
	if err != nil {
		return contractx.Envelope{}, err
	}
	employees, err := decodeRecords[employee](set[collEmployees])
	if err != nil {
		return contractx.Envelope{}, err
	}
	leave, err := countLeave(set[collLeaveRequests])
	if err != nil {
		return contractx.Envelope{}, err
	}
	evals, err := decodeRecords[evaluation](set[collEvaluations])
	if err != nil {
		return contractx.Envelope{}, err
	}

	type deptTotals struct {
		count   int
		payroll float64
	}
	byDept := map[string]*deptTotals{}
	var payroll float64
	for _, emp := range employees {
		dept := strings.TrimSpace(emp.Department)
		if dept == "" {
			dept = "unassigned"
		}
		if byDept[dept] == nil {
			byDept[dept] = &deptTotals{}
		}
		byDept[dept].count++
		byDept[dept].payroll += emp.Salary
		payroll += emp.Salary
	}

	departments := make(map[string]any, len(byDept))
	for name, totals := range byDept {
		departments[name] = map[string]any{
			"employees": totals.count,
			"payroll":   totals.payroll,
		}
	}

	var scoreSum float64
	for _, ev := range evals {
		scoreSum += ev.Score
	}
	avgScore := 0.0
	if len(evals) > 0 {
		avgScore = round1(scoreSum / float64(len(evals)))
	}
	avgSalary := 0.0
	if len(employees) > 0 {
		avgSalary = round1(payroll / float64(len(employees)))
	}

	return contractx.Envelope{
		Success: true,
		Title:   "HR report",
		Count:   len(employees),
		Aggregate: map[string]any{
			"employees":   len(employees),
			"departments": departments,
			"payroll":     payroll,
			"leave_requests": map[string]any{
				"total":    leave.total,
				"approved": leave.approved,
				"pending":  leave.pending,
			},
			"evaluations": map[string]any{
				"count":     len(evals),
				"avg_score": avgScore,
			},
		},
		Summary: fmt.Sprintf("%d employees in %d departments, monthly payroll %.2f", len(employees), len(byDept), payroll),
		Metrics: map[string]float64{
			"employees":      float64(len(employees)),
			"departments":    float64(len(byDept)),
			"payroll":        payroll,
			"avg_salary":     avgSalary,
			"pending_leave":  float64(leave.pending),
			"avg_eval_score": avgScore,
		},
		Source: source,
	}, nil
}
