package executor

import (
	"fmt"
	"math"
	"strings"

	"github.com/mitchellh/mapstructure"

	contractx "github.com/tanpawarit/records-assistant/agent/contract"
)

type opportunity struct {
	ID            string  `mapstructure:"id"`
	Title         string  `mapstructure:"title"`
	Stage         string  `mapstructure:"stage"`
	Probability   float64 `mapstructure:"probability"`
	ExpectedValue float64 `mapstructure:"expected_value"`
}

type client struct {
	ID        string `mapstructure:"id"`
	Name      string `mapstructure:"name"`
	IsCompany bool   `mapstructure:"is_company"`
}

type employee struct {
	ID         string  `mapstructure:"id"`
	FirstName  string  `mapstructure:"first_name"`
	LastName   string  `mapstructure:"last_name"`
	Department string  `mapstructure:"department"`
	Position   string  `mapstructure:"position"`
	Salary     float64 `mapstructure:"salary"`
}

type leaveRequest struct {
	EmployeeID string  `mapstructure:"employee_id"`
	Status     string  `mapstructure:"status"`
	Days       float64 `mapstructure:"days"`
}

type evaluation struct {
	EmployeeID string  `mapstructure:"employee_id"`
	Score      float64 `mapstructure:"score"`
}

type project struct {
	ID          string  `mapstructure:"id"`
	Name        string  `mapstructure:"name"`
	Status      string  `mapstructure:"status"`
	Progress    float64 `mapstructure:"progress"`
	Budget      float64 `mapstructure:"budget"`
	BudgetSpent float64 `mapstructure:"budget_spent"`
}

type task struct {
	ID        string `mapstructure:"id"`
	ProjectID string `mapstructure:"project_id"`
	Status    string `mapstructure:"status"`
}

// decodeRecords converts loosely typed records, accepting numbers stored as
// strings and the remote "" for empty values.
func decodeRecords[T any](recs []contractx.Record) ([]T, error) {
	out := make([]T, 0, len(recs))
	for i, rec := range recs {
		var item T
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &item,
		})
		if err != nil {
			return nil, err
		}
		if err := dec.Decode(map[string]any(rec)); err != nil {
			return nil, fmt.Errorf("decode record %d: %w", i, err)
		}
		out = append(out, item)
	}
	return out, nil
}

var statusAliases = map[string]string{
	"approved":    "approved",
	"approuvé":    "approved",
	"approuve":    "approved",
	"validé":      "approved",
	"pending":     "pending",
	"en attente":  "pending",
	"rejected":    "rejected",
	"refusé":      "rejected",
	"in progress": "in_progress",
	"en cours":    "in_progress",
	"completed":   "completed",
	"done":        "completed",
	"terminé":     "completed",
	"planned":     "planned",
	"planifié":    "planned",
	"on hold":     "on_hold",
	"en pause":    "on_hold",
}

var statusReplacer = strings.NewReplacer("_", " ", "-", " ")

// canonicalStatus folds French and English spellings onto one key.
func canonicalStatus(s string) string {
	n := statusReplacer.Replace(strings.ToLower(strings.TrimSpace(s)))
	if c, ok := statusAliases[n]; ok {
		return c
	}
	if n == "" {
		return "unknown"
	}
	return strings.ReplaceAll(n, " ", "_")
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func percent(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return round1(part / total * 100)
}

type opportunityTotals struct {
	count          int
	totalValue     float64
	weightedValue  float64
	avgProbability float64
	byStage        map[string]int
}

func summarizeOpportunities(recs []contractx.Record) (opportunityTotals, error) {
	opps, err := decodeRecords[opportunity](recs)
	if err != nil {
		return opportunityTotals{}, err
	}

	t := opportunityTotals{count: len(opps), byStage: make(map[string]int)}
	var probSum float64
	for _, o := range opps {
		t.totalValue += o.ExpectedValue
		t.weightedValue += o.ExpectedValue * o.Probability / 100
		probSum += o.Probability
		stage := o.Stage
		if stage == "" {
			stage = "unknown"
		}
		t.byStage[stage]++
	}
	if t.count > 0 {
		t.avgProbability = round1(probSum / float64(t.count))
	}
	t.weightedValue = round1(t.weightedValue)
	return t, nil
}
