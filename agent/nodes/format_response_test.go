package orchestratornode

import (
	"fmt"
	"strings"
	"testing"

	contractx "github.com/tanpawarit/records-assistant/agent/contract"
)

func TestFormatEnvelopeIsDeterministic(t *testing.T) {
	t.Parallel()

	env := contractx.Envelope{
		Success: true,
		Title:   "Opportunity status",
		Count:   3,
		Summary: "3 open opportunities",
		Metrics: map[string]float64{
			"weighted_value":    9000,
			"avg_probability":   56.7,
			"opportunity_count": 3,
			"total_value":       18000,
		},
		Items: []contractx.Record{
			{"id": 1, "title": "ERP rollout"},
			{"id": 2, "title": "Cloud migration"},
			{"id": 3, "title": "Support renewal"},
		},
		Source: contractx.SourceRemote,
	}

	first := FormatEnvelope(env)
	for i := 0; i < 5; i++ {
		if got := FormatEnvelope(env); got != first {
			t.Fatalf("FormatEnvelope() not deterministic:\n%s\n---\n%s", first, got)
		}
	}

	want := strings.Join([]string{
		"✅ **Opportunity status**",
		"",
		"📋 3 open opportunities",
		"",
		"📊 **Metrics**",
		"• Avg Probability: 56.7",
		"• Opportunity Count: 3",
		"• Total Value: 18000",
		"• Weighted Value: 9000",
		"",
		"📝 **Details**",
		"• ERP rollout (ID 1)",
		"• Cloud migration (ID 2)",
		"• Support renewal (ID 3)",
		"",
		"_Source: remote_",
	}, "\n")
	if first != want {
		t.Fatalf("FormatEnvelope() =\n%s\nwant\n%s", first, want)
	}
}

func TestFormatEnvelopeCollapsesLargeResults(t *testing.T) {
	t.Parallel()

	items := make([]contractx.Record, 0, 4)
	for i := 1; i <= 4; i++ {
		items = append(items, contractx.Record{"id": i, "name": fmt.Sprintf("Client %d", i)})
	}
	out := FormatEnvelope(contractx.Envelope{Success: true, Title: "Clients", Count: 4, Items: items, Source: contractx.SourceLocal})

	if !strings.Contains(out, "📝 4 items found") {
		t.Fatalf("FormatEnvelope() = %q, want items found line", out)
	}
	if strings.Contains(out, "• Client 1") {
		t.Fatalf("FormatEnvelope() = %q, listed items for a large result", out)
	}
}

func TestFormatEnvelopeAggregateHasNoItemList(t *testing.T) {
	t.Parallel()

	out := FormatEnvelope(contractx.Envelope{
		Success:   true,
		Title:     "HR report",
		Count:     2,
		Aggregate: map[string]any{"Engineering": map[string]any{"headcount": 2}},
		Note:      "summary by department",
	})
	if strings.Contains(out, "Details") || strings.Contains(out, "items found") {
		t.Fatalf("FormatEnvelope() = %q, aggregate must not list items", out)
	}
	if !strings.Contains(out, "ℹ️ summary by department") {
		t.Fatalf("FormatEnvelope() = %q, want note", out)
	}
}

func TestFormatEnvelopeFailure(t *testing.T) {
	t.Parallel()

	got := FormatEnvelope(contractx.Envelope{Success: false, Error: "backend unavailable"})
	if want := "❌ Error: backend unavailable"; got != want {
		t.Fatalf("FormatEnvelope() = %q, want %q", got, want)
	}
}

func TestItemLabelFallbacks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		item contractx.Record
		want string
	}{
		{contractx.Record{"name": "Acme"}, "Acme"},
		{contractx.Record{"id": "P001", "title": "Portal"}, "Portal (ID P001)"},
		{contractx.Record{"id": 4, "first_name": "Marie", "last_name": "Curie"}, "Marie Curie (ID 4)"},
		{contractx.Record{"id": 9}, "ID 9"},
		{contractx.Record{}, "Item"},
	}
	for _, tt := range tests {
		if got := itemLabel(tt.item); got != tt.want {
			t.Fatalf("itemLabel(%v) = %q, want %q", tt.item, got, tt.want)
		}
	}
}
