package extractor

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExtractParametersIndependentExtractors(t *testing.T) {
	t.Parallel()

	got := extractParameters("Ajoute un client nommé Beta avec email beta@example.com et un montant de 5 000 euros", false)
	want := map[string]any{
		"name":   "Beta",
		"email":  "beta@example.com",
		"amount": 5000.0,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("extractParameters() mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractParametersRejectsLabelledNames(t *testing.T) {
	t.Parallel()

	got := extractParameters("Voir l'opportunité Delta montant 300", true)
	if _, ok := got["title"]; ok {
		t.Fatalf("expected title to be rejected, got %v", got["title"])
	}
	if got["expected_value"] != 300.0 {
		t.Fatalf("expected_value = %v, want 300", got["expected_value"])
	}
}

func TestExtractParametersProbabilityRange(t *testing.T) {
	t.Parallel()

	got := extractParameters("opportunité Zeta probabilité 150", true)
	if _, ok := got["probability"]; ok {
		t.Fatalf("expected out-of-range probability to be omitted, got %v", got["probability"])
	}

	got = extractParameters("avec 65% de chance", false)
	if got["probability"] != 65 {
		t.Fatalf("probability = %v, want 65", got["probability"])
	}
}

func TestExtractParametersContactFields(t *testing.T) {
	t.Parallel()

	got := extractParameters("client à la ville Lyon avec téléphone 04 72 00 00 00 le 12/05/2026", false)
	if got["city"] != "Lyon" {
		t.Fatalf("city = %v, want Lyon", got["city"])
	}
	if got["phone"] != "04 72 00 00 00" {
		t.Fatalf("phone = %q, want %q", got["phone"], "04 72 00 00 00")
	}
	if got["date"] != "12/05/2026" {
		t.Fatalf("date = %v, want 12/05/2026", got["date"])
	}
}

func TestParseAmount(t *testing.T) {
	t.Parallel()

	tests := map[string]float64{
		"12,500":    12500,
		"12 500":    12500,
		"1 250.50":  1250.5,
		"300":       300,
		"7 000 000": 7000000,
	}
	for raw, want := range tests {
		got, err := parseAmount(raw)
		if err != nil {
			t.Fatalf("parseAmount(%q) error = %v", raw, err)
		}
		if got != want {
			t.Fatalf("parseAmount(%q) = %v, want %v", raw, got, want)
		}
	}

	if _, err := parseAmount("1.2.3"); err == nil {
		t.Fatalf("parseAmount(1.2.3) expected error")
	}
}

func TestParsePercent(t *testing.T) {
	t.Parallel()

	for raw, want := range map[string]int{"80": 80, "08": 8, "0": 0, "100": 100, "000": 0} {
		got, err := parsePercent(raw)
		if err != nil {
			t.Fatalf("parsePercent(%q) error = %v", raw, err)
		}
		if got != want {
			t.Fatalf("parsePercent(%q) = %d, want %d", raw, got, want)
		}
	}
	if _, err := parsePercent("8a"); err == nil {
		t.Fatalf("parsePercent(8a) expected error")
	}
}
