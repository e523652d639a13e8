package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/faithogundimu/core/pkg/models"
)

func TestLoadRuleBook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `
rules:
  - drug_class: platinum_agents
    organ_function: renal
    min_clearance_ml_min: 60
    contraindications: [cisplatin]
    dose_adjustment: "Consider carboplatin AUC dosing"
  - drug_class: anthracyclines
    organ_function: cardiac
    min_ejection_fraction_pct: 50
    contraindications: [doxorubicin, epirubicin]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing rules: %v", err)
	}

	book, err := LoadRuleBook(path)
	if err != nil {
		t.Fatalf("LoadRuleBook() error = %v", err)
	}

	rules, err := book.Rules(context.Background())
	if err != nil {
		t.Fatalf("Rules() error = %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("Rules() returned %d rules, want 2", len(rules))
	}
	if rules[0].MinClearanceMLMin != 60 {
		t.Errorf("renal threshold = %v, want 60", rules[0].MinClearanceMLMin)
	}
}

func TestLoadRuleBook_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing drug class", "rules:\n  - organ_function: renal\n"},
		{"missing organ function", "rules:\n  - drug_class: platinum_agents\n"},
		{"not yaml", ": : :\n\t"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "rules.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("writing rules: %v", err)
			}
			if _, err := LoadRuleBook(path); err == nil {
				t.Error("LoadRuleBook() want error, got nil")
			}
		})
	}
}

func TestRuleBook_Lookup(t *testing.T) {
	book := NewRuleBook([]models.ContraindicationRule{
		{DrugClass: "platinum_agents", OrganFunction: "renal", MinClearanceMLMin: 60},
		{DrugClass: "anthracyclines", OrganFunction: "cardiac", MinEjectionFractionPct: 50},
	})

	tests := []struct {
		name string
		key  string
		want int
	}{
		{"by drug class", "platinum_agents", 1},
		{"by organ function", "cardiac", 1},
		{"case insensitive", "RENAL", 1},
		{"no match", "hepatic", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := book.Lookup(context.Background(), tt.key)
			if err != nil {
				t.Fatalf("Lookup() error = %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("Lookup(%q) returned %d rules, want %d", tt.key, len(got), tt.want)
			}
		})
	}
}
