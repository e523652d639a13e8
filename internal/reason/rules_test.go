package reason

import (
	"context"
	"encoding/json"
	"testing"
)

func TestRuleReasoner_InterpretMutation(t *testing.T) {
	r := NewRuleReasoner()

	tests := []struct {
		name        string
		gene        string
		variant     string
		wantTier    string
		wantTherapy string
	}{
		{"known hotspot", "PIK3CA", "H1047R", "Tier 1", "Alpelisib + fulvestrant"},
		{"case insensitive lookup", "pik3ca", "h1047r", "Tier 1", "Alpelisib + fulvestrant"},
		{"gene-level match", "BRCA1", "c.68_69delAG", "Tier 1", "Olaparib"},
		{"non-actionable known variant", "TP53", "R273H", "Tier 3", ""},
		{"unknown variant is VUS", "GATA3", "M294K", "Tier 4", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := r.Reason(context.Background(), Request{
				Task:      TaskInterpretMutation,
				PatientID: "123",
				Context:   map[string]any{"gene": tt.gene, "variant": tt.variant, "cancer_type": "breast cancer"},
			})
			if err != nil {
				t.Fatalf("Reason() error = %v", err)
			}

			var call MutationCall
			if err := json.Unmarshal(res.JSON, &call); err != nil {
				t.Fatalf("unmarshaling result JSON: %v", err)
			}
			if call.Tier != tt.wantTier {
				t.Errorf("tier = %q, want %q", call.Tier, tt.wantTier)
			}
			if call.ApprovedTherapy != tt.wantTherapy {
				t.Errorf("approved therapy = %q, want %q", call.ApprovedTherapy, tt.wantTherapy)
			}
		})
	}
}

func TestRuleReasoner_InterpretMutation_MissingFields(t *testing.T) {
	r := NewRuleReasoner()

	_, err := r.Reason(context.Background(), Request{
		Task:    TaskInterpretMutation,
		Context: map[string]any{"gene": "PIK3CA"},
	})
	if err == nil {
		t.Error("Reason() without variant: want error, got nil")
	}
}

func TestRuleReasoner_Summaries(t *testing.T) {
	r := NewRuleReasoner()

	for _, task := range []Task{TaskCaseSummary, TaskReportSummary} {
		t.Run(string(task), func(t *testing.T) {
			res, err := r.Reason(context.Background(), Request{
				Task:      task,
				PatientID: "456",
				Context:   map[string]any{"status": "READY"},
			})
			if err != nil {
				t.Fatalf("Reason() error = %v", err)
			}
			if res.Text == "" {
				t.Error("Reason() returned empty summary text")
			}
		})
	}
}

func TestRuleReasoner_UnknownTask(t *testing.T) {
	r := NewRuleReasoner()

	if _, err := r.Reason(context.Background(), Request{Task: Task("triage")}); err == nil {
		t.Error("Reason() with unknown task: want error, got nil")
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"prose wrapped", `Here you go: {"a":1} as requested.`, `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(extractJSON(tt.in)); got != tt.want {
				t.Errorf("extractJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
