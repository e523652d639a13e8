package models

import "testing"

func TestItemStatus_Valid(t *testing.T) {
	tests := []struct {
		name   string
		status ItemStatus
		want   bool
	}{
		{"found and validated", ItemFoundValidated, true},
		{"found but invalid", ItemFoundInvalid, true},
		{"not found", ItemNotFound, true},
		{"empty is invalid", ItemStatus(""), false},
		{"lowercase is invalid", ItemStatus("not_found"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.Valid(); got != tt.want {
				t.Errorf("ItemStatus(%q).Valid() = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestCaseReadiness_Item(t *testing.T) {
	cr := CaseReadiness{
		PatientID: "123",
		Checklist: []ChecklistItem{
			{Domain: DomainPathology, Status: ItemFoundValidated},
			{Domain: DomainRadiology, Status: ItemNotFound},
		},
	}

	if item := cr.Item(DomainRadiology); item == nil || item.Status != ItemNotFound {
		t.Errorf("Item(radiology) = %+v, want NOT_FOUND item", item)
	}
	if item := cr.Item(DomainGenomics); item != nil {
		t.Errorf("Item(genomics) = %+v, want nil for missing domain", item)
	}
}

func TestCaseReadiness_GenomicsEligible(t *testing.T) {
	mutated := &DomainRecord{
		Domain: DomainGenomics,
		Genomics: &GenomicsProfile{
			Mutations: []MutationRecord{{Gene: "PIK3CA", Variant: "H1047R"}},
		},
	}
	empty := &DomainRecord{Domain: DomainGenomics, Genomics: &GenomicsProfile{}}

	tests := []struct {
		name string
		item ChecklistItem
		want bool
	}{
		{"validated with mutations", ChecklistItem{Domain: DomainGenomics, Status: ItemFoundValidated, Chosen: mutated}, true},
		{"validated without mutations", ChecklistItem{Domain: DomainGenomics, Status: ItemFoundValidated, Chosen: empty}, false},
		{"not found", ChecklistItem{Domain: DomainGenomics, Status: ItemNotFound}, false},
		{"invalid with mutations", ChecklistItem{Domain: DomainGenomics, Status: ItemFoundInvalid, Chosen: mutated}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cr := CaseReadiness{PatientID: "123", Checklist: []ChecklistItem{tt.item}}
			if got := cr.GenomicsEligible(); got != tt.want {
				t.Errorf("GenomicsEligible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCaseReadiness_GenomicsEligible_IgnoresOtherBlockers(t *testing.T) {
	// Phase-2 eligibility is gated on the genomics item alone; a blocked
	// radiology domain must not disqualify the patient.
	cr := CaseReadiness{
		PatientID: "123",
		Status:    StatusBlocked,
		Blockers:  []Blocker{{Domain: DomainRadiology, Severity: SeverityHigh, Description: "unsigned report"}},
		Checklist: []ChecklistItem{
			{
				Domain: DomainGenomics,
				Status: ItemFoundValidated,
				Chosen: &DomainRecord{
					Domain: DomainGenomics,
					Genomics: &GenomicsProfile{
						Mutations: []MutationRecord{{Gene: "TP53", Variant: "R273H"}},
					},
				},
			},
		},
	}

	if !cr.GenomicsEligible() {
		t.Error("GenomicsEligible() = false, want true despite radiology blocker")
	}
}
