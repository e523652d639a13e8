package models

import "testing"

func TestDomainTag_Valid(t *testing.T) {
	tests := []struct {
		name string
		tag  DomainTag
		want bool
	}{
		{"pathology is valid", DomainPathology, true},
		{"radiology is valid", DomainRadiology, true},
		{"clinical notes is valid", DomainClinicalNotes, true},
		{"genomics is valid", DomainGenomics, true},
		{"contraindications is valid", DomainContraindications, true},
		{"empty is invalid", DomainTag(""), false},
		{"unknown is invalid", DomainTag("cardiology"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tag.Valid(); got != tt.want {
				t.Errorf("DomainTag(%q).Valid() = %v, want %v", tt.tag, got, tt.want)
			}
		})
	}
}

func TestDomainOrder(t *testing.T) {
	order := DomainOrder()

	if len(order) != 5 {
		t.Fatalf("DomainOrder() returned %d domains, want 5", len(order))
	}
	if order[0] != DomainPathology {
		t.Errorf("first domain = %q, want pathology", order[0])
	}
	if order[4] != DomainContraindications {
		t.Errorf("last domain = %q, want contraindications", order[4])
	}

	seen := make(map[DomainTag]bool)
	for _, tag := range order {
		if seen[tag] {
			t.Errorf("domain %q appears twice in order", tag)
		}
		seen[tag] = true
	}
}

func TestPriority_Valid(t *testing.T) {
	tests := []struct {
		priority Priority
		want     bool
	}{
		{PriorityUrgent, true},
		{PriorityHigh, true},
		{PriorityRoutine, true},
		{Priority("asap"), false},
		{Priority(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.priority), func(t *testing.T) {
			if got := tt.priority.Valid(); got != tt.want {
				t.Errorf("Priority(%q).Valid() = %v, want %v", tt.priority, got, tt.want)
			}
		})
	}
}
