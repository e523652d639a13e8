package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeGenomicsJSON(t *testing.T, content string) *GenomicsRegistry {
	t.Helper()

	path := filepath.Join(t.TempDir(), "genomics_data.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing genomics data: %v", err)
	}
	return NewGenomicsRegistry(path)
}

func TestGenomicsRegistry_Profile(t *testing.T) {
	reg := writeGenomicsJSON(t, `{
		"patient_123": {
			"test_info": {"assay": "FoundationOne CDx"},
			"mutations": [
				{"gene": "PIK3CA", "variant": "H1047R", "interpretation": "Pathogenic", "tier": "Tier 1", "vaf": 34.2},
				{"gene": "TP53", "variant": "R273H", "interpretation": "Pathogenic", "tier": "Tier 3", "vaf": 28.0}
			],
			"tmb": {"score": 4.2},
			"msi_status": "MSS"
		}
	}`)

	profile, nf, err := reg.Profile(context.Background(), "123")
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	if nf != nil {
		t.Fatalf("Profile() not-found = %+v, want nil", nf)
	}
	if len(profile.Mutations) != 2 {
		t.Fatalf("Profile() returned %d mutations, want 2", len(profile.Mutations))
	}
	if profile.Mutations[0].Gene != "PIK3CA" || profile.Mutations[0].VAF != 34.2 {
		t.Errorf("first mutation = %+v, want PIK3CA H1047R", profile.Mutations[0])
	}
	if profile.TMB != 4.2 || profile.MSIStatus != "MSS" {
		t.Errorf("TMB = %v MSI = %q, want 4.2 / MSS", profile.TMB, profile.MSIStatus)
	}
}

func TestGenomicsRegistry_Profile_TestingNotDone(t *testing.T) {
	reg := writeGenomicsJSON(t, `{
		"patient_456": {
			"status": "NOT_FOUND",
			"reason": "Genomic testing not ordered",
			"recommendation": "Order NGS panel given triple-negative subtype"
		}
	}`)

	profile, nf, err := reg.Profile(context.Background(), "456")
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	if profile != nil {
		t.Errorf("Profile() = %+v, want nil profile", profile)
	}
	if nf == nil || nf.Reason != "Genomic testing not ordered" {
		t.Errorf("not-found = %+v, want registry reason", nf)
	}
	if nf.Recommendation == "" {
		t.Error("not-found recommendation is empty, want carried through")
	}
}

func TestGenomicsRegistry_Profile_MissingEntry(t *testing.T) {
	reg := writeGenomicsJSON(t, `{}`)

	profile, nf, err := reg.Profile(context.Background(), "789")
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	if profile != nil {
		t.Errorf("Profile() = %+v, want nil", profile)
	}
	if nf == nil || nf.Reason == "" {
		t.Errorf("not-found = %+v, want reason for missing entry", nf)
	}
}
