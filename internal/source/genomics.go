package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/faithogundimu/core/pkg/models"
)

// GenomicsNotFound explains why a patient has no genomic profile. The registry
// distinguishes "testing never done" from a plain missing entry so the
// synthesizer can suggest the right action.
type GenomicsNotFound struct {
	Reason         string
	Recommendation string
}

// GenomicsRegistry reads the JSON genomics data file, keyed by "patient_<id>".
type GenomicsRegistry struct {
	path string
}

// NewGenomicsRegistry creates a client for the registry at path.
func NewGenomicsRegistry(path string) *GenomicsRegistry {
	return &GenomicsRegistry{path: path}
}

// genomicsEntry mirrors the on-disk shape of one patient's profile.
type genomicsEntry struct {
	Status         string `json:"status,omitempty"`
	Reason         string `json:"reason,omitempty"`
	Recommendation string `json:"recommendation,omitempty"`
	TestInfo       struct {
		Assay string `json:"assay"`
	} `json:"test_info"`
	Mutations []struct {
		Gene           string  `json:"gene"`
		Variant        string  `json:"variant"`
		Interpretation string  `json:"interpretation"`
		Tier           string  `json:"tier"`
		VAF            float64 `json:"vaf"`
		Prevalence     string  `json:"prevalence"`
	} `json:"mutations"`
	TMB struct {
		Score float64 `json:"score"`
	} `json:"tmb"`
	MSIStatus string `json:"msi_status"`
}

// Profile returns the genomic profile for a patient. When the registry has no
// usable profile the second result carries the explicit not-found signal and
// the first is nil; both nil results only accompany an error.
func (r *GenomicsRegistry) Profile(ctx context.Context, patientID string) (*models.GenomicsProfile, *GenomicsNotFound, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, nil, fmt.Errorf("read genomics data: %w", err)
	}

	var entries map[string]genomicsEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, nil, fmt.Errorf("decode genomics data: %w", err)
	}

	entry, ok := entries["patient_"+patientID]
	if !ok {
		return nil, &GenomicsNotFound{Reason: "no genomic record on file"}, nil
	}

	// A registry entry can itself record that testing was not completed.
	if entry.Status == "NOT_FOUND" {
		nf := &GenomicsNotFound{Reason: entry.Reason, Recommendation: entry.Recommendation}
		if nf.Reason == "" {
			nf.Reason = "genomic testing not completed"
		}
		return nil, nf, nil
	}

	profile := &models.GenomicsProfile{
		TMB:       entry.TMB.Score,
		MSIStatus: entry.MSIStatus,
		Assay:     entry.TestInfo.Assay,
	}
	for _, m := range entry.Mutations {
		profile.Mutations = append(profile.Mutations, models.MutationRecord{
			Gene:           m.Gene,
			Variant:        m.Variant,
			Interpretation: m.Interpretation,
			Tier:           m.Tier,
			VAF:            m.VAF,
			Prevalence:     m.Prevalence,
		})
	}

	return profile, nil, nil
}
