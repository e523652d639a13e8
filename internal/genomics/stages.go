package genomics

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/faithogundimu/core/internal/pubmed"
	"github.com/faithogundimu/core/internal/reason"
	"github.com/faithogundimu/core/internal/trials"
	"github.com/faithogundimu/core/pkg/models"
)

// ClinicalContext carries the Phase-1 facts each stage may condition on.
type ClinicalContext struct {
	Diagnosis      string
	Stage          string
	ReceptorStatus string
	CancerType     string
}

// Interpretation is the interpreter stage output.
type Interpretation struct {
	PatientID string
	Clinical  ClinicalContext
	Findings  []models.MutationFinding
}

// TrialSet is the matcher stage output. Construction requires an
// Interpretation, which keeps the stage order fixed at the type level.
type TrialSet struct {
	Interpretation
	Trials []models.TrialMatch
	// TrialsDegraded marks a matcher failure recovered as an empty set.
	TrialsDegraded bool
}

// EvidenceSet is the evidence stage output.
type EvidenceSet struct {
	TrialSet
	Citations []models.Citation
	// EvidenceDegraded marks a searcher failure recovered as an empty set.
	EvidenceDegraded bool
}

// TrialSearcher is the trial registry contract the matcher depends on.
type TrialSearcher interface {
	Search(ctx context.Context, q trials.Query) ([]models.TrialMatch, error)
}

// LiteratureSearcher is the literature index contract the evidence stage
// depends on.
type LiteratureSearcher interface {
	Search(ctx context.Context, q pubmed.Query) ([]models.Citation, error)
}

// interpret runs the mutation interpreter. Any reasoner failure is fatal to
// the patient's report.
func (p *Pipeline) interpret(ctx context.Context, patientID string, profile *models.GenomicsProfile, clinical ClinicalContext) (Interpretation, error) {
	out := Interpretation{PatientID: patientID, Clinical: clinical}

	for _, m := range profile.Mutations {
		result, err := p.reasoner.Reason(ctx, reason.Request{
			Task:      reason.TaskInterpretMutation,
			PatientID: patientID,
			Context: map[string]any{
				"gene":            m.Gene,
				"variant":         m.Variant,
				"interpretation":  m.Interpretation,
				"tier":            m.Tier,
				"vaf":             m.VAF,
				"diagnosis":       clinical.Diagnosis,
				"receptor_status": clinical.ReceptorStatus,
				"cancer_type":     clinical.CancerType,
			},
		})
		if err != nil {
			return Interpretation{}, fmt.Errorf("interpret %s %s: %w", m.Gene, m.Variant, err)
		}

		var call reason.MutationCall
		if err := json.Unmarshal(result.JSON, &call); err != nil {
			return Interpretation{}, fmt.Errorf("interpret %s %s: malformed reasoner output: %w", m.Gene, m.Variant, err)
		}

		out.Findings = append(out.Findings, models.MutationFinding{
			Mutation:          m,
			Significance:      call.Significance,
			Mechanism:         call.Mechanism,
			ActionabilityTier: call.Tier,
			ApprovedTherapy:   call.ApprovedTherapy,
			Prevalence:        call.Prevalence,
		})
	}

	p.logf("genomics: interpreted %d mutation(s) for %s", len(out.Findings), patientID)
	return out, nil
}

// phaseRank orders trial phases, highest first. Combined phases take the
// higher component.
func phaseRank(phase string) int {
	p := strings.ToUpper(phase)
	switch {
	case strings.Contains(p, "4"):
		return 4
	case strings.Contains(p, "3"):
		return 3
	case strings.Contains(p, "2"):
		return 2
	case strings.Contains(p, "1"):
		return 1
	default:
		return 0
	}
}

// matchTrials runs the trial matcher over the actionable findings. A registry
// failure degrades to an empty trial set.
func (p *Pipeline) matchTrials(ctx context.Context, in Interpretation) TrialSet {
	out := TrialSet{Interpretation: in}

	seen := make(map[string]bool)
	for _, f := range in.Findings {
		if !f.Actionable() {
			continue
		}
		matches, err := p.trials.Search(ctx, trials.Query{
			Gene:       f.Mutation.Gene,
			Variant:    f.Mutation.Variant,
			CancerType: in.Clinical.CancerType,
		})
		if err != nil {
			p.logf("genomics: trial match for %s degraded to empty: %v", in.PatientID, err)
			out.TrialsDegraded = true
			continue
		}
		for _, m := range matches {
			if seen[m.NCTID] {
				continue
			}
			seen[m.NCTID] = true
			out.Trials = append(out.Trials, m)
		}
	}

	sort.SliceStable(out.Trials, func(i, j int) bool {
		ri, rj := phaseRank(out.Trials[i].Phase), phaseRank(out.Trials[j].Phase)
		if ri != rj {
			return ri > rj
		}
		return out.Trials[i].StartDate.After(out.Trials[j].StartDate)
	})
	if p.maxTrials > 0 && len(out.Trials) > p.maxTrials {
		out.Trials = out.Trials[:p.maxTrials]
	}

	return out
}

// searchEvidence runs the literature stage over the therapy-bearing findings.
// An index failure degrades to an empty citation set.
func (p *Pipeline) searchEvidence(ctx context.Context, in TrialSet) EvidenceSet {
	out := EvidenceSet{TrialSet: in}

	seen := make(map[string]bool)
	for _, f := range in.Findings {
		if f.ApprovedTherapy == "" {
			continue
		}
		citations, err := p.literature.Search(ctx, pubmed.Query{
			Gene:    f.Mutation.Gene,
			Variant: f.Mutation.Variant,
			Therapy: f.ApprovedTherapy,
		})
		if err != nil {
			p.logf("genomics: evidence search for %s degraded to empty: %v", in.PatientID, err)
			out.EvidenceDegraded = true
			continue
		}
		for _, c := range citations {
			if c.PMID == "" || seen[c.PMID] {
				continue
			}
			seen[c.PMID] = true
			out.Citations = append(out.Citations, c)
		}
	}

	return out
}
