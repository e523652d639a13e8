package models

import "time"

// MutationFinding is one mutation enriched with clinical interpretation.
type MutationFinding struct {
	Mutation MutationRecord `json:"mutation"`
	// Significance is the clinical significance call (e.g. "Pathogenic").
	Significance string `json:"clinical_significance"`
	// Mechanism is a short description of the variant's mechanism.
	Mechanism string `json:"mechanism,omitempty"`
	// ActionabilityTier is the assigned tier (Tier 1 highest).
	ActionabilityTier string `json:"actionability_tier"`
	// ApprovedTherapy names the FDA-approved therapy matched to the
	// mutation/tier combination, empty when none is recognized.
	ApprovedTherapy string `json:"approved_therapy,omitempty"`
	Prevalence      string `json:"prevalence,omitempty"`
}

// Actionable reports whether the finding has a therapy worth matching trials
// and evidence against.
func (f MutationFinding) Actionable() bool {
	return f.ApprovedTherapy != "" || f.ActionabilityTier == "Tier 1" || f.ActionabilityTier == "Tier 2"
}

// TrialMatch is one clinical trial matched to a patient's mutation.
type TrialMatch struct {
	NCTID string `json:"nct_id"`
	Title string `json:"title"`
	// Phase is the trial phase ("Phase 3" ranks above "Phase 2").
	Phase      string   `json:"phase"`
	Status     string   `json:"status"`
	Summary    string   `json:"brief_summary,omitempty"`
	Conditions []string `json:"conditions,omitempty"`
	// Interventions lists the therapies under study.
	Interventions []string `json:"interventions,omitempty"`
	// TargetGene is the gene the match was searched on.
	TargetGene string `json:"target_gene"`
	// StartDate orders trials of equal phase by recency.
	StartDate time.Time `json:"start_date,omitempty"`
	URL       string    `json:"url,omitempty"`
}

// Citation is one literature reference supporting a mutation/therapy pair.
// Citations without a stable identifier are dropped before this type is built.
type Citation struct {
	// PMID is the PubMed identifier. Always non-empty.
	PMID    string `json:"pmid"`
	Title   string `json:"title"`
	Journal string `json:"journal,omitempty"`
	Year    string `json:"year,omitempty"`
	Authors string `json:"authors,omitempty"`
	Summary string `json:"key_findings,omitempty"`
	// Gene and Therapy record the pair the citation supports.
	Gene    string `json:"gene,omitempty"`
	Therapy string `json:"therapy,omitempty"`
}

// Recommendation is one ranked treatment option.
type Recommendation struct {
	// Priority is the 1-based rank after evidence-level ordering.
	Priority int    `json:"priority"`
	Therapy  string `json:"therapy"`
	// Indication states what the therapy is recommended for.
	Indication string `json:"indication"`
	// EvidenceLevel is the tiered categorical level ("Level 1" highest).
	EvidenceLevel string `json:"evidence_level"`
	// CitationIDs lists supporting PMIDs.
	CitationIDs []string `json:"citation_ids,omitempty"`
	// TrialIDs lists supporting NCT IDs.
	TrialIDs []string `json:"trial_ids,omitempty"`
}

// GenomicsReport is the Phase-2 output for one patient. It is built
// incrementally by the pipeline stages and immutable once synthesis finishes.
type GenomicsReport struct {
	PatientID        string            `json:"patient_id"`
	ExecutiveSummary string            `json:"executive_summary,omitempty"`
	Mutations        []MutationFinding `json:"mutations"`
	Recommendations  []Recommendation  `json:"treatment_recommendations"`
	Trials           []TrialMatch      `json:"matched_trials"`
	Evidence         []Citation        `json:"evidence,omitempty"`
	// NextSteps is a short ordered list of concrete clinical actions.
	NextSteps []string `json:"next_steps"`
	// Failed marks a report whose interpretation stage failed; such a report
	// carries no partial findings.
	Failed        bool      `json:"failed,omitempty"`
	FailureReason string    `json:"failure_reason,omitempty"`
	GeneratedAt   time.Time `json:"generated_at"`
}
