package models

import "time"

// ItemStatus is the validation outcome for one checklist domain.
type ItemStatus string

const (
	// ItemFoundValidated means a usable, signed record was selected.
	ItemFoundValidated ItemStatus = "FOUND_AND_VALIDATED"
	// ItemFoundInvalid means the item cannot be satisfied despite the source
	// existing: draft-only data, an unresolvable conflict, or a source failure.
	ItemFoundInvalid ItemStatus = "FOUND_BUT_INVALID"
	// ItemNotFound means the source was reachable and had no record.
	ItemNotFound ItemStatus = "NOT_FOUND"
)

// Valid returns true if the status is a known value.
func (s ItemStatus) Valid() bool {
	switch s {
	case ItemFoundValidated, ItemFoundInvalid, ItemNotFound:
		return true
	default:
		return false
	}
}

// ChecklistItem records whether one domain's data was found and validated for
// a patient. Exactly one item exists per domain per run; items are never
// mutated after the synthesizer creates them.
type ChecklistItem struct {
	Domain DomainTag  `json:"domain"`
	Status ItemStatus `json:"status"`
	// Chosen is the record selected for the item: the winning signed record,
	// or the newest draft when no record is signed. Nil when nothing was
	// found or a conflict could not be resolved.
	Chosen *DomainRecord `json:"chosen_record,omitempty"`
	// Note explains how the selection was resolved (conflicts discarded,
	// drafts superseded, source failures).
	Note string `json:"resolution_note,omitempty"`
}

// Severity classifies how a blocker should be triaged.
type Severity string

const (
	// SeverityCritical blockers are patient-safety issues.
	SeverityCritical Severity = "critical"
	// SeverityHigh blockers prevent meaningful MDT discussion.
	SeverityHigh Severity = "high"
	// SeverityModerate blockers need action but discussion can proceed.
	SeverityModerate Severity = "moderate"
	// SeverityDataUnavailable marks a data source that was reachable but
	// failed. Distinct from a NOT_FOUND result by contract.
	SeverityDataUnavailable Severity = "data_unavailable"
)

// Blocker is a condition preventing a case from being fully ready. Every
// blocker carries a human-actionable suggested action.
type Blocker struct {
	// ID is a unique identifier for tracking the blocker across dashboards.
	ID string `json:"id"`
	// Domain is the domain the blocker arose from. Cross-domain safety
	// blockers use the clinical-notes domain.
	Domain DomainTag `json:"domain"`
	// Severity classifies the blocker.
	Severity Severity `json:"severity"`
	// Description states what is wrong.
	Description string `json:"description"`
	// SuggestedAction states what a human should do about it.
	SuggestedAction string `json:"suggested_action"`
}

// OverallStatus is the patient-level readiness verdict.
type OverallStatus string

const (
	// StatusReady means every checklist item is validated and no blockers exist.
	StatusReady OverallStatus = "READY"
	// StatusInProgress means data is still missing but nothing is blocked.
	StatusInProgress OverallStatus = "IN_PROGRESS"
	// StatusBlocked means at least one blocker requires human action.
	StatusBlocked OverallStatus = "BLOCKED"
)

// Valid returns true if the status is a known value.
func (s OverallStatus) Valid() bool {
	switch s {
	case StatusReady, StatusInProgress, StatusBlocked:
		return true
	default:
		return false
	}
}

// CaseReadiness is the Phase-1 output for one patient: the checklist in fixed
// domain order, derived blockers, and the overall verdict. Written once per
// run; a later run produces a fresh value.
type CaseReadiness struct {
	PatientID string          `json:"patient_id"`
	Checklist []ChecklistItem `json:"checklist"`
	Blockers  []Blocker       `json:"blockers"`
	Status    OverallStatus   `json:"overall_status"`
	// Completeness is the fraction of checklist items validated, reported
	// even when the case is blocked.
	Completeness float64 `json:"completeness_fraction"`
	// Summary is a short case summary produced by the reasoning capability.
	Summary     string    `json:"summary,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Item returns the checklist item for the given domain, or nil.
func (c *CaseReadiness) Item(tag DomainTag) *ChecklistItem {
	for i := range c.Checklist {
		if c.Checklist[i].Domain == tag {
			return &c.Checklist[i]
		}
	}
	return nil
}

// GenomicsEligible reports whether the case qualifies for the genomics
// intelligence pipeline: the genomics item validated with at least one
// mutation. Eligibility is independent of blockers in other domains.
func (c *CaseReadiness) GenomicsEligible() bool {
	item := c.Item(DomainGenomics)
	if item == nil || item.Status != ItemFoundValidated || item.Chosen == nil {
		return false
	}
	return item.Chosen.Genomics != nil && len(item.Chosen.Genomics.Mutations) > 0
}
