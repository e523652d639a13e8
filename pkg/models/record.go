package models

import "time"

// DomainTag identifies one of the five data domains a case is assembled from.
type DomainTag string

const (
	// DomainPathology covers histopathology reports.
	DomainPathology DomainTag = "pathology"
	// DomainRadiology covers imaging reports.
	DomainRadiology DomainTag = "radiology"
	// DomainClinicalNotes covers EHR clinical notes, labs and comorbidities.
	DomainClinicalNotes DomainTag = "clinical_notes"
	// DomainGenomics covers the molecular profile.
	DomainGenomics DomainTag = "genomics"
	// DomainContraindications covers drug safety rules applicable to the patient.
	DomainContraindications DomainTag = "contraindications"
)

// DomainOrder returns the fixed checklist order. The synthesizer emits exactly
// one checklist item per domain in this order.
func DomainOrder() []DomainTag {
	return []DomainTag{
		DomainPathology,
		DomainRadiology,
		DomainClinicalNotes,
		DomainGenomics,
		DomainContraindications,
	}
}

// Valid returns true if the tag is a known domain.
func (d DomainTag) Valid() bool {
	switch d {
	case DomainPathology, DomainRadiology, DomainClinicalNotes, DomainGenomics, DomainContraindications:
		return true
	default:
		return false
	}
}

// SignedStatus is the finalization state of a pathology or radiology report.
// A draft report is never sufficient to satisfy a checklist item.
type SignedStatus string

const (
	// StatusSigned means the report was finalized by its author.
	StatusSigned SignedStatus = "SIGNED"
	// StatusDraft means the report is awaiting signature.
	StatusDraft SignedStatus = "DRAFT"
)

// DomainRecord is one normalized record from a data domain. Pathology and
// radiology may yield several records per patient; the other domains yield at
// most one.
type DomainRecord struct {
	// PatientID is the patient the record belongs to.
	PatientID string `json:"patient_id"`
	// Domain is the source domain.
	Domain DomainTag `json:"domain"`
	// Subtype is the domain-specific record subtype (pathology report type,
	// radiology modality). Used for precedence on timestamp ties.
	Subtype string `json:"subtype,omitempty"`
	// Signed applies to pathology and radiology records only.
	Signed SignedStatus `json:"signed_status,omitempty"`
	// SignedBy is the clinician who signed the report, when signed.
	SignedBy string `json:"signed_by,omitempty"`
	// ReportedAt is the provenance timestamp (report or signed date). Zero if
	// the domain carries no timestamp.
	ReportedAt time.Time `json:"reported_at,omitempty"`
	// Fields holds domain-specific structured values keyed by field name
	// (e.g. er_status, findings, grade).
	Fields map[string]string `json:"fields,omitempty"`

	// Clinical is populated for clinical-notes records only.
	Clinical *ClinicalSummary `json:"clinical,omitempty"`
	// Genomics is populated for genomics records only.
	Genomics *GenomicsProfile `json:"genomics,omitempty"`
	// Rules is populated for contraindication records only.
	Rules []ContraindicationRule `json:"rules,omitempty"`
}

// ClinicalSummary is the normalized content of a clinical-notes record.
type ClinicalSummary struct {
	Age              int      `json:"age"`
	Sex              string   `json:"sex"`
	MenopausalStatus string   `json:"menopausal_status,omitempty"`
	Diagnosis        string   `json:"diagnosis"`
	Stage            string   `json:"stage"`
	ReceptorStatus   string   `json:"receptor_status,omitempty"`
	Comorbidities    []string `json:"comorbidities,omitempty"`
	Medications      []string `json:"current_medications,omitempty"`
	Allergies        []string `json:"allergies,omitempty"`
	// ECOG is the performance status score (0-5).
	ECOG int      `json:"ecog"`
	Labs LabPanel `json:"labs"`
}

// LabPanel carries the organ-function labs the safety rules evaluate.
type LabPanel struct {
	// CreatinineClearanceMLMin is renal clearance in mL/min.
	CreatinineClearanceMLMin float64 `json:"creatinine_clearance_ml_min"`
	// EjectionFractionPct is cardiac LVEF as a percentage.
	EjectionFractionPct float64 `json:"ejection_fraction_pct"`
}

// MutationRecord is one detected genomic alteration.
type MutationRecord struct {
	Gene    string `json:"gene"`
	Variant string `json:"variant"`
	// Interpretation is the lab-reported interpretation (e.g. "Pathogenic").
	Interpretation string `json:"interpretation,omitempty"`
	// Tier is the reported actionability tier, when the lab assigned one.
	Tier string `json:"tier,omitempty"`
	// VAF is the variant allele frequency as a percentage.
	VAF float64 `json:"vaf,omitempty"`
	// Prevalence describes how common the variant is in the tumor type.
	Prevalence string `json:"prevalence,omitempty"`
}

// GenomicsProfile is the normalized content of a genomics record.
type GenomicsProfile struct {
	Mutations []MutationRecord `json:"mutations"`
	// TMB is tumor mutational burden in mutations/Mb.
	TMB float64 `json:"tmb,omitempty"`
	// MSIStatus is the microsatellite instability call (MSS, MSI-H, ...).
	MSIStatus string `json:"msi_status,omitempty"`
	// Assay names the sequencing panel used.
	Assay string `json:"assay,omitempty"`
}

// ContraindicationRule is one drug-safety rule applicable to the patient.
type ContraindicationRule struct {
	// DrugClass names the therapy class the rule restricts.
	DrugClass string `json:"drug_class"`
	// OrganFunction is the organ system the rule keys on ("renal", "cardiac").
	OrganFunction string `json:"organ_function"`
	// MinClearanceMLMin blocks the class below this renal clearance. Zero
	// means the rule is not renal-gated.
	MinClearanceMLMin float64 `json:"min_clearance_ml_min,omitempty"`
	// MinEjectionFractionPct blocks the class below this LVEF. Zero means the
	// rule is not cardiac-gated.
	MinEjectionFractionPct float64 `json:"min_ejection_fraction_pct,omitempty"`
	// Contraindications lists the specific agents affected.
	Contraindications []string `json:"contraindications,omitempty"`
	// DoseAdjustment describes the adjustment when the agent is still usable.
	DoseAdjustment string `json:"dose_adjustment,omitempty"`
}
